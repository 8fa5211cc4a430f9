package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNothingToExport is returned when no document has been generated yet.
// Callers treat it as a no-op rather than a user-facing error.
var ErrNothingToExport = errors.New("export: no generated document")

// EmptyDocumentNotice tells the user why a successful generation produced
// nothing to save.
const EmptyDocumentNotice = "The backend returned an empty document; nothing to export."

// Format selects the artifact type.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

const (
	TextFilename = "nda.txt"
	PDFFilename  = "Generated_NDA.pdf"

	TextContentType = "text/plain; charset=utf-8"
	PDFContentType  = "application/pdf"
)

const partialSuffix = ".part"

// ParseFormat maps user input to a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "txt", "text", "plain":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want txt or pdf)", raw)
	}
}

// Filename is the download name for the format.
func (f Format) Filename() string {
	if f == FormatPDF {
		return PDFFilename
	}
	return TextFilename
}

// ContentType is the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return PDFContentType
	}
	return TextContentType
}

// PlainText returns the document bytes unchanged.
func PlainText(doc string) []byte {
	return []byte(doc)
}

// Artifact is an encoded export ready to be written.
type Artifact struct {
	Format   Format
	Filename string
	Data     []byte
	Stats    Stats
}

// Build encodes doc in the requested format. An empty document returns
// ErrNothingToExport: the export controls only act once text exists.
func Build(format Format, doc string, l Layout) (Artifact, error) {
	if doc == "" {
		return Artifact{}, ErrNothingToExport
	}
	switch format {
	case FormatText:
		return Artifact{Format: format, Filename: format.Filename(), Data: PlainText(doc)}, nil
	case FormatPDF:
		data, stats, err := PDF(doc, l)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Format: format, Filename: format.Filename(), Data: data, Stats: stats}, nil
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %q", format)
	}
}

// Save builds the artifact and writes it into dir, replacing any existing
// file of the same name. It returns the final path.
func Save(dir string, format Format, doc string, l Layout) (string, Artifact, error) {
	artifact, err := Build(format, doc, l)
	if err != nil {
		return "", Artifact{}, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", Artifact{}, err
	}
	path := filepath.Join(dir, artifact.Filename)
	if err := writeAtomic(path, artifact.Data); err != nil {
		return "", Artifact{}, err
	}
	return path, artifact, nil
}

func writeAtomic(path string, data []byte) error {
	partial := path + partialSuffix
	file, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(partial)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(partial)
		return err
	}
	return os.Rename(partial, path)
}
