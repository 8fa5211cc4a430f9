package export

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Report describes a PDF read back from disk or memory.
type Report struct {
	Pages int
	Text  string
}

// Inspect opens a PDF file and extracts its page count and plain text.
func Inspect(path string) (Report, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	return inspectReader(reader)
}

// InspectBytes is Inspect for an in-memory document.
func InspectBytes(data []byte) (Report, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Report{}, fmt.Errorf("failed to parse pdf: %w", err)
	}
	return inspectReader(reader)
}

func inspectReader(reader *pdf.Reader) (Report, error) {
	content, err := reader.GetPlainText()
	if err != nil {
		return Report{}, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return Report{}, err
	}
	text := extraneousWhitespace.ReplaceAllString(builder.String(), " ")
	return Report{Pages: reader.NumPage(), Text: strings.TrimSpace(text)}, nil
}
