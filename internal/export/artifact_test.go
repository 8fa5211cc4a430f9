package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextIsIdentity(t *testing.T) {
	for _, doc := range []string{"", "single line", "CONFIDENTIALITY AGREEMENT\n\n1. Parties\r\n  indented\t\n", "Zoë — “quoted” ✓"} {
		assert.True(t, bytes.Equal([]byte(doc), PlainText(doc)), "doc %q", doc)
	}
}

func TestBuildGuardsEmptyDocument(t *testing.T) {
	_, err := Build(FormatText, "", DefaultLayout())
	assert.ErrorIs(t, err, ErrNothingToExport)
	_, err = Build(FormatPDF, "", DefaultLayout())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestSaveTextArtifact(t *testing.T) {
	dir := t.TempDir()
	doc := "CONFIDENTIALITY AGREEMENT\n\nBetween Google and Apple.\n"
	path, artifact, err := Save(dir, FormatText, doc, DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nda.txt"), path)
	assert.Equal(t, "text/plain; charset=utf-8", artifact.Format.ContentType())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))

	_, err = os.Stat(path + partialSuffix)
	assert.True(t, os.IsNotExist(err), "partial file should be renamed away")
}

func TestSavePDFArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, artifact, err := Save(dir, FormatPDF, "CONFIDENTIALITY AGREEMENT", DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Generated_NDA.pdf"), path)
	assert.Equal(t, 1, artifact.Stats.Pages)

	report, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	assert.Contains(t, report.Text, "CONFIDENTIALITY")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TXT")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "Generated_NDA.pdf", f.Filename())
	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestWritePDFPageCounts(t *testing.T) {
	l := DefaultLayout()
	cases := []struct {
		name  string
		lines int
		pages int
	}{
		{"empty", 0, 1},
		{"one page", 39, 1},
		{"spill", 40, 2},
		{"two full pages", 78, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Join(numberedLines(tc.lines), "\n")
			data, stats, err := PDF(text, l)
			require.NoError(t, err)
			assert.Equal(t, tc.pages, stats.Pages)
			assert.Equal(t, tc.lines, stats.Lines)

			report, err := InspectBytes(data)
			require.NoError(t, err)
			assert.Equal(t, tc.pages, report.Pages)
		})
	}
}

func TestWritePDFRejectsUnknownFont(t *testing.T) {
	l := DefaultLayout()
	l.FontFamily = "NoSuchFont"
	_, _, err := PDF("text", l)
	assert.Error(t, err)
}
