package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// DocumentTitle is stored in the PDF metadata.
const DocumentTitle = "Generated NDA"

// Stats summarizes a rendered PDF.
type Stats struct {
	Pages int
	Lines int
}

// fontMeasurer measures strings with the PDF core font metrics, after the same
// cp1252 translation applied when the text is drawn.
type fontMeasurer struct {
	doc       *fpdf.Fpdf
	translate func(string) string
}

func (m fontMeasurer) Width(s string) float64 {
	return m.doc.GetStringWidth(m.translate(s))
}

func newDocument(l Layout) (*fpdf.Fpdf, fontMeasurer, error) {
	if err := l.Validate(); err != nil {
		return nil, fontMeasurer{}, err
	}
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	doc.SetMargins(l.Margin, l.Margin, l.Margin)
	doc.SetAutoPageBreak(false, l.Margin)
	doc.SetTitle(DocumentTitle, true)
	doc.SetCreator("legalchain", true)
	doc.SetFont(l.FontFamily, "", l.FontSize)
	if err := doc.Error(); err != nil {
		return nil, fontMeasurer{}, fmt.Errorf("configure pdf font %q: %w", l.FontFamily, err)
	}
	return doc, fontMeasurer{doc: doc, translate: doc.UnicodeTranslatorFromDescriptor("")}, nil
}

// NewFontMeasurer returns a Measurer using the layout's PDF font metrics.
func NewFontMeasurer(l Layout) (Measurer, error) {
	_, m, err := newDocument(l)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WritePDF renders text onto paginated pages and writes the document to w.
func WritePDF(w io.Writer, text string, l Layout) (Stats, error) {
	doc, m, err := newDocument(l)
	if err != nil {
		return Stats{}, err
	}
	pages := l.Pages(text, m)
	stats := Stats{Pages: len(pages)}
	for _, page := range pages {
		doc.AddPage()
		for _, line := range page.Lines {
			stats.Lines++
			if line.Text == "" {
				continue
			}
			// Text positions the baseline; drop it one font size into the line box.
			doc.Text(l.Margin, line.Top+l.FontSize, m.translate(line.Text))
		}
	}
	if err := doc.Output(w); err != nil {
		return Stats{}, fmt.Errorf("write pdf: %w", err)
	}
	return stats, nil
}

// PDF renders text into an in-memory PDF document.
func PDF(text string, l Layout) ([]byte, Stats, error) {
	var buf bytes.Buffer
	stats, err := WritePDF(&buf, text, l)
	if err != nil {
		return nil, Stats{}, err
	}
	return buf.Bytes(), stats, nil
}
