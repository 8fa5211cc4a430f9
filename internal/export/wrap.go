package export

import (
	"strings"
)

// Measurer reports the rendered width of a string in layout units.
type Measurer interface {
	Width(s string) float64
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(s string) float64

func (f MeasurerFunc) Width(s string) float64 { return f(s) }

// Wrap splits text into display lines no wider than width according to m.
//
// Source line breaks are kept and blank source lines become blank display
// lines. Within a source line, words are joined by single spaces and break at
// word boundaries. A word wider than width is split at rune boundaries when
// breakLong is set; otherwise it occupies its own overflowing line. Trailing
// line breaks at the end of text are dropped. Empty text yields no lines.
func Wrap(text string, width float64, m Measurer, breakLong bool) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if m.Width(candidate) <= width {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			if m.Width(word) <= width {
				current = word
				continue
			}
			if !breakLong {
				lines = append(lines, word)
				continue
			}
			pieces := breakWord(word, width, m)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// breakWord greedily packs runes into pieces no wider than width. A single
// rune wider than width still gets a piece of its own; Layout.Validate keeps
// that from happening with the PDF font metrics.
func breakWord(word string, width float64, m Measurer) []string {
	var pieces []string
	var b strings.Builder
	for _, r := range word {
		if b.Len() > 0 && m.Width(b.String()+string(r)) > width {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}
