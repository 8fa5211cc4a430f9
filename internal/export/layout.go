// Package export turns generated NDA text into downloadable artifacts: the
// raw text, or a paginated PDF laid out on fixed page geometry.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Page sizes in points (72 per inch).
var pageFormats = map[string][2]float64{
	"letter": {612, 792},
	"legal":  {612, 1008},
	"a4":     {595.28, 841.89},
}

const (
	DefaultMargin      = 40
	DefaultLineHeight  = 18
	DefaultPageFormat  = "letter"
	DefaultOrientation = "portrait"
	DefaultFontFamily  = "Helvetica"
	DefaultFontSize    = 11

	// maxGlyphEm bounds the widest core-font glyph in ems.
	maxGlyphEm = 1.1
)

// Options is the user-facing layout configuration. Zero values fall back to
// the defaults, except Margin where nil means default and zero means no
// margin.
type Options struct {
	Margin      *float64
	LineHeight  float64
	PageFormat  string
	Orientation string
	FontFamily  string
	FontSize    float64
	// BreakLongWords hard-breaks words wider than a line. When false such a
	// word is placed alone on a line that overflows the right margin.
	BreakLongWords *bool
}

// Layout is the resolved page geometry used during export.
type Layout struct {
	PageWidth      float64
	PageHeight     float64
	Margin         float64
	LineHeight     float64
	FontFamily     string
	FontSize       float64
	BreakLongWords bool
}

// DefaultLayout is a portrait letter page with 40pt margins and 18pt lines.
func DefaultLayout() Layout {
	l, _ := NewLayout(Options{})
	return l
}

// NewLayout resolves options into page geometry.
func NewLayout(opts Options) (Layout, error) {
	format := strings.ToLower(strings.TrimSpace(opts.PageFormat))
	if format == "" {
		format = DefaultPageFormat
	}
	size, ok := pageFormats[format]
	if !ok {
		return Layout{}, fmt.Errorf("unknown page format %q (want letter, legal or a4)", opts.PageFormat)
	}
	width, height := size[0], size[1]

	switch strings.ToLower(strings.TrimSpace(opts.Orientation)) {
	case "", "portrait", "p":
	case "landscape", "l":
		width, height = height, width
	default:
		return Layout{}, fmt.Errorf("unknown orientation %q (want portrait or landscape)", opts.Orientation)
	}

	l := Layout{
		PageWidth:      width,
		PageHeight:     height,
		Margin:         DefaultMargin,
		LineHeight:     pick(opts.LineHeight, DefaultLineHeight),
		FontFamily:     opts.FontFamily,
		FontSize:       pick(opts.FontSize, DefaultFontSize),
		BreakLongWords: true,
	}
	if opts.Margin != nil {
		l.Margin = *opts.Margin
	}
	if l.FontFamily == "" {
		l.FontFamily = DefaultFontFamily
	}
	if opts.BreakLongWords != nil {
		l.BreakLongWords = *opts.BreakLongWords
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func pick(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

// Validate rejects geometry that leaves no room for a line of text.
func (l Layout) Validate() error {
	switch {
	case l.Margin < 0:
		return fmt.Errorf("margin must not be negative")
	case l.LineHeight <= 0:
		return fmt.Errorf("line height must be positive")
	case l.FontSize <= 0:
		return fmt.Errorf("font size must be positive")
	case l.UsableWidth() <= 0:
		return fmt.Errorf("margin %.0f leaves no usable width on a %.0fpt page", l.Margin, l.PageWidth)
	case l.UsableWidth() < maxGlyphEm*l.FontSize:
		return fmt.Errorf("usable width %.0f cannot fit one glyph at %.0fpt", l.UsableWidth(), l.FontSize)
	case l.Capacity() < 1:
		return fmt.Errorf("usable height %.0f cannot fit one %.0fpt line", l.UsableHeight(), l.LineHeight)
	}
	return nil
}

// UsableWidth is the page width minus both side margins.
func (l Layout) UsableWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

// UsableHeight is the page height minus top and bottom margins.
func (l Layout) UsableHeight() float64 {
	return l.PageHeight - 2*l.Margin
}

// capacityEpsilon absorbs quotients like 720/7.2 landing a hair under the
// whole number.
const capacityEpsilon = 1e-9

// Capacity is the number of lines that fit on one page.
func (l Layout) Capacity() int {
	return int(math.Floor(l.UsableHeight()/l.LineHeight + capacityEpsilon))
}
