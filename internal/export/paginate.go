package export

// Line is one display line positioned on a page. Top is the distance from
// the top edge of the page to the top of the line box.
type Line struct {
	Text string
	Top  float64
}

// Page holds the lines placed on a single page.
type Page struct {
	Lines []Line
}

// Paginate lays lines out top to bottom, starting each page at the top
// margin. Each page holds l.Capacity() lines and a line's Top is derived
// from its index on the page, so no rounding drift accumulates. The result
// always has at least one page and never ends with an empty page.
func Paginate(lines []string, l Layout) []Page {
	capacity := l.Capacity()
	if capacity < 1 {
		capacity = 1
	}
	pages := []Page{{}}
	for _, text := range lines {
		current := &pages[len(pages)-1]
		if len(current.Lines) == capacity {
			pages = append(pages, Page{})
			current = &pages[len(pages)-1]
		}
		current.Lines = append(current.Lines, Line{
			Text: text,
			Top:  l.Margin + float64(len(current.Lines))*l.LineHeight,
		})
	}
	return pages
}

// Pages wraps text with m and paginates the result.
func (l Layout) Pages(text string, m Measurer) []Page {
	return Paginate(Wrap(text, l.UsableWidth(), m, l.BreakLongWords), l)
}
