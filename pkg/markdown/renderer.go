// Package markdown renders laid out page rows as markdown text
package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/layout"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/table"
)

const (
	// DefaultBaseFontSize is used when a page has no sized text
	DefaultBaseFontSize = 12.0
	// DefaultTableBaseFontSize keeps table cells out of heading range
	DefaultTableBaseFontSize = 1000.0

	hiddenColor = "#FFFFFF"
)

// Renderer converts rows into markdown
type Renderer struct {
	baseFontSize      float64
	tableBaseFontSize float64
}

// Option configures a Renderer
type Option func(*Renderer)

// WithBaseFontSize sets the heading baseline for pages without sized text
func WithBaseFontSize(size float64) Option {
	return func(r *Renderer) {
		r.baseFontSize = size
	}
}

// WithTableBaseFontSize sets the heading baseline used inside table cells
func WithTableBaseFontSize(size float64) Option {
	return func(r *Renderer) {
		r.tableBaseFontSize = size
	}
}

// NewRenderer creates a renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		baseFontSize:      DefaultBaseFontSize,
		tableBaseFontSize: DefaultTableBaseFontSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageMarker returns the comment that precedes page number n
func PageMarker(n int) string {
	return fmt.Sprintf("\n\n<!-- S-TITLE: Page number %d -->\n", n)
}

// Median returns the median of the positive sizes. The second result is
// false when there are none.
func Median(sizes []float64) (float64, bool) {
	var values []float64
	for _, s := range sizes {
		if s > 0 {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		return 0, false
	}

	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2], true
	}
	return (values[n/2-1] + values[n/2]) / 2, true
}

// HeadingLevel returns the heading prefix for size relative to base, or ""
// for body text
func HeadingLevel(size, base float64) string {
	ratio := size / base
	switch {
	case ratio >= 3.0:
		return "#"
	case ratio >= 2.5:
		return "##"
	case ratio >= 2.0:
		return "###"
	default:
		return ""
	}
}

// Style applies inline markup to run and returns the styled text followed
// by a space, plus the heading level it resolved to
func Style(run *pdf.TextRun, base float64) (string, string) {
	text := run.Text

	if run.Color != "" && run.Color != hiddenColor {
		text = "`" + strings.TrimSpace(text) + "` "
	}

	italic := run.Italic
	if name := strings.ToLower(run.FontName); name != "" {
		if strings.Contains(name, "bold") {
			text = "**" + strings.TrimSpace(text) + "** "
		}
		if strings.Contains(name, "italic") {
			italic = true
		}
	}
	if italic {
		text = "*" + strings.TrimSpace(text) + "* "
	}
	if run.Underline {
		text = "<u>" + strings.TrimSpace(text) + "</u> "
	}

	level := HeadingLevel(run.FontSize, base)
	if level != "" {
		text = level + " " + strings.TrimSpace(text) + " "
	}
	return text, level
}

// Render converts one page worth of rows. The heading baseline is the
// median size of every run on the page, table cells included.
func (r *Renderer) Render(rows []layout.Row) string {
	base, ok := Median(fontSizes(rows))
	if !ok {
		base = r.baseFontSize
	}

	var b strings.Builder
	prevLevel := ""

	for _, row := range rows {
		if row.IsSpacer() {
			if prevLevel != "" {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
			prevLevel = ""
			continue
		}

		for _, e := range row {
			switch v := e.(type) {
			case *pdf.TextRun:
				text, level := Style(v, base)
				if level != "" && level == prevLevel {
					// continue the open heading line
					b.WriteString("<br>")
					text = strings.TrimPrefix(text, level+" ")
				}
				if prevLevel != "" && level != prevLevel {
					b.WriteString("\n")
					if level == "" {
						b.WriteString("\n")
					}
				}
				b.WriteString(text)
				prevLevel = level

			case *table.Table:
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString("\n")
				}
				b.WriteString(r.renderTable(v))
				prevLevel = ""
			}
		}

		if prevLevel == "" && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
	}

	return trimLines(b.String())
}

// renderTable writes a pipe table whose first row is the header
func (r *Renderer) renderTable(t *table.Table) string {
	rows := t.Rows()
	if len(rows) == 0 {
		return ""
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, runs := range row {
			items := make([]string, len(runs))
			for k, run := range runs {
				text, _ := Style(run, r.tableBaseFontSize)
				items[k] = strings.TrimSpace(text)
			}
			cells[i][j] = strings.Join(items, " ")
		}
	}

	var b strings.Builder
	header := cells[0]
	fmt.Fprintf(&b, "| %s |\n", strings.Join(header, " | "))
	separator := make([]string, len(header))
	for i := range separator {
		separator[i] = "---"
	}
	fmt.Fprintf(&b, "|%s|\n", strings.Join(separator, "|"))
	for _, row := range cells[1:] {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
	}
	return b.String()
}

func fontSizes(rows []layout.Row) []float64 {
	var sizes []float64
	for _, row := range rows {
		for _, e := range row {
			switch v := e.(type) {
			case *pdf.TextRun:
				sizes = append(sizes, v.FontSize)
			case *table.Table:
				for _, b := range v.Boundaries {
					for _, run := range b.Runs {
						sizes = append(sizes, run.FontSize)
					}
				}
			}
		}
	}
	return sizes
}

// trimLines removes trailing spaces from every line
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
