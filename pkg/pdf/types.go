package pdf

import (
	"fmt"
	"math"
)

// Point represents a 2D point in page space
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Unit is one item emitted by the content interpreter, either a *TextRun or
// a LineSegment. A unit sequence preserves content stream execution order.
type Unit interface {
	unit()
}

// TextRun represents one shown string on a page
type TextRun struct {
	Text      string  `json:"text" yaml:"text"`
	FontName  string  `json:"font_name,omitempty" yaml:"font_name,omitempty"`
	FontSize  float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"` // 0 when unknown
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Italic    bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty" yaml:"underline,omitempty"`
	Color     string  `json:"color,omitempty" yaml:"color,omitempty"` // "#RRGGBB" or empty
}

func (*TextRun) unit() {}

// Position returns the run origin
func (t *TextRun) Position() (float64, float64) {
	return t.X, t.Y
}

// LineSegment represents a stroked or constructed path edge in page space
type LineSegment struct {
	From Point `json:"from" yaml:"from"`
	To   Point `json:"to" yaml:"to"`
}

func (LineSegment) unit() {}

// Horizontal reports whether both endpoints share a y coordinate within tolerance
func (l LineSegment) Horizontal(tolerance float64) bool {
	return math.Abs(l.From.Y-l.To.Y) < tolerance
}

// Vertical reports whether both endpoints share an x coordinate within tolerance
func (l LineSegment) Vertical(tolerance float64) bool {
	return math.Abs(l.From.X-l.To.X) < tolerance
}

// SplitUnits separates a unit sequence into text runs and line segments,
// keeping the relative order of each.
func SplitUnits(units []Unit) ([]*TextRun, []LineSegment) {
	var runs []*TextRun
	var lines []LineSegment
	for _, u := range units {
		switch v := u.(type) {
		case *TextRun:
			runs = append(runs, v)
		case LineSegment:
			lines = append(lines, v)
		}
	}
	return runs, lines
}

// FontDescriptor is the backend independent view of a font resource
type FontDescriptor struct {
	BaseFont    string
	Subtype     string
	Encoding    string          // base encoding name, e.g. WinAnsiEncoding or Identity-H
	Differences map[byte]string // code -> glyph name from the encoding dictionary
	ToUnicode   []byte          // raw ToUnicode CMap stream, if any
}

// XObject represents a resolved external object referenced by Do
type XObject struct {
	Name      string
	Subtype   string
	Content   []byte
	Resources Resources // nil when the object carries no resource dictionary
}
