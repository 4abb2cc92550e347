package layout

import (
	"math"
	"sort"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/table"
)

// Element is a laid out item, either a free *pdf.TextRun or a *table.Table
type Element interface {
	Position() (x, y float64)
}

// Row is a group of elements sharing a baseline. An empty row is a spacer
// marking a paragraph or section break.
type Row []Element

// IsSpacer reports whether the row is a section break
func (r Row) IsSpacer() bool {
	return len(r) == 0
}

// Elements detects tables among the line segments, hands every text run to
// the first table cell that contains it and returns the free runs followed
// by the tables.
func Elements(units []pdf.Unit, opts ...table.Option) ([]Element, []*table.Table) {
	runs, lines := pdf.SplitUnits(units)
	tables := table.Detect(lines, opts...)

	elements := make([]Element, 0, len(runs)+len(tables))
	for _, run := range runs {
		assigned := false
		for _, t := range tables {
			if t.Assign(run) {
				assigned = true
				break
			}
		}
		if !assigned {
			elements = append(elements, run)
		}
	}
	for _, t := range tables {
		elements = append(elements, t)
	}
	return elements, tables
}

// Assemble turns interpreter output into rows in reading order
func Assemble(units []pdf.Unit, opts ...table.Option) []Row {
	elements, _ := Elements(units, opts...)
	return Segment(elements)
}

// Segmenter groups elements into rows and inserts spacers where the
// vertical rhythm breaks
type Segmenter struct {
	rowTolerance float64 // max y difference within a row
	firstGap     float64 // a first gap above this starts a new section
	gapRatio     float64 // a gap this much larger than the previous one starts a new section
}

// NewSegmenter creates a segmenter with default tolerances
func NewSegmenter() *Segmenter {
	return &Segmenter{
		rowTolerance: 1.0,
		firstGap:     20.0,
		gapRatio:     1.3,
	}
}

// SetTolerances sets the row tolerance and the section break thresholds
func (s *Segmenter) SetTolerances(rowTolerance, firstGap, gapRatio float64) {
	s.rowTolerance = rowTolerance
	s.firstGap = firstGap
	s.gapRatio = gapRatio
}

// Segment groups elements with the default segmenter
func Segment(elements []Element) []Row {
	return NewSegmenter().Segment(elements)
}

// Segment sorts elements top to bottom, groups them into rows and inserts
// spacer rows
func (s *Segmenter) Segment(elements []Element) []Row {
	if len(elements) == 0 {
		return nil
	}

	sorted := make([]Element, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		_, yi := sorted[i].Position()
		_, yj := sorted[j].Position()
		return yi > yj // PDF coordinates: Y increases upward
	})

	rows := s.groupIntoRows(sorted)

	heights := make([]float64, len(rows))
	for i, row := range rows {
		heights[i] = math.Inf(-1)
		for _, e := range row {
			_, y := e.Position()
			heights[i] = math.Max(heights[i], y)
		}
	}
	gaps := make([]float64, 0, len(rows))
	for i := 0; i+1 < len(heights); i++ {
		gaps = append(gaps, heights[i]-heights[i+1])
	}

	result := make([]Row, 0, len(rows)+len(gaps))
	for i, row := range rows {
		sortRow(row)
		result = append(result, row)
		if i < len(gaps) && s.breakAfter(gaps, i) {
			result = append(result, Row{})
		}
	}
	return result
}

func (s *Segmenter) breakAfter(gaps []float64, i int) bool {
	if i == 0 {
		return gaps[0] > s.firstGap
	}
	return gaps[i] > s.gapRatio*gaps[i-1]
}

// groupIntoRows starts a new row whenever y leaves the tolerance of the
// current row's first element
func (s *Segmenter) groupIntoRows(sorted []Element) []Row {
	var rows []Row
	var current Row

	_, currentY := sorted[0].Position()
	for _, e := range sorted {
		_, y := e.Position()
		if math.Abs(currentY-y) > s.rowTolerance {
			rows = append(rows, current)
			current = Row{e}
			currentY = y
			continue
		}
		current = append(current, e)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// sortRow orders a row by y descending, then x ascending
func sortRow(row Row) {
	sort.SliceStable(row, func(i, j int) bool {
		xi, yi := row[i].Position()
		xj, yj := row[j].Position()
		if yi != yj {
			return yi > yj
		}
		return xi < xj
	})
}
