package table

import (
	"math"
	"sort"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

// Boundary is one grid cell of a table and the text runs inside it
type Boundary struct {
	MinX float64        `json:"min_x" yaml:"min_x"`
	MaxX float64        `json:"max_x" yaml:"max_x"`
	MinY float64        `json:"min_y" yaml:"min_y"`
	MaxY float64        `json:"max_y" yaml:"max_y"`
	Runs []*pdf.TextRun `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// Contains reports whether (x, y) lies strictly inside the cell
func (b *Boundary) Contains(x, y float64) bool {
	return x > b.MinX && x < b.MaxX && y > b.MinY && y < b.MaxY
}

// Table is a grid of at least two boundaries detected from ruling lines
type Table struct {
	Boundaries []*Boundary `json:"boundaries" yaml:"boundaries"`
	X          float64     `json:"x" yaml:"x"`
	Y          float64     `json:"y" yaml:"y"`
}

// Position returns the table centre used to order it among text
func (t *Table) Position() (float64, float64) {
	return t.X, t.Y
}

// Assign gives run to the first boundary that contains its origin
func (t *Table) Assign(run *pdf.TextRun) bool {
	for _, b := range t.Boundaries {
		if b.Contains(run.X, run.Y) {
			b.Runs = append(b.Runs, run)
			return true
		}
	}
	return false
}

// rowTolerance groups boundaries whose MinY differ by less than this
const rowTolerance = 1.0

// Rows returns the cell contents top to bottom and left to right. Each cell
// holds its runs in reading order.
func (t *Table) Rows() [][][]*pdf.TextRun {
	boundaries := make([]*Boundary, len(t.Boundaries))
	copy(boundaries, t.Boundaries)
	sort.SliceStable(boundaries, func(i, j int) bool {
		if boundaries[i].MinY != boundaries[j].MinY {
			return boundaries[i].MinY > boundaries[j].MinY
		}
		return boundaries[i].MinX < boundaries[j].MinX
	})

	var rows [][]*Boundary
	for _, b := range boundaries {
		placed := false
		for i, row := range rows {
			if math.Abs(row[0].MinY-b.MinY) < rowTolerance {
				rows[i] = append(rows[i], b)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []*Boundary{b})
		}
	}

	result := make([][][]*pdf.TextRun, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].MinX < row[j].MinX
		})
		cells := make([][]*pdf.TextRun, 0, len(row))
		for _, b := range row {
			cells = append(cells, sortRuns(b.Runs))
		}
		result = append(result, cells)
	}
	return result
}

// sortRuns returns a copy of runs ordered by y descending, then x ascending
func sortRuns(runs []*pdf.TextRun) []*pdf.TextRun {
	sorted := make([]*pdf.TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	return sorted
}
