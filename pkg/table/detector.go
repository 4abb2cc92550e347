package table

import (
	"math"
	"sort"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

// Default detection tolerances in page units
const (
	DefaultDedupTolerance        = 5.0
	DefaultClusterTolerance      = 10.0
	DefaultAxisTolerance         = 2.0
	DefaultIntersectionTolerance = 10.0
	DefaultGridEpsilon           = 3.0
)

type detectorConfig struct {
	dedupTolerance        float64
	clusterTolerance      float64
	axisTolerance         float64
	intersectionTolerance float64
	gridEpsilon           float64
}

// Option configures Detect
type Option func(*detectorConfig)

// WithDedupTolerance sets how close both endpoints of two segments must be
// for the later one to be dropped
func WithDedupTolerance(v float64) Option {
	return func(c *detectorConfig) {
		c.dedupTolerance = v
	}
}

// WithClusterTolerance sets the endpoint distance below which two segments
// belong to the same table region
func WithClusterTolerance(v float64) Option {
	return func(c *detectorConfig) {
		c.clusterTolerance = v
	}
}

// WithAxisTolerance sets the slack for classifying segments as horizontal
// or vertical
func WithAxisTolerance(v float64) Option {
	return func(c *detectorConfig) {
		c.axisTolerance = v
	}
}

// WithIntersectionTolerance sets how far a crossing may lie outside a
// segment's span and the merge radius for nearby crossings
func WithIntersectionTolerance(v float64) Option {
	return func(c *detectorConfig) {
		c.intersectionTolerance = v
	}
}

// WithGridEpsilon sets the quantization step used to order crossings into
// grid rows
func WithGridEpsilon(v float64) Option {
	return func(c *detectorConfig) {
		c.gridEpsilon = v
	}
}

// Detect finds tables formed by ruling lines
func Detect(lines []pdf.LineSegment, opts ...Option) []*Table {
	cfg := detectorConfig{
		dedupTolerance:        DefaultDedupTolerance,
		clusterTolerance:      DefaultClusterTolerance,
		axisTolerance:         DefaultAxisTolerance,
		intersectionTolerance: DefaultIntersectionTolerance,
		gridEpsilon:           DefaultGridEpsilon,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lines = cfg.dedup(lines)

	ds := NewDisjointSet(len(lines))
	for i := range lines {
		for j := i + 1; j < len(lines); j++ {
			if cfg.connected(lines[i], lines[j]) {
				ds.Union(i, j)
			}
		}
	}

	var tables []*Table
	for _, group := range ds.Groups() {
		cluster := make([]pdf.LineSegment, len(group))
		for i, idx := range group {
			cluster[i] = lines[idx]
		}
		if t := cfg.buildTable(cluster); t != nil {
			tables = append(tables, t)
		}
	}
	return tables
}

// dedup drops segments whose endpoints match an earlier segment's in
// either direction
func (c *detectorConfig) dedup(lines []pdf.LineSegment) []pdf.LineSegment {
	kept := make([]pdf.LineSegment, 0, len(lines))
	for _, l := range lines {
		duplicate := false
		for _, k := range kept {
			same := l.From.Distance(k.From) <= c.dedupTolerance && l.To.Distance(k.To) <= c.dedupTolerance
			reversed := l.From.Distance(k.To) <= c.dedupTolerance && l.To.Distance(k.From) <= c.dedupTolerance
			if same || reversed {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, l)
		}
	}
	return kept
}

func (c *detectorConfig) connected(a, b pdf.LineSegment) bool {
	for _, p := range [2]pdf.Point{a.From, a.To} {
		for _, q := range [2]pdf.Point{b.From, b.To} {
			if p.Distance(q) < c.clusterTolerance {
				return true
			}
		}
	}
	return false
}

// buildTable turns one cluster of segments into a table, or nil when the
// cluster does not form a grid of at least two cells
func (c *detectorConfig) buildTable(cluster []pdf.LineSegment) *Table {
	var horizontal, vertical []pdf.LineSegment
	for _, l := range cluster {
		switch {
		case l.Horizontal(c.axisTolerance):
			horizontal = append(horizontal, l)
		case l.Vertical(c.axisTolerance):
			vertical = append(vertical, l)
		}
	}
	if len(horizontal) == 0 || len(vertical) == 0 {
		return nil
	}

	points := c.mergePoints(c.intersections(horizontal, vertical))
	rows := c.gridRows(points)

	var boundaries []*Boundary
	for r := 0; r+1 < len(rows); r++ {
		row, next := rows[r], rows[r+1]
		cols := min(len(row), len(next))
		for x := 0; x < cols-1; x++ {
			boundaries = append(boundaries, &Boundary{
				MinX: row[x].X,
				MaxX: next[x+1].X,
				MinY: row[x].Y,
				MaxY: next[x+1].Y,
			})
		}
	}
	if len(boundaries) <= 1 {
		return nil
	}

	first := rows[0][0]
	lastRow := rows[len(rows)-1]
	last := lastRow[len(lastRow)-1]
	return &Table{
		Boundaries: boundaries,
		X:          (first.X + last.X) / 2,
		Y:          (first.Y + last.Y) / 2,
	}
}

// intersections returns (v.x, h.y) for every pair whose spans meet
func (c *detectorConfig) intersections(horizontal, vertical []pdf.LineSegment) []pdf.Point {
	var points []pdf.Point
	for _, h := range horizontal {
		hy := (h.From.Y + h.To.Y) / 2
		for _, v := range vertical {
			vx := (v.From.X + v.To.X) / 2
			if c.withinSpan(vx, h.From.X, h.To.X) && c.withinSpan(hy, v.From.Y, v.To.Y) {
				points = append(points, pdf.Point{X: vx, Y: hy})
			}
		}
	}
	return points
}

func (c *detectorConfig) withinSpan(value, a, b float64) bool {
	lo, hi := math.Min(a, b), math.Max(a, b)
	return value >= lo-c.intersectionTolerance && value <= hi+c.intersectionTolerance
}

// mergePoints replaces each group of nearby points with its centroid
func (c *detectorConfig) mergePoints(points []pdf.Point) []pdf.Point {
	ds := NewDisjointSet(len(points))
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if points[i].Distance(points[j]) <= c.intersectionTolerance {
				ds.Union(i, j)
			}
		}
	}

	groups := ds.Groups()
	merged := make([]pdf.Point, 0, len(groups))
	for _, group := range groups {
		var sx, sy float64
		for _, idx := range group {
			sx += points[idx].X
			sy += points[idx].Y
		}
		n := float64(len(group))
		merged = append(merged, pdf.Point{X: sx / n, Y: sy / n})
	}
	return merged
}

// gridRows orders points bottom to top into rows sorted by x
func (c *detectorConfig) gridRows(points []pdf.Point) [][]pdf.Point {
	quantize := func(v float64) float64 {
		return math.Round(v / c.gridEpsilon)
	}

	sorted := make([]pdf.Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		qi, qj := quantize(sorted[i].Y), quantize(sorted[j].Y)
		if qi != qj {
			return qi < qj
		}
		return quantize(sorted[i].X) < quantize(sorted[j].X)
	})

	var rows [][]pdf.Point
	for _, p := range sorted {
		if n := len(rows); n > 0 && math.Abs(p.Y-rows[n-1][0].Y) <= c.gridEpsilon {
			rows[n-1] = append(rows[n-1], p)
			continue
		}
		rows = append(rows, []pdf.Point{p})
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
	}
	return rows
}
