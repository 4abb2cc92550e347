package content

import (
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

// GraphicsState represents the part of the PDF graphics state that affects
// where text and lines end up on the page
type GraphicsState struct {
	CTM     Matrix    // Current Transformation Matrix
	TM      Matrix    // Text matrix
	Leading float64   // Text leading
	Current pdf.Point // Current path point in user space
}

// NewGraphicsState creates a new graphics state with defaults
func NewGraphicsState() GraphicsState {
	return GraphicsState{
		CTM: IdentityMatrix(),
		TM:  IdentityMatrix(),
	}
}

// Position returns the text origin in page space
func (gs *GraphicsState) Position() (float64, float64) {
	return gs.CTM.Transform(gs.TM.E, gs.TM.F)
}

// Matrix represents a 2D transformation matrix [a b 0; c d 0; e f 1]
// applied to row vectors
type Matrix struct {
	A, B, C, D, E, F float64
}

// IdentityMatrix returns an identity matrix
func IdentityMatrix() Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, E: 0, F: 0}
}

// Multiply returns m × other, i.e. m is applied first
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.C,
		B: m.A*other.B + m.B*other.D,
		C: m.C*other.A + m.D*other.C,
		D: m.C*other.B + m.D*other.D,
		E: m.E*other.A + m.F*other.C + other.E,
		F: m.E*other.B + m.F*other.D + other.F,
	}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(x, y float64) (float64, float64) {
	newX := m.A*x + m.C*y + m.E
	newY := m.B*x + m.D*y + m.F
	return newX, newY
}

// TransformPoint is Transform for pdf.Point values
func (m Matrix) TransformPoint(p pdf.Point) pdf.Point {
	x, y := m.Transform(p.X, p.Y)
	return pdf.Point{X: x, Y: y}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, E: tx, F: ty}
}

// StateStack manages graphics state snapshots for save/restore operations
type StateStack struct {
	current GraphicsState
	saved   []GraphicsState
}

// NewStateStack creates a new state stack holding the default state
func NewStateStack() *StateStack {
	return &StateStack{current: NewGraphicsState()}
}

// Current returns the current graphics state
func (s *StateStack) Current() *GraphicsState {
	return &s.current
}

// Save pushes a snapshot of the current state
func (s *StateStack) Save() {
	s.saved = append(s.saved, s.current)
}

// Restore pops the last snapshot. Restoring with nothing saved resets to
// the default state.
func (s *StateStack) Restore() {
	if len(s.saved) == 0 {
		s.current = NewGraphicsState()
		return
	}
	s.current = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

// Depth returns the number of saved snapshots
func (s *StateStack) Depth() int {
	return len(s.saved)
}
