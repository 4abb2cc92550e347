package content

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/logger"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/parser"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

// DefaultMaxXObjectDepth bounds nested form XObjects
const DefaultMaxXObjectDepth = 16

// Option configures an Interpreter
type Option func(*Interpreter)

// WithPage sets the page number reported in diagnostics
func WithPage(page int) Option {
	return func(in *Interpreter) {
		in.page = page
	}
}

// WithMaxXObjectDepth sets how deep form XObjects may nest
func WithMaxXObjectDepth(depth int) Option {
	return func(in *Interpreter) {
		if depth > 0 {
			in.maxDepth = depth
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logger.LogFunc) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// fontScope resolves font aliases. Form XObjects get a child scope that is
// searched before its parent.
type fontScope struct {
	fonts  map[string]*pdf.Font
	parent *fontScope
}

func (s *fontScope) lookup(alias string) (*pdf.Font, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if f, ok := scope.fonts[alias]; ok {
			return f, true
		}
	}
	return nil, false
}

type formKey struct {
	scope int
	name  string
}

// textFont is the part of the text state selected by Tf
type textFont struct {
	alias string
	name  string
	size  float64
	font  *pdf.Font
}

// Interpreter executes the operations of one page and records the text
// runs and line segments they produce
type Interpreter struct {
	page     int
	maxDepth int
	log      logger.LogFunc

	stack     *StateStack
	fonts     *fontScope
	resources pdf.Resources

	// text state
	fontAlias string
	fontName  string
	fontSize  float64
	font      *pdf.Font

	pendingColor string

	// active holds the forms being executed, keyed by resource scope and
	// name, since a nested form may reuse a name for another object
	active    map[formKey]bool
	scope     int
	nextScope int
	depth     int

	units       []pdf.Unit
	diagnostics []error
}

// NewInterpreter creates an interpreter for a page with the given
// resources. res may be nil.
func NewInterpreter(res pdf.Resources, opts ...Option) *Interpreter {
	in := &Interpreter{
		maxDepth:  DefaultMaxXObjectDepth,
		stack:     NewStateStack(),
		resources: res,
		active:    make(map[formKey]bool),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.fonts = in.loadFonts(res, nil)
	return in
}

// Interpret runs ops against res and returns the units and diagnostics
func Interpret(ops []parser.Operation, res pdf.Resources, opts ...Option) ([]pdf.Unit, []error) {
	in := NewInterpreter(res, opts...)
	in.Execute(ops)
	return in.Units(), in.Diagnostics()
}

// Units returns the emitted units in execution order
func (in *Interpreter) Units() []pdf.Unit {
	return in.units
}

// Diagnostics returns the recoverable errors met so far
func (in *Interpreter) Diagnostics() []error {
	return in.diagnostics
}

// State returns the current graphics state
func (in *Interpreter) State() *GraphicsState {
	return in.stack.Current()
}

// Execute interprets a list of operations. Failing operators are recorded
// as *OperatorError and skipped.
func (in *Interpreter) Execute(ops []parser.Operation) {
	for _, op := range ops {
		if err := in.apply(op); err != nil {
			opErr := &OperatorError{Page: in.page, Operator: op.Operator, Err: err}
			in.log.Debug("operator skipped", "page", in.page, "operator", op.Operator, "error", err)
			in.diagnostics = append(in.diagnostics, opErr)
		}
	}
}

func (in *Interpreter) loadFonts(res pdf.Resources, parent *fontScope) *fontScope {
	scope := &fontScope{fonts: make(map[string]*pdf.Font), parent: parent}
	if res == nil {
		return scope
	}

	descriptors, err := res.Fonts()
	if err != nil {
		in.log.Error("failed to load fonts", "page", in.page, "error", err)
		in.diagnostics = append(in.diagnostics, &OperatorError{Page: in.page, Operator: "Font", Err: err})
		return scope
	}
	for alias, d := range descriptors {
		scope.fonts[alias] = pdf.NewFont(alias, d)
	}
	return scope
}

// apply processes a PDF operator with its operands
func (in *Interpreter) apply(op parser.Operation) error {
	state := in.stack.Current()
	operands := op.Operands

	switch op.Operator {
	// Graphics state operators
	case "q": // Save graphics state
		in.stack.Save()

	case "Q": // Restore graphics state
		in.stack.Restore()

	case "cm": // Set the transformation matrix
		m, err := matrixOperands(operands)
		if err != nil {
			return err
		}
		state.CTM = m

	// Path construction operators
	case "m": // Move to
		nums, err := numbers(operands, 2)
		if err != nil {
			return err
		}
		state.Current = pdf.Point{X: nums[0], Y: nums[1]}

	case "l": // Line to
		nums, err := numbers(operands, 2)
		if err != nil {
			return err
		}
		to := pdf.Point{X: nums[0], Y: nums[1]}
		in.emitLine(state, state.Current, to)
		state.Current = to

	case "c": // Bezier curves only move the current point
		nums, err := numbers(operands, 6)
		if err != nil {
			return err
		}
		state.Current = pdf.Point{X: nums[4], Y: nums[5]}

	case "v", "y":
		nums, err := numbers(operands, 4)
		if err != nil {
			return err
		}
		state.Current = pdf.Point{X: nums[2], Y: nums[3]}

	case "re": // Rectangle
		nums, err := numbers(operands, 4)
		if err != nil {
			return err
		}
		x, y, w, h := nums[0], nums[1], nums[2], nums[3]
		p1 := pdf.Point{X: x, Y: y}
		p2 := pdf.Point{X: x + w, Y: y}
		p3 := pdf.Point{X: x + w, Y: y + h}
		p4 := pdf.Point{X: x, Y: y + h}
		in.emitLine(state, p1, p2)
		in.emitLine(state, p2, p3)
		in.emitLine(state, p3, p4)
		in.emitLine(state, p4, p1)
		state.Current = p1

	// Text state operators
	case "BT": // Begin text
		state.TM = IdentityMatrix()

	case "ET": // End text

	case "Tf": // Set font and size
		if len(operands) < 2 {
			return ErrMissingOperand
		}
		alias, ok := operands[0].(parser.PDFName)
		if !ok {
			return fmt.Errorf("%w: font alias %v", ErrBadOperand, operands[0])
		}
		size, ok := parser.Number(operands[1])
		if !ok {
			return fmt.Errorf("%w: font size %v", ErrBadOperand, operands[1])
		}
		in.fontAlias = string(alias)
		in.fontSize = size
		font, found := in.fonts.lookup(in.fontAlias)
		if !found {
			in.fontName = ""
			in.font = nil
			return fmt.Errorf("%w: %s", ErrUnknownFont, alias)
		}
		in.font = font
		in.fontName = font.BaseFont

	case "Td": // Move text position
		nums, err := numbers(operands, 2)
		if err != nil {
			return err
		}
		in.moveText(state, nums[0], nums[1])

	case "TD": // Move text position and set leading
		nums, err := numbers(operands, 2)
		if err != nil {
			return err
		}
		state.Leading = -nums[1]
		in.moveText(state, nums[0], nums[1])

	case "TL": // Set leading
		nums, err := numbers(operands, 1)
		if err != nil {
			return err
		}
		state.Leading = nums[0]

	case "Tm": // Set text matrix
		m, err := matrixOperands(operands)
		if err != nil {
			return err
		}
		state.TM = m

	case "T*": // Move to next line
		in.moveText(state, 0, -state.Leading)

	// Text showing operators
	case "Tj":
		data, err := stringOperand(operands, 0)
		if err != nil {
			return err
		}
		in.showText(state, data)

	case "TJ":
		if len(operands) < 1 {
			return ErrMissingOperand
		}
		array, ok := operands[0].(parser.PDFArray)
		if !ok {
			return fmt.Errorf("%w: expected array, got %s", ErrBadOperand, operands[0].Type())
		}
		var data []byte
		for _, item := range array {
			// numbers are kerning adjustments
			if s, ok := item.(parser.PDFString); ok {
				data = append(data, s...)
			}
		}
		in.showText(state, data)

	case "'": // Move to next line and show text
		data, err := stringOperand(operands, 0)
		if err != nil {
			return err
		}
		in.moveText(state, 0, -state.Leading)
		in.showText(state, data)

	case "\"": // Set spacing, move to next line, and show text
		if len(operands) < 3 {
			return ErrMissingOperand
		}
		data, err := stringOperand(operands, 2)
		if err != nil {
			return err
		}
		in.moveText(state, 0, -state.Leading)
		in.showText(state, data)

	// Color operators
	case "rg", "sc", "scn": // Fill color
		if op.Operator == "rg" && len(operands) < 3 {
			return ErrMissingOperand
		}
		if len(operands) != 3 {
			// gray, CMYK and pattern fills carry no RGB triple
			return nil
		}
		nums, err := numbers(operands, 3)
		if err != nil {
			return err
		}
		if nums[0] != 0 || nums[1] != 0 || nums[2] != 0 {
			in.pendingColor = hexColor(nums[0], nums[1], nums[2])
		}

	case "RG", "SC", "SCN": // Stroke color right after text marks an underline
		if len(in.units) > 0 {
			if run, ok := in.units[len(in.units)-1].(*pdf.TextRun); ok {
				run.Underline = true
			}
		}

	// External objects
	case "Do":
		if len(operands) < 1 {
			return ErrMissingOperand
		}
		name, ok := operands[0].(parser.PDFName)
		if !ok {
			return fmt.Errorf("%w: xobject name %v", ErrBadOperand, operands[0])
		}
		return in.invokeXObject(string(name))

	// Marked content
	case "BDC":
		if len(operands) < 2 {
			return ErrMissingOperand
		}
		props, ok := operands[1].(parser.PDFDict)
		if !ok {
			// named property lists live in the resources; they carry no text here
			return nil
		}
		if text, ok := props.GetString("ActualText"); ok {
			x, y := state.Position()
			in.units = append(in.units, &pdf.TextRun{
				Text:  pdf.DecodeTextString(text),
				X:     x,
				Y:     y,
				Color: in.takeColor(),
			})
		}
	}

	return nil
}

// moveText applies Td semantics: TM = translate(tx, ty) × TM
func (in *Interpreter) moveText(state *GraphicsState, tx, ty float64) {
	state.TM = Translate(tx, ty).Multiply(state.TM)
}

// showText emits one TextRun for a text showing operator
func (in *Interpreter) showText(state *GraphicsState, data []byte) {
	x, y := state.Position()
	in.units = append(in.units, &pdf.TextRun{
		Text:     pdf.DecodeShownText(in.font, data),
		FontName: in.fontName,
		FontSize: in.fontSize * state.TM.D,
		X:        x,
		Y:        y,
		Italic:   state.TM.C != 0,
		Color:    in.takeColor(),
	})
}

func (in *Interpreter) emitLine(state *GraphicsState, from, to pdf.Point) {
	in.units = append(in.units, pdf.LineSegment{
		From: state.CTM.TransformPoint(from),
		To:   state.CTM.TransformPoint(to),
	})
}

func (in *Interpreter) takeColor() string {
	c := in.pendingColor
	in.pendingColor = ""
	return c
}

// invokeXObject interprets a form XObject in a nested scope
func (in *Interpreter) invokeXObject(name string) error {
	// image resources are conventionally named Im1, Im2, ...
	if strings.Contains(name, "Im") {
		return nil
	}
	if in.resources == nil {
		return fmt.Errorf("%w: cannot resolve %s", ErrNoResources, name)
	}
	key := formKey{scope: in.scope, name: name}
	if in.active[key] || in.depth >= in.maxDepth {
		return fmt.Errorf("%w: %s at depth %d", ErrRecursion, name, in.depth)
	}

	x, err := in.resources.XObject(name)
	if err != nil {
		return err
	}
	if x.Subtype == "Image" {
		return nil
	}

	ops, err := parser.ParseContent(x.Content)
	if err != nil {
		return fmt.Errorf("form %s: %w", name, err)
	}

	in.log.Debug("entering form xobject", "page", in.page, "name", name, "operations", len(ops))

	parentFonts, parentRes, parentScope := in.fonts, in.resources, in.scope
	parentText := in.saveTextFont()
	in.stack.Save()
	if x.Resources != nil {
		in.fonts = in.loadFonts(x.Resources, parentFonts)
		in.resources = x.Resources
		in.nextScope++
		in.scope = in.nextScope
	}
	in.active[key] = true
	in.depth++

	in.Execute(ops)

	in.depth--
	delete(in.active, key)
	in.scope = parentScope
	in.resources = parentRes
	in.fonts = parentFonts
	in.restoreTextFont(parentText)
	in.stack.Restore()

	return nil
}

func (in *Interpreter) saveTextFont() textFont {
	return textFont{alias: in.fontAlias, name: in.fontName, size: in.fontSize, font: in.font}
}

func (in *Interpreter) restoreTextFont(tf textFont) {
	in.fontAlias, in.fontName, in.fontSize, in.font = tf.alias, tf.name, tf.size, tf.font
}

func numbers(operands []parser.PDFObject, n int) ([]float64, error) {
	if len(operands) < n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrMissingOperand, n, len(operands))
	}
	// operators take their operands from the top of the stack
	operands = operands[len(operands)-n:]
	nums := make([]float64, n)
	for i, obj := range operands {
		v, ok := parser.Number(obj)
		if !ok {
			return nil, fmt.Errorf("%w: operand %d is %v", ErrBadOperand, i, obj)
		}
		nums[i] = v
	}
	return nums, nil
}

func matrixOperands(operands []parser.PDFObject) (Matrix, error) {
	nums, err := numbers(operands, 6)
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}, nil
}

func stringOperand(operands []parser.PDFObject, i int) ([]byte, error) {
	if len(operands) <= i {
		return nil, ErrMissingOperand
	}
	s, ok := operands[i].(parser.PDFString)
	if !ok {
		return nil, fmt.Errorf("%w: expected string, got %s", ErrBadOperand, operands[i].Type())
	}
	return s, nil
}

func hexColor(r, g, b float64) string {
	return strings.ToUpper(colorful.Color{R: r, G: g, B: b}.Clamped().Hex())
}
