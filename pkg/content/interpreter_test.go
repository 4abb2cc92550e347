package content

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/parser"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

type fakeResources struct {
	fonts    map[string]pdf.FontDescriptor
	fontsErr error
	xobjects map[string]*pdf.XObject
}

func (r *fakeResources) Fonts() (map[string]pdf.FontDescriptor, error) {
	return r.fonts, r.fontsErr
}

func (r *fakeResources) XObject(name string) (*pdf.XObject, error) {
	x, ok := r.xobjects[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, pdf.ErrXObjectNotFound)
	}
	return x, nil
}

const identityCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0001> <0048>
<0002> <0069>
endbfchar
endcmap`

func pageResources() *fakeResources {
	return &fakeResources{
		fonts: map[string]pdf.FontDescriptor{
			"F1": {BaseFont: "Helvetica", Subtype: "Type1", Encoding: "WinAnsiEncoding"},
			"F3": {BaseFont: "NotoSans", Subtype: "Type0", Encoding: "Identity-H", ToUnicode: []byte(identityCMap)},
			"F4": {BaseFont: "Custom", Subtype: "Type1", Encoding: "WinAnsiEncoding", Differences: map[byte]string{'A': "eacute"}},
			"F5": {BaseFont: "Raw", Subtype: "Type0", Encoding: "Identity-H"},
		},
		xobjects: map[string]*pdf.XObject{},
	}
}

func run(t *testing.T, src string, res pdf.Resources, opts ...Option) ([]pdf.Unit, []error) {
	t.Helper()
	ops, err := parser.ParseContent([]byte(src))
	require.NoError(t, err)
	return Interpret(ops, res, opts...)
}

func textRuns(units []pdf.Unit) []*pdf.TextRun {
	runs, _ := pdf.SplitUnits(units)
	return runs
}

func TestTextPositioning(t *testing.T) {
	tests := []struct {
		name string
		src  string
		x, y float64
		size float64
	}{
		{"Td", "BT /F1 12 Tf 72 700 Td (Hello) Tj ET", 72, 700, 12},
		{"cm replaces CTM", "1 0 0 1 10 20 cm 2 0 0 2 0 0 cm BT /F1 12 Tf 5 5 Td (a) Tj ET", 10, 10, 12},
		{"Td composes with Tm", "BT /F1 1 Tf 12 0 0 12 50 600 Tm 0 -1 Td (a) Tj ET", 50, 588, 12},
		{"BT resets TM", "BT 10 10 Td ET BT /F1 8 Tf (a) Tj ET", 0, 0, 8},
		{"Q on empty stack", "2 0 0 2 0 0 cm Q BT /F1 12 Tf 5 5 Td (a) Tj ET", 5, 5, 12},
		{"q Q restores", "q 1 0 0 1 100 100 cm Q BT /F1 12 Tf 5 5 Td (a) Tj ET", 5, 5, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, diags := run(t, tt.src, pageResources())
			require.Empty(t, diags)
			runs := textRuns(units)
			require.Len(t, runs, 1)
			assert.InDelta(t, tt.x, runs[0].X, 1e-9)
			assert.InDelta(t, tt.y, runs[0].Y, 1e-9)
			assert.InDelta(t, tt.size, runs[0].FontSize, 1e-9)
			assert.Equal(t, "Helvetica", runs[0].FontName)
		})
	}
}

func TestLeadingOperators(t *testing.T) {
	src := `BT /F1 12 Tf 100 700 Td 0 -14 TD (a) Tj T* (b) Tj (c) ' 1 2 (d) " 20 TL T* (e) Tj ET`
	units, diags := run(t, src, pageResources())
	require.Empty(t, diags)

	runs := textRuns(units)
	require.Len(t, runs, 5)

	var ys []float64
	for _, r := range runs {
		ys = append(ys, r.Y)
		assert.Equal(t, 100.0, r.X)
	}
	assert.Equal(t, []float64{686, 672, 658, 644, 624}, ys)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, []string{runs[0].Text, runs[1].Text, runs[2].Text, runs[3].Text, runs[4].Text})
}

func TestItalicFromShear(t *testing.T) {
	units, _ := run(t, "BT /F1 1 Tf 10 0 2 10 0 0 Tm (slanted) Tj 10 0 0 10 0 0 Tm (upright) Tj ET", pageResources())
	runs := textRuns(units)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Italic)
	assert.False(t, runs[1].Italic)
}

func TestTextDecoding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"TJ joins strings", "BT /F1 12 Tf [(Hel) -200 (lo)] TJ ET", "Hello"},
		{"winansi", `BT /F1 12 Tf (caf\351) Tj ET`, "café"},
		{"tounicode cmap", "BT /F3 12 Tf <00010002> Tj ET", "Hi"},
		{"differences", "BT /F4 12 Tf (AB) Tj ET", "éB"},
		{"utf16 fallback", "BT /F5 12 Tf <FEFF00410042> Tj ET", "AB"},
		{"lossy utf8 fallback", "BT /F5 12 Tf <C328> Tj ET", "\uFFFD("},
		{"no font selected", "BT (plain) Tj ET", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, diags := run(t, tt.src, pageResources())
			require.Empty(t, diags)
			runs := textRuns(units)
			require.Len(t, runs, 1)
			assert.Equal(t, tt.want, runs[0].Text)
		})
	}
}

func TestFillColorIsConsumedByNextRun(t *testing.T) {
	src := `1 0 0 rg BT /F1 12 Tf (red) Tj (plain) Tj 0 0 0 rg (black) Tj 0.5 0.5 0.5 sc (grey) Tj 0.2 g (gray op) Tj ET`
	units, diags := run(t, src, pageResources())
	require.Empty(t, diags)

	runs := textRuns(units)
	require.Len(t, runs, 5)
	assert.Equal(t, "#FF0000", runs[0].Color)
	assert.Equal(t, "", runs[1].Color)
	assert.Equal(t, "", runs[2].Color)
	assert.Equal(t, "#808080", runs[3].Color)
	assert.Equal(t, "", runs[4].Color)
}

func TestStrokeColorMarksUnderline(t *testing.T) {
	src := `BT /F1 12 Tf (linked) Tj ET 0 0 1 RG BT (next) Tj ET 0 0 m 10 0 l 1 0 0 SC`
	units, diags := run(t, src, pageResources())
	require.Empty(t, diags)

	runs := textRuns(units)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Underline)
	assert.False(t, runs[1].Underline)
}

func TestPathOperators(t *testing.T) {
	units, diags := run(t, "2 0 0 2 0 0 cm 10 20 m 110 20 l 110 70 l 0 0 100 50 re", nil)
	require.Empty(t, diags)

	_, lines := pdf.SplitUnits(units)
	assert.Equal(t, []pdf.LineSegment{
		{From: pdf.Point{X: 20, Y: 40}, To: pdf.Point{X: 220, Y: 40}},
		{From: pdf.Point{X: 220, Y: 40}, To: pdf.Point{X: 220, Y: 140}},
		{From: pdf.Point{X: 0, Y: 0}, To: pdf.Point{X: 200, Y: 0}},
		{From: pdf.Point{X: 200, Y: 0}, To: pdf.Point{X: 200, Y: 100}},
		{From: pdf.Point{X: 200, Y: 100}, To: pdf.Point{X: 0, Y: 100}},
		{From: pdf.Point{X: 0, Y: 100}, To: pdf.Point{X: 0, Y: 0}},
	}, lines)
}

func TestUnitsKeepExecutionOrder(t *testing.T) {
	units, _ := run(t, "BT (a) Tj ET 0 0 m 5 0 l BT (b) Tj ET", nil)
	require.Len(t, units, 3)
	assert.IsType(t, &pdf.TextRun{}, units[0])
	assert.IsType(t, pdf.LineSegment{}, units[1])
	assert.IsType(t, &pdf.TextRun{}, units[2])
}

func TestOperatorErrorsAreCollected(t *testing.T) {
	src := `BT /F9 12 Tf (unknown) Tj 1 Td 1-2 0 Td /F1 (x) Tf 42 Tj (still here) Tj ET`
	units, diags := run(t, src, pageResources(), WithPage(3))

	runs := textRuns(units)
	require.Len(t, runs, 2)
	assert.Equal(t, "", runs[0].FontName)
	assert.Equal(t, 12.0, runs[0].FontSize)
	assert.Equal(t, "still here", runs[1].Text)

	require.Len(t, diags, 5)
	wants := []struct {
		op  string
		err error
	}{
		{"Tf", ErrUnknownFont},
		{"Td", ErrMissingOperand},
		{"Td", ErrBadOperand},
		{"Tf", ErrBadOperand},
		{"Tj", ErrBadOperand},
	}
	for i, want := range wants {
		var opErr *OperatorError
		require.True(t, errors.As(diags[i], &opErr), "diagnostic %d", i)
		assert.Equal(t, 3, opErr.Page)
		assert.Equal(t, want.op, opErr.Operator)
		assert.ErrorIs(t, diags[i], want.err)
	}
}

func TestFontLoadFailureIsReported(t *testing.T) {
	res := &fakeResources{fontsErr: errors.New("broken font dictionary")}
	units, diags := run(t, "BT (x) Tj ET", res)

	assert.Len(t, textRuns(units), 1)
	require.Len(t, diags, 1)
	assert.ErrorContains(t, diags[0], "broken font dictionary")
}

func TestFormXObject(t *testing.T) {
	res := pageResources()
	res.xobjects["Fm1"] = &pdf.XObject{
		Name:    "Fm1",
		Subtype: "Form",
		Content: []byte("1 0 0 1 50 50 cm BT /F2 10 Tf 5 5 Td (inner) Tj /F1 9 Tf (parent font) Tj ET"),
		Resources: &fakeResources{fonts: map[string]pdf.FontDescriptor{
			"F2": {BaseFont: "Times-Bold", Subtype: "Type1"},
		}},
	}

	src := "q 1 0 0 1 100 100 cm /Fm1 Do Q BT /F1 12 Tf (outer) Tj ET"
	units, diags := run(t, src, res)
	require.Empty(t, diags)

	runs := textRuns(units)
	require.Len(t, runs, 3)

	assert.Equal(t, "inner", runs[0].Text)
	assert.Equal(t, "Times-Bold", runs[0].FontName)
	assert.Equal(t, 55.0, runs[0].X)
	assert.Equal(t, 55.0, runs[0].Y)

	assert.Equal(t, "Helvetica", runs[1].FontName)

	// the form's cm does not leak out
	assert.Equal(t, "outer", runs[2].Text)
	assert.Equal(t, 0.0, runs[2].X)
	assert.Equal(t, 0.0, runs[2].Y)
}

func TestFormXObjectFontScopeIsPopped(t *testing.T) {
	res := pageResources()
	res.xobjects["Fm1"] = &pdf.XObject{
		Subtype: "Form",
		Content: []byte("BT /F2 10 Tf (in) Tj ET"),
		Resources: &fakeResources{fonts: map[string]pdf.FontDescriptor{
			"F2": {BaseFont: "Inner"},
		}},
	}

	_, diags := run(t, "/Fm1 Do BT /F2 10 Tf (out) Tj ET", res)
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0], ErrUnknownFont)
}

func TestFormXObjectRestoresTextFont(t *testing.T) {
	res := pageResources()
	res.xobjects["Fm1"] = &pdf.XObject{
		Subtype: "Form",
		Content: []byte("BT /F2 40 Tf (in) Tj ET"),
		Resources: &fakeResources{fonts: map[string]pdf.FontDescriptor{
			"F2": {BaseFont: "Inner-Bold"},
		}},
	}

	units, diags := run(t, "BT /F1 12 Tf ET /Fm1 Do BT 0 0 Td (out) Tj ET", res)
	require.Empty(t, diags)

	runs := textRuns(units)
	require.Len(t, runs, 2)
	assert.Equal(t, "Inner-Bold", runs[0].FontName)
	assert.Equal(t, "out", runs[1].Text)
	assert.Equal(t, "Helvetica", runs[1].FontName)
	assert.Equal(t, 12.0, runs[1].FontSize)
}

func TestNestedFormMayReuseName(t *testing.T) {
	res := pageResources()
	res.xobjects["Fm0"] = &pdf.XObject{
		Subtype: "Form",
		Content: []byte("/Fm0 Do"),
		Resources: &fakeResources{
			fonts: map[string]pdf.FontDescriptor{},
			xobjects: map[string]*pdf.XObject{
				"Fm0": {Subtype: "Form", Content: []byte("BT /F1 10 Tf (nested) Tj ET")},
			},
		},
	}

	units, diags := run(t, "/Fm0 Do", res)
	assert.Empty(t, diags)
	runs := textRuns(units)
	require.Len(t, runs, 1)
	assert.Equal(t, "nested", runs[0].Text)
	assert.Equal(t, "Helvetica", runs[0].FontName)
}

func TestImagesAreSkipped(t *testing.T) {
	res := pageResources()
	res.xobjects["Pic"] = &pdf.XObject{Name: "Pic", Subtype: "Image"}

	units, diags := run(t, "/Im1 Do /Pic Do", res)
	assert.Empty(t, units)
	assert.Empty(t, diags)
}

func TestDoFailures(t *testing.T) {
	res := pageResources()
	res.xobjects["Loop"] = &pdf.XObject{Subtype: "Form", Content: []byte("/Loop Do BT (x) Tj ET")}
	res.xobjects["Outer"] = &pdf.XObject{Subtype: "Form", Content: []byte("/Inner Do")}
	res.xobjects["Inner"] = &pdf.XObject{Subtype: "Form", Content: []byte("BT (deep) Tj ET")}
	res.xobjects["Broken"] = &pdf.XObject{Subtype: "Form", Content: []byte("(unterminated")}

	t.Run("missing", func(t *testing.T) {
		_, diags := run(t, "/Fx Do", res)
		require.Len(t, diags, 1)
		assert.ErrorIs(t, diags[0], pdf.ErrXObjectNotFound)
	})

	t.Run("no resources", func(t *testing.T) {
		_, diags := run(t, "/Fx Do", nil)
		require.Len(t, diags, 1)
		assert.ErrorIs(t, diags[0], ErrNoResources)
	})

	t.Run("self reference", func(t *testing.T) {
		units, diags := run(t, "/Loop Do", res)
		assert.Len(t, textRuns(units), 1)
		require.Len(t, diags, 1)
		assert.ErrorIs(t, diags[0], ErrRecursion)
	})

	t.Run("depth limit", func(t *testing.T) {
		units, diags := run(t, "/Outer Do", res, WithMaxXObjectDepth(1))
		assert.Empty(t, units)
		require.Len(t, diags, 1)
		assert.ErrorIs(t, diags[0], ErrRecursion)

		units, diags = run(t, "/Outer Do", res)
		assert.Len(t, textRuns(units), 1)
		assert.Empty(t, diags)
	})

	t.Run("undecodable form", func(t *testing.T) {
		units, diags := run(t, "/Broken Do BT (after) Tj ET", res)
		assert.Len(t, textRuns(units), 1)
		require.Len(t, diags, 1)
		var opErr *OperatorError
		require.ErrorAs(t, diags[0], &opErr)
		assert.Equal(t, "Do", opErr.Operator)
	})
}

func TestActualText(t *testing.T) {
	src := `1 0 0 rg BT /F1 12 Tf 1 0 0 1 30 40 Tm /Span <</ActualText <FEFF0054>>> BDC EMC /P <</MCID 0>> BDC EMC /Span /Props BDC EMC ET`
	units, diags := run(t, src, pageResources())
	require.Empty(t, diags)

	runs := textRuns(units)
	require.Len(t, runs, 1)
	assert.Equal(t, &pdf.TextRun{Text: "T", X: 30, Y: 40, Color: "#FF0000"}, runs[0])
}

func TestTextRunCountMatchesShowOperators(t *testing.T) {
	res := pageResources()
	res.xobjects["Fm1"] = &pdf.XObject{Subtype: "Form", Content: []byte("BT (a) Tj [(b)] TJ ET")}

	src := "BT (1) Tj [(2) 10 (3)] TJ (4) ' 0 0 (5) \" ET /Fm1 Do /Fm1 Do"
	units, _ := run(t, src, res)
	assert.Len(t, textRuns(units), 4+2*2)
}
