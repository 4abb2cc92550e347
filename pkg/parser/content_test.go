package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentOperators(t *testing.T) {
	data := []byte(`BT /F1 12 Tf 72 712.5 Td (Hello) Tj ET`)

	ops, err := ParseContent(data)
	require.NoError(t, err)
	require.Len(t, ops, 5)

	assert.Equal(t, "BT", ops[0].Operator)
	assert.Empty(t, ops[0].Operands)

	assert.Equal(t, "Tf", ops[1].Operator)
	assert.Equal(t, []PDFObject{PDFName("F1"), PDFInt(12)}, ops[1].Operands)

	assert.Equal(t, "Td", ops[2].Operator)
	assert.Equal(t, []PDFObject{PDFInt(72), PDFFloat(712.5)}, ops[2].Operands)

	assert.Equal(t, "Tj", ops[3].Operator)
	assert.Equal(t, []PDFObject{PDFString("Hello")}, ops[3].Operands)

	assert.Equal(t, "ET", ops[4].Operator)
}

func TestParseContentStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PDFString
	}{
		{"nested parens", `(a (b) c) Tj`, PDFString("a (b) c")},
		{"escapes", `(line\nbreak \(x\)) Tj`, PDFString("line\nbreak (x)")},
		{"octal", `(\101\102) Tj`, PDFString("AB")},
		{"hex", `<48656C6C6F> Tj`, PDFString("Hello")},
		{"odd hex", `<4142 4> Tj`, PDFString{0x41, 0x42, 0x40}},
		{"empty hex", `<> Tj`, PDFString{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := ParseContent([]byte(tt.input))
			require.NoError(t, err)
			require.Len(t, ops, 1)
			require.Len(t, ops[0].Operands, 1)
			assert.Equal(t, tt.want, ops[0].Operands[0])
		})
	}
}

func TestParseContentArrayAndDict(t *testing.T) {
	data := []byte(`[(Hel) -120 (lo)] TJ /Span <</ActualText (Hi) /MCID 3>> BDC EMC`)

	ops, err := ParseContent(data)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, "TJ", ops[0].Operator)
	assert.Equal(t, PDFArray{PDFString("Hel"), PDFInt(-120), PDFString("lo")}, ops[0].Operands[0])

	assert.Equal(t, "BDC", ops[1].Operator)
	require.Len(t, ops[1].Operands, 2)
	dict, ok := ops[1].Operands[1].(PDFDict)
	require.True(t, ok)
	text, ok := dict.GetString("ActualText")
	require.True(t, ok)
	assert.Equal(t, PDFString("Hi"), text)

	assert.Equal(t, "EMC", ops[2].Operator)
}

func TestParseContentNamesAndComments(t *testing.T) {
	data := []byte("% comment line\n/Fm#201 Do\n")

	ops, err := ParseContent(data)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "Do", ops[0].Operator)
	assert.Equal(t, []PDFObject{PDFName("Fm 1")}, ops[0].Operands)
}

func TestParseContentMalformedNumber(t *testing.T) {
	ops, err := ParseContent([]byte(`1-2 0 Td (x) Tj`))
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, PDFInvalid{Raw: "1-2"}, ops[0].Operands[0])
	_, ok := Number(ops[0].Operands[0])
	assert.False(t, ok)
}

func TestParseContentSkipsInlineImage(t *testing.T) {
	data := []byte("q BI /W 2 /H 1 /BPC 8 /CS /G ID \x00EI\xff\n EI Q (after) Tj")

	ops, err := ParseContent(data)
	require.NoError(t, err)

	var operators []string
	for _, op := range ops {
		operators = append(operators, op.Operator)
	}
	assert.Equal(t, []string{"q", "Q", "Tj"}, operators)
}

func TestParseContentErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `(abc Tj`},
		{"bad hex", `<4G> Tj`},
		{"stray greater", `1 > 2`},
		{"unterminated array", `[1 2`},
		{"unterminated inline image", "BI /W 1 ID abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContent([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNumber(t *testing.T) {
	v, ok := Number(PDFInt(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = Number(PDFFloat(-1.5))
	assert.True(t, ok)
	assert.Equal(t, -1.5, v)

	_, ok = Number(PDFName("x"))
	assert.False(t, ok)
}
