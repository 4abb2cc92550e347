package pdf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsGarbage(t *testing.T) {
	doc, err := Open([]byte("this is not a pdf at all"))
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentLoad)

	var loadErr *DocumentLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Len(t, loadErr.Causes, len(backendOrder))
	for _, name := range backendOrder {
		assert.Contains(t, loadErr.Causes, name)
	}
}

func TestOpenEmptyInput(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrDocumentLoad)
}

func TestOpenWithSingleBackend(t *testing.T) {
	_, err := Open([]byte("%PDF-1.4 broken"), WithBackend(BackendDslipak))

	var loadErr *DocumentLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Len(t, loadErr.Causes, 1)
	assert.Contains(t, loadErr.Causes, BackendDslipak)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open([]byte("%PDF-1.4"), WithBackend("mupdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "mupdf"`)
}

func TestDocumentLoadError(t *testing.T) {
	errA := errors.New("bad xref")
	errB := errors.New("missing header")
	err := &DocumentLoadError{Causes: map[string]error{
		BackendDslipak: errB,
		BackendPDFCPU:  errA,
	}}

	assert.Equal(t, "input could not be parsed as PDF (pdfcpu: bad xref; dslipak: missing header)", err.Error())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.ErrorIs(t, err, ErrDocumentLoad)
	assert.Equal(t, ErrDocumentLoad.Error(), (&DocumentLoadError{}).Error())
}

func TestRecoverBackend(t *testing.T) {
	f := func() (err error) {
		defer recoverBackend("ledongthuc", &err)
		panic("malformed stream")
	}

	err := f()
	require.Error(t, err)
	assert.Equal(t, "ledongthuc: malformed document: malformed stream", err.Error())
}

func TestSplitUnits(t *testing.T) {
	a := &TextRun{Text: "a"}
	b := &TextRun{Text: "b"}
	l := LineSegment{From: Point{0, 0}, To: Point{10, 0}}

	runs, lines := SplitUnits([]Unit{a, l, b})
	assert.Equal(t, []*TextRun{a, b}, runs)
	assert.Equal(t, []LineSegment{l}, lines)

	assert.True(t, l.Horizontal(2))
	assert.False(t, l.Vertical(2))
	assert.Equal(t, 5.0, Point{0, 0}.Distance(Point{3, 4}))
}
