package pdfmarkdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/content"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

type fakeResources struct{}

func (fakeResources) Fonts() (map[string]pdf.FontDescriptor, error) {
	return map[string]pdf.FontDescriptor{
		"F1": {BaseFont: "Helvetica", Subtype: "Type1", Encoding: "WinAnsiEncoding"},
		"F2": {BaseFont: "Helvetica-Bold", Subtype: "Type1", Encoding: "WinAnsiEncoding"},
	}, nil
}

func (fakeResources) XObject(name string) (*pdf.XObject, error) {
	return nil, fmt.Errorf("%s: %w", name, pdf.ErrXObjectNotFound)
}

type fakePage struct {
	number  int
	content string
	err     error
}

func (p *fakePage) Number() int              { return p.number }
func (p *fakePage) Content() ([]byte, error) { return []byte(p.content), p.err }
func (p *fakePage) Resources() pdf.Resources { return fakeResources{} }

type fakeDocument struct {
	pages   []string
	pageErr map[int]error
}

func (d *fakeDocument) Backend() string { return "fake" }
func (d *fakeDocument) PageCount() int  { return len(d.pages) }
func (d *fakeDocument) Close() error    { return nil }

func (d *fakeDocument) Page(n int) (pdf.Page, error) {
	if err := d.pageErr[n]; err != nil {
		return nil, err
	}
	if n < 1 || n > len(d.pages) {
		return nil, pdf.ErrPageOutOfRange
	}
	return &fakePage{number: n, content: d.pages[n-1]}, nil
}

const titlePage = `BT /F1 36 Tf 72 700 Td (Title) Tj ET
BT /F1 12 Tf 72 670 Td (Body one) Tj ET
BT /F1 12 Tf 72 656 Td (Body two) Tj ET
BT /F1 12 Tf 72 642 Td (Body three) Tj ET`

func TestConvertDocument(t *testing.T) {
	doc := &fakeDocument{pages: []string{
		titlePage,
		`BT /F2 12 Tf 72 700 Td (Strong) Tj ET`,
	}}

	res, err := ConvertDocument(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t,
		"\n\n<!-- S-TITLE: Page number 1 -->\n# Title\n\nBody one\nBody two\nBody three\n"+
			"\n\n<!-- S-TITLE: Page number 2 -->\n**Strong**\n",
		res.Markdown)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, PageSummary{Number: 1, Units: 4}, res.Pages[0])
	assert.Equal(t, PageSummary{Number: 2, Units: 1}, res.Pages[1])
	assert.Empty(t, res.Diagnostics)
}

func TestConvertDocumentKeepsPageOrder(t *testing.T) {
	var pages []string
	var want strings.Builder
	for i := 1; i <= 40; i++ {
		pages = append(pages, fmt.Sprintf("BT /F1 12 Tf 72 700 Td (page %d) Tj ET", i))
		fmt.Fprintf(&want, "\n\n<!-- S-TITLE: Page number %d -->\npage %d\n", i, i)
	}

	cfg := NewDefaultConfig()
	cfg.Workers = 8
	res, err := ConvertDocument(context.Background(), &fakeDocument{pages: pages}, cfg)
	require.NoError(t, err)
	assert.Equal(t, want.String(), res.Markdown)
}

func TestConvertDocumentParsingModes(t *testing.T) {
	doc := &fakeDocument{pages: []string{
		`BT /F1 12 Tf 72 700 Td (first) Tj ET`,
		`BT (unterminated`,
		`BT /F1 12 Tf 72 700 Td (third) Tj ET`,
	}}

	t.Run("best effort", func(t *testing.T) {
		res, err := ConvertDocument(context.Background(), doc, nil)
		require.NoError(t, err)

		assert.Contains(t, res.Markdown, "<!-- S-TITLE: Page number 2 -->\n<!-- S-ERROR: page 2 could not be decoded -->\n")
		assert.Contains(t, res.Markdown, "third\n")

		require.Len(t, res.Diagnostics, 1)
		var decodeErr *PageDecodeError
		require.ErrorAs(t, res.Diagnostics[0], &decodeErr)
		assert.Equal(t, 2, decodeErr.Page)
		assert.Error(t, res.Pages[1].Err)
	})

	t.Run("strict", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.ParsingMode = Strict

		res, err := ConvertDocument(context.Background(), doc, cfg)
		assert.Nil(t, res)
		var decodeErr *PageDecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, 2, decodeErr.Page)
	})
}

func TestConvertDocumentPageLookupFailure(t *testing.T) {
	doc := &fakeDocument{
		pages:   []string{titlePage, titlePage},
		pageErr: map[int]error{2: errors.New("broken page tree")},
	}

	res, err := ConvertDocument(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Markdown, "<!-- S-ERROR: page 2 could not be decoded -->\n"))
}

func TestConvertDocumentDiagnostics(t *testing.T) {
	doc := &fakeDocument{pages: []string{`BT /F1 12 Tf 72 700 Td (a) Tj 1 0 0 rg 1 Td (b) Tj ET`}}

	res, err := ConvertDocument(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)

	var opErr *OperatorError
	require.ErrorAs(t, res.Diagnostics[0], &opErr)
	assert.Equal(t, "Td", opErr.Operator)
	assert.Equal(t, 1, opErr.Page)
	assert.ErrorIs(t, opErr, content.ErrMissingOperand)
	assert.Equal(t, 1, res.Pages[0].Diagnostics)
}

func TestConvertDocumentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := ConvertDocument(ctx, &fakeDocument{pages: []string{titlePage}}, nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertDocumentWithoutMarkers(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.PageMarkers = false

	res, err := ConvertDocument(context.Background(), &fakeDocument{pages: []string{titlePage}}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody one\nBody two\nBody three\n", res.Markdown)
}

func TestConvertRejectsGarbage(t *testing.T) {
	res, err := Convert(context.Background(), []byte("this is not a pdf"), nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrDocumentLoad)

	var loadErr *DocumentLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Len(t, loadErr.Causes, 3)
}

func TestConvertRejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Workers = 0

	_, err := Convert(context.Background(), []byte("%PDF-1.4"), cfg)
	assert.ErrorContains(t, err, "invalid config")
}

func TestConvertFile(t *testing.T) {
	_, err := ConvertFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	_, err = ConvertFile(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrDocumentLoad)
}
