package pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFDocument implements the Document interface using pdfcpu
type PDFDocument struct {
	mu  sync.Mutex // pdfcpu decodes streams in place
	ctx *model.Context
}

// OpenWithPDFCPU parses an in-memory PDF with pdfcpu. In strict mode the
// document is additionally validated.
func OpenWithPDFCPU(data []byte, strict bool) (doc *PDFDocument, err error) {
	defer recoverBackend("pdfcpu", &err)

	conf := model.NewDefaultConfiguration()
	if !strict {
		conf.ValidationMode = model.ValidationRelaxed
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if strict {
		if err := api.ValidateContext(ctx); err != nil {
			return nil, fmt.Errorf("invalid PDF: %w", err)
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	return &PDFDocument{ctx: ctx}, nil
}

// Backend returns the backend name
func (d *PDFDocument) Backend() string {
	return BackendPDFCPU
}

// PageCount returns the total number of pages
func (d *PDFDocument) PageCount() int {
	return d.ctx.PageCount
}

// Page returns a page by number (1-based)
func (d *PDFDocument) Page(number int) (p Page, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer recoverBackend("pdfcpu", &err)

	page, err := newPDFCPUPage(d, number)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Close releases resources associated with the document
func (d *PDFDocument) Close() error {
	return nil
}
