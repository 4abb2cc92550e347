// Package page runs the conversion pipeline for a single page
package page

import (
	"context"
	"fmt"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/content"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/layout"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/logger"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/markdown"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/parser"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/table"
)

// PageDecodeError reports a page whose content stream could not be read or
// tokenized
type PageDecodeError struct {
	Page int
	Err  error
}

func (e *PageDecodeError) Error() string {
	return fmt.Sprintf("page %d could not be decoded: %v", e.Page, e.Err)
}

func (e *PageDecodeError) Unwrap() error {
	return e.Err
}

// Options configures page processing
type Options struct {
	MaxXObjectDepth   int
	BaseFontSize      float64
	TableBaseFontSize float64
	PageMarkers       bool
	TableOptions      []table.Option
	Logger            logger.LogFunc
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxXObjectDepth:   content.DefaultMaxXObjectDepth,
		BaseFontSize:      markdown.DefaultBaseFontSize,
		TableBaseFontSize: markdown.DefaultTableBaseFontSize,
		PageMarkers:       true,
	}
}

// Result is the outcome of processing one page
type Result struct {
	Number      int            `json:"number" yaml:"number"`
	Markdown    string         `json:"-" yaml:"-"`
	Units       []pdf.Unit     `json:"-" yaml:"-"`
	Tables      []*table.Table `json:"tables,omitempty" yaml:"tables,omitempty"`
	Diagnostics []error        `json:"-" yaml:"-"`
	Err         error          `json:"-" yaml:"-"`
}

// Process converts page p to markdown. Decode failures are reported in
// Result.Err as *PageDecodeError and the markdown holds a placeholder.
func Process(ctx context.Context, p pdf.Page, opts Options) Result {
	number := p.Number()
	if err := ctx.Err(); err != nil {
		return Result{Number: number, Err: err}
	}

	log := opts.Logger.With("page", number)

	data, err := p.Content()
	if err != nil {
		return Failed(number, err, opts)
	}
	ops, err := parser.ParseContent(data)
	if err != nil {
		return Failed(number, err, opts)
	}
	log.Debug("content decoded", "operations", len(ops), "bytes", len(data))

	units, diagnostics := content.Interpret(ops, p.Resources(),
		content.WithPage(number),
		content.WithMaxXObjectDepth(opts.MaxXObjectDepth),
		content.WithLogger(log),
	)

	elements, tables := layout.Elements(units, opts.TableOptions...)
	rows := layout.Segment(elements)
	log.Debug("layout assembled", "units", len(units), "tables", len(tables), "rows", len(rows))

	renderer := markdown.NewRenderer(
		markdown.WithBaseFontSize(opts.BaseFontSize),
		markdown.WithTableBaseFontSize(opts.TableBaseFontSize),
	)

	md := renderer.Render(rows)
	if opts.PageMarkers {
		md = markdown.PageMarker(number) + md
	}

	return Result{
		Number:      number,
		Markdown:    md,
		Units:       units,
		Tables:      tables,
		Diagnostics: diagnostics,
	}
}

// Failed returns the result of a page that could not be decoded
func Failed(number int, err error, opts Options) Result {
	decodeErr := &PageDecodeError{Page: number, Err: err}
	opts.Logger.Error("page decode failed", "page", number, "error", err)

	md := Placeholder(number)
	if opts.PageMarkers {
		md = markdown.PageMarker(number) + md
	}
	return Result{Number: number, Markdown: md, Err: decodeErr}
}

// Placeholder is emitted in place of an undecodable page
func Placeholder(number int) string {
	return fmt.Sprintf("<!-- S-ERROR: page %d could not be decoded -->\n", number)
}
