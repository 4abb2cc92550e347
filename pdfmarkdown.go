// Package pdfmarkdown converts PDF documents to markdown by interpreting
// page content streams, detecting ruled tables and reconstructing reading
// order
package pdfmarkdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/content"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/page"
	"github.com/pyhub-apps/pdfmarkdown-golang/pkg/pdf"
)

// Re-export types for the public API
type (
	Document          = pdf.Document
	TextRun           = pdf.TextRun
	LineSegment       = pdf.LineSegment
	Unit              = pdf.Unit
	DocumentLoadError = pdf.DocumentLoadError
	PageDecodeError   = page.PageDecodeError
	OperatorError     = content.OperatorError
)

// ErrDocumentLoad is matched by every DocumentLoadError
var ErrDocumentLoad = pdf.ErrDocumentLoad

// PageSummary describes how one page was converted
type PageSummary struct {
	Number      int   `json:"number" yaml:"number"`
	Units       int   `json:"units" yaml:"units"`
	Tables      int   `json:"tables" yaml:"tables"`
	Diagnostics int   `json:"diagnostics" yaml:"diagnostics"`
	Err         error `json:"-" yaml:"-"`
}

// Result is a converted document
type Result struct {
	Markdown    string
	Pages       []PageSummary
	Diagnostics []error
}

// Convert converts an in-memory PDF. A nil cfg uses NewDefaultConfig.
func Convert(ctx context.Context, data []byte, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	doc, err := pdf.Open(data,
		pdf.WithBackend(cfg.Backend),
		pdf.WithStrict(cfg.ParsingMode == Strict),
	)
	if err != nil {
		cfg.Logger.Error("failed to open document", "error", err)
		return nil, err
	}
	defer doc.Close()

	cfg.Logger.Info("document opened", "backend", doc.Backend(), "pages", doc.PageCount())
	return ConvertDocument(ctx, doc, cfg)
}

// ConvertFile reads and converts the PDF at path
func ConvertFile(ctx context.Context, path string, cfg *Config) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Convert(ctx, data, cfg)
}

// ConvertDocument converts an opened document. Pages are processed
// concurrently and concatenated in document order.
func ConvertDocument(ctx context.Context, doc Document, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	total := doc.PageCount()
	opts := cfg.pageOptions()
	results := make([]page.Result, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		number := i + 1
		g.Go(func() error {
			p, err := doc.Page(number)
			if err != nil {
				results[i] = page.Failed(number, err, opts)
			} else {
				results[i] = page.Process(gctx, p, opts)
			}

			err = results[i].Err
			var decodeErr *page.PageDecodeError
			if errors.As(err, &decodeErr) && cfg.ParsingMode == BestEffort {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var md strings.Builder
	result := &Result{Pages: make([]PageSummary, 0, total)}
	for _, r := range results {
		md.WriteString(r.Markdown)
		result.Pages = append(result.Pages, PageSummary{
			Number:      r.Number,
			Units:       len(r.Units),
			Tables:      len(r.Tables),
			Diagnostics: len(r.Diagnostics),
			Err:         r.Err,
		})
		if r.Err != nil {
			result.Diagnostics = append(result.Diagnostics, r.Err)
		}
		result.Diagnostics = append(result.Diagnostics, r.Diagnostics...)
	}
	result.Markdown = md.String()

	cfg.Logger.Info("conversion finished", "pages", total, "diagnostics", len(result.Diagnostics))
	return result, nil
}
