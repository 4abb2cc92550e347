package pdf

import (
	"fmt"
	"os"
)

// Backend names
const (
	BackendAuto       = "auto"
	BackendPDFCPU     = "pdfcpu"
	BackendLedongthuc = "ledongthuc"
	BackendDslipak    = "dslipak"
)

// backendOrder is the fallback chain tried by Open in auto mode
var backendOrder = []string{BackendPDFCPU, BackendLedongthuc, BackendDslipak}

type openOptions struct {
	backend string
	strict  bool
}

// OpenOption configures Open
type OpenOption func(*openOptions)

// WithBackend pins a single backend. BackendAuto or an empty name tries
// every backend in order.
func WithBackend(name string) OpenOption {
	return func(o *openOptions) {
		o.backend = name
	}
}

// WithStrict enables strict validation in backends that support it
func WithStrict(strict bool) OpenOption {
	return func(o *openOptions) {
		o.strict = strict
	}
}

// Open parses an in-memory PDF. Backends are tried in order until one
// succeeds; when all fail the returned *DocumentLoadError carries every
// failure.
func Open(data []byte, opts ...OpenOption) (Document, error) {
	o := openOptions{backend: BackendAuto}
	for _, opt := range opts {
		opt(&o)
	}

	backends := backendOrder
	if o.backend != "" && o.backend != BackendAuto {
		backends = []string{o.backend}
	}

	causes := make(map[string]error)
	for _, name := range backends {
		doc, err := openWith(name, data, o.strict)
		if err == nil {
			return doc, nil
		}
		causes[name] = err
	}

	return nil, &DocumentLoadError{Causes: causes}
}

// OpenFile reads a PDF file from disk and opens it with Open
func OpenFile(path string, opts ...OpenOption) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Open(data, opts...)
}

func openWith(name string, data []byte, strict bool) (Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	switch name {
	case BackendPDFCPU:
		doc, err := OpenWithPDFCPU(data, strict)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case BackendLedongthuc:
		doc, err := OpenWithLedongthuc(data)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case BackendDslipak:
		doc, err := OpenWithDslipak(data)
		if err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// recoverBackend converts a panic inside a backend library into an error.
// The rsc derived readers panic on malformed objects.
func recoverBackend(backend string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: malformed document: %v", backend, r)
	}
}
