package pdf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDocumentLoad is matched by every DocumentLoadError
	ErrDocumentLoad = errors.New("input could not be parsed as PDF")

	ErrPageOutOfRange  = errors.New("page number out of range")
	ErrNoXObjects      = errors.New("resources have no XObject dictionary")
	ErrXObjectNotFound = errors.New("xobject not found")
)

// DocumentLoadError reports that no backend could open the input.
// It carries the failure of every backend that was tried.
type DocumentLoadError struct {
	Causes map[string]error
}

func (e *DocumentLoadError) Error() string {
	if len(e.Causes) == 0 {
		return ErrDocumentLoad.Error()
	}
	parts := make([]string, 0, len(e.Causes))
	for _, name := range backendOrder {
		if err, ok := e.Causes[name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", name, err))
		}
	}
	return fmt.Sprintf("%s (%s)", ErrDocumentLoad, strings.Join(parts, "; "))
}

func (e *DocumentLoadError) Is(target error) bool {
	return target == ErrDocumentLoad
}

// Unwrap returns the backend failures in trial order
func (e *DocumentLoadError) Unwrap() []error {
	var errs []error
	for _, name := range backendOrder {
		if err, ok := e.Causes[name]; ok {
			errs = append(errs, err)
		}
	}
	return errs
}
