package content

import (
	"errors"
	"fmt"
)

var (
	ErrMissingOperand = errors.New("missing operand")
	ErrBadOperand     = errors.New("malformed operand")
	ErrUnknownFont    = errors.New("font alias not in resources")
	ErrNoResources    = errors.New("no resource dictionary")
	ErrRecursion      = errors.New("xobject recursion")
)

// OperatorError reports an operator that was skipped. Interpretation
// continues with the next operator.
type OperatorError struct {
	Page     int
	Operator string
	Err      error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("page %d: operator %s: %v", e.Page, e.Operator, e.Err)
}

func (e *OperatorError) Unwrap() error {
	return e.Err
}
