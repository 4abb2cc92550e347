package parser

import (
	"fmt"
)

// PDFObject represents any PDF object that can appear as an operand
type PDFObject interface {
	Type() string
}

// PDFNull represents a null object
type PDFNull struct{}

func (PDFNull) Type() string { return "null" }

// PDFBool represents a boolean object
type PDFBool bool

func (PDFBool) Type() string { return "bool" }

// PDFInt represents an integer object
type PDFInt int64

func (PDFInt) Type() string { return "int" }

// PDFFloat represents a floating-point object
type PDFFloat float64

func (PDFFloat) Type() string { return "float" }

// PDFString represents a string object
type PDFString []byte

func (PDFString) Type() string { return "string" }

// PDFName represents a name object
type PDFName string

func (PDFName) Type() string { return "name" }

// PDFArray represents an array object
type PDFArray []PDFObject

func (PDFArray) Type() string { return "array" }

// PDFDict represents a dictionary object
type PDFDict map[PDFName]PDFObject

func (PDFDict) Type() string { return "dict" }

// PDFInvalid is a token that looked like a number but could not be
// parsed. It is kept as an operand so the operator can report it.
type PDFInvalid struct {
	Raw string
}

func (PDFInvalid) Type() string { return "invalid" }

func (i PDFInvalid) String() string {
	return fmt.Sprintf("invalid token %q", i.Raw)
}

// Get retrieves a value from the dictionary
func (d PDFDict) Get(key PDFName) PDFObject {
	return d[key]
}

// GetName retrieves a name value from the dictionary
func (d PDFDict) GetName(key PDFName) (PDFName, bool) {
	if obj, ok := d[key]; ok {
		if name, ok := obj.(PDFName); ok {
			return name, true
		}
	}
	return "", false
}

// GetString retrieves a string value from the dictionary
func (d PDFDict) GetString(key PDFName) (PDFString, bool) {
	if obj, ok := d[key]; ok {
		if s, ok := obj.(PDFString); ok {
			return s, true
		}
	}
	return nil, false
}

// GetArray retrieves an array value from the dictionary
func (d PDFDict) GetArray(key PDFName) (PDFArray, bool) {
	if obj, ok := d[key]; ok {
		if arr, ok := obj.(PDFArray); ok {
			return arr, true
		}
	}
	return nil, false
}

// GetDict retrieves a dictionary value from the dictionary
func (d PDFDict) GetDict(key PDFName) (PDFDict, bool) {
	if obj, ok := d[key]; ok {
		if dict, ok := obj.(PDFDict); ok {
			return dict, true
		}
	}
	return nil, false
}

// Number converts an integer or real operand to float64
func Number(obj PDFObject) (float64, bool) {
	switch v := obj.(type) {
	case PDFInt:
		return float64(v), true
	case PDFFloat:
		return float64(v), true
	default:
		return 0, false
	}
}
