package parser

import (
	"bytes"
	"fmt"
)

// Operation is one operator of a content stream with its operands in
// stream order
type Operation struct {
	Operator string
	Operands []PDFObject
}

func (op Operation) String() string {
	return fmt.Sprintf("%v %s", op.Operands, op.Operator)
}

// ParseContent decodes a content stream into its operations. Inline images
// are skipped. Errors are returned only for streams that cannot be
// tokenized; malformed numbers are kept as PDFInvalid operands.
func ParseContent(data []byte) ([]Operation, error) {
	lexer := NewLexer(bytes.NewReader(data))

	var ops []Operation
	var operands []PDFObject

	for {
		token, err := lexer.NextToken()
		if err != nil {
			return ops, fmt.Errorf("offset %d: %w", lexer.Position(), err)
		}

		switch token.Type {
		case TokenEOF:
			return ops, nil

		case TokenKeyword:
			if obj, ok := token.Value.(PDFObject); ok {
				// true, false or null
				operands = append(operands, obj)
				continue
			}

			operator := token.Value.(string)
			if operator == "BI" {
				if err := skipInlineImage(lexer); err != nil {
					return ops, fmt.Errorf("offset %d: %w", lexer.Position(), err)
				}
				operands = nil
				continue
			}

			ops = append(ops, Operation{Operator: operator, Operands: operands})
			operands = nil

		case TokenArrayEnd, TokenDictEnd:
			// stray closers are ignored

		default:
			obj, err := parseToken(token, lexer)
			if err != nil {
				return ops, fmt.Errorf("offset %d: %w", lexer.Position(), err)
			}
			operands = append(operands, obj)
		}
	}
}

// skipInlineImage consumes the image dictionary up to ID and then the
// binary data up to EI
func skipInlineImage(lexer *Lexer) error {
	for {
		token, err := lexer.NextToken()
		if err != nil {
			return err
		}
		switch token.Type {
		case TokenEOF:
			return fmt.Errorf("inline image without ID")
		case TokenKeyword:
			if kw, ok := token.Value.(string); ok && kw == "ID" {
				return lexer.SkipInlineImage()
			}
		}
	}
}

// parseObject parses the next operand object
func parseObject(lexer *Lexer) (PDFObject, error) {
	token, err := lexer.NextToken()
	if err != nil {
		return nil, err
	}
	return parseToken(token, lexer)
}

// parseToken converts a token that has already been read into an object
func parseToken(token *Token, lexer *Lexer) (PDFObject, error) {
	switch token.Type {
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of stream")
	case TokenNumber:
		return token.Value.(PDFObject), nil
	case TokenString, TokenHexString:
		return token.Value.(PDFString), nil
	case TokenName:
		return token.Value.(PDFName), nil
	case TokenKeyword:
		if obj, ok := token.Value.(PDFObject); ok {
			return obj, nil
		}
		// bare keywords inside arrays or dictionaries are kept as names
		return PDFName(token.Value.(string)), nil
	case TokenArrayStart:
		return parseArray(lexer)
	case TokenDictStart:
		return parseDict(lexer)
	default:
		return nil, fmt.Errorf("unexpected token type: %v", token.Type)
	}
}

// parseArray parses an array after its opening bracket
func parseArray(lexer *Lexer) (PDFArray, error) {
	array := PDFArray{}

	for {
		token, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}

		switch token.Type {
		case TokenArrayEnd:
			return array, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated array")
		}

		obj, err := parseToken(token, lexer)
		if err != nil {
			return nil, err
		}
		array = append(array, obj)
	}
}

// parseDict parses a dictionary after its opening delimiter
func parseDict(lexer *Lexer) (PDFDict, error) {
	dict := make(PDFDict)

	for {
		token, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}

		switch token.Type {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary")
		case TokenName:
		default:
			return nil, fmt.Errorf("expected name for dict key, got %v (value: %v)", token.Type, token.Value)
		}
		key := token.Value.(PDFName)

		value, err := parseObject(lexer)
		if err != nil {
			return nil, fmt.Errorf("error parsing value for key %s: %w", key, err)
		}

		dict[key] = value
	}
}
