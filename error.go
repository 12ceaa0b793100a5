package forwarded

import (
	"errors"
	"strconv"
)

var (
	// ErrUnexpectedCharacter is the kind of a ParseError raised at a
	// character the grammar does not allow in the current position.
	ErrUnexpectedCharacter = errors.New("unexpected character")

	// ErrUnexpectedEndOfInput is the kind of a ParseError raised when the
	// input ends before a complete name=value pair was read.
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
)

// ParseError is returned by the parsing functions on malformed input.
//
// Use errors.Is with ErrUnexpectedCharacter or ErrUnexpectedEndOfInput
// to tell the two kinds apart.
type ParseError struct {
	// Input is the header value being parsed.
	Input string

	// Message describes the fault without the position suffix.
	Message string

	// Index is the zero-based byte offset of the offending character.
	// It is -1 when the input ended prematurely. Error always reports a
	// non-negative Index, including "at index 0".
	Index int

	kind error
}

func unexpectedCharacter(b []byte, i, n int) *ParseError {
	return &ParseError{
		Input:   string(b),
		Message: "Unexpected character '" + string(b[i:i+n]) + "'",
		Index:   i,
		kind:    ErrUnexpectedCharacter,
	}
}

func unexpectedEndOfInput(b []byte) *ParseError {
	return &ParseError{
		Input:   string(b),
		Message: "Unexpected end of input",
		Index:   -1,
		kind:    ErrUnexpectedEndOfInput,
	}
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return e.Message
	}
	return e.Message + " at index " + strconv.Itoa(e.Index)
}

// Unwrap returns ErrUnexpectedCharacter or ErrUnexpectedEndOfInput.
func (e *ParseError) Unwrap() error {
	return e.kind
}
