package sql

import "errors"

var (
	// ErrUnexpectedChar means the tokenizer hit a character outside the
	// grammar's alphabet.
	ErrUnexpectedChar = errors.New("unexpected character")

	// ErrUnterminatedString means a quoted string literal was not closed
	// before the end of input.
	ErrUnterminatedString = errors.New("unterminated string literal")

	// ErrIntegerOutOfRange means an integer literal does not fit 32 bits.
	ErrIntegerOutOfRange = errors.New("integer literal out of range")

	// ErrUnexpectedToken means the parser saw a token that does not fit the
	// statement grammar at that position.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnexpectedEOF means a statement ended before it was complete.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)
