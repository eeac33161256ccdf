package catalog

import "errors"

var (
	// ErrTruncatedData is returned when a buffer ends before a codec field does
	ErrTruncatedData = errors.New("unexpected end of data")

	// ErrInvalidUTF8 is returned when a decoded string is not valid UTF-8
	ErrInvalidUTF8 = errors.New("invalid UTF-8")

	// ErrUnknownTypeTag is returned when a schema carries an unrecognized
	// column type tag. This is a reported decode failure, not an abort, so a
	// corrupted catalog entry can never take the whole process down.
	ErrUnknownTypeTag = errors.New("unknown data type tag")

	// ErrUnknownValueTag is returned when row data carries an unrecognized value tag
	ErrUnknownValueTag = errors.New("unknown value tag")
)
