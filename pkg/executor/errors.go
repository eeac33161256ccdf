package executor

import "errors"

var (
	// ErrTableNotFound means the statement names a table the catalog does
	// not know.
	ErrTableNotFound = errors.New("table not found")

	// ErrValueCountMismatch means an insert supplies a different number of
	// values than the table has columns.
	ErrValueCountMismatch = errors.New("value count does not match column count")

	// ErrTypeMismatch means an inserted value's type does not match the
	// declared column type. Null is accepted in any column.
	ErrTypeMismatch = errors.New("value type does not match column type")

	// ErrUnknownColumn means a select projects a column the table does not
	// have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrPageFull means the table's page has no room for the encoded row.
	ErrPageFull = errors.New("table page is full")
)
