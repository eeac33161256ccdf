package storage

import "errors"

var (
	// ErrDatabaseBusy means another handle holds the file's lock marker.
	ErrDatabaseBusy = errors.New("database is locked by another process")

	// ErrInvalidMagic means the file header does not carry the expected
	// magic number; the file is not a database file or is corrupt.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrPageOutOfRange means a page id at or beyond the current page count.
	ErrPageOutOfRange = errors.New("page id out of range")

	// ErrPageTooLarge means a write payload longer than one page.
	ErrPageTooLarge = errors.New("page data exceeds page size")
)
