package storage

import "encoding/binary"

const (
	// PageSize is the size of each page (4KB, typical OS page size)
	PageSize = 4096

	// MagicNumber identifies a HozonDB data file ("HOZN", little-endian)
	MagicNumber uint32 = 0x484F5A4E

	// FileHeaderSize covers the magic number and the page count
	FileHeaderSize = 8

	// TableMetaSize is the size of the per-page metadata header on data pages
	// [1-byte is-full][2-byte free offset][2-byte row count]
	TableMetaSize = 5
)

// PageID is a unique identifier for a page
type PageID uint32

// Reserved page ids. Pages at or beyond FirstDataPageID hold table rows.
const (
	HeaderPageID    PageID = 0
	CatalogPageID   PageID = 1
	FirstDataPageID PageID = 2
)

// TableMeta is the metadata header embedded in the first bytes of a data page.
// FreeOffset is where the next row is appended, so it starts at TableMetaSize.
type TableMeta struct {
	IsFull     bool
	FreeOffset uint16
	RowCount   uint16
}

// NewTableMeta returns the metadata of an empty data page
func NewTableMeta() TableMeta {
	return TableMeta{FreeOffset: TableMetaSize}
}

// ReadTableMeta decodes the metadata header from a data page buffer
func ReadTableMeta(page []byte) TableMeta {
	return TableMeta{
		IsFull:     page[0] != 0,
		FreeOffset: binary.LittleEndian.Uint16(page[1:3]),
		RowCount:   binary.LittleEndian.Uint16(page[3:5]),
	}
}

// WriteTableMeta encodes the metadata header into a data page buffer,
// leaving the data region untouched
func WriteTableMeta(page []byte, meta TableMeta) {
	if meta.IsFull {
		page[0] = 1
	} else {
		page[0] = 0
	}
	binary.LittleEndian.PutUint16(page[1:3], meta.FreeOffset)
	binary.LittleEndian.PutUint16(page[3:5], meta.RowCount)
}

// FreeSpace returns the number of bytes left in the data region
func (m TableMeta) FreeSpace() int {
	return PageSize - int(m.FreeOffset)
}
