package catalog

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// DataType is the declared type of a column. The constant values are also the
// on-disk type tags, so they must not be reordered.
type DataType uint8

const (
	TypeInteger DataType = 0
	TypeText    DataType = 1
	TypeBoolean DataType = 2
	TypeNull    DataType = 3
)

// String returns the SQL spelling of the type
func (t DataType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeText:
		return "TEXT"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeNull:
		return "NULL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// Column is a named, typed position in a schema
type Column struct {
	Name string
	Type DataType
}

// Schema is the ordered column definition of a table
type Schema struct {
	Table   string
	Columns []Column
}

// NewSchema creates a schema for a table
func NewSchema(table string, columns []Column) Schema {
	return Schema{Table: table, Columns: columns}
}

// ColumnNames returns the column names in schema order
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of the named column
func (s Schema) ColumnIndex(name string) (int, bool) {
	for i, col := range s.Columns {
		if col.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Encode serializes the schema: table name (u32 length + UTF-8), column
// count, then per column the name (u32 length + UTF-8) and a 1-byte type tag.
// All integers are little-endian.
func (s Schema) Encode() []byte {
	var buf []byte

	buf = appendString(buf, s.Table)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Columns)))

	for _, col := range s.Columns {
		buf = appendString(buf, col.Name)
		buf = append(buf, byte(col.Type))
	}

	return buf
}

// DecodeSchema deserializes a schema from the front of buf and reports how
// many bytes it consumed, so schemas can be packed sequentially.
func DecodeSchema(buf []byte) (Schema, int, error) {
	offset := 0

	table, n, err := readString(buf[offset:], "table name")
	if err != nil {
		return Schema{}, 0, err
	}
	offset += n

	if len(buf) < offset+4 {
		return Schema{}, 0, fmt.Errorf("%w reading column count", ErrTruncatedData)
	}
	numColumns := int(binary.LittleEndian.Uint32(buf[offset : offset+4]))
	offset += 4

	// The count comes off the page unvalidated; never preallocate more than
	// the remaining bytes could encode (5 bytes minimum per column).
	capHint := numColumns
	if max := (len(buf) - offset) / 5; capHint > max {
		capHint = max
	}
	columns := make([]Column, 0, capHint)
	for i := 0; i < numColumns; i++ {
		name, n, err := readString(buf[offset:], "column name")
		if err != nil {
			return Schema{}, 0, err
		}
		offset += n

		if len(buf) < offset+1 {
			return Schema{}, 0, fmt.Errorf("%w reading column type", ErrTruncatedData)
		}
		tag := buf[offset]
		offset++

		if tag > uint8(TypeNull) {
			return Schema{}, 0, fmt.Errorf("%w: %d for column %q", ErrUnknownTypeTag, tag, name)
		}

		columns = append(columns, Column{Name: name, Type: DataType(tag)})
	}

	return Schema{Table: table, Columns: columns}, offset, nil
}

// appendString appends a u32 little-endian length prefix followed by the bytes
func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// readString decodes a length-prefixed UTF-8 string from the front of buf
func readString(buf []byte, what string) (string, int, error) {
	if len(buf) < 4 {
		return "", 0, fmt.Errorf("%w reading %s length", ErrTruncatedData, what)
	}
	length := int(binary.LittleEndian.Uint32(buf[0:4]))

	if len(buf) < 4+length {
		return "", 0, fmt.Errorf("%w reading %s", ErrTruncatedData, what)
	}
	raw := buf[4 : 4+length]

	if !utf8.Valid(raw) {
		return "", 0, fmt.Errorf("%w in %s", ErrInvalidUTF8, what)
	}

	return string(raw), 4 + length, nil
}
