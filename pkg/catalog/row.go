package catalog

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// On-disk value tags. Rows are a sequence of tagged values closed by a single
// zero byte, so partially filled pages stay decodable.
const (
	rowTerminator   = 0
	tagValueInteger = 1
	tagValueText    = 2
	tagValueBoolean = 3
	tagValueNull    = 4
)

// Value is a single typed cell. Exactly one of the payload fields is
// meaningful, selected by Type; TypeNull carries no payload at all.
type Value struct {
	Type DataType
	Int  int32
	Text string
	Bool bool
}

// NewIntegerValue creates an integer value
func NewIntegerValue(v int32) Value {
	return Value{Type: TypeInteger, Int: v}
}

// NewTextValue creates a text value
func NewTextValue(s string) Value {
	return Value{Type: TypeText, Text: s}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

// NewNullValue creates a null value
func NewNullValue() Value {
	return Value{Type: TypeNull}
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// String renders the value the way the shell shows it
func (v Value) String() string {
	switch v.Type {
	case TypeInteger:
		return strconv.FormatInt(int64(v.Int), 10)
	case TypeText:
		return v.Text
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeNull:
		return "NULL"
	default:
		return fmt.Sprintf("<invalid value type %d>", uint8(v.Type))
	}
}

// Native returns the value as a plain Go value, with null as nil. Used by the
// JSON-facing surfaces (HTTP, WebSocket, GraphQL).
func (v Value) Native() interface{} {
	switch v.Type {
	case TypeInteger:
		return v.Int
	case TypeText:
		return v.Text
	case TypeBoolean:
		return v.Bool
	default:
		return nil
	}
}

// Row is an ordered tuple of values conforming to a table's schema
type Row struct {
	Values []Value
}

// NewRow creates a row from values
func NewRow(values []Value) Row {
	return Row{Values: values}
}

// Encode serializes the row as tagged values closed by a terminator byte
func (r Row) Encode() []byte {
	var buf []byte

	for _, v := range r.Values {
		switch v.Type {
		case TypeInteger:
			buf = append(buf, tagValueInteger)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Int))
		case TypeText:
			buf = append(buf, tagValueText)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Text)))
			buf = append(buf, v.Text...)
		case TypeBoolean:
			buf = append(buf, tagValueBoolean)
			if v.Bool {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case TypeNull:
			buf = append(buf, tagValueNull)
		}
	}

	return append(buf, rowTerminator)
}

// DecodeRow deserializes one row from the front of buf, scanning tag by tag
// until the terminator or the end of the buffer, and reports the bytes
// consumed so many rows can be pulled sequentially out of one page.
func DecodeRow(buf []byte) (Row, int, error) {
	var values []Value
	offset := 0

	for offset < len(buf) {
		tag := buf[offset]
		offset++

		switch tag {
		case rowTerminator:
			return Row{Values: values}, offset, nil

		case tagValueInteger:
			if len(buf) < offset+4 {
				return Row{}, 0, fmt.Errorf("%w reading integer value", ErrTruncatedData)
			}
			v := int32(binary.LittleEndian.Uint32(buf[offset : offset+4]))
			values = append(values, NewIntegerValue(v))
			offset += 4

		case tagValueText:
			if len(buf) < offset+4 {
				return Row{}, 0, fmt.Errorf("%w reading text length", ErrTruncatedData)
			}
			length := int(binary.LittleEndian.Uint32(buf[offset : offset+4]))
			offset += 4

			if len(buf) < offset+length {
				return Row{}, 0, fmt.Errorf("%w reading text value", ErrTruncatedData)
			}
			raw := buf[offset : offset+length]
			if !utf8.Valid(raw) {
				return Row{}, 0, fmt.Errorf("%w in text value", ErrInvalidUTF8)
			}
			values = append(values, NewTextValue(string(raw)))
			offset += length

		case tagValueBoolean:
			if len(buf) < offset+1 {
				return Row{}, 0, fmt.Errorf("%w reading boolean value", ErrTruncatedData)
			}
			values = append(values, NewBooleanValue(buf[offset] != 0))
			offset++

		case tagValueNull:
			values = append(values, NewNullValue())

		default:
			return Row{}, 0, fmt.Errorf("%w: %d at offset %d", ErrUnknownValueTag, tag, offset-1)
		}
	}

	return Row{Values: values}, offset, nil
}
