package log

import (
	"fmt"
	"strconv"
	"strings"
)

type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeInt
	FieldTypeUint
	FieldTypeHex
	FieldTypeError
	FieldTypeStringer
)

// A ZField is a typed key/value pair of an EntryZ. Values are only formatted
// when the entry is emitted.
type ZField struct {
	Type FieldType
	Key  string

	// Number of hex digits of FieldTypeHex values.
	Digits int

	String    string
	Integer   uint64
	Error     error
	Interface fmt.Stringer
	Boolean   bool
}

func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Boolean)
	case FieldTypeString:
		return f.String
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeHex:
		s := strconv.FormatUint(f.Integer, 16)
		if pad := f.Digits - len(s); pad > 0 {
			s = strings.Repeat("0", pad) + s
		}
		return s
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeStringer:
		if f.Interface == nil {
			return "<nil>"
		}
		return f.Interface.String()
	}
	return ""
}
