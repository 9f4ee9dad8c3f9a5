package ast

import (
	"strconv"
	"strings"
)

// Heap scripts are lists of commands such as (link a b). The reader only
// produces integers, symbols and proper lists; improper lists never come
// out of the parser but still print.

// Tag represents the type of a Value
type Tag int

const (
	TInt Tag = iota
	TSym
	TCell
	TNil
)

// Value is a heap-script datum
type Value struct {
	Tag Tag
	Int int64  // TInt
	Str string // TSym
	Car *Value // TCell
	Cdr *Value // TCell
}

// Nil is the empty list
var Nil = &Value{Tag: TNil}

// NewInt creates an integer value
func NewInt(i int64) *Value {
	return &Value{Tag: TInt, Int: i}
}

// NewSym creates a symbol value
func NewSym(s string) *Value {
	return &Value{Tag: TSym, Str: s}
}

// NewCell creates a cons cell
func NewCell(car, cdr *Value) *Value {
	return &Value{Tag: TCell, Car: car, Cdr: cdr}
}

// IsNil reports whether v is the empty list (or a nil pointer)
func IsNil(v *Value) bool {
	return v == nil || v.Tag == TNil
}

// IsSym reports whether v is a symbol
func IsSym(v *Value) bool {
	return v != nil && v.Tag == TSym
}

// IsCell reports whether v is a cons cell
func IsCell(v *Value) bool {
	return v != nil && v.Tag == TCell
}

// ListLen counts the cells of a list, stopping at the first non-cell
func ListLen(v *Value) int {
	n := 0
	for ; IsCell(v); v = v.Cdr {
		n++
	}
	return n
}

// ListToSlice returns the elements of a list
func ListToSlice(v *Value) []*Value {
	items := make([]*Value, 0, ListLen(v))
	for ; IsCell(v); v = v.Cdr {
		items = append(items, v.Car)
	}
	return items
}

// SliceToList builds a proper list from items
func SliceToList(items []*Value) *Value {
	list := Nil
	for i := len(items) - 1; i >= 0; i-- {
		list = NewCell(items[i], list)
	}
	return list
}

// String renders v the way the parser reads it
func (v *Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v *Value) write(sb *strings.Builder) {
	switch {
	case v == nil:
		sb.WriteString("nil")
	case v.Tag == TInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case v.Tag == TSym:
		sb.WriteString(v.Str)
	case v.Tag == TNil:
		sb.WriteString("()")
	case v.Tag == TCell:
		sb.WriteByte('(')
		for cur := v; ; {
			cur.Car.write(sb)
			cur = cur.Cdr
			if IsNil(cur) {
				break
			}
			if !IsCell(cur) {
				sb.WriteString(" . ")
				cur.write(sb)
				break
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte(')')
	default:
		sb.WriteString("?")
	}
}
