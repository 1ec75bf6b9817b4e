package record

import (
	"bytes"
	"time"
)

// Value is a sealed interface over the scalar kinds a database column can
// hold. Only Null, Bool, Int, Float, String, Time, and Bytes implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents a SQL NULL.
// Using an explicit type keeps nil out of the value model entirely.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean column value.
type Bool bool

func (Bool) value() {}

// Int represents an integer column value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point column value.
type Float float64

func (Float) value() {}

// String represents a text column value.
type String string

func (String) value() {}

// Time represents a date/time column value.
// Always held in UTC so equality and encoding are zone-independent.
type Time struct {
	t time.Time
}

func (Time) value() {}

// NewTime creates a Time value normalized to UTC.
func NewTime(t time.Time) Time {
	return Time{t: t.UTC()}
}

// Std returns the underlying time.Time (UTC).
func (t Time) Std() time.Time {
	return t.t
}

// Bytes represents a binary column value.
type Bytes []byte

func (Bytes) value() {}

// ValuesEqual reports whether two values are equal.
// Values of different kinds are never equal; in particular Int(1) and
// Float(1.0) are distinct, matching the distinction the codec preserves.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && av.t.Equal(bv.t)
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	default:
		return false
	}
}
