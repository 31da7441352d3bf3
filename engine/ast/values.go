package ast

import "strconv"

// Value is a sealed interface over the literal types a query may carry.
// Only StringValue, IntValue, LongValue, DoubleValue, BooleanValue and
// NullValue implement it. Literals always travel through this type so that
// translators bind them as parameters instead of splicing them into command
// text.
type Value interface {
	value()
}

// StringValue represents a string literal.
type StringValue string

func (StringValue) value() {}

// IntValue represents a 32-bit integer literal.
type IntValue int32

func (IntValue) value() {}

// LongValue represents a 64-bit integer literal.
type LongValue int64

func (LongValue) value() {}

// DoubleValue represents a floating-point literal.
type DoubleValue float64

func (DoubleValue) value() {}

// BooleanValue represents a boolean literal.
type BooleanValue bool

func (BooleanValue) value() {}

// NullValue represents SQL NULL / JSON null.
type NullValue struct{}

func (NullValue) value() {}

// Native converts a Value to the Go type a database/sql or JSON encoder
// expects. NullValue becomes an untyped nil.
func Native(v Value) any {
	switch val := v.(type) {
	case StringValue:
		return string(val)
	case IntValue:
		return int64(val)
	case LongValue:
		return int64(val)
	case DoubleValue:
		return float64(val)
	case BooleanValue:
		return bool(val)
	case NullValue:
		return nil
	default:
		return nil
	}
}

// Format renders a Value as the plain text used in filter query strings.
func Format(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return string(val)
	case IntValue:
		return strconv.FormatInt(int64(val), 10)
	case LongValue:
		return strconv.FormatInt(int64(val), 10)
	case DoubleValue:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case BooleanValue:
		return strconv.FormatBool(bool(val))
	case NullValue:
		return "null"
	default:
		return ""
	}
}
