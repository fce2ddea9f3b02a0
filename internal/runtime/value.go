// Package runtime implements the interpreter and runtime value system for lox-lang.
package runtime

import (
	"cmp"
	"math"
	"strconv"
)

// Value is the interface for all runtime values. The set of values is
// closed: NumberVal, StringVal, BoolVal and ErrorVal.
type Value interface {
	TypeName() string
	String() string
	value()
}

// ---- Primitive values ----

// NumberVal represents a number. All numbers are IEEE doubles.
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }
func (v NumberVal) String() string   { return formatNumber(float64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string   { return strconv.FormatBool(bool(v)) }

// ---- Error values ----

// ErrorKind classifies an ErrorVal.
type ErrorKind int

const (
	InvalidOperands ErrorKind = iota
	UndefinedIdentifier
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidOperands:
		return "invalid operands"
	case UndefinedIdentifier:
		return "undefined identifier"
	default:
		return "unknown error"
	}
}

// ErrorVal is a language-level failure. It is an ordinary value: it flows
// through expressions, can be printed and compared, and is falsy.
type ErrorVal ErrorKind

func (v ErrorVal) TypeName() string { return "error" }
func (v ErrorVal) String() string   { return ErrorKind(v).String() }

// Kind returns the error kind.
func (v ErrorVal) Kind() ErrorKind { return ErrorKind(v) }

func (NumberVal) value() {}
func (StringVal) value() {}
func (BoolVal) value()   {}
func (ErrorVal) value()  {}

// ============================================================
// Helpers
// ============================================================

// IsTruthy reports whether a value counts as true in a condition. Only
// false and error values are falsy; 0 and "" are truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case BoolVal:
		return bool(val)
	case ErrorVal:
		return false
	default:
		return true
	}
}

// formatNumber renders a float in the shortest decimal form that round-trips,
// without an exponent.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareOrdered applies a comparison operator to two ordered operands.
func compareOrdered[T cmp.Ordered](op string, a, b T) (bool, bool) {
	switch op {
	case "==":
		return a == b, true
	case "!=":
		return a != b, true
	case "<":
		return a < b, true
	case "<=":
		return a <= b, true
	case ">":
		return a > b, true
	case ">=":
		return a >= b, true
	default:
		return false, false
	}
}

// compareValues applies a comparison operator to two values of the same
// kind. Booleans order false before true. Error values and mismatched kinds
// yield InvalidOperands.
func compareValues(op string, left, right Value) Value {
	var (
		result bool
		ok     bool
	)

	switch l := left.(type) {
	case NumberVal:
		r, same := right.(NumberVal)
		if !same {
			return ErrorVal(InvalidOperands)
		}
		result, ok = compareOrdered(op, float64(l), float64(r))
	case StringVal:
		r, same := right.(StringVal)
		if !same {
			return ErrorVal(InvalidOperands)
		}
		result, ok = compareOrdered(op, string(l), string(r))
	case BoolVal:
		r, same := right.(BoolVal)
		if !same {
			return ErrorVal(InvalidOperands)
		}
		result, ok = compareOrdered(op, boolToInt(bool(l)), boolToInt(bool(r)))
	default:
		return ErrorVal(InvalidOperands)
	}

	if !ok {
		return ErrorVal(InvalidOperands)
	}
	return BoolVal(result)
}
