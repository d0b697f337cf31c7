package minilogic

import "fmt"

// Value represents a symbolic or concrete value of a boxed expression.
type Value interface {
	isValue()
	String() string
	Equal(other Value) bool
}

// IntValue represents an integer constant.
type IntValue struct {
	Val int64
}

func (IntValue) isValue() {}
func (v IntValue) String() string {
	return fmt.Sprintf("%d", v.Val)
}

func (v IntValue) Equal(other Value) bool {
	if o, ok := other.(IntValue); ok {
		return v.Val == o.Val
	}
	return false
}

// BoolValue represents a boolean constant.
type BoolValue struct {
	Val bool
}

func (BoolValue) isValue() {}
func (v BoolValue) String() string {
	return fmt.Sprintf("%t", v.Val)
}

func (v BoolValue) Equal(other Value) bool {
	if o, ok := other.(BoolValue); ok {
		return v.Val == o.Val
	}
	return false
}

// NullValue represents the null reference.
type NullValue struct{}

func (NullValue) isValue() {}
func (NullValue) String() string {
	return "null"
}

func (v NullValue) Equal(other Value) bool {
	_, ok := other.(NullValue)
	return ok
}

// SymbolicValue represents a value that cannot be determined statically.
type SymbolicValue struct {
	Name string
}

func (SymbolicValue) isValue() {}
func (v SymbolicValue) String() string {
	return fmt.Sprintf("<%s>", v.Name)
}

func (v SymbolicValue) Equal(other Value) bool {
	if o, ok := other.(SymbolicValue); ok {
		return v.Name == o.Name
	}
	return false
}

// IsConstant reports whether v is a concrete literal value.
func IsConstant(v Value) bool {
	switch v.(type) {
	case IntValue, BoolValue, NullValue:
		return true
	default:
		return false
	}
}

// Truth returns the boolean reading of a constant.
// Integers are true when non-zero, null is false.
// The second result is false for symbolic values.
func Truth(v Value) (bool, bool) {
	switch val := v.(type) {
	case BoolValue:
		return val.Val, true
	case IntValue:
		return val.Val != 0, true
	case NullValue:
		return false, true
	default:
		return false, false
	}
}

// asInt widens booleans and null to integers, the way the
// evaluation stack treats them.
func asInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case IntValue:
		return val.Val, true
	case BoolValue:
		if val.Val {
			return 1, true
		}
		return 0, true
	case NullValue:
		return 0, true
	default:
		return 0, false
	}
}
