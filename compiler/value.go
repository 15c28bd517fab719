package compiler

import "github.com/chazu/ember/bytecode"

// Kind discriminates the variant held by a Value. Value mirrors the
// flat tagged-struct shape of bytecode.Operand, since it sits in the
// same hot lowering path.
type Kind uint8

const (
	// KindEmpty means a statement produced no value; it must never reach
	// a caller that expects one (wrapResult traps this).
	KindEmpty Kind = iota
	// KindRef is a known-runtime value; Ref names the producing
	// instruction.
	KindRef
	// KindMut is a runtime value bound to a mutable storage slot:
	// assignment and argument passing copy it instead of moving it.
	KindMut
	KindNull
	KindInt
	KindNum
	KindBool
	KindStr
)

// Value is the compiler's compile-time/runtime value union. KindRef
// and KindMut are the only runtime variants; the rest are known
// constants available for folding.
type Value struct {
	Kind Kind

	Ref bytecode.Ref // KindRef, KindMut

	Int  int64
	Num  float64
	Bool bool
	Str  string
}

func Empty() Value { return Value{Kind: KindEmpty} }
func RefValue(r bytecode.Ref) Value { return Value{Kind: KindRef, Ref: r} }
func MutValue(r bytecode.Ref) Value { return Value{Kind: KindMut, Ref: r} }
func NullValue() Value { return Value{Kind: KindNull} }
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }
func NumValue(v float64) Value { return Value{Kind: KindNum, Num: v} }
func BoolValue(v bool) Value { return Value{Kind: KindBool, Bool: v} }
func StrValue(s string) Value { return Value{Kind: KindStr, Str: s} }

// IsConst reports whether v is a known compile-time constant.
func (v Value) IsConst() bool {
	switch v.Kind {
	case KindNull, KindInt, KindNum, KindBool, KindStr:
		return true
	default:
		return false
	}
}

// IsRuntime reports whether v names a value only known at runtime.
func (v Value) IsRuntime() bool {
	return v.Kind == KindRef || v.Kind == KindMut
}

// ModeKind discriminates a ResultMode variant.
type ModeKind uint8

const (
	ModeDiscard ModeKind = iota
	ModeValue
	ModeRef
)

// ResultMode is the caller's expectation for a lowered expression.
type ResultMode struct {
	Kind   ModeKind
	Target bytecode.Ref // for ModeRef
}

func Discard() ResultMode { return ResultMode{Kind: ModeDiscard} }
func AnyValue() ResultMode { return ResultMode{Kind: ModeValue} }
func IntoRef(r bytecode.Ref) ResultMode {
	return ResultMode{Kind: ModeRef, Target: r}
}
