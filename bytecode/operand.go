package bytecode

// OperandKind discriminates the variant held by an Operand. Operand is
// a flat struct with a Kind tag and one field per variant payload
// rather than an interface: it sits in the hot lowering path and must
// stay copyable by value and CBOR-friendly.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandUn
	OperandBin
	OperandJump
	OperandJumpCond
	OperandInt
	OperandNum
	OperandStr
	OperandTyBin
	OperandExtra
	OperandIdx
)

// Operand is the tagged payload of an Instruction. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Operand struct {
	Kind OperandKind

	A, B Ref // Bin uses both; Un, TyBin and JumpCond (the condition) use A

	// Offset is the code-stream target for Jump/JumpCond, in code-stream
	// index units. -1 until PatchJump fills it in.
	Offset int

	Int int64
	Num float64

	// StrOffset/StrLen address bytes in the Interner's buffer.
	StrOffset uint32
	StrLen    uint32

	Type TypeTag // for TyBin

	// ExtraStart/ExtraLen address a slice of the ExtraBuffer.
	ExtraStart int
	ExtraLen   int

	// Idx is a plain integer operand (e.g. a capture ordinal).
	Idx int
}

// None builds a no-operand payload.
func None() Operand { return Operand{Kind: OperandNone} }

// Un builds a single-Ref operand.
func Un(r Ref) Operand { return Operand{Kind: OperandUn, A: r} }

// Bin builds a two-Ref operand.
func Bin(a, b Ref) Operand { return Operand{Kind: OperandBin, A: a, B: b} }

// Jump builds an unconditional-jump operand with an unpatched offset.
func Jump() Operand { return Operand{Kind: OperandJump, Offset: -1} }

// JumpCond builds a conditional-jump operand with an unpatched offset.
func JumpCond(cond Ref) Operand {
	return Operand{Kind: OperandJumpCond, A: cond, Offset: -1}
}

// IntOperand builds a compile-time integer constant payload.
func IntOperand(v int64) Operand { return Operand{Kind: OperandInt, Int: v} }

// NumOperand builds a compile-time float constant payload.
func NumOperand(v float64) Operand { return Operand{Kind: OperandNum, Num: v} }

// StrOperand builds a string-constant payload addressing the interner.
func StrOperand(offset, length uint32) Operand {
	return Operand{Kind: OperandStr, StrOffset: offset, StrLen: length}
}

// TyBinOperand builds an operand for `as`/`is`: one Ref plus a type tag.
func TyBinOperand(a Ref, t TypeTag) Operand {
	return Operand{Kind: OperandTyBin, A: a, Type: t}
}

// ExtraOperand builds a variable-arity operand addressing a slice of the
// ExtraBuffer.
func ExtraOperand(start, length int) Operand {
	return Operand{Kind: OperandExtra, ExtraStart: start, ExtraLen: length}
}

// IdxOperand builds a plain integer-index operand.
func IdxOperand(i int) Operand { return Operand{Kind: OperandIdx, Idx: i} }
