// Package bytecode defines the register-style intermediate representation
// produced by the compiler: instructions addressed by Ref, a side table
// for variable-arity operands, a string interner, and the Bytecode object
// a host hands off to its virtual machine.
package bytecode

// Ref is an opaque, dense identifier for an instruction. Refs are issued
// monotonically as instructions are appended to an InstructionBuffer and
// are stable for the life of the compilation unit: Ref(i) always names
// the instruction at index i.
type Ref int

// NoRef is a sentinel Ref (-1) that names no instruction; Valid reports
// false for it.
const NoRef Ref = -1

// Valid reports whether r names a real instruction rather than NoRef.
func (r Ref) Valid() bool {
	return r >= 0
}
