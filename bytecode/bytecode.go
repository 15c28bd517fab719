package bytecode

// UnresolvedGlobal names a placeholder load_global instruction the host
// must fix up against its module binding table.
type UnresolvedGlobal struct {
	Name        string
	Placeholder Ref
}

// DebugInfo is reserved for future source-position tables. It is kept
// as an empty struct rather than omitted so the host has a stable field
// to extend.
type DebugInfo struct{}

// Bytecode is the compiler's output: the full instruction buffer, the
// extra-operand side table, the interned string pool, the top-level
// code stream, and anything the host needs to finish linking.
type Bytecode struct {
	Code    []Instruction
	Extra   []Ref
	Strings []byte
	Main    CodeStream

	Debug DebugInfo

	UnresolvedGlobals []UnresolvedGlobal
}

// Assemble packages the compiler's working buffers into the caller-owned
// Bytecode value. Called once, at the end of a successful compilation;
// the working buffers themselves are dropped with the Compiler.
func Assemble(instrs *InstructionBuffer, extra *ExtraBuffer, interner *Interner, main CodeStream, globals []UnresolvedGlobal) *Bytecode {
	return &Bytecode{
		Code:              instrs.Instructions(),
		Extra:             extra.Refs(),
		Strings:           interner.Bytes(),
		Main:              main,
		UnresolvedGlobals: globals,
	}
}

// String returns the interned bytes named by a str operand.
func (bc *Bytecode) String(offset, length uint32) string {
	return string(bc.Strings[offset : offset+length])
}
