package bytecode

// Instruction is one entry of the instruction buffer: an opcode and its
// tagged operand payload.
type Instruction struct {
	Op   Opcode
	Data Operand
}

// CodeStream is the emission-order sequence of Refs for a single
// function body (or the top-level main body). It is the authority for
// jump-offset computation; InstructionBuffer is the authority for Ref
// stability. Keeping the two separate is what lets a nested function
// body have its own stream while sharing the outer instruction buffer.
type CodeStream []Ref

// InstructionBuffer is the append-only, dense sequence of instructions
// for an entire compilation unit. Every function body compiled in the
// same unit — main and every nested fn literal — appends into this one
// buffer; only the CodeStream differs per function.
type InstructionBuffer struct {
	instrs []Instruction
}

// Len returns the number of instructions emitted so far.
func (b *InstructionBuffer) Len() int {
	return len(b.instrs)
}

// Get returns the instruction named by r.
func (b *InstructionBuffer) Get(r Ref) Instruction {
	return b.instrs[r]
}

// Set overwrites the instruction named by r, used by backpatching.
func (b *InstructionBuffer) Set(r Ref, instr Instruction) {
	b.instrs[r] = instr
}

// append appends instr and returns its freshly issued Ref. The Ref
// always equals the instruction's index, by construction.
func (b *InstructionBuffer) append(instr Instruction) Ref {
	r := Ref(len(b.instrs))
	b.instrs = append(b.instrs, instr)
	return r
}

// Instructions exposes the raw buffer, e.g. for Bytecode assembly or
// disassembly.
func (b *InstructionBuffer) Instructions() []Instruction {
	return b.instrs
}

// EmitNullary appends a no-operand instruction to buf and stream.
func EmitNullary(buf *InstructionBuffer, stream *CodeStream, op Opcode) Ref {
	r := buf.append(Instruction{Op: op, Data: None()})
	*stream = append(*stream, r)
	return r
}

// EmitUnary appends a single-operand instruction.
func EmitUnary(buf *InstructionBuffer, stream *CodeStream, op Opcode, src Ref) Ref {
	r := buf.append(Instruction{Op: op, Data: Un(src)})
	*stream = append(*stream, r)
	return r
}

// EmitBinary appends a two-operand instruction.
func EmitBinary(buf *InstructionBuffer, stream *CodeStream, op Opcode, a, b Ref) Ref {
	r := buf.append(Instruction{Op: op, Data: Bin(a, b)})
	*stream = append(*stream, r)
	return r
}

// EmitIdx appends a plain-integer-operand instruction (e.g.
// load_capture k).
func EmitIdx(buf *InstructionBuffer, stream *CodeStream, op Opcode, idx int) Ref {
	r := buf.append(Instruction{Op: op, Data: IdxOperand(idx)})
	*stream = append(*stream, r)
	return r
}

// EmitInt appends an int(i64) constant instruction.
func EmitInt(buf *InstructionBuffer, stream *CodeStream, v int64) Ref {
	r := buf.append(Instruction{Op: OpInt, Data: IntOperand(v)})
	*stream = append(*stream, r)
	return r
}

// EmitNum appends a num(f64) constant instruction.
func EmitNum(buf *InstructionBuffer, stream *CodeStream, v float64) Ref {
	r := buf.append(Instruction{Op: OpNum, Data: NumOperand(v)})
	*stream = append(*stream, r)
	return r
}

// EmitStr appends a str(offset,len) constant instruction addressing
// bytes already placed in the Interner.
func EmitStr(buf *InstructionBuffer, stream *CodeStream, offset, length uint32) Ref {
	r := buf.append(Instruction{Op: OpStrConst, Data: StrOperand(offset, length)})
	*stream = append(*stream, r)
	return r
}

// EmitTyBin appends an `as`/`is` instruction.
func EmitTyBin(buf *InstructionBuffer, stream *CodeStream, op Opcode, src Ref, t TypeTag) Ref {
	r := buf.append(Instruction{Op: op, Data: TyBinOperand(src, t)})
	*stream = append(*stream, r)
	return r
}

// EmitExtra appends a variable-arity instruction whose operand addresses
// [start, start+length) in an ExtraBuffer. The extra payload must
// already have been written before this call.
func EmitExtra(buf *InstructionBuffer, stream *CodeStream, op Opcode, start, length int) Ref {
	r := buf.append(Instruction{Op: op, Data: ExtraOperand(start, length)})
	*stream = append(*stream, r)
	return r
}

// EmitJump appends an unconditional jump with an unpatched target and
// returns its Ref for later PatchJump.
func EmitJump(buf *InstructionBuffer, stream *CodeStream) Ref {
	r := buf.append(Instruction{Op: OpJump, Data: Jump()})
	*stream = append(*stream, r)
	return r
}

// EmitJumpCond appends a conditional jump (JumpIfTrue/False/Null/Error,
// or IterNext, which jumps on exhaustion) with an unpatched target and
// returns its Ref for later PatchJump.
func EmitJumpCond(buf *InstructionBuffer, stream *CodeStream, op Opcode, cond Ref) Ref {
	r := buf.append(Instruction{Op: op, Data: JumpCond(cond)})
	*stream = append(*stream, r)
	return r
}

// PatchJump writes target as the jump's code-stream offset, picking the
// right operand shape by inspecting the operand kind.
func PatchJump(buf *InstructionBuffer, jumpRef Ref, target int) {
	instr := buf.Get(jumpRef)
	switch instr.Data.Kind {
	case OperandJump, OperandJumpCond:
		instr.Data.Offset = target
		buf.Set(jumpRef, instr)
	default:
		panic("bytecode: PatchJump called on a non-jump instruction")
	}
}
