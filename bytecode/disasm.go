package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the main code stream,
// resolving each Ref through the instruction buffer. Function bodies are
// not listed instruction by instruction; a build_func shows its extra
// slice.
func (bc *Bytecode) Disassemble() string {
	return bc.DisassembleWithName("")
}

// DisassembleWithName is Disassemble with a header naming the unit.
func (bc *Bytecode) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		fmt.Fprintf(&sb, "; === %s ===\n", name)
	}
	fmt.Fprintf(&sb, "; %d instructions, %d extra slots, %d bytes interned\n\n",
		len(bc.Code), len(bc.Extra), len(bc.Strings))

	if len(bc.UnresolvedGlobals) > 0 {
		sb.WriteString("; Unresolved globals:\n")
		for _, g := range bc.UnresolvedGlobals {
			fmt.Fprintf(&sb, ";   %s -> @%d\n", g.Name, g.Placeholder)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("; Main:\n")
	bc.disassembleStream(&sb, bc.Main)

	return sb.String()
}

// disassembleStream writes one line per Ref in stream, numbering lines
// by stream position (the jump-target space) rather than by Ref.
func (bc *Bytecode) disassembleStream(sb *strings.Builder, stream CodeStream) {
	for pos, ref := range stream {
		instr := bc.Code[ref]
		fmt.Fprintf(sb, "%04d  @%-5d %s\n", pos, ref, bc.disassembleInstruction(instr))
	}
}

func (bc *Bytecode) disassembleInstruction(instr Instruction) string {
	name := instr.Op.String()
	switch instr.Data.Kind {
	case OperandNone:
		return name
	case OperandUn:
		return fmt.Sprintf("%-14s r%d", name, instr.Data.A)
	case OperandBin:
		return fmt.Sprintf("%-14s r%d, r%d", name, instr.Data.A, instr.Data.B)
	case OperandJump, OperandJumpCond:
		if instr.Data.Kind == OperandJumpCond {
			return fmt.Sprintf("%-14s r%d -> %d", name, instr.Data.A, instr.Data.Offset)
		}
		return fmt.Sprintf("%-14s -> %d", name, instr.Data.Offset)
	case OperandInt:
		return fmt.Sprintf("%-14s %d", name, instr.Data.Int)
	case OperandNum:
		return fmt.Sprintf("%-14s %g", name, instr.Data.Num)
	case OperandStr:
		display := bc.String(instr.Data.StrOffset, instr.Data.StrLen)
		if len(display) > 40 {
			display = display[:37] + "..."
		}
		display = strings.ReplaceAll(display, "\n", "\\n")
		return fmt.Sprintf("%-14s %q", name, display)
	case OperandTyBin:
		return fmt.Sprintf("%-14s r%d, %s", name, instr.Data.A, instr.Data.Type)
	case OperandExtra:
		return fmt.Sprintf("%-14s extra[%d:%d]", name, instr.Data.ExtraStart, instr.Data.ExtraStart+instr.Data.ExtraLen)
	case OperandIdx:
		return fmt.Sprintf("%-14s %d", name, instr.Data.Idx)
	default:
		return name
	}
}
