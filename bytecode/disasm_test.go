package bytecode

import (
	"strings"
	"testing"
)

func buildSample() *Bytecode {
	buf := &InstructionBuffer{}
	extra := &ExtraBuffer{}
	interner := NewInterner()
	var main CodeStream

	off := interner.Intern("x")
	a := EmitInt(buf, &main, 1)
	b := EmitInt(buf, &main, 2)
	EmitBinary(buf, &main, OpAdd, a, b)
	EmitStr(buf, &main, off, uint32(len("x")))
	EmitNullary(buf, &main, OpRetNull)

	return Assemble(buf, extra, interner, main, nil)
}

func TestDisassembleListsEveryStreamInstruction(t *testing.T) {
	bc := buildSample()

	out := bc.Disassemble()

	if !strings.Contains(out, "ADD") {
		t.Errorf("disassembly missing ADD:\n%s", out)
	}
	if !strings.Contains(out, "RET_NULL") {
		t.Errorf("disassembly missing RET_NULL:\n%s", out)
	}
	if !strings.Contains(out, `"x"`) {
		t.Errorf("disassembly missing interned string literal:\n%s", out)
	}
}

func TestDisassembleWithNameIncludesHeader(t *testing.T) {
	bc := buildSample()

	out := bc.DisassembleWithName("main")

	if !strings.Contains(out, "=== main ===") {
		t.Errorf("disassembly missing name header:\n%s", out)
	}
}

func TestDisassembleListsUnresolvedGlobals(t *testing.T) {
	buf := &InstructionBuffer{}
	extra := &ExtraBuffer{}
	interner := NewInterner()
	var main CodeStream
	placeholder := EmitNullary(buf, &main, OpLoadGlobal)

	bc := Assemble(buf, extra, interner, main, []UnresolvedGlobal{{Name: "printLine", Placeholder: placeholder}})

	out := bc.Disassemble()
	if !strings.Contains(out, "printLine") {
		t.Errorf("disassembly missing unresolved global name:\n%s", out)
	}
}
