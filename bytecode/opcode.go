package bytecode

import "fmt"

// Opcode identifies the operation an Instruction performs. Opcodes are
// grouped into ranges by category, leaving room in each range for the
// surface language to grow.
type Opcode byte

const (
	// Stack-free data movement (0x00-0x0F).
	OpMove    Opcode = 0x00 // bin(target, src): fresh value moved into target
	OpCopy    Opcode = 0x01 // bin(target, src): value-level copy of a mut alias into target
	OpDiscard Opcode = 0x02 // un(src): drop a runtime value produced for side effects
	OpCopyUn  Opcode = 0x03 // un(src): clone src by value into a fresh Ref, decoupling storage

	// Constants (0x10-0x1F).
	OpInt       Opcode = 0x10 // int(i64)
	OpNum       Opcode = 0x11 // num(f64)
	OpNull      Opcode = 0x12 // primitive(null)
	OpTrue      Opcode = 0x13 // primitive(true)
	OpFalse     Opcode = 0x14 // primitive(false)
	OpStrConst  Opcode = 0x15 // str(offset,len) into the interner

	// Variables (0x20-0x2F).
	OpLoadGlobal   Opcode = 0x20 // none; placeholder filled in by the host's global table
	OpLoadCapture  Opcode = 0x21 // idx(ordinal): index into the enclosing function's capture list
	OpStoreCapture Opcode = 0x22 // bin(func, parent_ref)

	// Arithmetic (0x30-0x3F).
	OpAdd      Opcode = 0x30
	OpSub      Opcode = 0x31
	OpMul      Opcode = 0x32
	OpDiv      Opcode = 0x33
	OpFloorDiv Opcode = 0x34
	OpMod      Opcode = 0x35
	OpPow      Opcode = 0x36
	OpNeg      Opcode = 0x37
	OpBitAnd   Opcode = 0x38
	OpBitOr    Opcode = 0x39
	OpBitXor   Opcode = 0x3A
	OpShl      Opcode = 0x3B
	OpShr      Opcode = 0x3C
	OpBitNot   Opcode = 0x3D

	// Comparison / logic (0x40-0x4F).
	OpEq  Opcode = 0x40
	OpNe  Opcode = 0x41
	OpLt  Opcode = 0x42
	OpLe  Opcode = 0x43
	OpGt  Opcode = 0x44
	OpGe  Opcode = 0x45
	OpNot Opcode = 0x46

	// Casts / type queries (0x50-0x5F).
	OpAs Opcode = 0x50 // ty_bin(src, TypeTag)
	OpIs Opcode = 0x51 // ty_bin(src, TypeTag)

	// Control flow (0x60-0x6F).
	OpJump         Opcode = 0x60 // jump(code_offset)
	OpJumpIfTrue   Opcode = 0x61 // jump_cond(cond, code_offset)
	OpJumpIfFalse  Opcode = 0x62
	OpJumpIfNull   Opcode = 0x63
	OpJumpIfError  Opcode = 0x64

	// Calls (0x70-0x7F).
	OpCallZero Opcode = 0x70 // un(callee)
	OpCallOne  Opcode = 0x71 // bin(callee, arg)
	OpCall     Opcode = 0x72 // extra(start,len): [callee, arg0, arg1, ...]

	// Member / index (0x80-0x8F).
	OpGet Opcode = 0x80 // bin(obj, key)

	// Iteration (0x90-0x9F).
	OpIterInit Opcode = 0x90 // un(iterable)
	OpIterNext Opcode = 0x91 // jump_cond(iter, exit_offset): yields the element, jumps on exhaustion

	// Collections (0xA0-0xAF).
	OpBuildTuple Opcode = 0xA0 // extra(start,len)
	OpBuildList  Opcode = 0xA1 // extra(start,len)
	OpBuildMap   Opcode = 0xA2 // extra(start,len): [k0,v0,k1,v1,...]
	OpAppend     Opcode = 0xA3 // bin(list, value)

	// Functions (0xB0-0xBF).
	OpBuildFunc Opcode = 0xB0 // extra(start,len): [packed_header, inner code stream...]

	// Error unwrap (0xC0-0xCF).
	OpUnwrapError Opcode = 0xC0 // un(errValue)

	// Returns (0xF0-0xFF).
	OpRet     Opcode = 0xF0 // un(value)
	OpRetNull Opcode = 0xF1 // none
)

// OpcodeInfo holds an opcode's mnemonic, as printed by the disassembler.
type OpcodeInfo struct {
	Name string
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpMove:    {"MOVE"},
	OpCopy:    {"COPY"},
	OpDiscard: {"DISCARD"},
	OpCopyUn:  {"COPY_UN"},

	OpInt:      {"INT"},
	OpNum:      {"NUM"},
	OpNull:     {"NULL"},
	OpTrue:     {"TRUE"},
	OpFalse:    {"FALSE"},
	OpStrConst: {"STR"},

	OpLoadGlobal:   {"LOAD_GLOBAL"},
	OpLoadCapture:  {"LOAD_CAPTURE"},
	OpStoreCapture: {"STORE_CAPTURE"},

	OpAdd:      {"ADD"},
	OpSub:      {"SUB"},
	OpMul:      {"MUL"},
	OpDiv:      {"DIV"},
	OpFloorDiv: {"FLOOR_DIV"},
	OpMod:      {"MOD"},
	OpPow:      {"POW"},
	OpNeg:      {"NEG"},
	OpBitAnd:   {"BIT_AND"},
	OpBitOr:    {"BIT_OR"},
	OpBitXor:   {"BIT_XOR"},
	OpShl:      {"SHL"},
	OpShr:      {"SHR"},
	OpBitNot:   {"BIT_NOT"},

	OpEq:  {"EQ"},
	OpNe:  {"NE"},
	OpLt:  {"LT"},
	OpLe:  {"LE"},
	OpGt:  {"GT"},
	OpGe:  {"GE"},
	OpNot: {"NOT"},

	OpAs: {"AS"},
	OpIs: {"IS"},

	OpJump:        {"JUMP"},
	OpJumpIfTrue:  {"JUMP_IF_TRUE"},
	OpJumpIfFalse: {"JUMP_IF_FALSE"},
	OpJumpIfNull:  {"JUMP_IF_NULL"},
	OpJumpIfError: {"JUMP_IF_ERROR"},

	OpCallZero: {"CALL_ZERO"},
	OpCallOne:  {"CALL_ONE"},
	OpCall:     {"CALL"},

	OpGet: {"GET"},

	OpIterInit: {"ITER_INIT"},
	OpIterNext: {"ITER_NEXT"},

	OpBuildTuple: {"BUILD_TUPLE"},
	OpBuildList:  {"BUILD_LIST"},
	OpBuildMap:   {"BUILD_MAP"},
	OpAppend:     {"APPEND"},

	OpBuildFunc: {"BUILD_FUNC"},

	OpUnwrapError: {"UNWRAP_ERROR"},

	OpRet:     {"RET"},
	OpRetNull: {"RET_NULL"},
}

// GetOpcodeInfo returns metadata for op, or a synthesized "UNKNOWN" entry
// if op is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of op.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsJump reports whether op is one of the jump family.
func (op Opcode) IsJump() bool {
	return op >= OpJump && op <= OpJumpIfError
}

// IsFallible reports whether op may fault at runtime and so must be
// hooked into an active try scope: iter_init, as-casts, and every call
// form.
func (op Opcode) IsFallible() bool {
	switch op {
	case OpIterInit, OpAs, OpCallZero, OpCallOne, OpCall:
		return true
	default:
		return false
	}
}

// AllOpcodes returns every defined opcode, for exhaustiveness tests.
func AllOpcodes() []Opcode {
	out := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		out = append(out, op)
	}
	return out
}
