package bytecode

// ExtraBuffer is the shared side table addressed by variable-arity
// opcodes (calls, tuple/list/map construction, function body inlining).
// Each slot is nominally a Ref, but build_func's packed header word is
// written into the same slot space via PackFuncHeader; the two never
// need to be told apart once the slice is addressed by (start, len).
type ExtraBuffer struct {
	slots []Ref
}

// Len returns the number of slots written so far.
func (e *ExtraBuffer) Len() int {
	return len(e.slots)
}

// Append writes refs to the end of the buffer and returns the
// (start, length) slice describing them, for use in an Operand built by
// ExtraOperand.
func (e *ExtraBuffer) Append(refs ...Ref) (start, length int) {
	start = len(e.slots)
	e.slots = append(e.slots, refs...)
	return start, len(refs)
}

// Slice returns the refs written at [start, start+length).
func (e *ExtraBuffer) Slice(start, length int) []Ref {
	return e.slots[start : start+length]
}

// Refs exposes the raw buffer, e.g. for Bytecode assembly.
func (e *ExtraBuffer) Refs() []Ref {
	return e.slots
}

// PackFuncHeader packs a function's argument count (low byte) and
// capture count (remaining 24 bits) into a single slot.
func PackFuncHeader(args uint8, captures uint32) Ref {
	return Ref(uint32(args) | (captures << 8))
}

// UnpackFuncHeader reverses PackFuncHeader.
func UnpackFuncHeader(word Ref) (args uint8, captures uint32) {
	v := uint32(word)
	return uint8(v & 0xFF), v >> 8
}
