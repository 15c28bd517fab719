package bytecode

// Interner maps each distinct string's bytes to a stable offset within
// one growable byte buffer, returning the prior offset on re-insertion.
// Keys are compared by byte equality; no normalization is performed.
// Dedup goes through a map since the interner is consulted for every
// string constant, member name and map-key name in a compilation.
type Interner struct {
	buf     []byte
	offsets map[string]uint32
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{offsets: make(map[string]uint32)}
}

// Intern returns the byte offset of s within the interner's buffer,
// appending s if it has not been seen before.
func (in *Interner) Intern(s string) uint32 {
	if off, ok := in.offsets[s]; ok {
		return off
	}
	off := uint32(len(in.buf))
	in.buf = append(in.buf, s...)
	in.offsets[s] = off
	return off
}

// Bytes returns the interner's backing buffer.
func (in *Interner) Bytes() []byte {
	return in.buf
}

// Slice returns the bytes at [offset, offset+length).
func (in *Interner) Slice(offset, length uint32) []byte {
	return in.buf[offset : offset+length]
}
