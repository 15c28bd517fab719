package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical-mode encoding for deterministic output,
// so compiled units can be cached to disk or shipped across processes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes bc to canonical CBOR bytes.
func (bc *Bytecode) Marshal() ([]byte, error) {
	return cborEncMode.Marshal(bc)
}

// Unmarshal deserializes bc from CBOR bytes produced by Marshal.
func Unmarshal(data []byte) (*Bytecode, error) {
	var bc Bytecode
	if err := cbor.Unmarshal(data, &bc); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal: %w", err)
	}
	return &bc, nil
}
