package compiler

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Options configures one Compiler. Hosts usually embed these knobs in
// their own project manifest; LoadOptions reads them from a standalone
// TOML document.
type Options struct {
	// MaxParams bounds both function parameter count and call argument
	// count. Zero means the default.
	MaxParams int `toml:"max_params"`

	// Debug controls whether a DebugInfo line table would be populated
	// by a future pass; only the reserved field is carried today.
	Debug bool `toml:"debug"`

	// Trace enables debug-level zerolog events: compile start and end,
	// folded binary expressions, and lowered function literals.
	Trace bool `toml:"trace"`
}

// DefaultMaxParams is used when Options.MaxParams is zero.
const DefaultMaxParams = 32

// maxParams returns the effective parameter/argument limit.
func (o Options) maxParams() int {
	if o.MaxParams <= 0 {
		return DefaultMaxParams
	}
	return o.MaxParams
}

// LoadOptions parses compiler options from a TOML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("compiler: cannot read %s: %w", path, err)
	}
	var o Options
	if err := toml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("compiler: parse error in %s: %w", path, err)
	}
	return o, nil
}
