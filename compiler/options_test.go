package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compiler.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_params = 8\ntrace = true\n"), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	require.Equal(t, 8, opts.MaxParams)
	require.True(t, opts.Trace)
	require.False(t, opts.Debug)
	require.Equal(t, 8, opts.maxParams())
}

func TestLoadOptionsErrors(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_params = [not toml"), 0o644))
	_, err = LoadOptions(path)
	require.Error(t, err)
}

func TestMaxParamsDefaultsWhenUnset(t *testing.T) {
	require.Equal(t, DefaultMaxParams, Options{}.maxParams())
	require.Equal(t, DefaultMaxParams, Options{MaxParams: -3}.maxParams())
}
