package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/chazu/ember/ast"
)

// TestGoldenDisassembly pins the full disassembly of a few representative
// programs. The golden archive is created on the first run; afterwards
// any drift in emission order, jump patching, or operand encoding fails
// the test. Delete testdata/golden.txtar to re-bless.
func TestGoldenDisassembly(t *testing.T) {
	programs := []struct {
		name string
		file *ast.File
	}{
		{
			name: "fold",
			file: file(exprStmt(bin(ast.Add, intLit(2), bin(ast.Mul, intLit(3), intLit(4))))),
		},
		{
			name: "closure",
			file: file(
				decl(ident("x"), intLit(10)),
				decl(ident("f"), fnExpr(ident("x"))),
			),
		},
		{
			name: "comprehension",
			file: file(decl(ident("r"), &ast.ForExpr{
				Pattern: ident("c"),
				Iter:    strLit(`"ab"`),
				Body:    ident("c"),
			})),
		},
		{
			name: "branches",
			file: file(
				decl(ident("c"), ident("g")),
				decl(ident("r"), &ast.IfExpr{Cond: ident("c"), Then: intLit(1), Else: intLit(2)}),
			),
		},
	}

	var files []txtar.File
	for _, p := range programs {
		bc := compile(t, p.file)
		files = append(files, txtar.File{
			Name: p.name,
			Data: []byte(bc.DisassembleWithName(p.name)),
		})
	}

	goldenPath := filepath.Join("testdata", "golden.txtar")
	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		require.NoError(t, os.MkdirAll("testdata", 0o755))
		blessed := txtar.Format(&txtar.Archive{
			Comment: []byte("Golden disassembly listings. Delete this file to re-bless.\n"),
			Files:   files,
		})
		require.NoError(t, os.WriteFile(goldenPath, blessed, 0o644))
		t.Skipf("created %s", goldenPath)
	}
	require.NoError(t, err)

	archive := txtar.Parse(golden)
	require.Len(t, archive.Files, len(files))
	for i, want := range archive.Files {
		require.Equal(t, want.Name, files[i].Name)
		require.Equal(t, string(want.Data), string(files[i].Data), "disassembly drift in %q", want.Name)
	}
}
