package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

func assign(target, value ast.Expr) *ast.Assign {
	return &ast.Assign{Target: target, Value: value}
}

func TestRedeclarationIsAnError(t *testing.T) {
	err := compileErr(t, file(
		decl(ident("x"), intLit(1)),
		decl(ident("x"), intLit(2)),
	))
	require.ErrorContains(t, err, `redeclaration of "x"`)
}

func TestRedeclarationCheckSpansNestedBlocks(t *testing.T) {
	err := compileErr(t, file(
		decl(ident("x"), intLit(1)),
		exprStmt(&ast.Block{Stmts: []ast.Stmt{
			decl(ident("x"), intLit(2)),
		}}),
	))
	require.ErrorContains(t, err, `redeclaration of "x"`)
}

func TestRedeclarationCheckStopsAtFunctionFrames(t *testing.T) {
	// Shadowing across a function boundary is fine.
	bc := compile(t, file(
		decl(ident("x"), intLit(1)),
		decl(ident("f"), fnExpr(&ast.Block{Stmts: []ast.Stmt{
			decl(ident("x"), intLit(2)),
		}})),
	))
	require.NotNil(t, bc)
}

func TestBlockScopedBindingsArePopped(t *testing.T) {
	// A binding from an exited block no longer resolves; the later use
	// becomes an unresolved global.
	bc := compile(t, file(
		exprStmt(&ast.Block{Stmts: []ast.Stmt{
			decl(ident("x"), intLit(1)),
		}}),
		exprStmt(ident("x")),
	))
	require.Len(t, bc.UnresolvedGlobals, 1)
	require.Equal(t, "x", bc.UnresolvedGlobals[0].Name)
}

func TestAssignToImmutableIsAnError(t *testing.T) {
	err := compileErr(t, file(
		decl(ident("x"), intLit(1)),
		assign(ident("x"), intLit(2)),
	))
	require.ErrorContains(t, err, "immutable")
}

func TestAssignToMutableMovesFreshValue(t *testing.T) {
	bc := compile(t, file(
		decl(mutIdent("x"), intLit(1)),
		assign(ident("x"), intLit(2)),
	))

	ops := opcodes(bc, bc.Main)
	require.Equal(t, []bytecode.Opcode{bytecode.OpInt, bytecode.OpInt, bytecode.OpMove, bytecode.OpRetNull}, ops)
	move := bc.Code[bc.Main[2]]
	require.Equal(t, bc.Main[0], move.Data.A, "assignment targets the binding's slot")
}

func TestAssignFromMutAliasCopies(t *testing.T) {
	// let mut a = 1
	// let mut b = 2
	// a = b   — b aliases mutable storage, so the write is a copy
	bc := compile(t, file(
		decl(mutIdent("a"), intLit(1)),
		decl(mutIdent("b"), intLit(2)),
		assign(ident("a"), ident("b")),
	))
	require.Contains(t, opcodes(bc, bc.Main), bytecode.OpCopy)
}

func TestLetFromMutAliasGetsOwnStorage(t *testing.T) {
	// let mut a = 1
	// let b = a
	bc := compile(t, file(
		decl(mutIdent("a"), intLit(1)),
		decl(ident("b"), ident("a")),
	))
	require.Contains(t, opcodes(bc, bc.Main), bytecode.OpCopyUn)
}

func TestMutLetOverRuntimeValueCopies(t *testing.T) {
	// let a = g
	// let mut b = a
	bc := compile(t, file(
		decl(ident("a"), ident("g")),
		decl(mutIdent("b"), ident("a")),
	))
	require.Contains(t, opcodes(bc, bc.Main), bytecode.OpCopyUn)
}

func TestDiscardDeclarationIsAnError(t *testing.T) {
	err := compileErr(t, file(decl(&ast.Discard{}, intLit(1))))
	require.ErrorContains(t, err, "'_' declares nothing")
}

func TestAssignToDiscardIsANoOp(t *testing.T) {
	bc := compile(t, file(
		decl(ident("x"), intLit(1)),
		assign(&ast.Discard{}, intLit(2)),
	))
	// The value is still lowered, but nothing is written anywhere.
	require.Equal(t,
		[]bytecode.Opcode{bytecode.OpInt, bytecode.OpRetNull},
		opcodes(bc, bc.Main)[:2])
}

func TestDiscardAsValueIsAnError(t *testing.T) {
	err := compileErr(t, file(decl(ident("x"), &ast.Discard{})))
	require.ErrorContains(t, err, "'_' is not a value")
}

func TestMutAsValueIsAnError(t *testing.T) {
	err := compileErr(t, file(exprStmt(bin(ast.Add, mutIdent("x"), intLit(1)))))
	require.ErrorContains(t, err, "'mut'")
}

func TestAugAssignRejectsDiscard(t *testing.T) {
	err := compileErr(t, file(&ast.AugAssign{Op: ast.Add, Target: &ast.Discard{}, Value: intLit(1)}))
	require.ErrorContains(t, err, "aug-assign")
}

func TestErrorPatternUnwrapsAndBindsInner(t *testing.T) {
	// let error(e) = g
	bc := compile(t, file(decl(&ast.ErrorPattern{Inner: ident("e")}, ident("g"))))

	ops := opcodes(bc, bc.Main)
	require.Equal(t, []bytecode.Opcode{bytecode.OpLoadGlobal, bytecode.OpUnwrapError, bytecode.OpRetNull}, ops)
	unwrap := bc.Code[bc.Main[1]]
	require.Equal(t, bc.Main[0], unwrap.Data.A)
}

func TestParenPatternIsTransparent(t *testing.T) {
	bc := compile(t, file(decl(paren(ident("x")), intLit(1))))
	require.Equal(t, []bytecode.Opcode{bytecode.OpInt, bytecode.OpRetNull}, opcodes(bc, bc.Main))
}

func TestDestructuringPatternsAreReserved(t *testing.T) {
	err := compileErr(t, file(decl(&ast.TupleExpr{Elems: []ast.Expr{ident("a"), ident("b")}}, ident("g"))))
	require.ErrorContains(t, err, "reserved destructuring pattern")
}
