package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

func TestEmptyCollectionsBuildWithZeroLengthExtras(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expr
		op   bytecode.Opcode
	}{
		{"tuple", &ast.TupleExpr{}, bytecode.OpBuildTuple},
		{"list", &ast.ListExpr{}, bytecode.OpBuildList},
		{"map", &ast.MapExpr{}, bytecode.OpBuildMap},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bc := compile(t, file(exprStmt(tc.expr)))
			build := bc.Code[bc.Main[0]]
			require.Equal(t, tc.op, build.Op)
			require.Equal(t, 0, build.Data.ExtraLen)
		})
	}
}

func TestTupleElementsLandInExtraInOrder(t *testing.T) {
	bc := compile(t, file(exprStmt(&ast.TupleExpr{Elems: []ast.Expr{
		intLit(1), intLit(2), intLit(3),
	}})))

	build := bc.Code[bc.Main[3]]
	require.Equal(t, bytecode.OpBuildTuple, build.Op)
	slice := bc.Extra[build.Data.ExtraStart : build.Data.ExtraStart+build.Data.ExtraLen]
	require.Equal(t, []bytecode.Ref{bc.Main[0], bc.Main[1], bc.Main[2]}, slice)
}

func TestDiscardedCollectionLowersElementsWithoutBuilding(t *testing.T) {
	// A list literal in discard position (the branch of a statement-
	// position if) keeps its elements' side effects (the call) but
	// builds nothing.
	bc := compile(t, file(
		decl(ident("f"), ident("g")),
		exprStmt(&ast.IfExpr{
			Cond: ident("f"),
			Then: &ast.ListExpr{Elems: []ast.Expr{callExpr(ident("f"))}},
		}),
	))

	ops := opcodes(bc, bc.Main)
	require.Contains(t, ops, bytecode.OpCallZero)
	require.Contains(t, ops, bytecode.OpDiscard)
	require.NotContains(t, ops, bytecode.OpBuildList)
}

func TestMapPairsAlternateKeyAndValue(t *testing.T) {
	// {a = 1, "b" = 2}
	bc := compile(t, file(exprStmt(&ast.MapExpr{Entries: []*ast.MapItem{
		{Key: ident("a"), Value: intLit(1)},
		{Key: strLit(`"b"`), Value: intLit(2)},
	}})))

	var build bytecode.Instruction
	for _, r := range bc.Main {
		if bc.Code[r].Op == bytecode.OpBuildMap {
			build = bc.Code[r]
		}
	}
	slice := bc.Extra[build.Data.ExtraStart : build.Data.ExtraStart+build.Data.ExtraLen]
	require.Len(t, slice, 4)

	// An identifier key contributes its name, not its binding.
	k0 := bc.Code[slice[0]]
	require.Equal(t, bytecode.OpStrConst, k0.Op)
	require.Equal(t, "a", bc.String(k0.Data.StrOffset, k0.Data.StrLen))
	require.EqualValues(t, 1, bc.Code[slice[1]].Data.Int)

	k1 := bc.Code[slice[2]]
	require.Equal(t, "b", bc.String(k1.Data.StrOffset, k1.Data.StrLen))
	require.EqualValues(t, 2, bc.Code[slice[3]].Data.Int)
}

func TestMapShorthandTakesTrailingIdentifierName(t *testing.T) {
	// {= o.size} — the omitted key becomes "size".
	bc := compile(t, file(
		decl(ident("o"), ident("g")),
		exprStmt(&ast.MapExpr{Entries: []*ast.MapItem{
			{Value: &ast.MemberAccess{X: ident("o"), Name: "size"}},
		}}),
	))

	var build bytecode.Instruction
	for _, r := range bc.Main {
		if bc.Code[r].Op == bytecode.OpBuildMap {
			build = bc.Code[r]
		}
	}
	slice := bc.Extra[build.Data.ExtraStart : build.Data.ExtraStart+build.Data.ExtraLen]
	require.Len(t, slice, 2)
	key := bc.Code[slice[0]]
	require.Equal(t, bytecode.OpStrConst, key.Op)
	require.Equal(t, "size", bc.String(key.Data.StrOffset, key.Data.StrLen))
}

func TestMapShorthandWithoutTrailingIdentIsAnError(t *testing.T) {
	err := compileErr(t, file(exprStmt(&ast.MapExpr{Entries: []*ast.MapItem{
		{Value: intLit(1)},
	}})))
	require.ErrorContains(t, err, "needs a key")
}

func TestMemberAccessEmitsGetWithInternedName(t *testing.T) {
	bc := compile(t, file(
		decl(ident("o"), ident("g")),
		exprStmt(&ast.MemberAccess{X: ident("o"), Name: "size"}),
	))

	ops := opcodes(bc, bc.Main)
	require.Equal(t, []bytecode.Opcode{
		bytecode.OpLoadGlobal, bytecode.OpStrConst, bytecode.OpGet, bytecode.OpRetNull,
	}, ops)

	get := bc.Code[bc.Main[2]]
	require.Equal(t, bc.Main[0], get.Data.A)
	require.Equal(t, bc.Main[1], get.Data.B)
	name := bc.Code[bc.Main[1]]
	require.Equal(t, "size", bc.String(name.Data.StrOffset, name.Data.StrLen))
}

func TestIndexAccessSharesGetOpcode(t *testing.T) {
	bc := compile(t, file(
		decl(ident("xs"), ident("g")),
		exprStmt(&ast.IndexExpr{X: ident("xs"), Index: intLit(0)}),
	))
	require.Contains(t, opcodes(bc, bc.Main), bytecode.OpGet)
}

func TestMemberAccessOnNonIndexableConstantIsAnError(t *testing.T) {
	err := compileErr(t, file(exprStmt(&ast.MemberAccess{X: intLit(1), Name: "size"})))
	require.ErrorContains(t, err, "no members")
}

func TestStringConstantMemberAccessIsAllowed(t *testing.T) {
	bc := compile(t, file(exprStmt(&ast.MemberAccess{X: strLit(`"abc"`), Name: "size"})))
	require.Contains(t, opcodes(bc, bc.Main), bytecode.OpGet)
}

func TestInternerDeduplicatesAcrossLiterals(t *testing.T) {
	bc := compile(t, file(
		decl(ident("a"), strLit(`"hello"`)),
		decl(ident("b"), strLit(`"hello"`)),
	))

	first := bc.Code[bc.Main[0]]
	second := bc.Code[bc.Main[1]]
	require.Equal(t, first.Data.StrOffset, second.Data.StrOffset)
	require.Equal(t, first.Data.StrLen, second.Data.StrLen)
}
