package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/ember/bytecode"
)

func TestResolveFindsNearestBinding(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.declare("x", 1, false, Empty(), 0))
	require.NoError(t, c.declare("y", 2, true, Empty(), 0))

	res := c.resolve("y")
	require.EqualValues(t, 2, res.Ref)
	require.True(t, res.Mut)
	require.False(t, res.Global)

	res = c.resolve("x")
	require.EqualValues(t, 1, res.Ref)
	require.False(t, res.Mut)
}

func TestResolveLiftsCaptureThroughFrame(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.declare("x", 1, true, Empty(), 0))
	frame, _ := c.pushFrame()
	c.cur = &frame.Stream

	res := c.resolve("x")
	require.False(t, res.Global)
	require.True(t, res.Mut, "capture keeps the outer binding's mutability")

	require.Len(t, frame.Captures, 1)
	cap := frame.Captures[0]
	require.Equal(t, "x", cap.Name)
	require.EqualValues(t, 1, cap.ParentRef)
	require.Equal(t, res.Ref, cap.LocalRef)

	local := c.instrs.Get(cap.LocalRef)
	require.Equal(t, bytecode.OpLoadCapture, local.Op)
	require.Equal(t, 0, local.Data.Idx)

	// A second lookup reuses the capture instead of lifting again.
	again := c.resolve("x")
	require.Equal(t, res.Ref, again.Ref)
	require.Len(t, frame.Captures, 1)
}

func TestResolveUnknownNameBecomesGlobalPlaceholder(t *testing.T) {
	c := New(Options{})
	res := c.resolve("println")
	require.True(t, res.Global)
	require.Equal(t, bytecode.OpLoadGlobal, c.instrs.Get(res.Ref).Op)
	require.Len(t, c.globals, 1)
	require.Equal(t, "println", c.globals[0].Name)
	require.Equal(t, res.Ref, c.globals[0].Placeholder)
}

func TestPopScopesToDropsBindings(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.declare("x", 1, false, Empty(), 0))
	mark := c.blockMark()
	require.NoError(t, c.declare("y", 2, false, Empty(), 0))
	c.popScopesTo(mark)

	res := c.resolve("y")
	require.True(t, res.Global, "popped binding no longer resolves")
	res = c.resolve("x")
	require.False(t, res.Global)
}

func TestDeclareRecordsConstantValue(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.declare("k", 1, false, IntValue(42), 0))

	sym, ok := c.scopes[len(c.scopes)-1].(*Symbol)
	require.True(t, ok)
	require.Equal(t, KindInt, sym.ConstantValue.Kind)
	require.EqualValues(t, 42, sym.ConstantValue.Int)
}

func TestWrapResultTrapsEmpty(t *testing.T) {
	c := New(Options{})
	_, err := c.wrapResult(Empty(), AnyValue(), 3)
	require.ErrorContains(t, err, "expected a value")

	_, err = c.wrapResult(Empty(), Discard(), 3)
	require.NoError(t, err)
}

func TestWrapResultDiscardsRuntimeValues(t *testing.T) {
	c := New(Options{})
	r := c.reserveSlot()
	_, err := c.wrapResult(RefValue(r), Discard(), 0)
	require.NoError(t, err)

	last := c.instrs.Get(c.main[len(c.main)-1])
	require.Equal(t, bytecode.OpDiscard, last.Op)
	require.Equal(t, r, last.Data.A)
}

func TestWrapResultIntoTargetMovesOrCopies(t *testing.T) {
	c := New(Options{})
	target := c.reserveSlot()
	src := c.reserveSlot()

	_, err := c.wrapResult(RefValue(src), IntoRef(target), 0)
	require.NoError(t, err)
	require.Equal(t, bytecode.OpMove, c.instrs.Get(c.main[len(c.main)-1]).Op)

	_, err = c.wrapResult(MutValue(src), IntoRef(target), 0)
	require.NoError(t, err)
	require.Equal(t, bytecode.OpCopy, c.instrs.Get(c.main[len(c.main)-1]).Op)

	// Wrapping the target into itself emits nothing.
	before := c.instrs.Len()
	_, err = c.wrapResult(RefValue(target), IntoRef(target), 0)
	require.NoError(t, err)
	require.Equal(t, before, c.instrs.Len())
}

func TestMaterializeConstants(t *testing.T) {
	c := New(Options{})

	r := c.materialize(IntValue(7))
	require.Equal(t, bytecode.OpInt, c.instrs.Get(r).Op)

	r = c.materialize(NumValue(1.5))
	require.Equal(t, bytecode.OpNum, c.instrs.Get(r).Op)

	r = c.materialize(BoolValue(true))
	require.Equal(t, bytecode.OpTrue, c.instrs.Get(r).Op)

	r = c.materialize(StrValue("s"))
	require.Equal(t, bytecode.OpStrConst, c.instrs.Get(r).Op)

	r = c.materialize(NullValue())
	require.Equal(t, bytecode.OpNull, c.instrs.Get(r).Op)

	// Runtime values are already materialized.
	require.EqualValues(t, 3, c.materialize(RefValue(3)))
}
