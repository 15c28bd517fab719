package compiler

import (
	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// LvalueModeKind discriminates a genLval call's intent.
type LvalueModeKind uint8

const (
	LvalLet LvalueModeKind = iota
	LvalAssign
	LvalAugAssign
)

// LvalueMode is the mode argument to genLval.
type LvalueMode struct {
	Kind  LvalueModeKind
	Value Value          // for LvalLet / LvalAssign
	Out   *bytecode.Ref // for LvalAugAssign: the resolved symbol's Ref is written here
}

func LetMode(v Value) LvalueMode { return LvalueMode{Kind: LvalLet, Value: v} }
func AssignMode(v Value) LvalueMode { return LvalueMode{Kind: LvalAssign, Value: v} }
func AugAssignMode(out *bytecode.Ref) LvalueMode {
	return LvalueMode{Kind: LvalAugAssign, Out: out}
}

// genLval lowers an lvalue pattern: a declaration target, an assignment
// target, or an aug-assign target.
func (c *Compiler) genLval(node ast.Expr, mode LvalueMode) error {
	offset := node.Span().Start.Offset

	switch n := node.(type) {
	case *ast.Ident:
		return c.lvalIdent(n.Name, false, offset, mode)

	case *ast.MutIdent:
		return c.lvalIdent(n.Name, true, offset, mode)

	case *ast.Discard:
		if mode.Kind == LvalAugAssign {
			return c.fail(offset, "'_' is not a valid aug-assign target")
		}
		return nil // let/assign to discard: no-op

	case *ast.ErrorPattern:
		if mode.Kind == LvalAugAssign {
			return c.fail(offset, "error pattern is not a valid aug-assign target")
		}
		if !mode.Value.IsRuntime() {
			return c.fail(offset, "expected an error")
		}
		src := c.materialize(mode.Value)
		inner := bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpUnwrapError, src)
		return c.genLval(n.Inner, LvalueMode{Kind: mode.Kind, Value: RefValue(inner)})

	case *ast.Paren:
		return c.genLval(n.X, mode)

	default:
		return c.fail(offset, "reserved destructuring pattern")
	}
}

func (c *Compiler) lvalIdent(name string, mut bool, offset int, mode LvalueMode) error {
	switch mode.Kind {
	case LvalLet:
		src := mode.Value
		// A mut binding over an already-runtime value, or any binding
		// over a mut alias, gets its own storage so that two mutable
		// names never share a slot.
		needsCopy := (mut && src.IsRuntime()) || src.Kind == KindMut
		ref := c.materialize(src)
		if needsCopy {
			ref = bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpCopyUn, ref)
		}
		constVal := Empty()
		if src.IsConst() {
			constVal = src
		}
		return c.declare(name, ref, mut, constVal, offset)

	case LvalAssign:
		res := c.resolve(name)
		if !res.Mut {
			return c.fail(offset, "cannot assign to immutable binding %q", name)
		}
		_, err := c.wrapResult(mode.Value, IntoRef(res.Ref), offset)
		return err

	case LvalAugAssign:
		res := c.resolve(name)
		if !res.Mut {
			return c.fail(offset, "cannot assign to immutable binding %q", name)
		}
		*mode.Out = res.Ref
		return nil

	default:
		panic("compiler: unknown LvalueMode")
	}
}
