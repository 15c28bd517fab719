package compiler

import (
	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

func (c *Compiler) lowerTuple(n *ast.TupleExpr, mode ResultMode, offset int) (Value, error) {
	return c.lowerSequence(n.Elems, bytecode.OpBuildTuple, mode, offset)
}

func (c *Compiler) lowerList(n *ast.ListExpr, mode ResultMode, offset int) (Value, error) {
	return c.lowerSequence(n.Elems, bytecode.OpBuildList, mode, offset)
}

// lowerSequence lowers a tuple or list literal: every element in value
// mode, materialized into a scratch slice, then one variable-arity build
// instruction over the collected Refs. In discard mode the elements are
// still lowered for their side effects but nothing is built.
func (c *Compiler) lowerSequence(elems []ast.Expr, build bytecode.Opcode, mode ResultMode, offset int) (Value, error) {
	if mode.Kind == ModeDiscard {
		for _, e := range elems {
			if _, err := c.lowerExpr(e, Discard()); err != nil {
				return Value{}, err
			}
		}
		return Empty(), nil
	}

	refs := make([]bytecode.Ref, 0, len(elems))
	for _, e := range elems {
		v, err := c.lowerExpr(e, AnyValue())
		if err != nil {
			return Value{}, err
		}
		if v.Kind == KindEmpty {
			return Value{}, c.fail(e.Span().Start.Offset, "expected a value")
		}
		refs = append(refs, c.materialize(v))
	}

	start, length := c.extra.Append(refs...)
	r := bytecode.EmitExtra(c.instrs, c.cur, build, start, length)
	return c.wrapResult(RefValue(r), mode, offset)
}

// lowerMap lowers a map literal. Entries alternate key and value in the
// extra slice. A key that is written as a bare identifier contributes
// its name as a string key rather than its binding; an omitted key takes
// the name of the trailing identifier of the value expression.
func (c *Compiler) lowerMap(n *ast.MapExpr, mode ResultMode, offset int) (Value, error) {
	if mode.Kind == ModeDiscard {
		for _, e := range n.Entries {
			if e.Key != nil {
				if _, isIdent := e.Key.(*ast.Ident); !isIdent {
					if _, err := c.lowerExpr(e.Key, Discard()); err != nil {
						return Value{}, err
					}
				}
			}
			if _, err := c.lowerExpr(e.Value, Discard()); err != nil {
				return Value{}, err
			}
		}
		return Empty(), nil
	}

	pairs := make([]bytecode.Ref, 0, 2*len(n.Entries))
	for _, e := range n.Entries {
		keyRef, err := c.lowerMapKey(e)
		if err != nil {
			return Value{}, err
		}

		v, err := c.lowerExpr(e.Value, AnyValue())
		if err != nil {
			return Value{}, err
		}
		if v.Kind == KindEmpty {
			return Value{}, c.fail(e.Value.Span().Start.Offset, "expected a value")
		}
		pairs = append(pairs, keyRef, c.materialize(v))
	}

	start, length := c.extra.Append(pairs...)
	r := bytecode.EmitExtra(c.instrs, c.cur, bytecode.OpBuildMap, start, length)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerMapKey(e *ast.MapItem) (bytecode.Ref, error) {
	if e.Key == nil {
		name, ok := trailingIdentName(e.Value)
		if !ok {
			return 0, c.fail(e.Span().Start.Offset, "map entry needs a key")
		}
		return c.emitNameKey(name), nil
	}
	if ident, ok := e.Key.(*ast.Ident); ok {
		// `k = v` is shorthand for `"k" = v`.
		return c.emitNameKey(ident.Name), nil
	}

	v, err := c.lowerExpr(e.Key, AnyValue())
	if err != nil {
		return 0, err
	}
	if v.Kind == KindEmpty {
		return 0, c.fail(e.Key.Span().Start.Offset, "expected a value")
	}
	return c.materialize(v), nil
}

// emitNameKey emits a string constant holding an identifier's name.
func (c *Compiler) emitNameKey(name string) bytecode.Ref {
	off := c.interner.Intern(name)
	return bytecode.EmitStr(c.instrs, c.cur, off, uint32(len(name)))
}

// trailingIdentName walks to the identifier an expression ends in, e.g.
// the `b` of `a.b`, and reports its name.
func trailingIdentName(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name, true
	case *ast.MemberAccess:
		return n.Name, true
	case *ast.Paren:
		return trailingIdentName(n.X)
	default:
		return "", false
	}
}
