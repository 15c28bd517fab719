package compiler

import (
	"math"

	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// lowerExpr lowers one expression node and applies the caller's
// ResultMode to whatever Value the node produced.
func (c *Compiler) lowerExpr(node ast.Expr, mode ResultMode) (Value, error) {
	offset := node.Span().Start.Offset

	switch n := node.(type) {
	case *ast.IntLit:
		return c.wrapResult(IntValue(n.Value), mode, offset)

	case *ast.NumLit:
		return c.wrapResult(NumValue(n.Value), mode, offset)

	case *ast.BoolLit:
		return c.wrapResult(BoolValue(n.Value), mode, offset)

	case *ast.NullLit:
		return c.wrapResult(NullValue(), mode, offset)

	case *ast.StrLit:
		s, err := unquoteString(n.Raw, offset, c)
		if err != nil {
			return Value{}, err
		}
		return c.wrapResult(StrValue(s), mode, offset)

	case *ast.Ident:
		res := c.resolve(n.Name)
		v := RefValue(res.Ref)
		if res.Mut {
			v = MutValue(res.Ref)
		}
		return c.wrapResult(v, mode, offset)

	case *ast.MutIdent:
		return Value{}, c.fail(offset, "'mut' is only valid in a binding pattern")

	case *ast.Discard:
		return Value{}, c.fail(offset, "'_' is not a value")

	case *ast.ErrorPattern:
		return Value{}, c.fail(offset, "error pattern is only valid in a binding pattern")

	case *ast.Paren:
		return c.lowerExpr(n.X, mode)

	case *ast.Not:
		return c.lowerNot(n, mode, offset)

	case *ast.BitNot:
		return c.lowerBitNot(n, mode, offset)

	case *ast.Negate:
		return c.lowerNegate(n, mode, offset)

	case *ast.BinaryExpr:
		return c.lowerBinary(n, mode, offset)

	case *ast.AsExpr:
		return c.lowerAs(n, mode, offset)

	case *ast.IsExpr:
		return c.lowerIs(n, mode, offset)

	case *ast.MemberAccess:
		return c.lowerMember(n, mode, offset)

	case *ast.IndexExpr:
		return c.lowerIndex(n, mode, offset)

	case *ast.Assign:
		if err := c.lowerAssign(n); err != nil {
			return Value{}, err
		}
		if mode.Kind != ModeDiscard {
			return Value{}, c.fail(offset, "assignment produces no value")
		}
		return Empty(), nil

	case *ast.AugAssign:
		if err := c.lowerAugAssign(n); err != nil {
			return Value{}, err
		}
		if mode.Kind != ModeDiscard {
			return Value{}, c.fail(offset, "assignment produces no value")
		}
		return Empty(), nil

	case *ast.Block:
		mark := c.blockMark()
		defer c.popScopesTo(mark)
		for _, stmt := range n.Stmts {
			if err := c.lowerStmt(stmt); err != nil {
				return Value{}, err
			}
		}
		return c.wrapResult(Empty(), mode, offset)

	case *ast.TupleExpr:
		return c.lowerTuple(n, mode, offset)

	case *ast.ListExpr:
		return c.lowerList(n, mode, offset)

	case *ast.MapExpr:
		return c.lowerMap(n, mode, offset)

	case *ast.CallExpr:
		return c.lowerCall(n, mode, offset)

	case *ast.FnExpr:
		return c.lowerFn(n, mode, offset)

	case *ast.IfExpr:
		return c.lowerIf(n, mode, offset)

	case *ast.MatchExpr:
		return c.lowerMatch(n, mode, offset)

	case *ast.ForExpr:
		return c.lowerFor(n, mode, offset)

	case *ast.WhileExpr:
		return c.lowerWhile(n, mode, offset)

	default:
		return Value{}, c.fail(offset, "lowering for this form is not implemented by this pass")
	}
}

func (c *Compiler) lowerNot(n *ast.Not, mode ResultMode, offset int) (Value, error) {
	v, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if v.IsConst() {
		if v.Kind != KindBool {
			return Value{}, c.fail(offset, "expected a boolean")
		}
		return c.wrapResult(BoolValue(!v.Bool), mode, offset)
	}
	src := c.materialize(v)
	r := bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpNot, src)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerBitNot(n *ast.BitNot, mode ResultMode, offset int) (Value, error) {
	v, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if v.IsConst() {
		if v.Kind != KindInt {
			return Value{}, c.fail(offset, "expected an integer")
		}
		return c.wrapResult(IntValue(^v.Int), mode, offset)
	}
	src := c.materialize(v)
	r := bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpBitNot, src)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerNegate(n *ast.Negate, mode ResultMode, offset int) (Value, error) {
	v, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if v.IsConst() {
		switch v.Kind {
		case KindInt:
			// -MinInt64 has no int64 representation; left to runtime.
			if v.Int != math.MinInt64 {
				return c.wrapResult(IntValue(-v.Int), mode, offset)
			}
		case KindNum:
			return c.wrapResult(NumValue(-v.Num), mode, offset)
		default:
			return Value{}, c.fail(offset, "expected a number")
		}
	}
	src := c.materialize(v)
	r := bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpNeg, src)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerBinary(n *ast.BinaryExpr, mode ResultMode, offset int) (Value, error) {
	x, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}
	y, err := c.lowerExpr(n.Y, AnyValue())
	if err != nil {
		return Value{}, err
	}

	folded, ok, err := c.foldBinary(n.Op, x, y, offset)
	if err != nil {
		return Value{}, err
	}
	if ok {
		c.log.Debug().Str("op", binOpcode(n.Op).String()).Msg("folded binary expression")
		return c.wrapResult(folded, mode, offset)
	}

	xr := c.materialize(x)
	yr := c.materialize(y)
	r := bytecode.EmitBinary(c.instrs, c.cur, binOpcode(n.Op), xr, yr)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerAs(n *ast.AsExpr, mode ResultMode, offset int) (Value, error) {
	tag, ok := bytecode.LookupTypeTag(n.Type)
	if !ok {
		return Value{}, c.fail(offset, "unknown type name %q", n.Type)
	}

	v, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}

	folded, ok, err := foldAs(c, v, tag, offset)
	if err != nil {
		return Value{}, err
	}
	if ok {
		return c.wrapResult(folded, mode, offset)
	}

	src := c.materialize(v)
	r := bytecode.EmitTyBin(c.instrs, c.cur, bytecode.OpAs, src, tag)
	c.fallibleHook(r)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerIs(n *ast.IsExpr, mode ResultMode, offset int) (Value, error) {
	tag, ok := bytecode.LookupTypeTag(n.Type)
	if !ok {
		return Value{}, c.fail(offset, "unknown type name %q", n.Type)
	}

	v, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}

	if folded, ok := foldIs(v, tag); ok {
		return c.wrapResult(folded, mode, offset)
	}

	src := c.materialize(v)
	r := bytecode.EmitTyBin(c.instrs, c.cur, bytecode.OpIs, src, tag)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerMember(n *ast.MemberAccess, mode ResultMode, offset int) (Value, error) {
	obj, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if !obj.IsRuntime() && obj.Kind != KindStr {
		return Value{}, c.fail(offset, "value has no members")
	}

	objRef := c.materialize(obj)
	nameOff := c.interner.Intern(n.Name)
	nameRef := bytecode.EmitStr(c.instrs, c.cur, nameOff, uint32(len(n.Name)))
	r := bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpGet, objRef, nameRef)
	return c.wrapResult(RefValue(r), mode, offset)
}

func (c *Compiler) lowerIndex(n *ast.IndexExpr, mode ResultMode, offset int) (Value, error) {
	obj, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if !obj.IsRuntime() && obj.Kind != KindStr {
		return Value{}, c.fail(offset, "value is not indexable")
	}

	idx, err := c.lowerExpr(n.Index, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if idx.Kind == KindEmpty {
		return Value{}, c.fail(offset, "expected a value")
	}

	objRef := c.materialize(obj)
	idxRef := c.materialize(idx)
	r := bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpGet, objRef, idxRef)
	return c.wrapResult(RefValue(r), mode, offset)
}
