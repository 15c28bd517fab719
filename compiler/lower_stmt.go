package compiler

import (
	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// lowerStmt lowers one statement.
func (c *Compiler) lowerStmt(stmt ast.Stmt) error {
	offset := stmt.Span().Start.Offset

	switch n := stmt.(type) {
	case *ast.Decl:
		return c.lowerDecl(n, offset)

	case *ast.Assign:
		return c.lowerAssign(n)

	case *ast.AugAssign:
		return c.lowerAugAssign(n)

	case *ast.Return:
		return c.lowerReturn(n)

	case *ast.Break:
		if c.loop == nil {
			return c.fail(offset, "'break' outside of a loop")
		}
		j := bytecode.EmitJump(c.instrs, c.cur)
		c.loop.BreakJumps = append(c.loop.BreakJumps, j)
		return nil

	case *ast.Continue:
		if c.loop == nil {
			return c.fail(offset, "'continue' outside of a loop")
		}
		j := bytecode.EmitJump(c.instrs, c.cur)
		c.patchJumpTo(j, c.loop.StartOffset)
		return nil

	case *ast.Block:
		mark := c.blockMark()
		defer c.popScopesTo(mark)
		for _, s := range n.Stmts {
			if err := c.lowerStmt(s); err != nil {
				return err
			}
		}
		return nil

	case *ast.ExprStmt:
		// Assignments and control-flow forms in statement position run
		// for effect only; branch and loop bodies then lower in discard
		// mode and never need to produce a merged value.
		if discardsInStmtPosition(n.X) {
			_, err := c.lowerExpr(n.X, Discard())
			return err
		}
		// Any other expression statement's value is materialized but
		// kept: a folded constant still appears in the instruction
		// buffer, so `2 + 3 * 4` on its own line compiles to a single
		// int(14).
		v, err := c.lowerExpr(n.X, AnyValue())
		if err != nil {
			return err
		}
		if v.Kind != KindEmpty {
			c.materialize(v)
		}
		return nil

	case *ast.Import:
		return c.fail(offset, "lowering for 'import' is not implemented by this pass")

	case *ast.Throw:
		return c.fail(offset, "lowering for 'throw' is not implemented by this pass")

	default:
		return c.fail(offset, "lowering for this form is not implemented by this pass")
	}
}

func isAssignNode(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Assign, *ast.AugAssign:
		return true
	default:
		return false
	}
}

// discardsInStmtPosition reports whether an expression used as a
// statement is lowered in discard mode rather than having its value
// materialized.
func discardsInStmtPosition(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Assign, *ast.AugAssign, *ast.Block,
		*ast.IfExpr, *ast.MatchExpr, *ast.ForExpr, *ast.WhileExpr:
		return true
	default:
		return false
	}
}

// lowerDecl lowers `let pattern = expr`.
func (c *Compiler) lowerDecl(n *ast.Decl, offset int) error {
	if _, ok := n.Pattern.(*ast.Discard); ok {
		return c.fail(offset, "'_' declares nothing")
	}

	v, err := c.lowerExpr(n.Value, AnyValue())
	if err != nil {
		return err
	}
	if v.Kind == KindEmpty {
		return c.fail(offset, "expected a value")
	}

	return c.genLval(n.Pattern, LetMode(v))
}

// lowerAssign lowers `target = value`.
func (c *Compiler) lowerAssign(n *ast.Assign) error {
	v, err := c.lowerExpr(n.Value, AnyValue())
	if err != nil {
		return err
	}
	if v.Kind == KindEmpty {
		return c.fail(n.Value.Span().Start.Offset, "expected a value")
	}
	return c.genLval(n.Target, AssignMode(v))
}

// lowerAugAssign lowers `target op= value` by resolving the target slot,
// combining it with the right-hand side, and moving the result back into
// the slot.
func (c *Compiler) lowerAugAssign(n *ast.AugAssign) error {
	var target bytecode.Ref
	if err := c.genLval(n.Target, AugAssignMode(&target)); err != nil {
		return err
	}

	v, err := c.lowerExpr(n.Value, AnyValue())
	if err != nil {
		return err
	}
	if v.Kind == KindEmpty {
		return c.fail(n.Value.Span().Start.Offset, "expected a value")
	}

	rhs := c.materialize(v)
	result := bytecode.EmitBinary(c.instrs, c.cur, binOpcode(n.Op), target, rhs)
	bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpMove, target, result)
	return nil
}

// lowerReturn lowers `return expr` or a bare `return`.
func (c *Compiler) lowerReturn(n *ast.Return) error {
	if n.X == nil {
		bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpRetNull)
		return nil
	}

	v, err := c.lowerExpr(n.X, AnyValue())
	if err != nil {
		return err
	}
	if v.Kind == KindEmpty {
		return c.fail(n.X.Span().Start.Offset, "expected a value")
	}
	ref := c.materialize(v)
	bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpRet, ref)
	return nil
}
