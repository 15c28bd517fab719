package compiler

import (
	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// fallibleHook wires an instruction that may fault at runtime (iter_init,
// as-casts, calls) into the active try scope, if any: the result is moved
// into the scope's error slot and a jump_if_error on it is appended to
// the scope's pending jump list for the handler to patch.
func (c *Compiler) fallibleHook(result bytecode.Ref) {
	if c.try == nil {
		return
	}
	bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpMove, c.try.ErrSlotRef, result)
	j := bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfError, result)
	c.try.ErrorJumps = append(c.try.ErrorJumps, j)
}

// pushLoop installs a fresh loop scope and returns the one it replaced.
func (c *Compiler) pushLoop(startOffset int) *LoopScope {
	prev := c.loop
	c.loop = &LoopScope{StartOffset: startOffset}
	return prev
}

// popLoop patches every break recorded in the current loop scope to the
// current stream position and restores prev.
func (c *Compiler) popLoop(prev *LoopScope) {
	for _, j := range c.loop.BreakJumps {
		c.patchJump(j)
	}
	c.loop = prev
}

// lowerBody lowers a loop/branch/arm body, which the parser delivers as
// either a bare expression or a block. A block body never yields a
// value; a caller that needs one gets the usual "expected a value"
// diagnostic from wrapResult.
func (c *Compiler) lowerBody(body ast.Node, mode ResultMode) (Value, error) {
	switch b := body.(type) {
	case *ast.Block:
		mark := c.blockMark()
		defer c.popScopesTo(mark)
		for _, s := range b.Stmts {
			if err := c.lowerStmt(s); err != nil {
				return Value{}, err
			}
		}
		return c.wrapResult(Empty(), mode, b.Span().Start.Offset)
	case ast.Expr:
		return c.lowerExpr(b, mode)
	default:
		return Value{}, c.fail(body.Span().Start.Offset, "expected an expression or a block")
	}
}

// loopCollection emits the result container for a loop used as an
// expression: a fresh empty list, moved into the caller's slot when the
// caller supplied one. Returns the Ref per-iteration results append to,
// or false when the surrounding context wants no value.
func (c *Compiler) loopCollection(mode ResultMode) (bytecode.Ref, bool) {
	if mode.Kind == ModeDiscard {
		return 0, false
	}
	start, length := c.extra.Append()
	list := bytecode.EmitExtra(c.instrs, c.cur, bytecode.OpBuildList, start, length)
	if mode.Kind == ModeRef {
		bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpMove, mode.Target, list)
		return mode.Target, true
	}
	return list, true
}

// lowerFor lowers `for (pattern in iter) body`.
func (c *Compiler) lowerFor(n *ast.ForExpr, mode ResultMode, offset int) (Value, error) {
	list, collect := c.loopCollection(mode)

	iter, err := c.lowerExpr(n.Iter, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if iter.Kind == KindEmpty {
		return Value{}, c.fail(n.Iter.Span().Start.Offset, "expected a value")
	}
	iterSrc := c.materialize(iter)

	iterRef := bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpIterInit, iterSrc)
	c.fallibleHook(iterRef)

	start := c.streamLen()
	prevLoop := c.pushLoop(start)

	// iter_next doubles as the exit test: its operand is the iterator
	// and its jump offset, patched below, is where exhaustion lands.
	elem := bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpIterNext, iterRef)

	mark := c.blockMark()
	if n.Pattern != nil {
		if err := c.genLval(n.Pattern, LetMode(RefValue(elem))); err != nil {
			return Value{}, err
		}
	}

	if collect {
		body, err := c.lowerBody(n.Body, AnyValue())
		if err != nil {
			return Value{}, err
		}
		if body.Kind == KindEmpty {
			return Value{}, c.fail(n.Body.Span().Start.Offset, "expected a value")
		}
		bodyRef := c.materialize(body)
		bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpAppend, list, bodyRef)
	} else {
		if _, err := c.lowerBody(n.Body, Discard()); err != nil {
			return Value{}, err
		}
	}
	c.popScopesTo(mark)

	back := bytecode.EmitJump(c.instrs, c.cur)
	c.patchJumpTo(back, start)

	c.patchJump(elem)
	c.popLoop(prevLoop)

	if !collect {
		return Empty(), nil
	}
	return RefValue(list), nil
}

// lowerWhile lowers `while cond body` and, when n.Pattern is set,
// `while let pattern = cond body`, whose exit test is null rather than
// false.
func (c *Compiler) lowerWhile(n *ast.WhileExpr, mode ResultMode, offset int) (Value, error) {
	list, collect := c.loopCollection(mode)

	start := c.streamLen()
	prevLoop := c.pushLoop(start)

	cond, err := c.lowerExpr(n.Cond, AnyValue())
	if err != nil {
		return Value{}, err
	}

	var exit bytecode.Ref
	hasExit := false
	mark := c.blockMark()

	if n.Pattern == nil {
		if cond.IsConst() {
			if cond.Kind != KindBool {
				return Value{}, c.fail(n.Cond.Span().Start.Offset, "expected a boolean")
			}
			if !cond.Bool {
				// A compile-time-false loop lowers to nothing.
				c.popLoop(prevLoop)
				if !collect {
					return Empty(), nil
				}
				return RefValue(list), nil
			}
			// Compile-time true: the body is unconditional.
		} else {
			condRef := c.materialize(cond)
			exit = bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfFalse, condRef)
			hasExit = true
		}
	} else {
		if cond.IsConst() {
			if cond.Kind == KindNull {
				c.popLoop(prevLoop)
				if !collect {
					return Empty(), nil
				}
				return RefValue(list), nil
			}
			// A compile-time-non-null condition binds unconditionally.
			condRef := c.materialize(cond)
			if err := c.genLval(n.Pattern, LetMode(RefValue(condRef))); err != nil {
				return Value{}, err
			}
		} else {
			condRef := c.materialize(cond)
			exit = bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfNull, condRef)
			hasExit = true
			if err := c.genLval(n.Pattern, LetMode(RefValue(condRef))); err != nil {
				return Value{}, err
			}
		}
	}

	if collect {
		body, err := c.lowerBody(n.Body, AnyValue())
		if err != nil {
			return Value{}, err
		}
		if body.Kind == KindEmpty {
			return Value{}, c.fail(n.Body.Span().Start.Offset, "expected a value")
		}
		bodyRef := c.materialize(body)
		bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpAppend, list, bodyRef)
	} else {
		if _, err := c.lowerBody(n.Body, Discard()); err != nil {
			return Value{}, err
		}
	}
	c.popScopesTo(mark)

	back := bytecode.EmitJump(c.instrs, c.cur)
	c.patchJumpTo(back, start)

	if hasExit {
		c.patchJump(exit)
	}
	c.popLoop(prevLoop)

	if !collect {
		return Empty(), nil
	}
	return RefValue(list), nil
}

// lowerIf lowers `if cond then else`, which doubles as an expression:
// when the surrounding context wants a value, a placeholder slot is
// reserved before either branch and both branches merge into it.
func (c *Compiler) lowerIf(n *ast.IfExpr, mode ResultMode, offset int) (Value, error) {
	cond, err := c.lowerExpr(n.Cond, AnyValue())
	if err != nil {
		return Value{}, err
	}

	if cond.IsConst() {
		if cond.Kind != KindBool {
			return Value{}, c.fail(n.Cond.Span().Start.Offset, "expected a boolean")
		}
		// Only the live branch is lowered.
		if cond.Bool {
			return c.lowerBody(n.Then, mode)
		}
		if n.Else != nil {
			return c.lowerBody(n.Else, mode)
		}
		return c.wrapResult(NullValue(), mode, offset)
	}

	condRef := c.materialize(cond)

	if mode.Kind == ModeDiscard {
		skip := bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfFalse, condRef)
		if _, err := c.lowerBody(n.Then, Discard()); err != nil {
			return Value{}, err
		}
		if n.Else == nil {
			c.patchJump(skip)
			return Empty(), nil
		}
		end := bytecode.EmitJump(c.instrs, c.cur)
		c.patchJump(skip)
		if _, err := c.lowerBody(n.Else, Discard()); err != nil {
			return Value{}, err
		}
		c.patchJump(end)
		return Empty(), nil
	}

	target := mode.Target
	if mode.Kind != ModeRef {
		target = c.reserveSlot()
	}

	skip := bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfFalse, condRef)
	if _, err := c.lowerBody(n.Then, IntoRef(target)); err != nil {
		return Value{}, err
	}
	end := bytecode.EmitJump(c.instrs, c.cur)
	c.patchJump(skip)
	if n.Else != nil {
		if _, err := c.lowerBody(n.Else, IntoRef(target)); err != nil {
			return Value{}, err
		}
	} else {
		if _, err := c.wrapResult(NullValue(), IntoRef(target), offset); err != nil {
			return Value{}, err
		}
	}
	c.patchJump(end)
	return RefValue(target), nil
}

// lowerMatch lowers `match subject { arms }`. Non-matching value arms
// fall through via a per-arm skip jump; arm bodies merge into a shared
// placeholder slot when the match is used as an expression.
func (c *Compiler) lowerMatch(n *ast.MatchExpr, mode ResultMode, offset int) (Value, error) {
	subject, err := c.lowerExpr(n.Subject, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if subject.Kind == KindEmpty {
		return Value{}, c.fail(n.Subject.Span().Start.Offset, "expected a value")
	}
	subjectRef := c.materialize(subject)

	wantValue := mode.Kind != ModeDiscard
	var target bytecode.Ref
	if wantValue {
		target = mode.Target
		if mode.Kind != ModeRef {
			target = c.reserveSlot()
		}
	}
	bodyMode := Discard()
	if wantValue {
		bodyMode = IntoRef(target)
	}

	seenCatchAll := false
	var endJumps []bytecode.Ref

	for i, arm := range n.Cases {
		armOffset := arm.Span().Start.Offset
		if seenCatchAll {
			return Value{}, c.fail(armOffset, "additional cases after catch-all case")
		}
		last := i == len(n.Cases)-1

		switch arm.Kind {
		case ast.CaseCatchAll:
			seenCatchAll = true
			if _, err := c.lowerBody(arm.Body, bodyMode); err != nil {
				return Value{}, err
			}

		case ast.CaseLet:
			seenCatchAll = true
			mark := c.blockMark()
			if err := c.genLval(arm.Pattern, LetMode(RefValue(subjectRef))); err != nil {
				return Value{}, err
			}
			if _, err := c.lowerBody(arm.Body, bodyMode); err != nil {
				return Value{}, err
			}
			c.popScopesTo(mark)

		case ast.CaseValues:
			var skip bytecode.Ref
			if len(arm.Values) == 1 {
				vref, err := c.lowerCandidate(arm.Values[0])
				if err != nil {
					return Value{}, err
				}
				eq := bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpEq, subjectRef, vref)
				skip = bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfFalse, eq)
			} else {
				var hits []bytecode.Ref
				for _, cand := range arm.Values {
					vref, err := c.lowerCandidate(cand)
					if err != nil {
						return Value{}, err
					}
					eq := bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpEq, subjectRef, vref)
					hits = append(hits, bytecode.EmitJumpCond(c.instrs, c.cur, bytecode.OpJumpIfTrue, eq))
				}
				skip = bytecode.EmitJump(c.instrs, c.cur)
				for _, h := range hits {
					c.patchJump(h)
				}
			}
			if _, err := c.lowerBody(arm.Body, bodyMode); err != nil {
				return Value{}, err
			}
			if !last {
				endJumps = append(endJumps, bytecode.EmitJump(c.instrs, c.cur))
			}
			c.patchJump(skip)
			continue
		}

		if !last {
			endJumps = append(endJumps, bytecode.EmitJump(c.instrs, c.cur))
		}
	}

	if !seenCatchAll && wantValue {
		if _, err := c.wrapResult(NullValue(), IntoRef(target), offset); err != nil {
			return Value{}, err
		}
	}

	for _, j := range endJumps {
		c.patchJump(j)
	}

	if !wantValue {
		return Empty(), nil
	}
	return RefValue(target), nil
}

// lowerCandidate lowers one candidate value of a match arm to a Ref.
func (c *Compiler) lowerCandidate(e ast.Expr) (bytecode.Ref, error) {
	v, err := c.lowerExpr(e, AnyValue())
	if err != nil {
		return 0, err
	}
	if v.Kind == KindEmpty {
		return 0, c.fail(e.Span().Start.Offset, "expected a value")
	}
	return c.materialize(v), nil
}
