package compiler

import (
	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// lowerFn lowers a function literal. The body compiles into its own code
// stream while sharing the unit's instruction buffer; the finished
// stream is inlined into the extra buffer behind a build_func, followed
// by one store_capture per lifted capture, in capture order.
func (c *Compiler) lowerFn(n *ast.FnExpr, mode ResultMode, offset int) (Value, error) {
	if len(n.Params) > c.opts.maxParams() {
		return Value{}, c.fail(offset, "too many parameters")
	}

	savedCur := c.cur
	savedLoop, savedTry := c.loop, c.try
	c.loop, c.try = nil, nil

	frame, mark := c.pushFrame()
	c.cur = &frame.Stream

	restore := func() {
		c.popScopesTo(mark)
		c.cur = savedCur
		c.loop, c.try = savedLoop, savedTry
	}

	// Parameters occupy the first len(Params) value slots; binding them
	// through the lvalue engine gives `mut` parameters the same
	// copy-on-bind treatment as any other mutable binding.
	for k, p := range n.Params {
		if err := c.genLval(p, LetMode(RefValue(bytecode.Ref(k)))); err != nil {
			restore()
			return Value{}, err
		}
	}

	if err := c.lowerFnBody(n.Body); err != nil {
		restore()
		return Value{}, err
	}

	captures := frame.Captures
	stream := frame.Stream
	restore()

	words := make([]bytecode.Ref, 0, 1+len(stream))
	words = append(words, bytecode.PackFuncHeader(uint8(len(n.Params)), uint32(len(captures))))
	words = append(words, stream...)
	start, length := c.extra.Append(words...)
	fnRef := bytecode.EmitExtra(c.instrs, c.cur, bytecode.OpBuildFunc, start, length)

	for _, cap := range captures {
		bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpStoreCapture, fnRef, cap.ParentRef)
	}

	c.log.Debug().
		Int("params", len(n.Params)).
		Int("captures", len(captures)).
		Int("stream", len(stream)).
		Msg("lowered function literal")

	return c.wrapResult(RefValue(fnRef), mode, offset)
}

// lowerFnBody lowers the function body and guarantees the stream ends in
// a return. A block body (or a bare assignment) runs for effect and
// relies on explicit returns; an expression body returns its own value.
func (c *Compiler) lowerFnBody(body ast.Node) error {
	if block, ok := body.(*ast.Block); ok {
		mark := c.blockMark()
		for _, s := range block.Stmts {
			if err := c.lowerStmt(s); err != nil {
				return err
			}
		}
		c.popScopesTo(mark)
		c.ensureRet()
		return nil
	}

	expr, ok := body.(ast.Expr)
	if !ok {
		return c.fail(body.Span().Start.Offset, "expected an expression or a block")
	}
	if isAssignNode(expr) {
		if _, err := c.lowerExpr(expr, Discard()); err != nil {
			return err
		}
		c.ensureRet()
		return nil
	}

	v, err := c.lowerExpr(expr, AnyValue())
	if err != nil {
		return err
	}
	if v.Kind == KindEmpty || v.Kind == KindNull {
		bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpRetNull)
		return nil
	}
	ref := c.materialize(v)
	bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpRet, ref)
	return nil
}

// ensureRet appends ret_null unless the current stream already ends in a
// return.
func (c *Compiler) ensureRet() {
	stream := *c.cur
	if len(stream) > 0 {
		switch c.instrs.Get(stream[len(stream)-1]).Op {
		case bytecode.OpRet, bytecode.OpRetNull:
			return
		}
	}
	bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpRetNull)
}

// lowerCall lowers `callee(args...)`. A `mut` argument is cloned by
// value so the callee never sees the caller's mutable storage.
func (c *Compiler) lowerCall(n *ast.CallExpr, mode ResultMode, offset int) (Value, error) {
	callee, err := c.lowerExpr(n.Callee, AnyValue())
	if err != nil {
		return Value{}, err
	}
	if !callee.IsRuntime() {
		return Value{}, c.fail(n.Callee.Span().Start.Offset, "value is not callable")
	}
	calleeRef := callee.Ref

	if len(n.Args) > c.opts.maxParams() {
		return Value{}, c.fail(offset, "too many arguments")
	}

	args := make([]bytecode.Ref, 0, len(n.Args))
	for _, arg := range n.Args {
		v, err := c.lowerExpr(arg, AnyValue())
		if err != nil {
			return Value{}, err
		}
		if v.Kind == KindEmpty {
			return Value{}, c.fail(arg.Span().Start.Offset, "expected a value")
		}
		r := c.materialize(v)
		if v.Kind == KindMut {
			r = bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpCopyUn, r)
		}
		args = append(args, r)
	}

	var result bytecode.Ref
	switch len(args) {
	case 0:
		result = bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpCallZero, calleeRef)
	case 1:
		result = bytecode.EmitBinary(c.instrs, c.cur, bytecode.OpCallOne, calleeRef, args[0])
	default:
		operands := make([]bytecode.Ref, 0, 1+len(args))
		operands = append(operands, calleeRef)
		operands = append(operands, args...)
		start, length := c.extra.Append(operands...)
		result = bytecode.EmitExtra(c.instrs, c.cur, bytecode.OpCall, start, length)
	}

	c.fallibleHook(result)
	return c.wrapResult(RefValue(result), mode, offset)
}
