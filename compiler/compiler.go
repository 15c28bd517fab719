// Package compiler lowers an AST (package ast) into the register-style
// bytecode IR defined by package bytecode. It performs symbol
// resolution with closure capture, compile-time constant folding,
// destructuring-aware lowering of declarations and assignments,
// control-flow lowering via backpatched jumps, string interning, and
// structured diagnostic collection.
package compiler

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// Compiler lowers one compilation unit. It is not safe for concurrent
// use and not reusable across units; construct a fresh one per Compile
// call.
type Compiler struct {
	instrs   *bytecode.InstructionBuffer
	extra    *bytecode.ExtraBuffer
	interner *bytecode.Interner

	main bytecode.CodeStream
	cur  *bytecode.CodeStream // points at main, or the innermost FunctionFrame's Stream

	scopes  []scopeItem
	globals []bytecode.UnresolvedGlobal

	loop *LoopScope
	try  *TryScope

	diags *Collector
	opts  Options
	log   zerolog.Logger
	id    uuid.UUID
}

// New constructs a Compiler ready to lower a single compilation unit.
func New(opts Options) *Compiler {
	c := &Compiler{
		instrs:   &bytecode.InstructionBuffer{},
		extra:    &bytecode.ExtraBuffer{},
		interner: bytecode.NewInterner(),
		diags:    &Collector{},
		opts:     opts,
		id:       uuid.New(),
	}
	c.cur = &c.main
	c.log = newLogger(opts).With().Str("compilation_id", c.id.String()).Logger()
	return c
}

// Compile lowers file into a Bytecode. On success it returns the
// bytecode and the (possibly non-empty, warning-only) diagnostics
// collected along the way. On failure it returns the diagnostics
// collected up to and including the fatal error, plus that error.
func Compile(file *ast.File, opts Options) (*bytecode.Bytecode, []Diagnostic, error) {
	c := New(opts)
	c.log.Debug().Int("stmts", len(file.Stmts)).Msg("compile start")

	for _, stmt := range file.Stmts {
		if err := c.lowerStmt(stmt); err != nil {
			return nil, c.diags.Diags, err
		}
	}
	bytecode.EmitNullary(c.instrs, &c.main, bytecode.OpRetNull)

	bc := bytecode.Assemble(c.instrs, c.extra, c.interner, c.main, c.globals)
	c.log.Debug().Int("instructions", len(bc.Code)).Msg("compile done")
	return bc, c.diags.Diags, nil
}

// materialize ensures v is available at runtime as a single Ref,
// emitting whatever constant instruction is needed for a compile-time
// constant.
func (c *Compiler) materialize(v Value) bytecode.Ref {
	switch v.Kind {
	case KindRef, KindMut:
		return v.Ref
	case KindNull:
		return bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpNull)
	case KindInt:
		return bytecode.EmitInt(c.instrs, c.cur, v.Int)
	case KindNum:
		return bytecode.EmitNum(c.instrs, c.cur, v.Num)
	case KindBool:
		if v.Bool {
			return bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpTrue)
		}
		return bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpFalse)
	case KindStr:
		off := c.interner.Intern(v.Str)
		return bytecode.EmitStr(c.instrs, c.cur, off, uint32(len(v.Str)))
	default:
		panic("compiler: materialize called on an empty value")
	}
}

// wrapResult applies the caller's ResultMode to a lowered Value.
func (c *Compiler) wrapResult(v Value, mode ResultMode, offset int) (Value, error) {
	if v.Kind == KindEmpty && mode.Kind != ModeDiscard {
		return Value{}, c.fail(offset, "expected a value")
	}

	switch mode.Kind {
	case ModeDiscard:
		if v.IsRuntime() {
			bytecode.EmitUnary(c.instrs, c.cur, bytecode.OpDiscard, v.Ref)
		}
		return Empty(), nil

	case ModeValue:
		return v, nil

	case ModeRef:
		src := c.materialize(v)
		if src == mode.Target {
			return RefValue(mode.Target), nil
		}
		op := bytecode.OpMove
		if v.Kind == KindMut {
			op = bytecode.OpCopy
		}
		bytecode.EmitBinary(c.instrs, c.cur, op, mode.Target, src)
		return RefValue(mode.Target), nil

	default:
		panic("compiler: unknown ResultMode")
	}
}

// reserveSlot emits a real `null` instruction and returns its Ref, used
// as the pre-allocated merge target for if/match expressions: both
// branches move or copy their result into this same register, so code
// after the merge reads one Ref regardless of which branch ran.
func (c *Compiler) reserveSlot() bytecode.Ref {
	return bytecode.EmitNullary(c.instrs, c.cur, bytecode.OpNull)
}

// streamLen is the current code stream's length, the unit jump offsets
// are expressed in.
func (c *Compiler) streamLen() int {
	return len(*c.cur)
}

func (c *Compiler) patchJump(ref bytecode.Ref) {
	bytecode.PatchJump(c.instrs, ref, c.streamLen())
}

func (c *Compiler) patchJumpTo(ref bytecode.Ref, target int) {
	bytecode.PatchJump(c.instrs, ref, target)
}
