package compiler

import "github.com/chazu/ember/bytecode"

// scopeItem is either a *Symbol or a *FunctionFrame, pushed onto the
// compiler's scope stack in source order.
type scopeItem interface {
	scopeItem()
}

// Symbol is a named binding visible from the point it is pushed until
// its declaring scope is popped.
type Symbol struct {
	Name          string
	Ref           bytecode.Ref
	Mut           bool
	ConstantValue Value
}

func (*Symbol) scopeItem() {}

// Capture lifts an outer symbol into a function's local environment.
type Capture struct {
	Name      string
	ParentRef bytecode.Ref
	LocalRef  bytecode.Ref
	Mut       bool
}

// FunctionFrame marks the boundary of a function body on the scope
// stack and owns that body's code stream and capture list.
type FunctionFrame struct {
	Stream   bytecode.CodeStream
	Captures []Capture
}

func (*FunctionFrame) scopeItem() {}

// LoopScope tracks the state needed to lower break/continue inside the
// loop currently being lowered.
type LoopScope struct {
	StartOffset int
	BreakJumps  []bytecode.Ref
}

// TryScope tracks the error-jump list for fallible instructions emitted
// while a try scope is active. The compiler never constructs one
// itself; the hook point exists so a host-level try/catch lowering can
// plug in.
type TryScope struct {
	ErrSlotRef bytecode.Ref
	ErrorJumps []bytecode.Ref
}

// resolveResult is what resolve returns for a found (or newly globaled)
// name.
type resolveResult struct {
	Ref    bytecode.Ref
	Mut    bool
	Global bool
}

// resolve walks the scope stack from top to bottom, lifting captures
// through any intervening function frames.
func (c *Compiler) resolve(name string) resolveResult {
	return c.resolveFrom(len(c.scopes)-1, name)
}

func (c *Compiler) resolveFrom(depth int, name string) resolveResult {
	for i := depth; i >= 0; i-- {
		switch item := c.scopes[i].(type) {
		case *Symbol:
			if item.Name == name {
				return resolveResult{Ref: item.Ref, Mut: item.Mut}
			}
		case *FunctionFrame:
			for _, cap := range item.Captures {
				if cap.Name == name {
					return resolveResult{Ref: cap.LocalRef, Mut: cap.Mut}
				}
			}
			outer := c.resolveFrom(i-1, name)
			localRef := bytecode.EmitIdx(c.instrs, &item.Stream, bytecode.OpLoadCapture, len(item.Captures))
			item.Captures = append(item.Captures, Capture{
				Name:      name,
				ParentRef: outer.Ref,
				LocalRef:  localRef,
				Mut:       outer.Mut,
			})
			return resolveResult{Ref: localRef, Mut: outer.Mut, Global: outer.Global}
		}
	}

	// Exhausting the stack always happens in the top-level segment, so
	// the placeholder belongs to the main stream even when resolution
	// started inside a nested function: any frames on the way down have
	// already arranged to capture the result.
	placeholder := bytecode.EmitNullary(c.instrs, &c.main, bytecode.OpLoadGlobal)
	c.globals = append(c.globals, bytecode.UnresolvedGlobal{Name: name, Placeholder: placeholder})
	return resolveResult{Ref: placeholder, Global: true}
}

// declare pushes a new Symbol after checking for redeclaration within
// the current function's flat scope list. The check does not cross a
// FunctionFrame boundary, but does span nested blocks within the same
// function.
func (c *Compiler) declare(name string, ref bytecode.Ref, mut bool, constVal Value, offset int) error {
scan:
	for i := len(c.scopes) - 1; i >= 0; i-- {
		switch item := c.scopes[i].(type) {
		case *Symbol:
			if item.Name == name {
				return c.fail(offset, "redeclaration of %q", name)
			}
		case *FunctionFrame:
			break scan // do not cross the frame boundary
		}
	}
	c.scopes = append(c.scopes, &Symbol{Name: name, Ref: ref, Mut: mut, ConstantValue: constVal})
	return nil
}

// pushFrame pushes a new FunctionFrame and returns it together with a
// mark for popScopesTo.
func (c *Compiler) pushFrame() (*FunctionFrame, int) {
	frame := &FunctionFrame{}
	mark := len(c.scopes)
	c.scopes = append(c.scopes, frame)
	return frame, mark
}

// blockMark returns the current scope-stack depth, to be passed to
// popScopesTo when the block exits.
func (c *Compiler) blockMark() int {
	return len(c.scopes)
}

// popScopesTo truncates the scope stack back to mark, discarding any
// Symbols (and, for a function body, the FunctionFrame itself) pushed
// since.
func (c *Compiler) popScopesTo(mark int) {
	c.scopes = c.scopes[:mark]
}
