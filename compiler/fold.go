package compiler

import (
	"math"

	"github.com/chazu/ember/ast"
	"github.com/chazu/ember/bytecode"
)

// binOpcode maps an AST binary operator to its runtime opcode.
func binOpcode(op ast.BinaryOp) bytecode.Opcode {
	switch op {
	case ast.Add:
		return bytecode.OpAdd
	case ast.Sub:
		return bytecode.OpSub
	case ast.Mul:
		return bytecode.OpMul
	case ast.Div:
		return bytecode.OpDiv
	case ast.FloorDiv:
		return bytecode.OpFloorDiv
	case ast.Mod:
		return bytecode.OpMod
	case ast.Pow:
		return bytecode.OpPow
	case ast.Eq:
		return bytecode.OpEq
	case ast.Ne:
		return bytecode.OpNe
	case ast.Lt:
		return bytecode.OpLt
	case ast.Le:
		return bytecode.OpLe
	case ast.Gt:
		return bytecode.OpGt
	case ast.Ge:
		return bytecode.OpGe
	case ast.BitAnd:
		return bytecode.OpBitAnd
	case ast.BitOr:
		return bytecode.OpBitOr
	case ast.BitXor:
		return bytecode.OpBitXor
	case ast.Shl:
		return bytecode.OpShl
	case ast.Shr:
		return bytecode.OpShr
	default:
		panic("compiler: unknown binary operator")
	}
}

// foldBinary folds op applied to two compile-time constants. ok is false
// when the fold cannot be performed and runtime emission is required —
// including integer results that would overflow int64, which fall
// through to runtime rather than folding to a wrong constant. err is
// non-nil only for operand combinations that are errors regardless of
// when they are evaluated (a negative shift amount).
func (c *Compiler) foldBinary(op ast.BinaryOp, x, y Value, offset int) (result Value, ok bool, err error) {
	if !x.IsConst() || !y.IsConst() {
		return Value{}, false, nil
	}

	switch op {
	case ast.Shl, ast.Shr:
		return c.foldShift(op, x, y, offset)
	case ast.BitAnd, ast.BitOr, ast.BitXor:
		if x.Kind != KindInt || y.Kind != KindInt {
			return Value{}, false, nil
		}
		switch op {
		case ast.BitAnd:
			return IntValue(x.Int & y.Int), true, nil
		case ast.BitOr:
			return IntValue(x.Int | y.Int), true, nil
		default:
			return IntValue(x.Int ^ y.Int), true, nil
		}
	case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return foldCompare(op, x, y)
	default:
		return foldArith(op, x, y)
	}
}

// foldShift folds `<<`/`>>` on two integer constants. Shift counts of 64
// or more saturate: left to 0, right to the maximum int64.
func (c *Compiler) foldShift(op ast.BinaryOp, x, y Value, offset int) (Value, bool, error) {
	if x.Kind != KindInt || y.Kind != KindInt {
		return Value{}, false, nil
	}
	if y.Int < 0 {
		return Value{}, false, c.fail(offset, "shift by negative amount")
	}
	if y.Int >= 64 {
		if op == ast.Shl {
			return IntValue(0), true, nil
		}
		return IntValue(math.MaxInt64), true, nil
	}
	if op == ast.Shl {
		return IntValue(x.Int << uint(y.Int)), true, nil
	}
	return IntValue(x.Int >> uint(y.Int)), true, nil
}

// foldCompare folds comparisons on constants. Mixed int/num operands
// compare numerically and strings compare bytewise. Bools and nulls fold
// only ==/!=. Operands of different kinds fold == to false and != to
// true; any other case declines and the comparison runs at runtime.
func foldCompare(op ast.BinaryOp, x, y Value) (Value, bool, error) {
	if isNumeric(x) && isNumeric(y) {
		if x.Kind == KindInt && y.Kind == KindInt {
			return BoolValue(compareOrdered(op, x.Int, y.Int)), true, nil
		}
		return BoolValue(compareOrdered(op, toNum(x), toNum(y))), true, nil
	}

	switch {
	case x.Kind == KindStr && y.Kind == KindStr:
		return BoolValue(compareOrdered(op, x.Str, y.Str)), true, nil
	case x.Kind == KindBool && y.Kind == KindBool:
		switch op {
		case ast.Eq:
			return BoolValue(x.Bool == y.Bool), true, nil
		case ast.Ne:
			return BoolValue(x.Bool != y.Bool), true, nil
		}
		return Value{}, false, nil
	case x.Kind == KindNull && y.Kind == KindNull:
		switch op {
		case ast.Eq:
			return BoolValue(true), true, nil
		case ast.Ne:
			return BoolValue(false), true, nil
		}
		return Value{}, false, nil
	default:
		// Kinds disagree: equality is decidable, ordering is not.
		switch op {
		case ast.Eq:
			return BoolValue(false), true, nil
		case ast.Ne:
			return BoolValue(true), true, nil
		}
		return Value{}, false, nil
	}
}

func compareOrdered[T int64 | float64 | string](op ast.BinaryOp, x, y T) bool {
	switch op {
	case ast.Eq:
		return x == y
	case ast.Ne:
		return x != y
	case ast.Lt:
		return x < y
	case ast.Le:
		return x <= y
	case ast.Gt:
		return x > y
	default:
		return x >= y
	}
}

// foldArith folds the arithmetic operators on two numeric constants.
// Results promote to num iff either operand is num; division always
// produces num. Integer results that would overflow int64, and integer
// division or modulo by zero, decline the fold.
func foldArith(op ast.BinaryOp, x, y Value) (Value, bool, error) {
	if !isNumeric(x) || !isNumeric(y) {
		return Value{}, false, nil
	}

	if x.Kind == KindNum || y.Kind == KindNum || op == ast.Div {
		xf, yf := toNum(x), toNum(y)
		switch op {
		case ast.Add:
			return NumValue(xf + yf), true, nil
		case ast.Sub:
			return NumValue(xf - yf), true, nil
		case ast.Mul:
			return NumValue(xf * yf), true, nil
		case ast.Div:
			return NumValue(xf / yf), true, nil
		case ast.FloorDiv:
			return NumValue(math.Floor(xf / yf)), true, nil
		case ast.Mod:
			return NumValue(xf - math.Floor(xf/yf)*yf), true, nil
		case ast.Pow:
			return NumValue(math.Pow(xf, yf)), true, nil
		}
		return Value{}, false, nil
	}

	a, b := x.Int, y.Int
	switch op {
	case ast.Add:
		r := a + b
		if (r > a) != (b > 0) {
			return Value{}, false, nil
		}
		return IntValue(r), true, nil
	case ast.Sub:
		r := a - b
		if (r < a) != (b > 0) {
			return Value{}, false, nil
		}
		return IntValue(r), true, nil
	case ast.Mul:
		if mulOverflows(a, b) {
			return Value{}, false, nil
		}
		return IntValue(a * b), true, nil
	case ast.FloorDiv:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return Value{}, false, nil
		}
		q := a / b
		if a%b != 0 && (a < 0) != (b < 0) {
			q--
		}
		return IntValue(q), true, nil
	case ast.Mod:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return Value{}, false, nil
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return IntValue(r), true, nil
	case ast.Pow:
		return foldIntPow(a, b)
	}
	return Value{}, false, nil
}

// foldIntPow computes a**b for non-negative integer exponents, declining
// on overflow. A negative exponent is a num-producing operation and is
// left to the runtime.
func foldIntPow(a, b int64) (Value, bool, error) {
	if b < 0 {
		return Value{}, false, nil
	}
	result := int64(1)
	base := a
	for exp := b; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			if mulOverflows(result, base) {
				return Value{}, false, nil
			}
			result *= base
		}
		if exp > 1 && mulOverflows(base, base) {
			return Value{}, false, nil
		}
		if exp > 1 {
			base *= base
		}
	}
	return IntValue(result), true, nil
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	if a == -1 && b == math.MinInt64 || b == -1 && a == math.MinInt64 {
		return true
	}
	r := a * b
	return r/b != a
}

func isNumeric(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindNum
}

func toNum(v Value) float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Num
}
