package compiler

import (
	"strconv"

	"github.com/chazu/ember/bytecode"
)

// constKindTag maps a constant Value's Kind to the TypeTag `is` tests
// against.
func constKindTag(v Value) (bytecode.TypeTag, bool) {
	switch v.Kind {
	case KindNull:
		return bytecode.TypeNull, true
	case KindInt:
		return bytecode.TypeInt, true
	case KindNum:
		return bytecode.TypeNum, true
	case KindBool:
		return bytecode.TypeBool, true
	case KindStr:
		return bytecode.TypeStr, true
	default:
		return 0, false
	}
}

// foldIs folds `v is target` when v is a known scalar constant. ok is
// false when runtime emission is required.
func foldIs(v Value, target bytecode.TypeTag) (result Value, ok bool) {
	tag, isScalar := constKindTag(v)
	if !isScalar {
		return Value{}, false
	}
	return BoolValue(tag == target), true
}

// foldAs folds `v as target` when the operand is a known constant. ok
// is false when runtime emission is required; err is non-nil when the
// cast is a compile error regardless of runtime/compile-time status.
func foldAs(c *Compiler, v Value, target bytecode.TypeTag, offset int) (result Value, ok bool, err error) {
	if target.CastForbidden() {
		return Value{}, false, c.fail(offset, "invalid cast to %s", target)
	}
	if !v.IsConst() {
		return Value{}, false, nil
	}

	switch target {
	case bytecode.TypeNull:
		return NullValue(), true, nil

	case bytecode.TypeInt:
		switch v.Kind {
		case KindInt:
			return v, true, nil
		case KindNum:
			return IntValue(int64(v.Num)), true, nil
		case KindBool:
			return IntValue(boolToInt(v.Bool)), true, nil
		case KindStr:
			n, perr := strconv.ParseInt(v.Str, 10, 64)
			if perr != nil {
				return Value{}, false, c.fail(offset, "cannot parse %q as int", v.Str)
			}
			return IntValue(n), true, nil
		case KindNull:
			return Value{}, false, c.fail(offset, "cannot cast null to int")
		}

	case bytecode.TypeNum:
		switch v.Kind {
		case KindInt:
			return NumValue(float64(v.Int)), true, nil
		case KindNum:
			return v, true, nil
		case KindBool:
			if v.Bool {
				return NumValue(1.0), true, nil
			}
			return NumValue(0.0), true, nil
		case KindStr:
			f, perr := strconv.ParseFloat(v.Str, 64)
			if perr != nil {
				return Value{}, false, c.fail(offset, "cannot parse %q as num", v.Str)
			}
			return NumValue(f), true, nil
		case KindNull:
			return Value{}, false, c.fail(offset, "cannot cast null to num")
		}

	case bytecode.TypeBool:
		switch v.Kind {
		case KindInt:
			return BoolValue(v.Int != 0), true, nil
		case KindNum:
			return BoolValue(v.Num != 0), true, nil
		case KindBool:
			return v, true, nil
		case KindStr:
			switch v.Str {
			case "true":
				return BoolValue(true), true, nil
			case "false":
				return BoolValue(false), true, nil
			default:
				return Value{}, false, c.fail(offset, "cannot cast %q to bool", v.Str)
			}
		case KindNull:
			return Value{}, false, c.fail(offset, "cannot cast null to bool")
		}

	case bytecode.TypeStr:
		switch v.Kind {
		case KindInt:
			return StrValue(strconv.FormatInt(v.Int, 10)), true, nil
		case KindNum:
			return StrValue(strconv.FormatFloat(v.Num, 'g', -1, 64)), true, nil
		case KindBool:
			if v.Bool {
				return StrValue("true"), true, nil
			}
			return StrValue("false"), true, nil
		case KindStr:
			return v, true, nil
		case KindNull:
			return Value{}, false, c.fail(offset, "cannot cast null to str")
		}
	}

	return Value{}, false, c.fail(offset, "invalid cast to %s", target)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
