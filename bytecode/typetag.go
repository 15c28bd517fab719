package bytecode

import "fmt"

// TypeTag is one of the fixed type names recognized by `as`/`is`.
type TypeTag uint8

const (
	TypeNull TypeTag = iota
	TypeInt
	TypeNum
	TypeBool
	TypeStr
	TypeTuple
	TypeMap
	TypeList
	TypeErr
	TypeRange
	TypeFunc
	TypeTagged
)

var typeTagNames = map[string]TypeTag{
	"null":   TypeNull,
	"int":    TypeInt,
	"num":    TypeNum,
	"bool":   TypeBool,
	"str":    TypeStr,
	"tuple":  TypeTuple,
	"map":    TypeMap,
	"list":   TypeList,
	"err":    TypeErr,
	"range":  TypeRange,
	"func":   TypeFunc,
	"tagged": TypeTagged,
}

var typeTagStrings = map[TypeTag]string{}

func init() {
	for name, tag := range typeTagNames {
		typeTagStrings[tag] = name
	}
}

// LookupTypeTag resolves a type name token to its TypeTag. ok is false
// for any name outside the fixed set.
func LookupTypeTag(name string) (tag TypeTag, ok bool) {
	tag, ok = typeTagNames[name]
	return tag, ok
}

// String returns the type name, e.g. "int".
func (t TypeTag) String() string {
	if name, ok := typeTagStrings[t]; ok {
		return name
	}
	return fmt.Sprintf("TypeTag(%d)", uint8(t))
}

// IsComposite reports whether t names a composite type. Casts to any
// composite are forbidden.
func (t TypeTag) IsComposite() bool {
	switch t {
	case TypeTuple, TypeMap, TypeList, TypeTagged:
		return true
	default:
		return false
	}
}

// CastForbidden reports whether a cast `as t` is forbidden outright,
// regardless of the operand: func, err, range, and any composite.
func (t TypeTag) CastForbidden() bool {
	return t == TypeFunc || t == TypeErr || t == TypeRange || t.IsComposite()
}
