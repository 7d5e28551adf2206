package runtime

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"oak/toolchain-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindLiteral Kind = iota
	KindNativeFunction
	KindFunction
	KindStruct
	KindArrayList
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindNativeFunction:
		return "native_function"
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	case KindArrayList:
		return "array_list"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is anything an environment can bind: literals and invocables.
type Value interface {
	Kind() Kind
}

// Type names understood by both engines. Struct names and "T[]" array types
// are built on top of these.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeChar   = "char"
	TypeString = "string"
	TypeVar    = "var"
	TypeVoid   = "void"
)

// Literal is the universal runtime value: a type tag plus a payload. The
// payload is int64, float64, bool, rune, string, *StructInstance,
// *ArrayListInstance, or nil for a typed null.
type Literal struct {
	Type  string
	Value any
}

func (Literal) Kind() Kind { return KindLiteral }

// IsNull reports whether the literal carries no payload.
func (l Literal) IsNull() bool { return l.Value == nil }

// Null returns the null literal of the given type.
func Null(typ string) Literal { return Literal{Type: typ} }

func Int(v int64) Literal { return Literal{Type: TypeInt, Value: v} }
func Float(v float64) Literal { return Literal{Type: TypeFloat, Value: v} }
func Bool(v bool) Literal { return Literal{Type: TypeBool, Value: v} }
func Char(v rune) Literal { return Literal{Type: TypeChar, Value: v} }
func String(v string) Literal { return Literal{Type: TypeString, Value: v} }

// FromAST converts a source literal, normalising the payload to the runtime
// representation (int64, float64, rune for chars).
func FromAST(lit *ast.Literal) Literal {
	out := Literal{Type: lit.DataType, Value: lit.Value}
	switch v := lit.Value.(type) {
	case int:
		out.Value = int64(v)
	case int32:
		if lit.DataType != TypeChar {
			out.Value = int64(v)
		}
	case float32:
		out.Value = float64(v)
	case string:
		if lit.DataType == TypeChar {
			r, _ := utf8.DecodeRuneInString(v)
			if v == "" {
				r = 0
			}
			out.Value = r
		}
	}
	if lit.DataType == TypeFloat {
		if n, ok := out.Value.(int64); ok {
			out.Value = float64(n)
		}
	}
	return out
}

// IsArrayType reports whether typ names an array ("int[]", "float[][]").
func IsArrayType(typ string) bool {
	return strings.HasSuffix(typ, "[]")
}

// ElementType strips one array level from typ.
func ElementType(typ string) string {
	return strings.TrimSuffix(typ, "[]")
}

// ArrayType appends dims array levels to typ.
func ArrayType(typ string, dims int) string {
	return typ + strings.Repeat("[]", dims)
}

// String renders the payload the way print shows it.
func (l Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case rune:
		if v == 0 {
			return ""
		}
		return string(v)
	case string:
		return v
	case *StructInstance:
		return v.String()
	case *ArrayListInstance:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal compares payloads the way switch cases match: numbers compare across
// int and float, everything else by payload identity.
func (l Literal) Equal(other Literal) bool {
	if a, ok := numeric(l.Value); ok {
		if b, ok := numeric(other.Value); ok {
			return a == b
		}
		return false
	}
	return l.Value == other.Value
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
