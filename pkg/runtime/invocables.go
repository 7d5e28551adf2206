package runtime

import (
	"oak/toolchain-go/pkg/ast"
)

// Invoker is the engine side of a call: user functions and struct
// construction need to evaluate AST, which only the interpreter can do.
type Invoker interface {
	CallFunction(fn *Function, args []Literal, loc ast.Span) (Value, error)
	Instantiate(def *Struct, args []Literal, loc ast.Span) (Literal, error)
	Write(text string)
}

// Invocable is anything a Callee may target. Arity -1 accepts any count.
type Invocable interface {
	Value
	Name() string
	Arity() int
	Invoke(ctx Invoker, args []Literal, loc ast.Span) (Value, error)
}

// CheckArity validates the argument count for fn.
func CheckArity(fn Invocable, got int, loc ast.Span) error {
	if want := fn.Arity(); want >= 0 && want != got {
		return Errorf(ArityMismatch, loc, "Expected %d arguments, got %d", want, got)
	}
	return nil
}

//-----------------------------------------------------------------------------
// Native functions
//-----------------------------------------------------------------------------

// NativeFunc implements a built-in. A nil result means no value.
type NativeFunc func(ctx Invoker, args []Literal, loc ast.Span) (Value, error)

type NativeFunction struct {
	name  string
	arity int
	impl  NativeFunc
}

func NewNativeFunction(name string, arity int, impl NativeFunc) *NativeFunction {
	return &NativeFunction{name: name, arity: arity, impl: impl}
}

func (*NativeFunction) Kind() Kind { return KindNativeFunction }
func (n *NativeFunction) Name() string { return n.name }
func (n *NativeFunction) Arity() int { return n.arity }

func (n *NativeFunction) Invoke(ctx Invoker, args []Literal, loc ast.Span) (Value, error) {
	return n.impl(ctx, args, loc)
}

//-----------------------------------------------------------------------------
// User functions
//-----------------------------------------------------------------------------

// Function is a declared function closed over its defining scope.
type Function struct {
	Declaration *ast.FuncDeclaration
	Closure     *Environment
}

func (*Function) Kind() Kind { return KindFunction }
func (f *Function) Name() string { return f.Declaration.ID }
func (f *Function) Arity() int { return len(f.Declaration.Parameters) }

// ReturnType is the declared return type.
func (f *Function) ReturnType() string { return f.Declaration.DataType }

func (f *Function) Invoke(ctx Invoker, args []Literal, loc ast.Span) (Value, error) {
	return ctx.CallFunction(f, args, loc)
}

//-----------------------------------------------------------------------------
// Structs
//-----------------------------------------------------------------------------

// Struct is a declared record type. Invoking it assigns fields positionally.
type Struct struct {
	Declaration *ast.StructDeclaration
	Closure     *Environment
}

func (*Struct) Kind() Kind { return KindStruct }
func (s *Struct) Name() string { return s.Declaration.ID }
func (s *Struct) Arity() int { return len(s.Declaration.Fields) }

func (s *Struct) Invoke(ctx Invoker, args []Literal, loc ast.Span) (Value, error) {
	return ctx.Instantiate(s, args, loc)
}

//-----------------------------------------------------------------------------
// Array factory
//-----------------------------------------------------------------------------

// ArrayList builds arrays from already evaluated elements. An empty ElemType
// takes the first element's type.
type ArrayList struct {
	ElemType string
}

func (*ArrayList) Kind() Kind { return KindArrayList }
func (*ArrayList) Name() string { return "ArrayList" }
func (*ArrayList) Arity() int { return -1 }

func (a *ArrayList) Invoke(_ Invoker, args []Literal, loc ast.Span) (Value, error) {
	elemType := a.ElemType
	if elemType == "" {
		if len(args) == 0 {
			return nil, Errorf(InvalidOperandTypes, loc, "Cannot infer the element type of an empty array")
		}
		elemType = args[0].Type
	}
	elements := make([]Literal, len(args))
	copy(elements, args)
	return Literal{Type: ArrayType(elemType, 1), Value: NewArrayListInstance(elemType, elements)}, nil
}
