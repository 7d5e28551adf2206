package runtime

import (
	"strings"

	"oak/toolchain-go/pkg/ast"
)

// Instance is the shared surface of struct and array payloads.
type Instance interface {
	TypeName() string
	Property(name string, loc ast.Span) (Literal, error)
	SetProperty(name string, value Literal, loc ast.Span) error
	Index(index Literal, loc ast.Span) (Literal, error)
	SetIndex(index Literal, value Literal, loc ast.Span) error
	Clone() Instance
}

// LengthProperty is the read-only pseudo-property every array exposes.
const LengthProperty = "length"

//-----------------------------------------------------------------------------
// Struct instances
//-----------------------------------------------------------------------------

// StructInstance stores field values in a detached environment.
type StructInstance struct {
	Definition *Struct
	Properties *Environment
}

func (s *StructInstance) TypeName() string { return s.Definition.Name() }

func (s *StructInstance) Property(name string, loc ast.Span) (Literal, error) {
	v, err := s.Properties.Get(name, loc)
	if err != nil {
		return Literal{}, err
	}
	lit, ok := v.(Literal)
	if !ok {
		return Literal{}, Errorf(ExpectedLiteral, loc, "Field %s of %s is not a value", name, s.TypeName())
	}
	return lit, nil
}

func (s *StructInstance) SetProperty(name string, value Literal, loc ast.Span) error {
	return s.Properties.Assign(name, value, loc)
}

func (s *StructInstance) Index(Literal, ast.Span) (Literal, error) {
	return Literal{}, s.noIndex()
}

func (s *StructInstance) SetIndex(Literal, Literal, ast.Span) error {
	return s.noIndex()
}

func (s *StructInstance) noIndex() error {
	return &Error{Kind: AbstractMethodCalled, Message: "Struct " + s.TypeName() + " cannot be indexed"}
}

func (s *StructInstance) Clone() Instance {
	return &StructInstance{Definition: s.Definition, Properties: s.Properties.Clone()}
}

// Fields lists field names in declaration order.
func (s *StructInstance) Fields() []string {
	return s.Properties.Keys()
}

func (s *StructInstance) String() string {
	var sb strings.Builder
	sb.WriteString(s.TypeName())
	sb.WriteByte('{')
	for i, name := range s.Fields() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		if v, ok := s.Properties.values[name].(Literal); ok {
			sb.WriteString(v.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

//-----------------------------------------------------------------------------
// Array instances
//-----------------------------------------------------------------------------

// ArrayListInstance is the payload of every "T[]" literal.
type ArrayListInstance struct {
	ElemType string
	Elements []Literal
}

func NewArrayListInstance(elemType string, elements []Literal) *ArrayListInstance {
	return &ArrayListInstance{ElemType: elemType, Elements: elements}
}

func (a *ArrayListInstance) TypeName() string { return ArrayType(a.ElemType, 1) }

// Len is the element count.
func (a *ArrayListInstance) Len() int { return len(a.Elements) }

func (a *ArrayListInstance) Property(name string, loc ast.Span) (Literal, error) {
	if name == LengthProperty {
		return Int(int64(len(a.Elements))), nil
	}
	return Literal{}, Errorf(UndefinedVariable, loc, "Property %s not found on array", name)
}

func (a *ArrayListInstance) SetProperty(name string, _ Literal, loc ast.Span) error {
	if name == LengthProperty {
		return Errorf(UnsupportedOperator, loc, "Array length is read-only")
	}
	return Errorf(UndefinedVariable, loc, "Property %s not found on array", name)
}

func (a *ArrayListInstance) Index(index Literal, loc ast.Span) (Literal, error) {
	i, err := a.position(index, loc)
	if err != nil {
		return Literal{}, err
	}
	return a.Elements[i], nil
}

func (a *ArrayListInstance) SetIndex(index Literal, value Literal, loc ast.Span) error {
	i, err := a.position(index, loc)
	if err != nil {
		return err
	}
	a.Elements[i] = value
	return nil
}

func (a *ArrayListInstance) position(index Literal, loc ast.Span) (int, error) {
	n, ok := index.Value.(int64)
	if !ok || index.Type != TypeInt {
		return 0, Errorf(InvalidOperandTypes, loc, "Index must be a number")
	}
	if n < 0 || n >= int64(len(a.Elements)) {
		return 0, Errorf(IndexOutOfBounds, loc, "Index out of bounds: %d (length %d)", n, len(a.Elements))
	}
	return int(n), nil
}

func (a *ArrayListInstance) Clone() Instance { return a.CloneArray() }

// CloneArray deep-copies nested arrays.
func (a *ArrayListInstance) CloneArray() *ArrayListInstance {
	elements := make([]Literal, len(a.Elements))
	for i, el := range a.Elements {
		elements[i] = CloneLiteral(el)
	}
	return &ArrayListInstance{ElemType: a.ElemType, Elements: elements}
}

func (a *ArrayListInstance) String() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DefaultValue is the zero element used when allocating arrays of typ.
func DefaultValue(typ string) Literal {
	switch typ {
	case TypeInt:
		return Int(0)
	case TypeFloat:
		return Float(0)
	case TypeBool:
		return Bool(false)
	case TypeString:
		return String("")
	case TypeChar:
		return Char(0)
	default:
		return Null(typ)
	}
}

// NewDefaultArray allocates a default-filled array; more than one dimension
// nests arrays, outermost first.
func NewDefaultArray(elemType string, dims []int) Literal {
	if len(dims) == 0 {
		return DefaultValue(elemType)
	}
	inner := ArrayType(elemType, len(dims)-1)
	elements := make([]Literal, dims[0])
	for i := range elements {
		elements[i] = NewDefaultArray(elemType, dims[1:])
	}
	return Literal{Type: ArrayType(elemType, len(dims)), Value: NewArrayListInstance(inner, elements)}
}
