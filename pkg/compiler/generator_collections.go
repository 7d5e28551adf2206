package compiler

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// Arrays and structs live on the heap as word sequences behind a length
// header at handle-4. A struct is laid out like an array of its fields in
// declaration order.

func innerDims(dims []int) []int {
	if len(dims) > 1 {
		return dims[1:]
	}
	return nil
}

func (g *generator) compileArrayInstance(b *Buffer, expr *ast.ArrayInstance) error {
	loc := expr.Span()
	if len(expr.Dimensions) > 0 {
		dims, err := constantDims(expr.Dimensions)
		if err != nil {
			return err
		}
		return g.allocateArray(b, expr.ElemType, dims, loc)
	}
	n := len(expr.Elements)
	elemType := expr.ElemType
	if n == 0 && elemType == "" {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot infer the element type of an empty array")
	}
	b.li(rA0, int64(n))
	if err := g.callBuiltin(b, "allocArray", loc); err != nil {
		return err
	}
	g.push(b, rT0, stackObject{Type: runtime.ArrayType(elemType, 1), Dims: []int{n}})
	var elemDims []int
	for i, el := range expr.Elements {
		if err := g.compileExpression(b, el); err != nil {
			return err
		}
		if elemType == "" {
			elemType = g.top().Type
			elemDims = g.top().Dims
		}
		if err := g.coerceTop(b, elemType, el.Span()); err != nil {
			return err
		}
		g.pop(b, rT0)
		b.lw(rT1, 0, rSP)
		b.sw(rT0, wordSize*i, rT1)
	}
	g.retypeTop(runtime.ArrayType(elemType, 1), append([]int{n}, elemDims...))
	return nil
}

// constantDims reads allocation sizes, which must be integer literals so
// the layout is known while compiling.
func constantDims(exprs []ast.Expression) ([]int, error) {
	dims := make([]int, len(exprs))
	for i, expr := range exprs {
		lit, ok := expr.(*ast.Literal)
		if !ok {
			return nil, runtime.Errorf(runtime.UnsupportedOperator, expr.Span(), "Array dimensions must be constant when compiling")
		}
		n, ok := runtime.FromAST(lit).Value.(int64)
		if !ok || n < 0 {
			return nil, runtime.Errorf(runtime.InvalidOperandTypes, expr.Span(), "Array dimension must be a non-negative int")
		}
		dims[i] = int(n)
	}
	return dims, nil
}

// allocateArray pushes a default-filled array. Inner dimensions are
// allocated row by row and stored into the outer array.
func (g *generator) allocateArray(b *Buffer, elemType string, dims []int, loc ast.Span) error {
	b.li(rA0, int64(dims[0]))
	if err := g.callBuiltin(b, "allocArray", loc); err != nil {
		return err
	}
	g.push(b, rT0, stackObject{Type: runtime.ArrayType(elemType, len(dims)), Dims: dims})
	switch {
	case len(dims) > 1:
		for i := 0; i < dims[0]; i++ {
			if err := g.allocateArray(b, elemType, dims[1:], loc); err != nil {
				return err
			}
			g.pop(b, rT0)
			b.lw(rT1, 0, rSP)
			b.sw(rT0, wordSize*i, rT1)
		}
	case elemType == runtime.TypeString && dims[0] > 0:
		g.pushConstant(b, runtime.String(""))
		g.pop(b, rT2)
		b.lw(rT1, 0, rSP)
		for i := 0; i < dims[0]; i++ {
			b.sw(rT2, wordSize*i, rT1)
		}
	}
	return nil
}

func fieldIndex(def *ast.StructDeclaration, name string) (int, *ast.VarDeclaration) {
	for i, field := range def.Fields {
		if field.ID == name {
			return i, field
		}
	}
	return -1, nil
}

func (g *generator) compileInstance(b *Buffer, expr *ast.Instance) error {
	loc := expr.Span()
	def, ok := g.structs[expr.ID]
	if !ok {
		return runtime.Errorf(runtime.NotInvocable, loc, "%s is not a struct", expr.ID)
	}
	values := make([]ast.Expression, len(def.Fields))
	for i, field := range def.Fields {
		values[i] = field.Value
	}
	for _, arg := range expr.Arguments {
		i, _ := fieldIndex(def, arg.ID)
		if i < 0 {
			return runtime.Errorf(runtime.UndefinedVariable, arg.Span(), "Variable %s not found", arg.ID)
		}
		op, err := compoundOperator(arg.Sig, arg.Span())
		if err != nil {
			return err
		}
		if op != "" {
			return runtime.Errorf(runtime.UnsupportedOperator, arg.Span(), "Unsupported operation %s", arg.Sig)
		}
		values[i] = arg.Value
	}
	return g.buildStruct(b, def, values, loc)
}

// compileStructCall handles Point(1, 2): arguments fill fields in order.
func (g *generator) compileStructCall(b *Buffer, def *ast.StructDeclaration, args []ast.Expression, loc ast.Span) error {
	if len(args) != len(def.Fields) {
		return runtime.Errorf(runtime.ArityMismatch, loc, "Expected %d arguments, got %d", len(def.Fields), len(args))
	}
	return g.buildStruct(b, def, args, loc)
}

func (g *generator) buildStruct(b *Buffer, def *ast.StructDeclaration, values []ast.Expression, loc ast.Span) error {
	b.li(rA0, int64(len(def.Fields)))
	if err := g.callBuiltin(b, "allocArray", loc); err != nil {
		return err
	}
	g.push(b, rT0, stackObject{Type: def.ID})
	for i, field := range def.Fields {
		switch {
		case values[i] != nil:
			if err := g.compileExpression(b, values[i]); err != nil {
				return err
			}
			if err := g.coerceTop(b, field.DataType, values[i].Span()); err != nil {
				return err
			}
		case field.DataType == runtime.TypeString:
			g.pushConstant(b, runtime.String(""))
		default:
			continue
		}
		g.pop(b, rT0)
		b.lw(rT1, 0, rSP)
		b.sw(rT0, wordSize*i, rT1)
	}
	return nil
}

func (g *generator) compileGet(b *Buffer, expr *ast.Get) error {
	loc := expr.Span()
	switch {
	case expr.Call != nil:
		return g.compileCall(b, expr.Call, expr.Object)
	case expr.Index != nil:
		arr, idx, err := g.compileOperands(b, expr.Object, expr.Index)
		if err != nil {
			return err
		}
		if err := g.checkIndexable(arr, idx, loc); err != nil {
			return err
		}
		dims := g.unit.objects[len(g.unit.objects)-2].Dims
		g.pop(b, rA1)
		g.pop(b, rA0)
		if err := g.callBuiltin(b, "getElement", loc); err != nil {
			return err
		}
		g.push(b, rT0, stackObject{Type: runtime.ElementType(arr), Dims: innerDims(dims)})
		return nil
	}
	if err := g.compileExpression(b, expr.Object); err != nil {
		return err
	}
	obj := g.top()
	if runtime.IsArrayType(obj.Type) {
		if expr.Property != runtime.LengthProperty {
			return runtime.Errorf(runtime.UndefinedVariable, loc, "Property %s not found on array", expr.Property)
		}
		g.pop(b, rT0)
		if len(obj.Dims) > 0 {
			b.li(rT0, int64(obj.Dims[0]))
		} else {
			b.lw(rT0, -wordSize, rT0)
		}
		g.push(b, rT0, stackObject{Type: runtime.TypeInt})
		return nil
	}
	i, field, err := g.structField(obj.Type, expr.Property, loc)
	if err != nil {
		return err
	}
	g.pop(b, rT0)
	b.lw(rT0, wordSize*i, rT0)
	g.push(b, rT0, stackObject{Type: field.DataType})
	return nil
}

func (g *generator) checkIndexable(arr, idx string, loc ast.Span) error {
	if _, isStruct := g.structs[arr]; isStruct {
		return runtime.Errorf(runtime.AbstractMethodCalled, loc, "Struct %s cannot be indexed", arr)
	}
	if !runtime.IsArrayType(arr) {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot index %s", arr)
	}
	if idx != runtime.TypeInt {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Index must be a number")
	}
	return nil
}

func (g *generator) structField(typ, name string, loc ast.Span) (int, *ast.VarDeclaration, error) {
	def, ok := g.structs[typ]
	if !ok {
		return 0, nil, runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot access a member of %s", typ)
	}
	i, field := fieldIndex(def, name)
	if i < 0 {
		return 0, nil, runtime.Errorf(runtime.UndefinedVariable, loc, "Variable %s not found", name)
	}
	return i, field, nil
}

func (g *generator) compileSet(b *Buffer, expr *ast.Set) error {
	loc := expr.Span()
	if expr.Index != nil {
		arr, idx, err := g.compileOperands(b, expr.Object, expr.Index)
		if err != nil {
			return err
		}
		if err := g.checkIndexable(arr, idx, loc); err != nil {
			return err
		}
		// A compound sign reads the element back through the evaluated
		// handle and index, so neither operand runs twice.
		arrName, idxName := g.hiddenName("set"), g.hiddenName("set")
		g.unit.objects[len(g.unit.objects)-2].Name = arrName
		g.unit.objects[len(g.unit.objects)-1].Name = idxName
		current := ast.NewGetIndex(ast.NewVarValue(arrName), ast.NewVarValue(idxName))
		ast.SetSpan(current, loc)
		if err := g.compileAssignedValue(b, expr.Sig, current, expr.Value, loc); err != nil {
			return err
		}
		if err := g.coerceTop(b, runtime.ElementType(arr), loc); err != nil {
			return err
		}
		value := g.pop(b, rA2)
		g.pop(b, rA1)
		g.pop(b, rA0)
		if err := g.callBuiltin(b, "setElement", loc); err != nil {
			return err
		}
		g.push(b, rA2, stackObject{Type: value.Type, Dims: value.Dims})
		return nil
	}
	if err := g.compileExpression(b, expr.Object); err != nil {
		return err
	}
	obj := g.top()
	if runtime.IsArrayType(obj.Type) {
		if expr.Property == runtime.LengthProperty {
			return runtime.Errorf(runtime.UnsupportedOperator, loc, "Array length is read-only")
		}
		return runtime.Errorf(runtime.UndefinedVariable, loc, "Property %s not found on array", expr.Property)
	}
	i, field, err := g.structField(obj.Type, expr.Property, loc)
	if err != nil {
		return err
	}
	objName := g.hiddenName("set")
	g.unit.objects[len(g.unit.objects)-1].Name = objName
	current := ast.NewGet(ast.NewVarValue(objName), expr.Property)
	ast.SetSpan(current, loc)
	if err := g.compileAssignedValue(b, expr.Sig, current, expr.Value, loc); err != nil {
		return err
	}
	if err := g.coerceTop(b, field.DataType, loc); err != nil {
		return err
	}
	value := g.pop(b, rT0)
	g.pop(b, rT1)
	b.sw(rT0, wordSize*i, rT1)
	g.push(b, rT0, stackObject{Type: value.Type, Dims: value.Dims})
	return nil
}
