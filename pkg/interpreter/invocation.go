package interpreter

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// evaluateCallee calls a native or an invocable. A non-nil receiver is
// passed as the first argument (method-style calls through Get).
func (i *Interpreter) evaluateCallee(call *ast.Callee, receiver *runtime.Literal, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.resolveCallee(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Literal, 0, len(call.Arguments)+1)
	if receiver != nil {
		args = append(args, *receiver)
	}
	for _, expr := range call.Arguments {
		lit, err := i.evaluateLiteral(expr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, lit)
	}
	if err := runtime.CheckArity(target, len(args), call.Span()); err != nil {
		return nil, err
	}
	result, err := target.Invoke(i, args, call.Span())
	return result, runtime.At(err, call.Span())
}

func (i *Interpreter) resolveCallee(expr ast.Expression, env *runtime.Environment) (runtime.Invocable, error) {
	if name, ok := expr.(*ast.VarValue); ok {
		if native, ok := i.natives[name.ID]; ok {
			return native, nil
		}
	}
	v, err := i.evaluateExpression(expr, env)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(runtime.Invocable)
	if !ok {
		return nil, runtime.Errorf(runtime.NotInvocable, expr.Span(), "Cannot call %s", describe(v))
	}
	return fn, nil
}

// CallFunction runs a user function in a fresh scope under its closure.
func (i *Interpreter) CallFunction(fn *runtime.Function, args []runtime.Literal, loc ast.Span) (runtime.Value, error) {
	decl := fn.Declaration
	scope := runtime.NewNamedEnvironment(fn.Closure, decl.ID)
	for idx, param := range decl.Parameters {
		if err := i.declare(param, runtime.CloneLiteral(args[idx]), scope); err != nil {
			return nil, err
		}
	}

	saved := i.loops
	i.loops = nil
	defer func() { i.loops = saved }()

	c, err := i.evaluateBlock(decl.Body, scope)
	if err != nil {
		return nil, err
	}
	switch c.kind {
	case completionBreak, completionContinue:
		return nil, runtime.Errorf(runtime.InvalidControlTransfer, loc, "%s escaped function %s", c.kind, decl.ID)
	case completionNormal:
		return nil, nil
	}
	return checkReturn(fn, c.value, loc)
}

// checkReturn enforces the declared return type: void forbids a value, var
// accepts anything, other types must match exactly.
func checkReturn(fn *runtime.Function, value *runtime.Literal, loc ast.Span) (runtime.Value, error) {
	declared := fn.ReturnType()
	switch {
	case declared == runtime.TypeVoid:
		if value != nil {
			return nil, runtime.Errorf(runtime.TypeMismatchOnReturn, loc, "Return with a value in a void function %s", fn.Name())
		}
		return nil, nil
	case value == nil:
		return nil, runtime.Errorf(runtime.TypeMismatchOnReturn, loc, "Function %s must return a %s value", fn.Name(), declared)
	case declared == runtime.TypeVar, declared == value.Type:
		return *value, nil
	}
	return nil, runtime.Errorf(runtime.TypeMismatchOnReturn, loc, "Return type mismatch in %s: expected %s, got %s", fn.Name(), declared, value.Type)
}

// Instantiate builds a struct value and assigns args to fields in
// declaration order.
func (i *Interpreter) Instantiate(def *runtime.Struct, args []runtime.Literal, loc ast.Span) (runtime.Literal, error) {
	inst, err := i.newStructInstance(def)
	if err != nil {
		return runtime.Literal{}, err
	}
	for idx, field := range def.Declaration.Fields {
		if err := inst.SetProperty(field.ID, args[idx], loc); err != nil {
			return runtime.Literal{}, err
		}
	}
	return runtime.Literal{Type: def.Name(), Value: inst}, nil
}

// newStructInstance declares every field (running default initialisers
// under the struct's closure) and detaches the field scope.
func (i *Interpreter) newStructInstance(def *runtime.Struct) (*runtime.StructInstance, error) {
	props := runtime.NewNamedEnvironment(def.Closure, def.Name())
	for _, field := range def.Declaration.Fields {
		if err := i.evaluateVarDeclaration(field, props); err != nil {
			return nil, err
		}
	}
	props.Detach()
	return &runtime.StructInstance{Definition: def, Properties: props}, nil
}
