package interpreter

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

func (i *Interpreter) evaluateInstance(node *ast.Instance, env *runtime.Environment) (runtime.Value, error) {
	v, err := env.Get(node.ID, node.Span())
	if err != nil {
		return nil, err
	}
	def, ok := v.(*runtime.Struct)
	if !ok {
		return nil, runtime.Errorf(runtime.NotInvocable, node.Span(), "%s is not a struct", node.ID)
	}
	inst, err := i.newStructInstance(def)
	if err != nil {
		return nil, err
	}
	for _, init := range node.Arguments {
		value, err := i.evaluateLiteral(init.Value, env)
		if err != nil {
			return nil, err
		}
		final, err := i.combine(init.Sig, func() (runtime.Literal, error) {
			return inst.Property(init.ID, init.Span())
		}, value, init.Span())
		if err != nil {
			return nil, err
		}
		if err := inst.SetProperty(init.ID, final, init.Span()); err != nil {
			return nil, err
		}
	}
	return runtime.Literal{Type: def.Name(), Value: inst}, nil
}

// evaluateTarget evaluates the object of a Get or Set and requires an
// instance payload.
func (i *Interpreter) evaluateTarget(expr ast.Expression, env *runtime.Environment) (runtime.Literal, runtime.Instance, error) {
	lit, err := i.evaluateLiteral(expr, env)
	if err != nil {
		return runtime.Literal{}, nil, err
	}
	inst, ok := lit.Value.(runtime.Instance)
	if !ok {
		if lit.IsNull() {
			return lit, nil, runtime.Errorf(runtime.InvalidOperandTypes, expr.Span(), "Cannot access a member of a null %s", lit.Type)
		}
		return lit, nil, runtime.Errorf(runtime.InvalidOperandTypes, expr.Span(), "Cannot access a member of %s", lit.Type)
	}
	return lit, inst, nil
}

func (i *Interpreter) evaluateGet(node *ast.Get, env *runtime.Environment) (runtime.Value, error) {
	if node.Call != nil {
		receiver, err := i.evaluateLiteral(node.Object, env)
		if err != nil {
			return nil, err
		}
		return i.evaluateCallee(node.Call, &receiver, env)
	}
	_, inst, err := i.evaluateTarget(node.Object, env)
	if err != nil {
		return nil, err
	}
	if node.Index != nil {
		index, err := i.evaluateLiteral(node.Index, env)
		if err != nil {
			return nil, err
		}
		v, err := inst.Index(index, node.Span())
		return v, runtime.At(err, node.Span())
	}
	return inst.Property(node.Property, node.Span())
}

func (i *Interpreter) evaluateSet(node *ast.Set, env *runtime.Environment) (runtime.Value, error) {
	_, inst, err := i.evaluateTarget(node.Object, env)
	if err != nil {
		return nil, err
	}
	var index runtime.Literal
	if node.Index != nil {
		if index, err = i.evaluateLiteral(node.Index, env); err != nil {
			return nil, err
		}
	}
	value, err := i.evaluateLiteral(node.Value, env)
	if err != nil {
		return nil, err
	}
	final, err := i.combine(node.Sig, func() (runtime.Literal, error) {
		if node.Index != nil {
			return inst.Index(index, node.Span())
		}
		return inst.Property(node.Property, node.Span())
	}, value, node.Span())
	if err != nil {
		return nil, err
	}
	if node.Index != nil {
		err = inst.SetIndex(index, final, node.Span())
	} else {
		err = inst.SetProperty(node.Property, final, node.Span())
	}
	if err != nil {
		return nil, runtime.At(err, node.Span())
	}
	return final, nil
}
