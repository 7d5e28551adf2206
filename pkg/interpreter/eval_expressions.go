package interpreter

import (
	"fmt"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return runtime.FromAST(n), nil
	case *ast.Group:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VarValue:
		return env.Get(n.ID, n.Span())
	case *ast.Unary:
		operand, err := i.evaluateLiteral(n.Operand, env)
		if err != nil {
			return nil, err
		}
		return runtime.Unary(n.Operator, operand, n.Span())
	case *ast.Arithmetic:
		left, right, err := i.evaluateOperands(n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		result, err := runtime.Arithmetic(n.Operator, left, right, n.Span())
		if err = i.warn(err); err != nil {
			return nil, err
		}
		return result, nil
	case *ast.Relational:
		left, right, err := i.evaluateOperands(n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.Relational(n.Operator, left, right, n.Span())
	case *ast.Logical:
		left, right, err := i.evaluateOperands(n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.Logical(n.Operator, left, right, n.Span())
	case *ast.Ternary:
		cond, err := i.evaluateCondition(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return i.evaluateLiteral(n.Then, env)
		}
		return i.evaluateLiteral(n.Else, env)
	case *ast.VarAssign:
		return i.evaluateVarAssign(n, env)
	case *ast.Callee:
		return i.evaluateCallee(n, nil, env)
	case *ast.Instance:
		return i.evaluateInstance(n, env)
	case *ast.Get:
		return i.evaluateGet(n, env)
	case *ast.Set:
		return i.evaluateSet(n, env)
	case *ast.ArrayInstance:
		return i.evaluateArrayInstance(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

// evaluateLiteral evaluates expr and requires a literal result.
func (i *Interpreter) evaluateLiteral(expr ast.Expression, env *runtime.Environment) (runtime.Literal, error) {
	v, err := i.evaluateExpression(expr, env)
	if err != nil {
		return runtime.Literal{}, err
	}
	lit, ok := v.(runtime.Literal)
	if !ok {
		return runtime.Literal{}, runtime.Errorf(runtime.ExpectedLiteral, expr.Span(), "Expected a value, got %s", describe(v))
	}
	return lit, nil
}

// evaluateOperands always evaluates both sides, left first.
func (i *Interpreter) evaluateOperands(left, right ast.Expression, env *runtime.Environment) (runtime.Literal, runtime.Literal, error) {
	l, err := i.evaluateLiteral(left, env)
	if err != nil {
		return runtime.Literal{}, runtime.Literal{}, err
	}
	r, err := i.evaluateLiteral(right, env)
	if err != nil {
		return runtime.Literal{}, runtime.Literal{}, err
	}
	return l, r, nil
}

func describe(v runtime.Value) string {
	switch fn := v.(type) {
	case nil:
		return "nothing"
	case runtime.Invocable:
		return fmt.Sprintf("%s %s", fn.Kind(), fn.Name())
	default:
		return v.Kind().String()
	}
}

func (i *Interpreter) evaluateVarAssign(assign *ast.VarAssign, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateLiteral(assign.Value, env)
	if err != nil {
		return nil, err
	}
	final, err := i.combine(assign.Sig, func() (runtime.Literal, error) {
		current, err := env.Get(assign.ID, assign.Span())
		if err != nil {
			return runtime.Literal{}, err
		}
		lit, ok := current.(runtime.Literal)
		if !ok {
			return runtime.Literal{}, runtime.Errorf(runtime.ExpectedLiteral, assign.Span(), "Cannot update %s", describe(current))
		}
		return lit, nil
	}, value, assign.Span())
	if err != nil {
		return nil, err
	}
	if err := env.Assign(assign.ID, final, assign.Span()); err != nil {
		return nil, err
	}
	return final, nil
}

// combine resolves an assignment sign: "=" stores value, "+=" and "-="
// apply the operator to the current value first.
func (i *Interpreter) combine(sig string, current func() (runtime.Literal, error), value runtime.Literal, loc ast.Span) (runtime.Literal, error) {
	var op string
	switch sig {
	case "=", "":
		return value, nil
	case "+=":
		op = "+"
	case "-=":
		op = "-"
	default:
		return runtime.Literal{}, runtime.Errorf(runtime.UnsupportedOperator, loc, "Unsupported operation %s", sig)
	}
	old, err := current()
	if err != nil {
		return runtime.Literal{}, err
	}
	result, err := runtime.Arithmetic(op, old, value, loc)
	if err = i.warn(err); err != nil {
		return runtime.Literal{}, err
	}
	return result, nil
}

func (i *Interpreter) evaluateArrayInstance(node *ast.ArrayInstance, env *runtime.Environment) (runtime.Value, error) {
	if len(node.Dimensions) > 0 {
		dims := make([]int, len(node.Dimensions))
		for idx, expr := range node.Dimensions {
			lit, err := i.evaluateLiteral(expr, env)
			if err != nil {
				return nil, err
			}
			n, ok := lit.Value.(int64)
			if !ok || lit.Type != runtime.TypeInt || n < 0 {
				return nil, runtime.Errorf(runtime.InvalidOperandTypes, expr.Span(), "Array dimension must be a non-negative int")
			}
			dims[idx] = int(n)
		}
		return runtime.NewDefaultArray(node.ElemType, dims), nil
	}
	args := make([]runtime.Literal, 0, len(node.Elements))
	for _, expr := range node.Elements {
		lit, err := i.evaluateLiteral(expr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, lit)
	}
	factory := &runtime.ArrayList{ElemType: node.ElemType}
	return factory.Invoke(i, args, node.Span())
}
