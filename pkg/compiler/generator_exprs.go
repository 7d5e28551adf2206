package compiler

import (
	"fmt"
	"math"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// compileExpression emits code that leaves exactly one value on the stack.
func (g *generator) compileExpression(b *Buffer, expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.Literal:
		g.pushConstant(b, runtime.FromAST(e))
		return nil
	case *ast.Group:
		return g.compileExpression(b, e.Expression)
	case *ast.VarValue:
		ref, err := g.resolve(e.ID, e.Span())
		if err != nil {
			return err
		}
		g.pushVar(b, ref)
		return nil
	case *ast.Unary:
		return g.compileUnary(b, e)
	case *ast.Arithmetic:
		return g.compileArithmetic(b, e)
	case *ast.Relational:
		return g.compileRelational(b, e)
	case *ast.Logical:
		return g.compileLogical(b, e)
	case *ast.Ternary:
		return g.compileTernary(b, e)
	case *ast.VarAssign:
		return g.compileVarAssign(b, e)
	case *ast.Callee:
		return g.compileCall(b, e, nil)
	case *ast.Instance:
		return g.compileInstance(b, e)
	case *ast.Get:
		return g.compileGet(b, e)
	case *ast.Set:
		return g.compileSet(b, e)
	case *ast.ArrayInstance:
		return g.compileArrayInstance(b, e)
	case nil:
		return fmt.Errorf("compiler: missing expression")
	default:
		return fmt.Errorf("compiler: unsupported expression %s", expr.NodeType())
	}
}

func float32Bits(v float64) uint32 {
	return math.Float32bits(float32(v))
}

func (g *generator) compileUnary(b *Buffer, expr *ast.Unary) error {
	loc := expr.Span()
	if err := g.compileExpression(b, expr.Operand); err != nil {
		return err
	}
	typ := g.top().Type
	switch {
	case expr.Operator == "-" && typ == runtime.TypeInt:
		g.pop(b, rT0)
		if err := g.callBuiltin(b, "negInt", loc); err != nil {
			return err
		}
		g.push(b, rT0, stackObject{Type: runtime.TypeInt})
	case expr.Operator == "-" && typ == runtime.TypeFloat:
		g.popFloat(b, rFT0)
		if err := g.callBuiltin(b, "negFloat", loc); err != nil {
			return err
		}
		g.pushFloat(b, rFT0, stackObject{Type: runtime.TypeFloat})
	case expr.Operator == "!" && typ == runtime.TypeBool:
		g.pop(b, rT0)
		if err := g.callBuiltin(b, "negBool", loc); err != nil {
			return err
		}
		g.push(b, rT0, stackObject{Type: runtime.TypeBool})
	case expr.Operator != "-" && expr.Operator != "!":
		return runtime.Errorf(runtime.UnsupportedOperator, loc, "Unsupported unary operator %s", expr.Operator)
	default:
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Operand type is not valid: %s", typ)
	}
	return nil
}

// compileTernary lays out both arms; each pushes one value but only one
// runs, so the first arm's object is dropped at the join.
func (g *generator) compileTernary(b *Buffer, expr *ast.Ternary) error {
	id := g.nextLabelID()
	elseLabel := fmt.Sprintf("ternelse_%d", id)
	endLabel := fmt.Sprintf("ternend_%d", id)
	if err := g.compileCondition(b, expr.Condition); err != nil {
		return err
	}
	b.branch("beq", rT0, rZero, elseLabel)
	if err := g.compileExpression(b, expr.Then); err != nil {
		return err
	}
	then := g.forget()
	b.jump(endLabel)
	b.Label(elseLabel)
	if err := g.compileExpression(b, expr.Else); err != nil {
		return err
	}
	if other := g.top(); other.Type != then.Type {
		return runtime.Errorf(runtime.InvalidOperandTypes, expr.Span(), "Ternary branches differ: %s and %s", then.Type, other.Type)
	}
	b.Label(endLabel)
	g.retypeTop(then.Type, then.Dims)
	return nil
}

// compoundOperator maps an assignment sign to its arithmetic operator; ""
// means plain assignment.
func compoundOperator(sig string, loc ast.Span) (string, error) {
	switch sig {
	case "=", "":
		return "", nil
	case "+=":
		return "+", nil
	case "-=":
		return "-", nil
	}
	return "", runtime.Errorf(runtime.UnsupportedOperator, loc, "Unsupported operation %s", sig)
}

// compileAssignedValue compiles the right side of an assignment; a
// compound sign reads the current value through current.
func (g *generator) compileAssignedValue(b *Buffer, sig string, current ast.Expression, value ast.Expression, loc ast.Span) error {
	op, err := compoundOperator(sig, loc)
	if err != nil {
		return err
	}
	if op == "" {
		return g.compileExpression(b, value)
	}
	combined := ast.NewArithmetic(op, current, value)
	ast.SetSpan(combined, loc)
	return g.compileExpression(b, combined)
}

func (g *generator) compileVarAssign(b *Buffer, expr *ast.VarAssign) error {
	loc := expr.Span()
	target, err := g.resolve(expr.ID, loc)
	if err != nil {
		return err
	}
	current := ast.NewVarValue(expr.ID)
	ast.SetSpan(current, loc)
	if err := g.compileAssignedValue(b, expr.Sig, current, expr.Value, loc); err != nil {
		return err
	}
	if err := g.coerceTop(b, target.obj.Type, loc); err != nil {
		return err
	}
	value := g.popValue(b, rT0, rFT0)
	target, _ = g.resolve(expr.ID, loc)
	g.storeVar(b, target, rT0, rFT0)
	g.pushValue(b, rT0, rFT0, stackObject{Type: value.Type, Dims: value.Dims})
	return nil
}
