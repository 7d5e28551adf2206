package compiler

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// Binary operators map to builtin routines: the left operand in t0 (ft0),
// the right in t1 (ft1), the result in t0 (ft0).

type operatorRoutines struct {
	intRoutine, floatRoutine string
}

var arithmeticRoutines = map[string]operatorRoutines{
	"+": {"addInt", "addFloat"},
	"-": {"subInt", "subFloat"},
	"*": {"mulInt", "mulFloat"},
	"/": {"divInt", "divFloat"},
	"%": {"remInt", ""},
}

var relationalRoutines = map[string]operatorRoutines{
	"<":  {"lessThanInt", "lessThanFloat"},
	">":  {"greaterThanInt", "greaterThanFloat"},
	"<=": {"lessEqualInt", "lessEqualFloat"},
	">=": {"greaterEqualInt", "greaterEqualFloat"},
	"==": {"equalInt", "equalFloat"},
	"!=": {"notEqualInt", "notEqualFloat"},
}

var logicalRoutines = map[string]string{
	"&&": "andInt",
	"||": "orInt",
}

// compileOperands evaluates both sides, left first, and returns their
// static types.
func (g *generator) compileOperands(b *Buffer, left, right ast.Expression) (string, string, error) {
	if err := g.compileExpression(b, left); err != nil {
		return "", "", err
	}
	if err := g.compileExpression(b, right); err != nil {
		return "", "", err
	}
	objects := g.unit.objects
	return objects[len(objects)-2].Type, objects[len(objects)-1].Type, nil
}

func (g *generator) compileArithmetic(b *Buffer, expr *ast.Arithmetic) error {
	loc := expr.Span()
	routines, ok := arithmeticRoutines[expr.Operator]
	if !ok {
		return runtime.Errorf(runtime.UnsupportedOperator, loc, "Unsupported arithmetic operator %s", expr.Operator)
	}
	lt, rt, err := g.compileOperands(b, expr.Left, expr.Right)
	if err != nil {
		return err
	}
	result, ok := runtime.ArithmeticResultType(expr.Operator, lt, rt)
	if !ok {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Operand types are not valid: %s and %s", lt, rt)
	}
	if (expr.Operator == "/" || expr.Operator == "%") && isZeroLiteral(expr.Right) {
		g.warn(loc, "Division by zero")
	}
	switch result {
	case runtime.TypeString:
		g.pop(b, rA1)
		g.pop(b, rA0)
		if err := g.callBuiltin(b, "concatString", loc); err != nil {
			return err
		}
		g.push(b, rT0, stackObject{Type: runtime.TypeString})
	case runtime.TypeFloat:
		g.popNumber(b, rT1, rFT1)
		g.popNumber(b, rT0, rFT0)
		if err := g.callBuiltin(b, routines.floatRoutine, loc); err != nil {
			return err
		}
		g.pushFloat(b, rFT0, stackObject{Type: runtime.TypeFloat})
	default:
		g.pop(b, rT1)
		g.pop(b, rT0)
		if err := g.callBuiltin(b, routines.intRoutine, loc); err != nil {
			return err
		}
		g.push(b, rT0, stackObject{Type: result})
	}
	return nil
}

func isZeroLiteral(expr ast.Expression) bool {
	for {
		group, ok := expr.(*ast.Group)
		if !ok {
			break
		}
		expr = group.Expression
	}
	lit, ok := expr.(*ast.Literal)
	if !ok {
		return false
	}
	switch v := runtime.FromAST(lit).Value.(type) {
	case int64:
		return v == 0
	case float64:
		return v == 0
	}
	return false
}

func (g *generator) compileRelational(b *Buffer, expr *ast.Relational) error {
	loc := expr.Span()
	routines, ok := relationalRoutines[expr.Operator]
	if !ok {
		return runtime.Errorf(runtime.UnsupportedOperator, loc, "Unsupported relational operator %s", expr.Operator)
	}
	lt, rt, err := g.compileOperands(b, expr.Left, expr.Right)
	if err != nil {
		return err
	}
	if !runtime.RelationalAccepts(expr.Operator, lt, rt) {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Operand types are not valid: %s and %s", lt, rt)
	}
	switch {
	case lt == runtime.TypeString:
		g.pop(b, rA1)
		g.pop(b, rA0)
		if err := g.callBuiltin(b, "compareString", loc); err != nil {
			return err
		}
		if expr.Operator == "!=" {
			if err := g.callBuiltin(b, "negBool", loc); err != nil {
				return err
			}
		}
	case lt == runtime.TypeFloat || rt == runtime.TypeFloat:
		g.popNumber(b, rT1, rFT1)
		g.popNumber(b, rT0, rFT0)
		if err := g.callBuiltin(b, routines.floatRoutine, loc); err != nil {
			return err
		}
	default:
		g.pop(b, rT1)
		g.pop(b, rT0)
		if err := g.callBuiltin(b, routines.intRoutine, loc); err != nil {
			return err
		}
	}
	g.push(b, rT0, stackObject{Type: runtime.TypeBool})
	return nil
}

// compileLogical always evaluates both operands.
func (g *generator) compileLogical(b *Buffer, expr *ast.Logical) error {
	loc := expr.Span()
	routine, ok := logicalRoutines[expr.Operator]
	if !ok {
		return runtime.Errorf(runtime.UnsupportedOperator, loc, "Unsupported logical operator %s", expr.Operator)
	}
	lt, rt, err := g.compileOperands(b, expr.Left, expr.Right)
	if err != nil {
		return err
	}
	if lt != runtime.TypeBool || rt != runtime.TypeBool {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Operand types are not valid: %s and %s", lt, rt)
	}
	g.pop(b, rT1)
	g.pop(b, rT0)
	if err := g.callBuiltin(b, routine, loc); err != nil {
		return err
	}
	g.push(b, rT0, stackObject{Type: runtime.TypeBool})
	return nil
}
