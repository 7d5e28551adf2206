package interpreter

import (
	"fmt"
	"strings"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

type completionKind int

const (
	completionNormal completionKind = iota
	completionBreak
	completionContinue
	completionReturn
)

func (k completionKind) String() string {
	switch k {
	case completionBreak:
		return "break"
	case completionContinue:
		return "continue"
	case completionReturn:
		return "return"
	default:
		return "normal"
	}
}

// completion is how a statement finished. value is set only for a return
// that carried one.
type completion struct {
	kind  completionKind
	value *runtime.Literal
}

var normal = completion{}

// loopContext is one enclosing loop or switch. Continue re-runs the
// innermost loop's update in the loop's own scope before signalling.
type loopContext struct {
	update   ast.Expression
	scope    *runtime.Environment
	isSwitch bool
}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (completion, error) {
	switch n := node.(type) {
	case *ast.VarDeclaration:
		return normal, i.evaluateVarDeclaration(n, env)
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(n.Expression, env)
		return normal, err
	case *ast.Print:
		return normal, i.evaluatePrint(n, env)
	case *ast.Block:
		return i.evaluateBlock(n, env)
	case *ast.If:
		return i.evaluateIf(n, env)
	case *ast.While:
		return i.runLoop(n.Condition, n.Body, nil, env)
	case *ast.For:
		return i.evaluateFor(n, env)
	case *ast.ForEach:
		return i.evaluateForEach(n, env)
	case *ast.Switch:
		return i.evaluateSwitch(n, env)
	case *ast.Break:
		if len(i.loops) == 0 {
			return normal, runtime.Errorf(runtime.InvalidControlTransfer, n.Span(), "break outside of a loop or switch")
		}
		return completion{kind: completionBreak}, nil
	case *ast.Continue:
		return i.evaluateContinue(n, env)
	case *ast.Return:
		return i.evaluateReturn(n, env)
	case *ast.FuncDeclaration:
		return normal, env.Set(n.ID, &runtime.Function{Declaration: n, Closure: env}, n.Span())
	case *ast.StructDeclaration:
		if !env.IsGlobal() {
			return normal, runtime.Errorf(runtime.InvalidDeclaration, n.Span(), "Structs can only be declared in the global scope")
		}
		return normal, env.Set(n.ID, &runtime.Struct{Declaration: n, Closure: env}, n.Span())
	case ast.Expression:
		_, err := i.evaluateExpression(n, env)
		return normal, err
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateBlock(block *ast.Block, env *runtime.Environment) (completion, error) {
	scope := runtime.NewEnvironment(env)
	for _, stmt := range block.Body {
		c, err := i.evaluateStatement(stmt, scope)
		if err != nil || c.kind != completionNormal {
			return c, err
		}
	}
	return normal, nil
}

func (i *Interpreter) evaluateVarDeclaration(decl *ast.VarDeclaration, env *runtime.Environment) error {
	var value runtime.Literal
	if decl.Value != nil {
		lit, err := i.evaluateLiteral(decl.Value, env)
		if err != nil {
			return err
		}
		value = runtime.CloneLiteral(lit)
	}
	return i.declare(decl, value, env)
}

// declare binds decl.ID to value after declaration typing. A zero Literal
// means no initialiser.
func (i *Interpreter) declare(decl *ast.VarDeclaration, value runtime.Literal, env *runtime.Environment) error {
	typed, err := runtime.DeclaredValue(decl.DataType, value, decl.Span())
	if err = i.warn(err); err != nil {
		return err
	}
	return env.Set(decl.ID, typed, decl.Span())
}

func (i *Interpreter) evaluatePrint(stmt *ast.Print, env *runtime.Environment) error {
	var parts []string
	for _, expr := range stmt.Expressions {
		lit, err := i.evaluateLiteral(expr, env)
		if err != nil {
			return err
		}
		parts = appendPrinted(parts, lit)
	}
	i.Write(strings.Join(parts, " ") + "\n")
	return nil
}

func (i *Interpreter) evaluateIf(stmt *ast.If, env *runtime.Environment) (completion, error) {
	cond, err := i.evaluateCondition(stmt.Condition, env)
	if err != nil {
		return normal, err
	}
	if cond {
		return i.evaluateStatement(stmt.Then, env)
	}
	if stmt.Else != nil {
		return i.evaluateStatement(stmt.Else, env)
	}
	return normal, nil
}

// evaluateCondition requires a bool literal; a null bool counts as false.
func (i *Interpreter) evaluateCondition(expr ast.Expression, env *runtime.Environment) (bool, error) {
	lit, err := i.evaluateLiteral(expr, env)
	if err != nil {
		return false, err
	}
	if lit.Type != runtime.TypeBool {
		return false, runtime.Errorf(runtime.ExpectedBoolean, expr.Span(), "Expected a bool condition, got %s", lit.Type)
	}
	b, _ := lit.Value.(bool)
	return b, nil
}

// runLoop drives while loops and desugared for loops. A continue restarts
// the iteration from the condition check.
func (i *Interpreter) runLoop(cond ast.Expression, body ast.Statement, update ast.Expression, env *runtime.Environment) (completion, error) {
	i.loops = append(i.loops, loopContext{update: update, scope: env})
	defer i.popLoop()
	for {
		ok, err := i.evaluateCondition(cond, env)
		if err != nil || !ok {
			return normal, err
		}
		c, err := i.evaluateStatement(body, env)
		if err != nil {
			return normal, err
		}
		switch c.kind {
		case completionBreak:
			return normal, nil
		case completionReturn:
			return c, nil
		}
	}
}

func (i *Interpreter) popLoop() {
	i.loops = i.loops[:len(i.loops)-1]
}

// evaluateFor runs Block{init; While{cond; Block{body; update}}} without
// touching the loop node.
func (i *Interpreter) evaluateFor(loop *ast.For, env *runtime.Environment) (completion, error) {
	switch loop.Init.(type) {
	case *ast.VarDeclaration, *ast.VarAssign:
	default:
		return normal, runtime.Errorf(runtime.InvalidForClause, loop.Span(), "Invalid initialization in for loop")
	}
	switch loop.Condition.(type) {
	case *ast.Relational, *ast.Logical:
	default:
		return normal, runtime.Errorf(runtime.InvalidForClause, loop.Span(), "Expected logical expression in for loop")
	}
	if _, ok := loop.Update.(*ast.VarAssign); !ok {
		return normal, runtime.Errorf(runtime.InvalidForClause, loop.Span(), "Invalid update in for loop")
	}
	scope := runtime.NewEnvironment(env)
	if c, err := i.evaluateStatement(loop.Init, scope); err != nil {
		return c, err
	}
	body := ast.NewBlock([]ast.Statement{loop.Body, loop.Update})
	return i.runLoop(loop.Condition, body, loop.Update, scope)
}

func (i *Interpreter) evaluateForEach(loop *ast.ForEach, env *runtime.Environment) (completion, error) {
	lit, err := i.evaluateLiteral(loop.Iterable, env)
	if err != nil {
		return normal, err
	}
	arr, ok := lit.Value.(*runtime.ArrayListInstance)
	if !ok {
		return normal, runtime.Errorf(runtime.InvalidOperandTypes, loop.Iterable.Span(), "Expected array in foreach loop")
	}
	i.loops = append(i.loops, loopContext{})
	defer i.popLoop()
	for idx := 0; idx < arr.Len(); idx++ {
		scope := runtime.NewEnvironment(env)
		if err := i.declare(loop.Variable, runtime.CloneLiteral(arr.Elements[idx]), scope); err != nil {
			return normal, err
		}
		c, err := i.evaluateBlock(loop.Body, scope)
		if err != nil {
			return normal, err
		}
		switch c.kind {
		case completionBreak:
			return normal, nil
		case completionReturn:
			return c, nil
		}
	}
	return normal, nil
}

// evaluateSwitch falls through from the first matching case into all later
// cases and the default until a break.
func (i *Interpreter) evaluateSwitch(stmt *ast.Switch, env *runtime.Environment) (completion, error) {
	subject, err := i.evaluateLiteral(stmt.Condition, env)
	if err != nil {
		return normal, err
	}
	scope := runtime.NewEnvironment(env)
	i.loops = append(i.loops, loopContext{isSwitch: true})
	defer i.popLoop()

	matched := false
	run := func(body []ast.Statement) (completion, error) {
		for _, s := range body {
			c, err := i.evaluateStatement(s, scope)
			if err != nil || c.kind != completionNormal {
				return c, err
			}
		}
		return normal, nil
	}
	for _, cs := range stmt.Cases {
		if !matched {
			value, err := i.evaluateLiteral(cs.Condition, scope)
			if err != nil {
				return normal, err
			}
			matched = subject.Equal(value)
		}
		if !matched {
			continue
		}
		c, err := run(cs.Body)
		if err != nil {
			return normal, err
		}
		if c.kind == completionBreak {
			return normal, nil
		}
		if c.kind != completionNormal {
			return c, nil
		}
	}
	if stmt.Default != nil {
		c, err := run(stmt.Default.Body)
		if err != nil {
			return normal, err
		}
		if c.kind != completionBreak {
			return c, nil
		}
	}
	return normal, nil
}

func (i *Interpreter) evaluateContinue(stmt *ast.Continue, env *runtime.Environment) (completion, error) {
	for idx := len(i.loops) - 1; idx >= 0; idx-- {
		ctx := i.loops[idx]
		if ctx.isSwitch {
			continue
		}
		if ctx.update != nil {
			if _, err := i.evaluateExpression(ctx.update, ctx.scope); err != nil {
				return normal, err
			}
		}
		return completion{kind: completionContinue}, nil
	}
	return normal, runtime.Errorf(runtime.InvalidControlTransfer, stmt.Span(), "continue outside of a loop")
}

func (i *Interpreter) evaluateReturn(stmt *ast.Return, env *runtime.Environment) (completion, error) {
	if stmt.Expression == nil {
		return completion{kind: completionReturn}, nil
	}
	lit, err := i.evaluateLiteral(stmt.Expression, env)
	if err != nil {
		return normal, err
	}
	return completion{kind: completionReturn, value: &lit}, nil
}
