package compiler

import (
	"fmt"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

func (g *generator) compileStatement(b *Buffer, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		return g.compileVarDeclaration(b, s)
	case *ast.FuncDeclaration:
		return g.compileFuncDeclaration(s)
	case *ast.StructDeclaration:
		return g.compileStructDeclaration(s)
	case *ast.Block:
		return g.compileBlock(b, s.Body)
	case *ast.ExpressionStatement:
		return g.compileExpressionStatement(b, s.Expression)
	case *ast.Print:
		return g.compilePrint(b, s)
	case *ast.If:
		return g.compileIf(b, s)
	case *ast.While:
		return g.compileWhile(b, s)
	case *ast.For:
		return g.compileFor(b, s)
	case *ast.ForEach:
		return g.compileForEach(b, s)
	case *ast.Switch:
		return g.compileSwitch(b, s)
	case *ast.Break:
		return g.compileJump(b, g.unit.breaks, s.Span(), "break outside of a loop or switch")
	case *ast.Continue:
		return g.compileJump(b, g.unit.continues, s.Span(), "continue outside of a loop")
	case *ast.Return:
		return g.compileReturn(b, s)
	case ast.Expression:
		return g.compileExpressionStatement(b, s)
	case nil:
		return nil
	default:
		return fmt.Errorf("compiler: unsupported statement %T", stmt)
	}
}

func (g *generator) compileVarDeclaration(b *Buffer, decl *ast.VarDeclaration) error {
	loc := decl.Span()
	if decl.Value == nil {
		if decl.DataType == runtime.TypeVar || decl.DataType == "" {
			return runtime.Errorf(runtime.ExpectedLiteral, loc, "Variable declaration must have a value.")
		}
		g.pushDefault(b, decl.DataType)
	} else {
		if err := g.compileExpression(b, decl.Value); err != nil {
			return err
		}
		if err := g.coerceTop(b, decl.DataType, loc); err != nil {
			g.warn(loc, "Cannot initialise %s with a %s value", decl.DataType, g.top().Type)
			g.discard(b)
			g.pushDefault(b, decl.DataType)
		}
	}
	return g.declare(b, decl.ID, loc)
}

// pushDefault pushes the value an uninitialised variable of typ holds.
func (g *generator) pushDefault(b *Buffer, typ string) {
	if typ == runtime.TypeString {
		g.pushConstant(b, runtime.String(""))
		return
	}
	b.li(rT0, 0)
	g.push(b, rT0, stackObject{Type: typ})
}

func (g *generator) compileBlock(b *Buffer, stmts []ast.Statement) error {
	g.newScope()
	for _, stmt := range stmts {
		if err := g.compileStatement(b, stmt); err != nil {
			return err
		}
	}
	g.closeScope(b)
	return nil
}

func (g *generator) compileExpressionStatement(b *Buffer, expr ast.Expression) error {
	if err := g.compileExpression(b, expr); err != nil {
		return err
	}
	g.discard(b)
	return nil
}

// compileCondition evaluates cond and leaves it in t0.
func (g *generator) compileCondition(b *Buffer, cond ast.Expression) error {
	if cond == nil {
		return runtime.Errorf(runtime.ExpectedBoolean, ast.Span{}, "Expected a bool condition")
	}
	if err := g.compileExpression(b, cond); err != nil {
		return err
	}
	if typ := g.top().Type; typ != runtime.TypeBool {
		return runtime.Errorf(runtime.ExpectedBoolean, cond.Span(), "Expected a bool condition, got %s", typ)
	}
	g.pop(b, rT0)
	return nil
}

func (g *generator) compileIf(b *Buffer, stmt *ast.If) error {
	id := g.nextLabelID()
	elseLabel := fmt.Sprintf("else_%d", id)
	endLabel := fmt.Sprintf("endif_%d", id)
	if err := g.compileCondition(b, stmt.Condition); err != nil {
		return err
	}
	b.branch("beq", rT0, rZero, elseLabel)
	if err := g.compileBranch(b, stmt.Then); err != nil {
		return err
	}
	b.jump(endLabel)
	b.Label(elseLabel)
	if stmt.Else != nil {
		if err := g.compileBranch(b, stmt.Else); err != nil {
			return err
		}
	}
	b.Label(endLabel)
	return nil
}

// compileBranch compiles a single statement in its own scope, so a bare
// declaration under if or while does not leak onto the enclosing stack.
func (g *generator) compileBranch(b *Buffer, stmt ast.Statement) error {
	if stmt == nil {
		return nil
	}
	if block, ok := stmt.(*ast.Block); ok {
		return g.compileBlock(b, block.Body)
	}
	return g.compileBlock(b, []ast.Statement{stmt})
}

// Loops push a break and a continue target recording the object height at
// loop entry; a jump releases everything above that height first.

func (g *generator) enterLoop(breakLabel, continueLabel string) {
	height := g.height()
	g.unit.breaks = append(g.unit.breaks, jumpTarget{label: breakLabel, height: height})
	g.unit.continues = append(g.unit.continues, jumpTarget{label: continueLabel, height: height})
}

func (g *generator) exitLoop() {
	g.unit.breaks = g.unit.breaks[:len(g.unit.breaks)-1]
	g.unit.continues = g.unit.continues[:len(g.unit.continues)-1]
}

func (g *generator) compileJump(b *Buffer, targets []jumpTarget, loc ast.Span, message string) error {
	if len(targets) == 0 {
		return runtime.Errorf(runtime.InvalidControlTransfer, loc, "%s", message)
	}
	target := targets[len(targets)-1]
	if bytes := g.bytesAbove(target.height); bytes > 0 {
		b.addi(rSP, rSP, bytes)
	}
	b.jump(target.label)
	return nil
}

func (g *generator) compileWhile(b *Buffer, stmt *ast.While) error {
	id := g.nextLabelID()
	startLabel := fmt.Sprintf("while_%d", id)
	endLabel := fmt.Sprintf("endwhile_%d", id)
	b.Label(startLabel)
	if err := g.compileCondition(b, stmt.Condition); err != nil {
		return err
	}
	b.branch("beq", rT0, rZero, endLabel)
	g.enterLoop(endLabel, startLabel)
	if err := g.compileBranch(b, stmt.Body); err != nil {
		return err
	}
	g.exitLoop()
	b.jump(startLabel)
	b.Label(endLabel)
	return nil
}

func (g *generator) compileFor(b *Buffer, stmt *ast.For) error {
	if err := checkForClauses(stmt); err != nil {
		return err
	}
	id := g.nextLabelID()
	startLabel := fmt.Sprintf("for_%d", id)
	updateLabel := fmt.Sprintf("forupdate_%d", id)
	endLabel := fmt.Sprintf("endfor_%d", id)

	g.newScope()
	switch init := stmt.Init.(type) {
	case *ast.VarDeclaration:
		if err := g.compileVarDeclaration(b, init); err != nil {
			return err
		}
	case *ast.VarAssign:
		if err := g.compileExpressionStatement(b, init); err != nil {
			return err
		}
	}
	b.Label(startLabel)
	if err := g.compileCondition(b, stmt.Condition); err != nil {
		return err
	}
	b.branch("beq", rT0, rZero, endLabel)
	g.enterLoop(endLabel, updateLabel)
	if err := g.compileBranch(b, stmt.Body); err != nil {
		return err
	}
	g.exitLoop()
	b.Label(updateLabel)
	if err := g.compileExpressionStatement(b, stmt.Update); err != nil {
		return err
	}
	b.jump(startLabel)
	b.Label(endLabel)
	g.closeScope(b)
	return nil
}

func checkForClauses(stmt *ast.For) error {
	loc := stmt.Span()
	switch stmt.Init.(type) {
	case *ast.VarDeclaration, *ast.VarAssign:
	default:
		return runtime.Errorf(runtime.InvalidForClause, loc, "Invalid initialization in for loop")
	}
	switch stmt.Condition.(type) {
	case *ast.Relational, *ast.Logical:
	default:
		return runtime.Errorf(runtime.InvalidForClause, loc, "Expected logical expression in for loop")
	}
	if _, ok := stmt.Update.(*ast.VarAssign); !ok {
		return runtime.Errorf(runtime.InvalidForClause, loc, "Invalid update in for loop")
	}
	return nil
}

// compileForEach keeps the array handle and the index in hidden slots and
// binds the loop variable in a fresh scope on every iteration.
func (g *generator) compileForEach(b *Buffer, stmt *ast.ForEach) error {
	loc := stmt.Span()
	id := g.nextLabelID()
	startLabel := fmt.Sprintf("foreach_%d", id)
	nextLabel := fmt.Sprintf("foreachnext_%d", id)
	endLabel := fmt.Sprintf("endforeach_%d", id)

	g.newScope()
	if err := g.compileExpression(b, stmt.Iterable); err != nil {
		return err
	}
	arr := g.top()
	if !runtime.IsArrayType(arr.Type) {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot iterate over %s", arr.Type)
	}
	arrName := g.hiddenName("arr")
	g.unit.objects[len(g.unit.objects)-1].Name = arrName
	b.li(rT0, 0)
	g.push(b, rT0, stackObject{Type: runtime.TypeInt})
	idxName := g.hiddenName("idx")
	g.unit.objects[len(g.unit.objects)-1].Name = idxName

	b.Label(startLabel)
	arrRef, _ := g.resolve(arrName, loc)
	idxRef, _ := g.resolve(idxName, loc)
	b.lw(rT0, idxRef.offset, idxRef.base)
	b.lw(rT2, arrRef.offset, arrRef.base)
	b.lw(rT1, -wordSize, rT2)
	b.branch("bge", rT0, rT1, endLabel)
	b.Emit("slli", rT1, rT0, "2")
	b.Emit("add", rT2, rT2, rT1)
	b.lw(rT0, 0, rT2)

	var elemDims []int
	if len(arr.Dims) > 1 {
		elemDims = arr.Dims[1:]
	}
	g.enterLoop(endLabel, nextLabel)
	g.newScope()
	g.push(b, rT0, stackObject{Type: runtime.ElementType(arr.Type), Dims: elemDims})
	if stmt.Variable == nil {
		return runtime.Errorf(runtime.InvalidDeclaration, loc, "for-each requires a loop variable")
	}
	if err := g.coerceTop(b, stmt.Variable.DataType, loc); err != nil {
		return err
	}
	if err := g.declare(b, stmt.Variable.ID, stmt.Variable.Span()); err != nil {
		return err
	}
	if stmt.Body != nil {
		if err := g.compileBlock(b, stmt.Body.Body); err != nil {
			return err
		}
	}
	g.closeScope(b)
	g.exitLoop()

	b.Label(nextLabel)
	idxRef, _ = g.resolve(idxName, loc)
	b.lw(rT0, idxRef.offset, idxRef.base)
	b.addi(rT0, rT0, 1)
	b.sw(rT0, idxRef.offset, idxRef.base)
	b.jump(startLabel)
	b.Label(endLabel)
	g.closeScope(b)
	return nil
}

// compileSwitch evaluates the subject once into a hidden slot, tests each
// case in order and jumps to the first match. Bodies are laid out in source
// order with the default last, so control falls through until a break.
func (g *generator) compileSwitch(b *Buffer, stmt *ast.Switch) error {
	id := g.nextLabelID()
	endLabel := fmt.Sprintf("endswitch_%d", id)
	defaultLabel := fmt.Sprintf("switchdefault_%d", id)

	g.newScope()
	if err := g.compileExpression(b, stmt.Condition); err != nil {
		return err
	}
	subject := g.hiddenName("switch")
	g.unit.objects[len(g.unit.objects)-1].Name = subject

	caseLabels := make([]string, len(stmt.Cases))
	for i, c := range stmt.Cases {
		caseLabels[i] = fmt.Sprintf("case_%d_%d", id, i)
		guard := ast.NewRelational("==", ast.NewVarValue(subject), c.Condition)
		ast.SetSpan(guard, c.Span())
		if err := g.compileExpression(b, guard); err != nil {
			return err
		}
		g.pop(b, rT0)
		b.branch("bne", rT0, rZero, caseLabels[i])
	}
	if stmt.Default != nil {
		b.jump(defaultLabel)
	} else {
		b.jump(endLabel)
	}

	height := g.height()
	g.unit.breaks = append(g.unit.breaks, jumpTarget{label: endLabel, height: height})
	for i, c := range stmt.Cases {
		b.Label(caseLabels[i])
		if err := g.compileBlock(b, c.Body); err != nil {
			return err
		}
	}
	b.Label(defaultLabel)
	if stmt.Default != nil {
		if err := g.compileBlock(b, stmt.Default.Body); err != nil {
			return err
		}
	}
	g.unit.breaks = g.unit.breaks[:len(g.unit.breaks)-1]
	b.Label(endLabel)
	g.closeScope(b)
	return nil
}

func (g *generator) compileReturn(b *Buffer, stmt *ast.Return) error {
	loc := stmt.Span()
	frame := g.unit.frame
	if frame == nil {
		return runtime.Errorf(runtime.InvalidControlTransfer, loc, "return outside of a function")
	}
	declared := frame.ReturnType
	if stmt.Expression == nil {
		if declared != runtime.TypeVoid {
			return runtime.Errorf(runtime.TypeMismatchOnReturn, loc, "Function %s must return a %s value", frame.Name, declared)
		}
		b.jump(frame.EndLabel)
		return nil
	}
	if declared == runtime.TypeVoid {
		return runtime.Errorf(runtime.TypeMismatchOnReturn, loc, "Return with a value in a void function %s", frame.Name)
	}
	if err := g.compileExpression(b, stmt.Expression); err != nil {
		return err
	}
	typ := g.top().Type
	if declared == runtime.TypeVar {
		if frame.inferred == "" {
			frame.inferred = typ
		}
		declared = frame.inferred
	}
	if typ != declared {
		return runtime.Errorf(runtime.TypeMismatchOnReturn, loc, "Return type mismatch in %s: expected %s, got %s", frame.Name, declared, typ)
	}
	g.pop(b, rT0)
	b.sw(rT0, -wordSize*frame.returnSlot(), rFP)
	b.jump(frame.EndLabel)
	return nil
}
