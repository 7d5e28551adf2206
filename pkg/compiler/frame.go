package compiler

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// Frame layout, in words below fp:
//
//	0        return address
//	1        caller's fp
//	2..      parameters, then locals
//	Size-1   return value
type frameSlot struct {
	Name   string
	Type   string
	Offset int
}

type functionFrame struct {
	Name       string
	Label      string
	EndLabel   string
	ReturnType string
	Params     []frameSlot
	Locals     []frameSlot

	// inferred is the type of the first value returned from a var function.
	inferred string

	// globals maps the main program's variables, as they stood when the
	// function was declared, to addresses relative to the global base.
	globals map[string]varRef
}

func newFunctionFrame(decl *ast.FuncDeclaration) *functionFrame {
	frame := &functionFrame{
		Name:       decl.ID,
		Label:      "fn_" + decl.ID,
		EndLabel:   "fn_" + decl.ID + "_end",
		ReturnType: decl.DataType,
		globals:    make(map[string]varRef),
	}
	for i, param := range decl.Parameters {
		frame.Params = append(frame.Params, frameSlot{Name: param.ID, Type: param.DataType, Offset: 2 + i})
	}
	frame.Locals = collectLocals(decl.Body, 2+len(frame.Params))
	return frame
}

// Size is the frame length in words.
func (f *functionFrame) Size() int {
	return 3 + len(f.Params) + len(f.Locals)
}

// resultType is the static type a call to the function pushes.
func (f *functionFrame) resultType() string {
	if f.ReturnType == runtime.TypeVar && f.inferred != "" {
		return f.inferred
	}
	return f.ReturnType
}

func (f *functionFrame) returnSlot() int {
	return f.Size() - 1
}

// frameVisitor assigns a slot to every local declaration in a function
// body, in the order the generator will meet them. Nested function bodies
// are not entered.
type frameVisitor struct {
	next  int
	slots []frameSlot
}

func collectLocals(body *ast.Block, base int) []frameSlot {
	v := &frameVisitor{next: base}
	if body != nil {
		v.visitStatements(body.Body)
	}
	return v.slots
}

func (v *frameVisitor) visitStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		v.visitStatement(stmt)
	}
}

func (v *frameVisitor) visitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		v.add(s)
	case *ast.Block:
		v.visitStatements(s.Body)
	case *ast.If:
		if s.Then != nil {
			v.visitStatement(s.Then)
		}
		if s.Else != nil {
			v.visitStatement(s.Else)
		}
	case *ast.While:
		if s.Body != nil {
			v.visitStatement(s.Body)
		}
	case *ast.For:
		if decl, ok := s.Init.(*ast.VarDeclaration); ok {
			v.add(decl)
		}
		if s.Body != nil {
			v.visitStatement(s.Body)
		}
	case *ast.ForEach:
		if s.Variable != nil {
			v.add(s.Variable)
		}
		if s.Body != nil {
			v.visitStatements(s.Body.Body)
		}
	case *ast.Switch:
		for _, c := range s.Cases {
			v.visitStatements(c.Body)
		}
		if s.Default != nil {
			v.visitStatements(s.Default.Body)
		}
	}
}

func (v *frameVisitor) add(decl *ast.VarDeclaration) {
	v.slots = append(v.slots, frameSlot{Name: decl.ID, Type: decl.DataType, Offset: v.next})
	v.next++
}
