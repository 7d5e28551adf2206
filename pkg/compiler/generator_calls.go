package compiler

import (
	"strings"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// linkType tags the two-word object a caller reserves for the callee's
// return address and saved frame pointer.
const linkType = "$link"

func (g *generator) compileFuncDeclaration(decl *ast.FuncDeclaration) error {
	loc := decl.Span()
	if g.unit.frame != nil || g.unit.depth > 0 {
		return runtime.Errorf(runtime.InvalidDeclaration, loc, "Function %s must be declared at the top level", decl.ID)
	}
	if g.declaredName(decl.ID) {
		return runtime.Errorf(runtime.DuplicateDeclaration, loc, "Variable %s already exists", decl.ID)
	}
	frame := newFunctionFrame(decl)
	offset := 0
	for _, obj := range g.unit.objects {
		offset += obj.Length
		if obj.Name != "" {
			frame.globals[obj.Name] = varRef{name: obj.Name, base: rGB, offset: -offset, obj: obj}
		}
	}
	// Registered before the body so recursive calls resolve.
	g.frames[decl.ID] = frame
	body, err := g.compileFunctionBody(frame, decl)
	if err != nil {
		return err
	}
	g.functions = append(g.functions, body)
	return nil
}

func (g *generator) declaredName(name string) bool {
	if _, ok := g.frames[name]; ok {
		return true
	}
	_, ok := g.structs[name]
	return ok
}

// compileFunctionBody fills a separate buffer with the function. The
// caller has already set fp and sp; the body saves ra in slot 0 and the
// epilogue loads the return slot into t0 and unwinds the frame.
func (g *generator) compileFunctionBody(frame *functionFrame, decl *ast.FuncDeclaration) (*Buffer, error) {
	saved := g.unit
	g.unit = &codeUnit{frame: frame}
	defer func() { g.unit = saved }()

	b := NewBuffer()
	b.Label(frame.Label)
	b.sw(rRA, 0, rFP)
	for _, param := range frame.Params {
		obj := stackObject{Type: param.Type, Length: wordSize, Name: param.Name}
		g.unit.locals = append(g.unit.locals, localBinding{name: param.Name, slot: param.Offset, obj: obj})
	}
	if decl.Body != nil {
		if err := g.compileBlock(b, decl.Body.Body); err != nil {
			return nil, err
		}
	}
	if g.height() != 0 {
		g.internalf("function %s leaves %d objects on the stack", frame.Name, g.height())
	}
	b.Label(frame.EndLabel)
	b.lw(rT0, -wordSize*frame.returnSlot(), rFP)
	b.lw(rRA, 0, rFP)
	b.addi(rSP, rFP, wordSize)
	b.lw(rFP, -wordSize, rFP)
	b.Emit("jr", rRA)
	return b, nil
}

func calleeName(expr ast.Expression) (string, bool) {
	if v, ok := expr.(*ast.VarValue); ok {
		return v.ID, true
	}
	return "", false
}

// compileCall dispatches a call to a native, a user function or a struct
// constructor. A non-nil receiver becomes the first argument.
func (g *generator) compileCall(b *Buffer, call *ast.Callee, receiver ast.Expression) error {
	loc := call.Span()
	name, ok := calleeName(call.Callee)
	if !ok {
		what := "nothing"
		if call.Callee != nil {
			what = string(call.Callee.NodeType())
		}
		return runtime.Errorf(runtime.NotInvocable, loc, "Cannot call %s", what)
	}
	args := call.Arguments
	if receiver != nil {
		args = append([]ast.Expression{receiver}, call.Arguments...)
	}
	if _, ok := nativeArity[name]; ok {
		return g.compileNative(b, name, args, loc)
	}
	if frame, ok := g.frames[name]; ok {
		return g.compileUserCall(b, frame, args, loc)
	}
	if def, ok := g.structs[name]; ok {
		return g.compileStructCall(b, def, args, loc)
	}
	return runtime.Errorf(runtime.UndefinedVariable, loc, "Variable %s not found", name)
}

// compileUserCall builds the callee frame directly below the caller's
// values: a link object, then the arguments, then space for locals and the
// return slot. The callee restores sp on return, so the link and argument
// objects are dropped without emitting code.
func (g *generator) compileUserCall(b *Buffer, frame *functionFrame, args []ast.Expression, loc ast.Span) error {
	if len(args) != len(frame.Params) {
		return runtime.Errorf(runtime.ArityMismatch, loc, "Expected %d arguments, got %d", len(frame.Params), len(args))
	}
	b.addi(rSP, rSP, -2*wordSize)
	g.pushObject(stackObject{Type: linkType, Length: 2 * wordSize})
	for i, arg := range args {
		if err := g.compileExpression(b, arg); err != nil {
			return err
		}
		if err := g.coerceTop(b, frame.Params[i].Type, arg.Span()); err != nil {
			return err
		}
	}
	b.addi(rT1, rSP, wordSize*(len(args)+1))
	b.sw(rFP, -wordSize, rT1)
	b.mv(rFP, rT1)
	b.addi(rSP, rFP, -wordSize*(frame.Size()-1))
	b.jal(frame.Label)
	for n := 0; n < len(args)+1; n++ {
		g.forget()
	}
	g.push(b, rT0, stackObject{Type: frame.resultType()})
	return nil
}

var nativeArity = map[string]int{
	"parseInt":           1,
	"parsefloat":         1,
	"toString":           1,
	"toLowerCase":        1,
	"toUpperCase":        1,
	"typeof":             1,
	"System.out.println": 1,
	"indexOf":            2,
	"join":               1,
	"Object.keys":        1,
}

func (g *generator) compileNative(b *Buffer, name string, args []ast.Expression, loc ast.Span) error {
	if want := nativeArity[name]; len(args) != want {
		return runtime.Errorf(runtime.ArityMismatch, loc, "Expected %d arguments, got %d", want, len(args))
	}
	switch name {
	case "join":
		return runtime.Errorf(runtime.UnknownBuiltin, loc, "Builtin function %s not found", name)
	case "indexOf":
		return g.compileIndexOf(b, args, loc)
	}
	if err := g.compileExpression(b, args[0]); err != nil {
		return err
	}
	arg := g.top()
	switch name {
	case "typeof":
		g.discard(b)
		g.pushConstant(b, runtime.String(arg.Type))
	case "Object.keys":
		def, ok := g.structs[arg.Type]
		if !ok {
			return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Object.keys expects a struct, got %s", arg.Type)
		}
		g.discard(b)
		g.pushConstant(b, runtime.String("["+strings.Join(def.FieldNames(), ", ")+"]"))
	case "System.out.println":
		if err := g.printTop(b, loc); err != nil {
			return err
		}
		b.printChar('\n')
		b.li(rT0, 0)
		g.push(b, rT0, stackObject{Type: runtime.TypeVoid})
	case "toString":
		return g.compileToString(b, loc)
	case "parseInt", "parsefloat", "toLowerCase", "toUpperCase":
		if arg.Type != runtime.TypeString {
			return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Argument must be a string, got %s", arg.Type)
		}
		g.pop(b, rA0)
		switch name {
		case "parseInt":
			if err := g.callBuiltin(b, "parseInt", loc); err != nil {
				return err
			}
			g.push(b, rT0, stackObject{Type: runtime.TypeInt})
		case "parsefloat":
			if err := g.callBuiltin(b, "parseFloat", loc); err != nil {
				return err
			}
			g.pushFloat(b, rFT0, stackObject{Type: runtime.TypeFloat})
		default:
			if err := g.callBuiltin(b, name, loc); err != nil {
				return err
			}
			g.push(b, rT0, stackObject{Type: runtime.TypeString})
		}
	}
	return nil
}

var toStringRoutines = map[string]string{
	runtime.TypeInt:   "intToString",
	runtime.TypeFloat: "floatToString",
	runtime.TypeBool:  "boolToString",
	runtime.TypeChar:  "charToString",
}

func (g *generator) compileToString(b *Buffer, loc ast.Span) error {
	typ := g.top().Type
	if typ == runtime.TypeString {
		return nil
	}
	routine, ok := toStringRoutines[typ]
	if !ok {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot convert %s to string", typ)
	}
	if typ == runtime.TypeFloat {
		g.popFloat(b, rFA0)
	} else {
		g.pop(b, rA0)
	}
	if err := g.callBuiltin(b, routine, loc); err != nil {
		return err
	}
	g.push(b, rT0, stackObject{Type: runtime.TypeString})
	return nil
}

// compileIndexOf compares words, so string elements are compared by handle
// and are rejected.
func (g *generator) compileIndexOf(b *Buffer, args []ast.Expression, loc ast.Span) error {
	arr, needle, err := g.compileOperands(b, args[0], args[1])
	if err != nil {
		return err
	}
	if !runtime.IsArrayType(arr) {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Argument must be an array, got %s", arr)
	}
	elem := runtime.ElementType(arr)
	if elem == runtime.TypeString || runtime.IsArrayType(elem) {
		return runtime.Errorf(runtime.UnsupportedOperator, loc, "indexOf over %s is not supported when compiling", arr)
	}
	if elem != needle {
		return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot search %s for a %s", arr, needle)
	}
	g.pop(b, rA1)
	g.pop(b, rA0)
	b.lw(rA2, -wordSize, rA0)
	if err := g.callBuiltin(b, "indexOf", loc); err != nil {
		return err
	}
	g.push(b, rT0, stackObject{Type: runtime.TypeInt})
	return nil
}

func (g *generator) compilePrint(b *Buffer, stmt *ast.Print) error {
	for i, expr := range stmt.Expressions {
		if i > 0 {
			b.printChar(' ')
		}
		if err := g.compileExpression(b, expr); err != nil {
			return err
		}
		if err := g.printTop(b, expr.Span()); err != nil {
			return err
		}
	}
	b.printChar('\n')
	return nil
}

// Element kinds understood by printArray.
var arrayPrintKinds = map[string]int64{
	runtime.TypeInt:    0,
	runtime.TypeFloat:  1,
	runtime.TypeChar:   2,
	runtime.TypeString: 3,
	runtime.TypeBool:   4,
}

// printTop pops the top value and prints it according to its static type.
func (g *generator) printTop(b *Buffer, loc ast.Span) error {
	obj := g.top()
	switch obj.Type {
	case runtime.TypeInt:
		g.pop(b, rA0)
		b.ecall(sysPrintInt)
	case runtime.TypeFloat:
		g.popFloat(b, rFA0)
		b.ecall(sysPrintFloat)
	case runtime.TypeChar:
		g.pop(b, rA0)
		b.ecall(sysPrintChar)
	case runtime.TypeString:
		g.pop(b, rA0)
		b.ecall(sysPrintString)
	case runtime.TypeBool:
		g.pop(b, rA0)
		return g.callBuiltin(b, "printBool", loc)
	default:
		kind, ok := arrayPrintKinds[runtime.ElementType(obj.Type)]
		if !runtime.IsArrayType(obj.Type) || !ok {
			return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot print a %s value", obj.Type)
		}
		g.pop(b, rA0)
		b.lw(rA1, -wordSize, rA0)
		b.li(rA2, kind)
		return g.callBuiltin(b, "printArray", loc)
	}
	return nil
}

func (g *generator) compileStructDeclaration(decl *ast.StructDeclaration) error {
	loc := decl.Span()
	if g.unit.frame != nil || g.unit.depth > 0 {
		return runtime.Errorf(runtime.InvalidDeclaration, loc, "Struct %s must be declared at the top level", decl.ID)
	}
	if g.declaredName(decl.ID) {
		return runtime.Errorf(runtime.DuplicateDeclaration, loc, "Variable %s already exists", decl.ID)
	}
	g.structs[decl.ID] = decl
	return nil
}
