package compiler

import (
	"path/filepath"
	"strconv"
	"testing"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/driver"
	"oak/toolchain-go/pkg/interpreter"
)

// generate compiles program the way Compile does but keeps the generator,
// so tests can inspect the object stack the main program ends with.
func generate(program *ast.Program) (*generator, string) {
	g := newGenerator(Options{})
	for _, stmt := range program.Body {
		if stmt != nil {
			g.compileTopLevel(stmt)
		}
	}
	return g, g.render()
}

// expectSameOutput runs program through the interpreter and through the
// generated assembly, and compares what both print. At exit the stack must
// hold exactly the globals the generator still tracks.
func expectSameOutput(t *testing.T, program *ast.Program) {
	t.Helper()
	want := interpreter.New().Execute(program)
	g, asm := generate(program)
	if len(g.errors) != len(want.Errors) {
		t.Fatalf("interpreter errors %v, compiler errors %v", want.Errors, g.errors)
	}
	e, err := runAssembly(asm)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, asm)
	}
	if got := e.out.String(); got != want.Console {
		t.Fatalf("output mismatch:\ninterpreter %q\n   emulator %q\n%s", want.Console, got, asm)
	}
	if held := emuMemory - int(e.x[rSP]); held != g.bytesAbove(0) {
		t.Fatalf("stack holds %d bytes at exit, generator tracks %d", held, g.bytesAbove(0))
	}
}

func TestFixturesRunLikeInterpreter(t *testing.T) {
	dirs, err := filepath.Glob(filepath.Join("..", "..", "testdata", "fixtures", "*", "manifest.json"))
	if err != nil {
		t.Fatalf("glob fixtures: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatalf("no fixtures found")
	}
	for _, manifest := range dirs {
		dir := filepath.Dir(manifest)
		t.Run(filepath.Base(dir), func(t *testing.T) {
			program, err := driver.LoadProgram(filepath.Join(dir, "program.json"))
			if err != nil {
				t.Fatalf("load fixture: %v", err)
			}
			expectSameOutput(t, program)
		})
	}
}

func TestProgramsRunLikeInterpreter(t *testing.T) {
	cases := []struct {
		name string
		body []ast.Statement
	}{
		{
			name: "ContinueSkipsShadowedLoopVariable",
			body: []ast.Statement{
				ast.ForLoop(
					ast.Decl("int", "i", ast.Int(0)),
					ast.Rel("<", ast.Var("i"), ast.Int(3)),
					ast.Assign("i", ast.Arith("+", ast.Var("i"), ast.Int(1))),
					ast.Decl("int", "i", ast.Int(10)),
					ast.Println(ast.Var("i")),
					ast.Cont(),
				),
			},
		},
		{
			name: "CompoundIndexEvaluatesIndexOnce",
			body: []ast.Statement{
				ast.Decl("int[]", "a", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
				ast.Decl("int", "n", ast.Int(0)),
				ast.Fn("int", "next", nil,
					ast.Expr(ast.AssignOp("n", "+=", ast.Int(1))),
					ast.Ret(ast.Var("n")),
				),
				ast.Expr(ast.NewSetIndex(ast.Var("a"), ast.Call("next"), "+=", ast.Int(10))),
				ast.Println(ast.Var("n"), ast.Var("a")),
			},
		},
		{
			name: "FunctionsReadGlobals",
			body: []ast.Statement{
				ast.Decl("string", "greeting", ast.Str("hi")),
				ast.Fn("void", "greet", []*ast.VarDeclaration{ast.Param("string", "who")},
					ast.Println(ast.Arith("+", ast.Arith("+", ast.Var("greeting"), ast.Str(" ")), ast.Var("who"))),
				),
				ast.Expr(ast.Call("greet", ast.Str("oak"))),
				ast.Expr(ast.Assign("greeting", ast.Str("bye"))),
				ast.Expr(ast.Call("greet", ast.Str("go"))),
			},
		},
		{
			name: "RecursiveTernary",
			body: []ast.Statement{
				ast.Fn("int", "fib", []*ast.VarDeclaration{ast.Param("int", "n")},
					ast.Ret(ast.Tern(
						ast.Rel("<", ast.Var("n"), ast.Int(2)),
						ast.Var("n"),
						ast.Arith("+",
							ast.Call("fib", ast.Arith("-", ast.Var("n"), ast.Int(1))),
							ast.Call("fib", ast.Arith("-", ast.Var("n"), ast.Int(2))),
						),
					)),
				),
				ast.Println(ast.Call("fib", ast.Int(10))),
			},
		},
		{
			name: "ForEachBreakAndContinue",
			body: []ast.Statement{
				ast.Decl("int[]", "arr", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4))),
				ast.Each(ast.Decl("int", "v", nil), ast.Var("arr"),
					ast.Iff(ast.Rel("==", ast.Var("v"), ast.Int(2)), ast.Cont(), nil),
					ast.Iff(ast.Rel("==", ast.Var("v"), ast.Int(4)), ast.Brk(), nil),
					ast.Println(ast.Arith("*", ast.Var("v"), ast.Int(10))),
				),
				ast.Println(ast.Str("done")),
			},
		},
		{
			name: "SwitchFallsThroughInsideLoop",
			body: []ast.Statement{
				ast.ForLoop(
					ast.Decl("int", "i", ast.Int(1)),
					ast.Rel("<=", ast.Var("i"), ast.Int(3)),
					ast.AssignOp("i", "+=", ast.Int(1)),
					ast.Sw(ast.Var("i"),
						ast.Otherwise(ast.Println(ast.Str("many"))),
						ast.When(ast.Int(1), ast.Println(ast.Str("one"))),
						ast.When(ast.Int(2), ast.Println(ast.Str("two")), ast.Brk()),
					),
				),
			},
		},
		{
			name: "WhileBuildsString",
			body: []ast.Statement{
				ast.Decl("string", "s", ast.Str("")),
				ast.Decl("int", "i", ast.Int(0)),
				ast.Loop(ast.Rel("<", ast.Var("i"), ast.Int(3)),
					ast.Expr(ast.Assign("s", ast.Arith("+", ast.Var("s"), ast.Str("ab")))),
					ast.Expr(ast.AssignOp("i", "+=", ast.Int(1))),
				),
				ast.Println(ast.Var("s"), ast.Rel("==", ast.Var("s"), ast.Str("ababab")), ast.Var("i")),
			},
		},
		{
			name: "StructsAndAllocatedArrays",
			body: []ast.Statement{
				ast.StructDef("Pair", ast.Decl("int", "a", nil), ast.Decl("int", "b", ast.Int(2))),
				ast.Decl("Pair", "p", ast.New("Pair", ast.Assign("a", ast.Int(4)))),
				ast.Expr(ast.SetField(ast.Var("p"), "b", ast.Arith("*", ast.Field(ast.Var("p"), "a"), ast.Int(3)))),
				ast.Println(ast.Field(ast.Var("p"), "a"), ast.Field(ast.Var("p"), "b")),
				ast.Decl("int[]", "sq", ast.Alloc("int", ast.Int(3))),
				ast.ForLoop(
					ast.Decl("int", "i", ast.Int(0)),
					ast.Rel("<", ast.Var("i"), ast.Int(3)),
					ast.AssignOp("i", "+=", ast.Int(1)),
					ast.Expr(ast.SetIdx(ast.Var("sq"), ast.Var("i"), ast.Arith("*", ast.Var("i"), ast.Var("i")))),
				),
				ast.Println(ast.Var("sq"), ast.Field(ast.Var("sq"), "length")),
			},
		},
		{
			name: "FloatArithmetic",
			body: []ast.Statement{
				ast.Decl("float", "f", ast.Flt(1.5)),
				ast.Decl("float", "g", ast.Int(2)),
				ast.Println(ast.Arith("+", ast.Arith("*", ast.Var("f"), ast.Int(2)), ast.Flt(0.25)), ast.Rel(">", ast.Var("f"), ast.Int(2))),
				ast.Println(ast.Arith("/", ast.Var("g"), ast.Int(4)), ast.Un("-", ast.Var("f"))),
			},
		},
		{
			name: "ConversionsAndLogic",
			body: []ast.Statement{
				ast.Println(
					ast.Arith("+", ast.Call("toString", ast.Int(42)), ast.Str("!")),
					ast.Arith("+", ast.Call("parseInt", ast.Str("-17")), ast.Int(1)),
					ast.Arith("%", ast.Int(-7), ast.Int(3)),
				),
				ast.Println(
					ast.Logic("||", ast.Bool(false), ast.Un("!", ast.Bool(false))),
					ast.Logic("&&", ast.Bool(true), ast.Rel(">=", ast.Int(1), ast.Int(2))),
					ast.Chr('z'),
				),
			},
		},
		{
			name: "FailedStatementsAreSkipped",
			body: []ast.Statement{
				ast.Decl("int", "kept", ast.Int(7)),
				ast.Println(ast.Var("missing")),
				ast.Decl("int", "kept", ast.Int(8)),
				ast.Println(ast.Var("kept")),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectSameOutput(t, ast.Prog(tc.body...))
		})
	}
}

// Straight-line code moves sp only through pushes and pops, so the addi sp
// deltas of the main program add up to the space the globals occupy.
func TestStackDeltasMatchTrackedObjects(t *testing.T) {
	g, _ := generate(ast.Prog(
		ast.StructDef("Pair", ast.Decl("int", "a", nil), ast.Decl("string", "s", nil)),
		ast.Decl("int", "x", ast.Arith("+", ast.Int(2), ast.Int(3))),
		ast.Decl("float", "f", ast.Arith("*", ast.Var("x"), ast.Flt(0.5))),
		ast.Decl("string", "s", ast.Arith("+", ast.Str("a"), ast.Str("b"))),
		ast.Println(ast.Var("x"), ast.Var("f"), ast.Var("s"), ast.Bool(true)),
		ast.Decl("int[]", "arr", ast.Arr(ast.Int(1), ast.Int(2))),
		ast.Expr(ast.NewSetIndex(ast.Var("arr"), ast.Int(1), "+=", ast.Var("x"))),
		ast.Decl("Pair", "p", ast.New("Pair")),
		ast.Expr(ast.NewSet(ast.Var("p"), "a", "+=", ast.Int(4))),
		ast.Println(ast.Var("arr"), ast.Field(ast.Var("p"), "a")),
	))
	if len(g.errors) != 0 {
		t.Fatalf("unexpected errors: %v", g.errors)
	}
	delta := 0
	for _, in := range g.main.lines {
		if in.Op != "addi" || in.Operands[0] != rSP || in.Operands[1] != rSP {
			continue
		}
		n, err := strconv.Atoi(in.Operands[2])
		if err != nil {
			t.Fatalf("bad immediate in %s", in)
		}
		delta += n
	}
	if -delta != g.bytesAbove(0) {
		t.Fatalf("addi sp deltas total %d, generator tracks %d bytes", delta, g.bytesAbove(0))
	}
	if g.bytesAbove(0) != 5*wordSize {
		t.Fatalf("expected five globals, got %d bytes", g.bytesAbove(0))
	}
}

func TestOutOfBoundsStopsTheProgram(t *testing.T) {
	asm := mustCompile(t,
		ast.Decl("int[]", "a", ast.Arr(ast.Int(1))),
		ast.Println(ast.Str("before")),
		ast.Println(ast.Index(ast.Var("a"), ast.Int(3))),
		ast.Println(ast.Str("after")),
	)
	e, err := runAssembly(asm)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := e.out.String(); got != "before\nIndex out of bounds\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEmulatorRejectsUnknownInstructions(t *testing.T) {
	if _, err := loadAssembly(".text\nmain:\n    fsqrt.s ft0, ft1\n"); err == nil {
		t.Fatalf("expected an unsupported instruction error")
	}
	if _, err := runAssembly(".text\nmain:\n    j nowhere\n"); err == nil {
		t.Fatalf("expected an unknown label error")
	}
}
