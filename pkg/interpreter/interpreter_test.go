package interpreter

import (
	"testing"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

func TestExecutePrintsDeclaredSum(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int", "x", ast.Arith("+", ast.Int(2), ast.Int(3))),
		ast.Println(ast.Var("x")),
	)
	expectConsole(t, out, "5\n")
}

func TestPrintJoinsExpressionsWithSpaces(t *testing.T) {
	out := mustRun(t,
		ast.Println(ast.Str("a"), ast.Int(1), ast.Bool(true), ast.Chr('z'), ast.Flt(2.5)),
	)
	expectConsole(t, out, "a 1 true z 2.5\n")
}

func TestArithmeticAndStrings(t *testing.T) {
	out := mustRun(t,
		ast.Println(ast.Arith("+", ast.Flt(1.5), ast.Int(1))),
		ast.Println(ast.Arith("%", ast.Int(7), ast.Int(3))),
		ast.Println(ast.Arith("/", ast.Int(7), ast.Int(2))),
		ast.Println(ast.Arith("+", ast.Str("foo"), ast.Str("bar"))),
		ast.Println(ast.Un("-", ast.Int(4)), ast.Un("!", ast.Bool(true))),
	)
	expectConsole(t, out, "2.5\n1\n3\nfoobar\n-4 false\n")
}

func TestFloatDeclarationWidensInt(t *testing.T) {
	out := mustRun(t,
		ast.Decl("float", "f", ast.Int(1)),
		ast.Println(ast.Call("typeof", ast.Var("f")), ast.Arith("/", ast.Var("f"), ast.Int(4))),
	)
	expectConsole(t, out, "float 0.25\n")
}

func TestCompoundAssignment(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int", "x", ast.Int(1)),
		ast.Expr(ast.AssignOp("x", "+=", ast.Int(4))),
		ast.Expr(ast.AssignOp("x", "-=", ast.Int(2))),
		ast.Println(ast.Var("x")),
	)
	expectConsole(t, out, "3\n")

	result := runProgram(
		ast.Decl("int", "x", ast.Int(1)),
		ast.Expr(ast.AssignOp("x", "*=", ast.Int(4))),
	)
	expectErrors(t, result, "Unsupported operation *=")
}

func TestTernary(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int", "n", ast.Int(3)),
		ast.Println(ast.Tern(ast.Rel(">", ast.Var("n"), ast.Int(2)), ast.Str("big"), ast.Str("small"))),
	)
	expectConsole(t, out, "big\n")
}

func TestIfElse(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int", "n", ast.Int(1)),
		ast.Iff(ast.Rel("==", ast.Var("n"), ast.Int(2)),
			ast.Blk(ast.Println(ast.Str("two"))),
			ast.Blk(ast.Println(ast.Str("other"))),
		),
	)
	expectConsole(t, out, "other\n")
}

func TestConditionMustBeBool(t *testing.T) {
	result := runProgram(
		ast.Iff(ast.Int(1), ast.Blk(ast.Println(ast.Str("no"))), nil),
	)
	expectErrors(t, result, "Expected a bool condition, got int")
}

func TestWhileBreak(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int", "n", ast.Int(0)),
		ast.Loop(ast.Bool(true),
			ast.Blk(
				ast.Expr(ast.AssignOp("n", "+=", ast.Int(1))),
				ast.Iff(ast.Rel("==", ast.Var("n"), ast.Int(3)), ast.Brk(), nil),
			),
		),
		ast.Println(ast.Var("n")),
	)
	expectConsole(t, out, "3\n")
}

func TestForContinueRunsUpdate(t *testing.T) {
	out := mustRun(t,
		ast.ForLoop(
			ast.Decl("int", "i", ast.Int(0)),
			ast.Rel("<", ast.Var("i"), ast.Int(4)),
			ast.AssignOp("i", "+=", ast.Int(1)),
			ast.Iff(ast.Rel("==", ast.Arith("%", ast.Var("i"), ast.Int(2)), ast.Int(1)), ast.Cont(), nil),
			ast.Println(ast.Var("i")),
		),
	)
	expectConsole(t, out, "0\n2\n")
}

func TestContinueUpdatesLoopVariableNotShadow(t *testing.T) {
	out := mustRun(t,
		ast.ForLoop(
			ast.Decl("int", "i", ast.Int(0)),
			ast.Rel("<", ast.Var("i"), ast.Int(3)),
			ast.Assign("i", ast.Arith("+", ast.Var("i"), ast.Int(1))),
			ast.Decl("int", "i", ast.Int(10)),
			ast.Println(ast.Var("i")),
			ast.Cont(),
		),
	)
	expectConsole(t, out, "10\n10\n10\n")
}

func TestForClauseValidation(t *testing.T) {
	cases := []struct {
		name string
		loop *ast.For
		msg  string
	}{
		{
			name: "Init",
			loop: ast.ForLoop(ast.Println(ast.Int(1)), ast.Rel("<", ast.Int(0), ast.Int(1)), ast.Assign("i", ast.Int(1))),
			msg:  "Invalid initialization in for loop",
		},
		{
			name: "Condition",
			loop: ast.ForLoop(ast.Decl("int", "i", ast.Int(0)), ast.Bool(true), ast.Assign("i", ast.Int(1))),
			msg:  "Expected logical expression in for loop",
		},
		{
			name: "Update",
			loop: ast.ForLoop(ast.Decl("int", "i", ast.Int(0)), ast.Rel("<", ast.Var("i"), ast.Int(1)), ast.Int(1)),
			msg:  "Invalid update in for loop",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectErrors(t, runProgram(tc.loop), tc.msg)
		})
	}
}

func TestForEach(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int[]", "arr", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Each(ast.Decl("int", "v", nil), ast.Var("arr"),
			ast.Iff(ast.Rel("==", ast.Var("v"), ast.Int(3)), ast.Brk(), nil),
			ast.Println(ast.Arith("*", ast.Var("v"), ast.Int(2))),
		),
	)
	expectConsole(t, out, "2\n4\n")
}

func TestForEachRequiresArray(t *testing.T) {
	result := runProgram(ast.Each(ast.Decl("int", "v", nil), ast.Int(3)))
	expectErrors(t, result, "Expected array in foreach loop")
}

func switchOn(value int64, withBreak bool) ast.Statement {
	three := []ast.Statement{ast.Println(ast.Str("three"))}
	if withBreak {
		three = append(three, ast.Brk())
	}
	return ast.Sw(ast.Int(value),
		ast.Otherwise(ast.Println(ast.Str("default"))),
		ast.When(ast.Int(1), ast.Println(ast.Str("one"))),
		ast.When(ast.Int(2), ast.Println(ast.Str("two"))),
		ast.When(ast.Int(3), three...),
	)
}

func TestSwitchFallsThrough(t *testing.T) {
	cases := []struct {
		name      string
		value     int64
		withBreak bool
		want      string
	}{
		{"FromMiddle", 2, true, "two\nthree\n"},
		{"IntoDefault", 3, false, "three\ndefault\n"},
		{"NoMatch", 9, true, "default\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectConsole(t, mustRun(t, switchOn(tc.value, tc.withBreak)), tc.want)
		})
	}
}

func TestBreakAndContinueOutsideLoops(t *testing.T) {
	expectErrors(t, runProgram(ast.Brk()), "break outside of a loop or switch")
	expectErrors(t, runProgram(ast.Cont()), "continue outside of a loop")
}

func TestLogicalOperatorsEvaluateBothSides(t *testing.T) {
	out := mustRun(t,
		ast.Fn("bool", "touch", nil,
			ast.Println(ast.Str("called")),
			ast.Ret(ast.Bool(true)),
		),
		ast.Decl("bool", "r", ast.Logic("&&", ast.Bool(false), ast.Call("touch"))),
		ast.Println(ast.Var("r")),
	)
	expectConsole(t, out, "called\nfalse\n")
}

func TestErrorsAccumulatePerStatement(t *testing.T) {
	result := runProgram(
		ast.Println(ast.Var("missing")),
		ast.Println(ast.Str("still running")),
		ast.Decl("int", "x", ast.Int(1)),
		ast.Decl("int", "x", ast.Int(2)),
	)
	expectErrors(t, result, "Variable missing not found", "Variable x already exists")
	expectConsole(t, result.Console, "still running\n")
}

func TestDivisionByZeroWarns(t *testing.T) {
	result := runProgram(
		ast.Decl("int", "z", ast.Arith("/", ast.Int(1), ast.Int(0))),
		ast.Println(ast.Var("z")),
	)
	expectErrors(t, result)
	expectConsole(t, result.Console, "null\n")
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != runtime.DivisionByZero {
		t.Fatalf("expected one division warning, got %v", result.Warnings)
	}
}

func TestDeclarationTypeMismatchWarns(t *testing.T) {
	result := runProgram(
		ast.Decl("int", "s", ast.Str("hi")),
		ast.Println(ast.Var("s")),
	)
	expectErrors(t, result)
	expectConsole(t, result.Console, "null\n")
	if len(result.Warnings) != 1 || result.Warnings[0].Message != "Cannot initialise int with a string value" {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
}

func TestVarDeclarationRequiresValue(t *testing.T) {
	expectErrors(t, runProgram(ast.Decl("var", "v", nil)), "Variable declaration must have a value.")
}

func TestUninitialisedDeclarationIsNull(t *testing.T) {
	out := mustRun(t,
		ast.Decl("string", "s", nil),
		ast.Println(ast.Var("s")),
	)
	expectConsole(t, out, "null\n")
}

func TestSymbolsRecordDeclarations(t *testing.T) {
	result := runProgram(
		ast.At(ast.Decl("int", "x", ast.Int(1)), 1, 1),
		ast.At(ast.Fn("void", "f", []*ast.VarDeclaration{ast.At(ast.Param("string", "s"), 2, 8)}), 2, 1),
		ast.Expr(ast.Call("f", ast.Str("a"))),
		ast.Expr(ast.Call("f", ast.Str("b"))),
	)
	expectErrors(t, result)
	want := []Symbol{
		{ID: 1, Name: "x", Type: "int", Scope: runtime.GlobalScope, Line: 1, Column: 1},
		{ID: 2, Name: "f", Type: "function", Scope: runtime.GlobalScope, Line: 2, Column: 1},
		{ID: 3, Name: "s", Type: "string", Scope: "f", Line: 2, Column: 8},
	}
	if len(result.Symbols) != len(want) {
		t.Fatalf("expected %d symbols, got %+v", len(want), result.Symbols)
	}
	for idx, sym := range want {
		if result.Symbols[idx] != sym {
			t.Fatalf("symbol %d: expected %+v, got %+v", idx, sym, result.Symbols[idx])
		}
	}
}

func TestExecuteResetsConsole(t *testing.T) {
	interp := New()
	interp.Execute(ast.Prog(ast.Println(ast.Str("first"))))
	result := interp.Execute(ast.Prog(ast.Println(ast.Str("second"))))
	expectConsole(t, result.Console, "second\n")
}
