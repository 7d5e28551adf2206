package interpreter

import (
	"testing"

	"oak/toolchain-go/pkg/ast"
)

func pointDef() *ast.StructDeclaration {
	return ast.StructDef("Point",
		ast.Decl("int", "x", nil),
		ast.Decl("int", "y", ast.Int(5)),
	)
}

func TestStructInstanceDefaultsAndFields(t *testing.T) {
	out := mustRun(t,
		pointDef(),
		ast.Decl("Point", "p", ast.New("Point", ast.Assign("x", ast.Int(1)))),
		ast.Println(ast.Field(ast.Var("p"), "x"), ast.Field(ast.Var("p"), "y")),
		ast.Expr(ast.SetField(ast.Var("p"), "x", ast.Int(10))),
		ast.Println(ast.Var("p")),
		ast.Println(ast.Call("Object.keys", ast.Var("p"))),
	)
	expectConsole(t, out, "1 5\nPoint{x: 10, y: 5}\n[x, y]\n")
}

func TestStructCallAssignsPositionally(t *testing.T) {
	out := mustRun(t,
		pointDef(),
		ast.Println(ast.Call("Point", ast.Int(3), ast.Int(4))),
	)
	expectConsole(t, out, "Point{x: 3, y: 4}\n")
}

func TestStructsShareReferences(t *testing.T) {
	out := mustRun(t,
		pointDef(),
		ast.Decl("Point", "p", ast.New("Point")),
		ast.Decl("Point", "q", ast.Var("p")),
		ast.Expr(ast.SetField(ast.Var("q"), "y", ast.Int(0))),
		ast.Println(ast.Field(ast.Var("p"), "y")),
	)
	expectConsole(t, out, "0\n")
}

func TestStructErrors(t *testing.T) {
	result := runProgram(
		pointDef(),
		ast.Decl("Point", "p", ast.New("Point")),
		ast.Println(ast.Field(ast.Var("p"), "z")),
		ast.Println(ast.Index(ast.Var("p"), ast.Int(0))),
		ast.Decl("int", "n", ast.Int(1)),
		ast.Println(ast.New("n")),
		ast.Decl("Point", "none", nil),
		ast.Println(ast.Field(ast.Var("none"), "x")),
		ast.Fn("void", "nested", nil, ast.StructDef("Inner")),
		ast.Expr(ast.Call("nested")),
	)
	expectErrors(t, result,
		"Variable z not found",
		"Struct Point cannot be indexed",
		"n is not a struct",
		"Cannot access a member of a null Point",
		"Structs can only be declared in the global scope",
	)
}

func TestArrayIndexingAndLength(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int[]", "a", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Expr(ast.SetIdx(ast.Var("a"), ast.Int(1), ast.Int(20))),
		ast.Expr(ast.NewSetIndex(ast.Var("a"), ast.Int(2), "+=", ast.Int(4))),
		ast.Println(ast.Index(ast.Var("a"), ast.Int(1)), ast.Field(ast.Var("a"), "length")),
		ast.Println(ast.Var("a")),
	)
	expectConsole(t, out, "20 3\n1 20 7\n")
}

func TestArrayDeclarationCopies(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int[]", "a", ast.Arr(ast.Int(1), ast.Int(2))),
		ast.Decl("int[]", "b", ast.Var("a")),
		ast.Expr(ast.SetIdx(ast.Var("b"), ast.Int(0), ast.Int(99))),
		ast.Println(ast.Index(ast.Var("a"), ast.Int(0)), ast.Index(ast.Var("b"), ast.Int(0))),
	)
	expectConsole(t, out, "1 99\n")
}

func TestMultiDimensionalAllocation(t *testing.T) {
	out := mustRun(t,
		ast.Decl("int[][]", "grid", ast.Alloc("int", ast.Int(2), ast.Int(3))),
		ast.Expr(ast.SetIdx(ast.Index(ast.Var("grid"), ast.Int(1)), ast.Int(2), ast.Int(7))),
		ast.Println(
			ast.Index(ast.Index(ast.Var("grid"), ast.Int(1)), ast.Int(2)),
			ast.Field(ast.Var("grid"), "length"),
			ast.Field(ast.Index(ast.Var("grid"), ast.Int(0)), "length"),
		),
		ast.Println(ast.Var("grid")),
	)
	expectConsole(t, out, "7 2 3\n0 0 0 0 0 7\n")
}

func TestArrayErrors(t *testing.T) {
	result := runProgram(
		ast.Decl("int[]", "a", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Println(ast.Index(ast.Var("a"), ast.Int(5))),
		ast.Println(ast.Index(ast.Var("a"), ast.Str("x"))),
		ast.Expr(ast.SetField(ast.Var("a"), "length", ast.Int(1))),
		ast.Println(ast.Field(ast.Var("a"), "size")),
		ast.Decl("int[]", "e", ast.Arr()),
		ast.Decl("int[]", "neg", ast.Alloc("int", ast.Int(-1))),
	)
	expectErrors(t, result,
		"Index out of bounds: 5 (length 3)",
		"Index must be a number",
		"Array length is read-only",
		"Property size not found on array",
		"Cannot infer the element type of an empty array",
		"Array dimension must be a non-negative int",
	)
}
