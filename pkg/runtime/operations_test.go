package runtime

import (
	"testing"

	"oak/toolchain-go/pkg/ast"
)

func TestArithmetic(t *testing.T) {
	cases := []struct {
		name        string
		op          string
		left, right Literal
		want        Literal
	}{
		{"IntAdd", "+", Int(2), Int(3), Int(5)},
		{"IntDivTruncates", "/", Int(7), Int(2), Int(3)},
		{"IntRem", "%", Int(7), Int(3), Int(1)},
		{"MixedWidens", "*", Int(2), Float(1.5), Float(3)},
		{"FloatSub", "-", Float(1), Float(0.25), Float(0.75)},
		{"StringConcat", "+", String("a"), String("b"), String("ab")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Arithmetic(tc.op, tc.left, tc.right, ast.Span{})
			if err != nil {
				t.Fatalf("Arithmetic: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	cases := []struct {
		name        string
		op          string
		left, right Literal
		msg         string
	}{
		{"StringMinus", "-", String("a"), String("b"), "Operand types are not valid: string and string"},
		{"FloatRem", "%", Float(1), Int(1), "Operand types are not valid: float and int"},
		{"Null", "+", Null(TypeInt), Int(1), "Cannot perform arithmetic operation with null values"},
		{"Unknown", "^", Int(1), Int(1), "Unsupported arithmetic operator ^"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Arithmetic(tc.op, tc.left, tc.right, ast.Span{})
			if err == nil || err.Error() != tc.msg {
				t.Fatalf("expected %q, got %v", tc.msg, err)
			}
		})
	}
}

func TestDivisionByZeroIsAWarning(t *testing.T) {
	for _, op := range []string{"/", "%"} {
		got, err := Arithmetic(op, Int(4), Int(0), ast.Span{})
		w, ok := AsWarning(err)
		if !ok || w.Kind != DivisionByZero {
			t.Fatalf("%s: expected a division warning, got %v", op, err)
		}
		if got.Type != TypeInt || !got.IsNull() {
			t.Fatalf("%s: expected a null int, got %#v", op, got)
		}
	}
}

func TestRelational(t *testing.T) {
	cases := []struct {
		op          string
		left, right Literal
		want        bool
	}{
		{"<", Int(1), Int(2), true},
		{">=", Float(2), Int(2), true},
		{"==", Int(2), Float(2), true},
		{"<", Char('a'), Char('b'), true},
		{"==", String("x"), String("x"), true},
		{"!=", Bool(true), Bool(false), true},
		{"!=", String("a"), String("b"), true},
	}
	for _, tc := range cases {
		got, err := Relational(tc.op, tc.left, tc.right, ast.Span{})
		if err != nil {
			t.Fatalf("%v %s %v: %v", tc.left, tc.op, tc.right, err)
		}
		if got.Value != tc.want {
			t.Fatalf("%v %s %v = %v, want %v", tc.left, tc.op, tc.right, got.Value, tc.want)
		}
	}
	for _, pair := range [][2]Literal{{Bool(true), Bool(false)}, {String("a"), String("b")}} {
		_, err := Relational(">", pair[0], pair[1], ast.Span{})
		if kind, ok := KindOf(err); !ok || kind != InvalidOperandTypes {
			t.Fatalf("%s values should not be ordered, got %v", pair[0].Type, err)
		}
	}
	if ok := RelationalAccepts("==", TypeString, TypeInt); ok {
		t.Fatalf("string and int should not compare")
	}
}

func TestLogicalAndUnary(t *testing.T) {
	got, err := Logical("||", Bool(false), Bool(true), ast.Span{})
	if err != nil || got.Value != true {
		t.Fatalf("false || true = %v, %v", got, err)
	}
	if _, err := Logical("&&", Int(1), Bool(true), ast.Span{}); err == nil {
		t.Fatalf("expected an operand type error")
	}
	neg, err := Unary("-", Float(2.5), ast.Span{})
	if err != nil || neg.Value != -2.5 {
		t.Fatalf("-2.5 = %v, %v", neg, err)
	}
	if _, err := Unary("!", Int(1), ast.Span{}); err == nil || err.Error() != "Operand type is not valid: int" {
		t.Fatalf("expected an operand error, got %v", err)
	}
}

func TestDeclaredValue(t *testing.T) {
	got, err := DeclaredValue(TypeFloat, Int(2), ast.Span{})
	if err != nil || got != Float(2) {
		t.Fatalf("float from int = %#v, %v", got, err)
	}
	got, err = DeclaredValue(TypeVar, String("s"), ast.Span{})
	if err != nil || got != String("s") {
		t.Fatalf("var keeps the value: %#v, %v", got, err)
	}
	got, err = DeclaredValue(TypeBool, Literal{}, ast.Span{})
	if err != nil || got.Type != TypeBool || !got.IsNull() {
		t.Fatalf("missing initialiser = %#v, %v", got, err)
	}
	got, err = DeclaredValue(TypeInt, String("s"), ast.Span{})
	if _, ok := AsWarning(err); !ok || got.Type != TypeInt || !got.IsNull() {
		t.Fatalf("mismatch = %#v, %v", got, err)
	}
	if _, err := DeclaredValue(TypeVar, Literal{}, ast.Span{}); err == nil {
		t.Fatalf("var without a value should fail")
	}
}

func TestTypeHelpers(t *testing.T) {
	if !IsArrayType("int[][]") || ElementType("int[][]") != "int[]" || ArrayType("char", 2) != "char[][]" {
		t.Fatalf("array type helpers disagree")
	}
	grid := NewDefaultArray(TypeString, []int{2, 1})
	if grid.Type != "string[][]" {
		t.Fatalf("grid type = %s", grid.Type)
	}
	row := grid.Value.(*ArrayListInstance).Elements[1].Value.(*ArrayListInstance)
	if row.ElemType != TypeString || row.Elements[0] != String("") {
		t.Fatalf("row = %#v", row)
	}
	lit := FromAST(ast.Flt(3))
	if lit.Value != float64(3) {
		t.Fatalf("FromAST float = %#v", lit.Value)
	}
	if c := FromAST(ast.Chr('q')); c.Value != 'q' || c.String() != "q" {
		t.Fatalf("FromAST char = %#v", c.Value)
	}
}
