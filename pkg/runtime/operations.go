package runtime

import (
	"oak/toolchain-go/pkg/ast"
)

// operandRule admits one (left, right) type pair and names the result type.
type operandRule struct {
	left, right, result string
}

var numericRules = []operandRule{
	{TypeInt, TypeInt, TypeInt},
	{TypeInt, TypeFloat, TypeFloat},
	{TypeFloat, TypeInt, TypeFloat},
	{TypeFloat, TypeFloat, TypeFloat},
}

var arithmeticRules = map[string][]operandRule{
	"+": append(append([]operandRule{}, numericRules...), operandRule{TypeString, TypeString, TypeString}),
	"-": numericRules,
	"*": numericRules,
	"/": numericRules,
	"%": {{TypeInt, TypeInt, TypeInt}},
}

var orderingRules = []operandRule{
	{TypeInt, TypeInt, TypeBool},
	{TypeInt, TypeFloat, TypeBool},
	{TypeFloat, TypeInt, TypeBool},
	{TypeFloat, TypeFloat, TypeBool},
	{TypeChar, TypeChar, TypeBool},
}

var equalityRules = append(append([]operandRule{}, orderingRules...),
	operandRule{TypeString, TypeString, TypeBool},
	operandRule{TypeBool, TypeBool, TypeBool},
)

var relationalRules = map[string][]operandRule{
	"<":  orderingRules,
	">":  orderingRules,
	"<=": orderingRules,
	">=": orderingRules,
	"==": equalityRules,
	"!=": equalityRules,
}

func lookupRule(rules []operandRule, left, right string) (string, bool) {
	for _, rule := range rules {
		if rule.left == left && rule.right == right {
			return rule.result, true
		}
	}
	return "", false
}

// ArithmeticResultType reports the static result type of left op right.
func ArithmeticResultType(op, left, right string) (string, bool) {
	rules, ok := arithmeticRules[op]
	if !ok {
		return "", false
	}
	return lookupRule(rules, left, right)
}

// RelationalAccepts reports whether op is defined for the operand types.
func RelationalAccepts(op, left, right string) bool {
	rules, ok := relationalRules[op]
	if !ok {
		return false
	}
	_, ok = lookupRule(rules, left, right)
	return ok
}

// Arithmetic applies +, -, *, / or %. Division or modulo by zero yields a
// null int together with a *Warning; callers keep the result.
func Arithmetic(op string, left, right Literal, loc ast.Span) (Literal, error) {
	rules, ok := arithmeticRules[op]
	if !ok {
		return Literal{}, Errorf(UnsupportedOperator, loc, "Unsupported arithmetic operator %s", op)
	}
	if left.IsNull() || right.IsNull() {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Cannot perform arithmetic operation with null values")
	}
	result, ok := lookupRule(rules, left.Type, right.Type)
	if !ok {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Operand types are not valid: %s and %s", left.Type, right.Type)
	}
	if (op == "/" || op == "%") && isZero(right) {
		return Null(TypeInt), &Warning{Kind: DivisionByZero, Message: "Division by zero", Location: loc}
	}
	switch result {
	case TypeString:
		return String(left.Value.(string) + right.Value.(string)), nil
	case TypeInt:
		a, b := left.Value.(int64), right.Value.(int64)
		switch op {
		case "+":
			return Int(a + b), nil
		case "-":
			return Int(a - b), nil
		case "*":
			return Int(a * b), nil
		case "/":
			return Int(a / b), nil
		default:
			return Int(a % b), nil
		}
	default:
		a, _ := numeric(left.Value)
		b, _ := numeric(right.Value)
		switch op {
		case "+":
			return Float(a + b), nil
		case "-":
			return Float(a - b), nil
		case "*":
			return Float(a * b), nil
		default:
			return Float(a / b), nil
		}
	}
}

func isZero(l Literal) bool {
	n, ok := numeric(l.Value)
	return ok && n == 0
}

// Relational applies an ordering or equality comparison.
func Relational(op string, left, right Literal, loc ast.Span) (Literal, error) {
	rules, ok := relationalRules[op]
	if !ok {
		return Literal{}, Errorf(UnsupportedOperator, loc, "Unsupported relational operator %s", op)
	}
	if left.IsNull() || right.IsNull() {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Cannot perform relational operation with null values")
	}
	if _, ok := lookupRule(rules, left.Type, right.Type); !ok {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Operand types are not valid: %s and %s", left.Type, right.Type)
	}
	var cmp int
	switch a := left.Value.(type) {
	case rune:
		cmp = compareOrdered(a, right.Value.(rune))
	case string:
		cmp = compareOrdered(a, right.Value.(string))
	case bool:
		if a != right.Value.(bool) {
			cmp = 1
		}
	default:
		x, _ := numeric(left.Value)
		y, _ := numeric(right.Value)
		cmp = compareOrdered(x, y)
	}
	switch op {
	case "<":
		return Bool(cmp < 0), nil
	case ">":
		return Bool(cmp > 0), nil
	case "<=":
		return Bool(cmp <= 0), nil
	case ">=":
		return Bool(cmp >= 0), nil
	case "==":
		return Bool(cmp == 0), nil
	default:
		return Bool(cmp != 0), nil
	}
}

func compareOrdered[T int64 | float64 | rune | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Logical combines two booleans. Both operands are always evaluated by the
// caller; there is no short-circuit.
func Logical(op string, left, right Literal, loc ast.Span) (Literal, error) {
	if op != "&&" && op != "||" {
		return Literal{}, Errorf(UnsupportedOperator, loc, "Unsupported logical operator %s", op)
	}
	if left.IsNull() || right.IsNull() {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Cannot perform logical operation with null values")
	}
	if left.Type != TypeBool || right.Type != TypeBool {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Operand types are not valid: %s and %s", left.Type, right.Type)
	}
	a, b := left.Value.(bool), right.Value.(bool)
	if op == "&&" {
		return Bool(a && b), nil
	}
	return Bool(a || b), nil
}

// Unary applies "-" to numbers or "!" to booleans.
func Unary(op string, operand Literal, loc ast.Span) (Literal, error) {
	if operand.IsNull() {
		return Literal{}, Errorf(InvalidOperandTypes, loc, "Cannot perform unary operation with null values")
	}
	switch op {
	case "-":
		switch v := operand.Value.(type) {
		case int64:
			return Int(-v), nil
		case float64:
			return Float(-v), nil
		}
	case "!":
		if v, ok := operand.Value.(bool); ok {
			return Bool(!v), nil
		}
	default:
		return Literal{}, Errorf(UnsupportedOperator, loc, "Unsupported unary operator %s", op)
	}
	return Literal{}, Errorf(InvalidOperandTypes, loc, "Operand type is not valid: %s", operand.Type)
}

// DeclaredValue applies declaration typing: "var" takes the value as is, a
// float declaration widens an int, a matching type passes through, and any
// other type yields a null of the declared type with a *Warning.
func DeclaredValue(declared string, value Literal, loc ast.Span) (Literal, error) {
	if value.IsNull() && value.Type == "" {
		if declared == TypeVar {
			return Literal{}, Errorf(ExpectedLiteral, loc, "Variable declaration must have a value.")
		}
		return Null(declared), nil
	}
	switch {
	case declared == TypeVar, declared == value.Type:
		return value, nil
	case declared == TypeFloat && value.Type == TypeInt:
		if value.IsNull() {
			return Null(TypeFloat), nil
		}
		return Float(float64(value.Value.(int64))), nil
	}
	return Null(declared), &Warning{
		Kind:     InvalidOperandTypes,
		Message:  "Cannot initialise " + declared + " with a " + value.Type + " value",
		Location: loc,
	}
}
