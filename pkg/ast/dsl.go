package ast

// Literal helpers.

func Int(value int64) *Literal {
	return NewLiteral("int", value)
}

func Flt(value float64) *Literal {
	return NewLiteral("float", value)
}

func Str(value string) *Literal {
	return NewLiteral("string", value)
}

func Chr(value rune) *Literal {
	return NewLiteral("char", value)
}

func Bool(value bool) *Literal {
	return NewLiteral("bool", value)
}

func Null(dataType string) *Literal {
	return NewLiteral(dataType, nil)
}

// Expression helpers.

func Var(id string) *VarValue {
	return NewVarValue(id)
}

func Paren(expr Expression) *Group {
	return NewGroup(expr)
}

func Un(op string, operand Expression) *Unary {
	return NewUnary(op, operand)
}

func Arith(op string, left, right Expression) *Arithmetic {
	return NewArithmetic(op, left, right)
}

func Rel(op string, left, right Expression) *Relational {
	return NewRelational(op, left, right)
}

func Logic(op string, left, right Expression) *Logical {
	return NewLogical(op, left, right)
}

func Tern(cond, then, els Expression) *Ternary {
	return NewTernary(cond, then, els)
}

func Assign(id string, value Expression) *VarAssign {
	return NewVarAssign(id, "=", value)
}

func AssignOp(id, sig string, value Expression) *VarAssign {
	return NewVarAssign(id, sig, value)
}

func Call(name string, args ...Expression) *Callee {
	return NewCallee(NewVarValue(name), args)
}

func New(id string, inits ...*VarAssign) *Instance {
	return NewInstance(id, inits)
}

func Field(object Expression, name string) *Get {
	return NewGet(object, name)
}

func Index(object, index Expression) *Get {
	return NewGetIndex(object, index)
}

func Method(object Expression, name string, args ...Expression) *Get {
	return NewGetCall(object, Call(name, args...))
}

func SetField(object Expression, name string, value Expression) *Set {
	return NewSet(object, name, "=", value)
}

func SetIdx(object, index Expression, value Expression) *Set {
	return NewSetIndex(object, index, "=", value)
}

func Arr(elements ...Expression) *ArrayInstance {
	return NewArrayInstance("", elements)
}

func ArrOf(elemType string, elements ...Expression) *ArrayInstance {
	return NewArrayInstance(elemType, elements)
}

func Alloc(elemType string, dims ...Expression) *ArrayInstance {
	return NewArrayAllocation(elemType, dims)
}

// Statement helpers.

func Decl(dataType, id string, value Expression) *VarDeclaration {
	return NewVarDeclaration(dataType, id, value)
}

func Param(dataType, id string) *VarDeclaration {
	return NewVarDeclaration(dataType, id, nil)
}

func Blk(statements ...Statement) *Block {
	return NewBlock(statements)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Println(exprs ...Expression) *Print {
	return NewPrint(exprs)
}

func Iff(cond Expression, then Statement, els Statement) *If {
	return NewIf(cond, then, els)
}

func Loop(cond Expression, statements ...Statement) *While {
	return NewWhile(cond, NewBlock(statements))
}

func ForLoop(init Statement, cond, update Expression, statements ...Statement) *For {
	return NewFor(init, cond, update, NewBlock(statements))
}

func Each(variable *VarDeclaration, iterable Expression, statements ...Statement) *ForEach {
	return NewForEach(variable, iterable, NewBlock(statements))
}

func When(cond Expression, statements ...Statement) *Case {
	return NewCase(cond, statements)
}

func Otherwise(statements ...Statement) *Case {
	return NewCase(nil, statements)
}

func Sw(cond Expression, def *Case, cases ...*Case) *Switch {
	return NewSwitch(cond, cases, def)
}

func Brk() *Break {
	return NewBreak()
}

func Cont() *Continue {
	return NewContinue()
}

func Ret(expr Expression) *Return {
	return NewReturn(expr)
}

func Fn(returnType, id string, params []*VarDeclaration, statements ...Statement) *FuncDeclaration {
	return NewFuncDeclaration(returnType, id, params, NewBlock(statements))
}

func StructDef(id string, fields ...*VarDeclaration) *StructDeclaration {
	return NewStructDeclaration(id, fields)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}

// At stamps a start position on node, for tests that check locations.
func At[T Node](node T, line, column int) T {
	SetSpan(node, Span{Start: Position{Line: line, Column: column}, End: Position{Line: line, Column: column}})
	return node
}
