package ast

// Control flow

type Block struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"exp"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type Print struct {
	nodeImpl
	statementMarker

	Expressions []Expression `json:"exps"`
}

func NewPrint(exprs []Expression) *Print {
	return &Print{nodeImpl: newNodeImpl(NodePrint), Expressions: exprs}
}

type If struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"cond"`
	Then      Statement  `json:"stmtTrue"`
	Else      Statement  `json:"stmtFalse,omitempty"`
}

func NewIf(cond Expression, then, els Statement) *If {
	return &If{nodeImpl: newNodeImpl(NodeIf), Condition: cond, Then: then, Else: els}
}

type While struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"cond"`
	Body      Statement  `json:"stmt"`
}

func NewWhile(cond Expression, body Statement) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile), Condition: cond, Body: body}
}

// For is a C-style loop. Init is a VarDeclaration or VarAssign, Condition a
// Relational or Logical expression, Update a VarAssign.
type For struct {
	nodeImpl
	statementMarker

	Init      Statement  `json:"init"`
	Condition Expression `json:"cond"`
	Update    Expression `json:"inc"`
	Body      Statement  `json:"stmt"`
}

func NewFor(init Statement, cond, update Expression, body Statement) *For {
	return &For{nodeImpl: newNodeImpl(NodeFor), Init: init, Condition: cond, Update: update, Body: body}
}

type ForEach struct {
	nodeImpl
	statementMarker

	Variable *VarDeclaration `json:"vd"`
	Iterable Expression      `json:"arr"`
	Body     *Block          `json:"stmt"`
}

func NewForEach(variable *VarDeclaration, iterable Expression, body *Block) *ForEach {
	return &ForEach{nodeImpl: newNodeImpl(NodeForEach), Variable: variable, Iterable: iterable, Body: body}
}

type Case struct {
	nodeImpl

	Condition Expression  `json:"cond,omitempty"`
	Body      []Statement `json:"stmts"`
}

func NewCase(cond Expression, body []Statement) *Case {
	return &Case{nodeImpl: newNodeImpl(NodeCase), Condition: cond, Body: body}
}

// Switch falls through from a matching case into every later case and the
// default until a Break.
type Switch struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"cond"`
	Cases     []*Case    `json:"cases"`
	Default   *Case      `json:"def,omitempty"`
}

func NewSwitch(cond Expression, cases []*Case, def *Case) *Switch {
	return &Switch{nodeImpl: newNodeImpl(NodeSwitch), Condition: cond, Cases: cases, Default: def}
}

type Break struct {
	nodeImpl
	statementMarker
}

func NewBreak() *Break {
	return &Break{nodeImpl: newNodeImpl(NodeBreak)}
}

type Continue struct {
	nodeImpl
	statementMarker
}

func NewContinue() *Continue {
	return &Continue{nodeImpl: newNodeImpl(NodeContinue)}
}

type Return struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"exp,omitempty"`
}

func NewReturn(expr Expression) *Return {
	return &Return{nodeImpl: newNodeImpl(NodeReturn), Expression: expr}
}
