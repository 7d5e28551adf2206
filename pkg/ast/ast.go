package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeLiteral             NodeType = "Literal"
	NodeGroup               NodeType = "Group"
	NodeVarValue            NodeType = "VarValue"
	NodeUnary               NodeType = "Unary"
	NodeArithmetic          NodeType = "Arithmetic"
	NodeRelational          NodeType = "Relational"
	NodeLogical             NodeType = "Logical"
	NodeTernary             NodeType = "Ternary"
	NodeVarAssign           NodeType = "VarAssign"
	NodeReturn              NodeType = "Return"
	NodeContinue            NodeType = "Continue"
	NodeBreak               NodeType = "Break"
	NodeCase                NodeType = "Case"
	NodeSwitch              NodeType = "Switch"
	NodeFor                 NodeType = "For"
	NodeForEach             NodeType = "ForEach"
	NodeWhile               NodeType = "While"
	NodeIf                  NodeType = "If"
	NodeBlock               NodeType = "Block"
	NodePrint               NodeType = "Print"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeVarDeclaration      NodeType = "VarDeclaration"
	NodeCallee              NodeType = "Callee"
	NodeFuncDeclaration     NodeType = "FuncDeclaration"
	NodeStructDeclaration   NodeType = "StructDeclaration"
	NodeInstance            NodeType = "Instance"
	NodeGet                 NodeType = "Get"
	NodeSet                 NodeType = "Set"
	NodeArrayInstance       NodeType = "ArrayInstance"
)

// Position is a point in the source text. Line and Column are 1-based.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span covers the source text a node was parsed from.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type     NodeType `json:"type"`
	Location Span     `json:"location"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.Location }
func (nodeImpl) isNode()              {}

func (n *nodeImpl) setSpan(span Span) { n.Location = span }

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Program is the ordered list of top-level statements handed over by the parser.
type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Literal is a constant written in the source. Value holds an int64, float64,
// bool, string or rune; nil is the null literal of DataType.
type Literal struct {
	nodeImpl
	expressionMarker
	statementMarker

	DataType string `json:"dataType"`
	Value    any    `json:"value"`
}

func NewLiteral(dataType string, value any) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), DataType: dataType, Value: value}
}

type Group struct {
	nodeImpl
	expressionMarker
	statementMarker

	Expression Expression `json:"exp"`
}

func NewGroup(expr Expression) *Group {
	return &Group{nodeImpl: newNodeImpl(NodeGroup), Expression: expr}
}

type VarValue struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID string `json:"id"`
}

func NewVarValue(id string) *VarValue {
	return &VarValue{nodeImpl: newNodeImpl(NodeVarValue), ID: id}
}

type Unary struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"op"`
	Operand  Expression `json:"exp"`
}

func NewUnary(op string, operand Expression) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary), Operator: op, Operand: operand}
}

type Arithmetic struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"op"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewArithmetic(op string, left, right Expression) *Arithmetic {
	return &Arithmetic{nodeImpl: newNodeImpl(NodeArithmetic), Operator: op, Left: left, Right: right}
}

type Relational struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"op"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewRelational(op string, left, right Expression) *Relational {
	return &Relational{nodeImpl: newNodeImpl(NodeRelational), Operator: op, Left: left, Right: right}
}

// Logical evaluates both operands before combining them.
type Logical struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"op"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewLogical(op string, left, right Expression) *Logical {
	return &Logical{nodeImpl: newNodeImpl(NodeLogical), Operator: op, Left: left, Right: right}
}

type Ternary struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition Expression `json:"cond"`
	Then      Expression `json:"trueExp"`
	Else      Expression `json:"falseExp"`
}

func NewTernary(cond, then, els Expression) *Ternary {
	return &Ternary{nodeImpl: newNodeImpl(NodeTernary), Condition: cond, Then: then, Else: els}
}

// VarAssign rebinds an existing variable. Sig is one of "=", "+=", "-=".
type VarAssign struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID    string     `json:"id"`
	Sig   string     `json:"sig"`
	Value Expression `json:"assign"`
}

func NewVarAssign(id, sig string, value Expression) *VarAssign {
	return &VarAssign{nodeImpl: newNodeImpl(NodeVarAssign), ID: id, Sig: sig, Value: value}
}

type Callee struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"args"`
}

func NewCallee(callee Expression, args []Expression) *Callee {
	return &Callee{nodeImpl: newNodeImpl(NodeCallee), Callee: callee, Arguments: args}
}

// Instance builds a struct value. Each argument assigns one field by name.
type Instance struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID        string       `json:"id"`
	Arguments []*VarAssign `json:"args"`
}

func NewInstance(id string, args []*VarAssign) *Instance {
	return &Instance{nodeImpl: newNodeImpl(NodeInstance), ID: id, Arguments: args}
}

// Get reads from a struct or array value. Exactly one of Property, Index or
// Call is set; Call receives Object as its first argument.
type Get struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object   Expression `json:"object"`
	Property string     `json:"property,omitempty"`
	Index    Expression `json:"index,omitempty"`
	Call     *Callee    `json:"call,omitempty"`
}

func NewGet(object Expression, property string) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet), Object: object, Property: property}
}

func NewGetIndex(object, index Expression) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet), Object: object, Index: index}
}

func NewGetCall(object Expression, call *Callee) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet), Object: object, Call: call}
}

// Set writes a struct field (Property) or an array element (Index).
type Set struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object   Expression `json:"object"`
	Property string     `json:"property,omitempty"`
	Index    Expression `json:"index,omitempty"`
	Sig      string     `json:"sig"`
	Value    Expression `json:"value"`
}

func NewSet(object Expression, property, sig string, value Expression) *Set {
	return &Set{nodeImpl: newNodeImpl(NodeSet), Object: object, Property: property, Sig: sig, Value: value}
}

func NewSetIndex(object, index Expression, sig string, value Expression) *Set {
	return &Set{nodeImpl: newNodeImpl(NodeSet), Object: object, Index: index, Sig: sig, Value: value}
}

// ArrayInstance is either an element list ({1, 2, 3}) or a default-filled
// allocation (new int[3][2]) when Dimensions is non-empty.
type ArrayInstance struct {
	nodeImpl
	expressionMarker
	statementMarker

	ElemType   string       `json:"dataType,omitempty"`
	Elements   []Expression `json:"args,omitempty"`
	Dimensions []Expression `json:"dim,omitempty"`
}

func NewArrayInstance(elemType string, elements []Expression) *ArrayInstance {
	return &ArrayInstance{nodeImpl: newNodeImpl(NodeArrayInstance), ElemType: elemType, Elements: elements}
}

func NewArrayAllocation(elemType string, dims []Expression) *ArrayInstance {
	return &ArrayInstance{nodeImpl: newNodeImpl(NodeArrayInstance), ElemType: elemType, Dimensions: dims}
}
