package ast

// Definitions

// VarDeclaration binds a new name in the current scope. DataType "var"
// infers the type from Value; a nil Value declares a null of DataType.
type VarDeclaration struct {
	nodeImpl
	statementMarker

	DataType string     `json:"dataType"`
	ID       string     `json:"id"`
	Value    Expression `json:"value,omitempty"`
}

func NewVarDeclaration(dataType, id string, value Expression) *VarDeclaration {
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), DataType: dataType, ID: id, Value: value}
}

// FuncDeclaration declares a named function. DataType is the return type
// ("void" for none, "var" for any).
type FuncDeclaration struct {
	nodeImpl
	statementMarker

	DataType   string            `json:"dataType"`
	ID         string            `json:"id"`
	Parameters []*VarDeclaration `json:"params"`
	Body       *Block            `json:"body"`
}

func NewFuncDeclaration(dataType, id string, params []*VarDeclaration, body *Block) *FuncDeclaration {
	return &FuncDeclaration{nodeImpl: newNodeImpl(NodeFuncDeclaration), DataType: dataType, ID: id, Parameters: params, Body: body}
}

// StructDeclaration declares a record type. Field declarations may carry
// default values.
type StructDeclaration struct {
	nodeImpl
	statementMarker

	ID     string            `json:"id"`
	Fields []*VarDeclaration `json:"fields"`
}

func NewStructDeclaration(id string, fields []*VarDeclaration) *StructDeclaration {
	return &StructDeclaration{nodeImpl: newNodeImpl(NodeStructDeclaration), ID: id, Fields: fields}
}

// FieldNames lists the declared fields in order.
func (s *StructDeclaration) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.ID)
	}
	return names
}
