package runtime

// CloneLiteral copies array payloads element by element so the result shares
// no storage with lit. Struct instances keep reference semantics.
func CloneLiteral(lit Literal) Literal {
	if arr, ok := lit.Value.(*ArrayListInstance); ok {
		return Literal{Type: lit.Type, Value: arr.CloneArray()}
	}
	return lit
}
