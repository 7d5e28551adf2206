package interpreter

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// Symbol is one declaration observed while running a program.
type Symbol struct {
	ID     int
	Name   string
	Type   string
	Scope  string
	Line   int
	Column int
}

type symbolKey struct {
	name, scope  string
	line, column int
}

// SymbolTable records declarations once per name, scope and location, so
// re-entering a loop body or function does not duplicate entries.
type SymbolTable struct {
	symbols []Symbol
	seen    map[symbolKey]struct{}
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{seen: make(map[symbolKey]struct{})}
}

func (t *SymbolTable) Track(name string, value runtime.Value, scope string, loc ast.Span) {
	key := symbolKey{name: name, scope: scope, line: loc.Start.Line, column: loc.Start.Column}
	if _, ok := t.seen[key]; ok {
		return
	}
	t.seen[key] = struct{}{}
	t.symbols = append(t.symbols, Symbol{
		ID:     len(t.symbols) + 1,
		Name:   name,
		Type:   symbolType(value),
		Scope:  scope,
		Line:   loc.Start.Line,
		Column: loc.Start.Column,
	})
}

// Symbols returns the recorded declarations in the order they happened.
func (t *SymbolTable) Symbols() []Symbol {
	return append([]Symbol(nil), t.symbols...)
}

func symbolType(value runtime.Value) string {
	switch v := value.(type) {
	case runtime.Literal:
		return v.Type
	case *runtime.Function:
		return "function"
	case *runtime.Struct:
		return "struct"
	case nil:
		return ""
	default:
		return v.Kind().String()
	}
}
