package runtime

import (
	"oak/toolchain-go/pkg/ast"
)

// GlobalScope names the outermost environment.
const GlobalScope = "Global"

// VariableTracker observes every successful declaration.
type VariableTracker interface {
	Track(name string, value Value, scope string, loc ast.Span)
}

// Environment provides lexical scoping for runtime values.
type Environment struct {
	name    string
	values  map[string]Value
	order   []string
	parent  *Environment
	tracker VariableTracker
}

// NewEnvironment creates a new environment, optionally nested under a parent.
// The child inherits the parent's scope name and tracker.
func NewEnvironment(parent *Environment) *Environment {
	env := &Environment{values: make(map[string]Value), parent: parent}
	if parent != nil {
		env.name = parent.name
		env.tracker = parent.tracker
	} else {
		env.name = GlobalScope
	}
	return env
}

// NewNamedEnvironment creates a child scope reported under name (a function
// or struct name).
func NewNamedEnvironment(parent *Environment, name string) *Environment {
	env := NewEnvironment(parent)
	env.name = name
	return env
}

// Name is the scope name reported to the tracker.
func (e *Environment) Name() string {
	return e.name
}

// IsGlobal reports whether e is the root of its chain.
func (e *Environment) IsGlobal() bool {
	return e.parent == nil && e.name == GlobalScope
}

// SetTracker installs the declaration observer for e and scopes created
// from it afterwards.
func (e *Environment) SetTracker(tracker VariableTracker) {
	e.tracker = tracker
}

// Detach cuts the link to the parent scope.
func (e *Environment) Detach() {
	e.parent = nil
}

// Set declares name in this scope.
func (e *Environment) Set(name string, value Value, loc ast.Span) error {
	if _, ok := e.values[name]; ok {
		return Errorf(DuplicateDeclaration, loc, "Variable %s already exists", name)
	}
	e.values[name] = value
	e.order = append(e.order, name)
	if e.tracker != nil {
		e.tracker.Track(name, value, e.name, loc)
	}
	return nil
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string, loc ast.Span) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, Errorf(UndefinedVariable, loc, "Variable %s not found", name)
}

// Assign updates an existing binding in the first scope where it appears.
// Assigning a literal of a different type keeps the binding's type and
// nulls its payload.
func (e *Environment) Assign(name string, value Value, loc ast.Span) error {
	for env := e; env != nil; env = env.parent {
		current, ok := env.values[name]
		if !ok {
			continue
		}
		if old, ok := current.(Literal); ok {
			if next, ok := value.(Literal); ok && next.Type != old.Type {
				env.values[name] = Null(old.Type)
				return nil
			}
		}
		env.values[name] = value
		return nil
	}
	return Errorf(UndefinedVariable, loc, "Variable %s not found", name)
}

// Keys returns this scope's bindings in declaration order.
func (e *Environment) Keys() []string {
	return append([]string(nil), e.order...)
}

// Clone copies this scope's bindings into a new scope with the same parent.
// Array payloads are deep-copied.
func (e *Environment) Clone() *Environment {
	out := &Environment{
		name:    e.name,
		values:  make(map[string]Value, len(e.values)),
		order:   append([]string(nil), e.order...),
		parent:  e.parent,
		tracker: e.tracker,
	}
	for k, v := range e.values {
		if lit, ok := v.(Literal); ok {
			v = CloneLiteral(lit)
		}
		out.values[k] = v
	}
	return out
}
