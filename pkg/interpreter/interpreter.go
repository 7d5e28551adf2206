package interpreter

import (
	"strings"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// Interpreter walks Oak programs directly over the AST.
type Interpreter struct {
	global   *runtime.Environment
	natives  map[string]*runtime.NativeFunction
	symbols  *SymbolTable
	console  strings.Builder
	warnings []*runtime.Warning
	loops    []loopContext
}

// Result is everything one program run produced. Errors holds one entry per
// failed top-level statement, in order.
type Result struct {
	Console  string
	Errors   []error
	Warnings []*runtime.Warning
	Symbols  []Symbol
}

// New returns an interpreter whose global environment holds the natives.
func New() *Interpreter {
	i := &Interpreter{
		global:  runtime.NewEnvironment(nil),
		natives: make(map[string]*runtime.NativeFunction),
		symbols: NewSymbolTable(),
	}
	for _, native := range nativeFunctions() {
		i.natives[native.Name()] = native
		_ = i.global.Set(native.Name(), native, ast.Span{})
	}
	i.global.SetTracker(i.symbols)
	return i
}

// Execute runs every top-level statement. A failing statement is recorded
// and execution resumes with the next one.
func (i *Interpreter) Execute(program *ast.Program) *Result {
	i.console.Reset()
	i.warnings = nil
	var errs []error
	for _, stmt := range program.Body {
		i.loops = nil
		c, err := i.evaluateStatement(stmt, i.global)
		if err == nil && c.kind != completionNormal {
			err = runtime.Errorf(runtime.InvalidControlTransfer, stmt.Span(), "%s outside of a function or loop", c.kind)
		}
		if err != nil {
			errs = append(errs, runtime.At(err, stmt.Span()))
		}
	}
	return &Result{
		Console:  i.console.String(),
		Errors:   errs,
		Warnings: i.warnings,
		Symbols:  i.symbols.Symbols(),
	}
}

// Write appends text to the console.
func (i *Interpreter) Write(text string) {
	i.console.WriteString(text)
}

// warn records err when it is a Warning and swallows it.
func (i *Interpreter) warn(err error) error {
	if w, ok := runtime.AsWarning(err); ok {
		i.warnings = append(i.warnings, w)
		return nil
	}
	return err
}
