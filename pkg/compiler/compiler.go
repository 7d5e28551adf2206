package compiler

import (
	"fmt"

	"oak/toolchain-go/pkg/ast"
)

type Options struct {
	// Comments annotates the output with one comment per source statement.
	Comments bool
}

// Result is one compilation. Errors holds the statements that could not be
// compiled; their code is left out of Assembly.
type Result struct {
	Assembly string
	Errors   []error
	Warnings []string
}

type Compiler struct {
	opts Options
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Compile generates RISC-V assembly for program. Every call starts from a
// fresh generator, so compiling the same program twice yields identical
// output.
func (c *Compiler) Compile(program *ast.Program) (*Result, error) {
	if program == nil {
		return nil, fmt.Errorf("compiler: missing program")
	}
	gen := newGenerator(c.opts)
	for _, stmt := range program.Body {
		if stmt == nil {
			continue
		}
		gen.compileTopLevel(stmt)
	}
	return &Result{
		Assembly: gen.render(),
		Errors:   gen.errors,
		Warnings: gen.warnings,
	}, nil
}
