package compiler

import (
	"fmt"
	"maps"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

// stackObject mirrors one value the generated code keeps on the machine
// stack. Every emitted push or pop has a matching change to this list.
type stackObject struct {
	Type   string
	Length int
	Depth  int
	Name   string
	Dims   []int
}

type jumpTarget struct {
	label  string
	height int
}

type localBinding struct {
	name  string
	slot  int
	obj   stackObject
	depth int
}

// codeUnit holds the compile-time state of the body being generated: the
// main program, or one function while its buffer is being filled.
type codeUnit struct {
	objects   []stackObject
	depth     int
	breaks    []jumpTarget
	continues []jumpTarget
	frame     *functionFrame
	locals    []localBinding
	nextLocal int
}

type generator struct {
	opts      Options
	unit      *codeUnit
	main      *Buffer
	functions []*Buffer
	frames    map[string]*functionFrame
	structs   map[string]*ast.StructDeclaration
	used      []string
	usedSet   map[string]bool
	labels    int
	hidden    int
	errors    []error
	warnings  []string
}

func newGenerator(opts Options) *generator {
	return &generator{
		opts:    opts,
		unit:    &codeUnit{},
		main:    NewBuffer(),
		frames:  make(map[string]*functionFrame),
		structs: make(map[string]*ast.StructDeclaration),
		usedSet: make(map[string]bool),
	}
}

// internalError marks a broken generator invariant, such as popping an
// empty object stack. It is raised with panic and recovered per statement.
type internalError struct {
	msg string
}

func (e internalError) Error() string {
	return "compiler: internal error: " + e.msg
}

func (g *generator) internalf(format string, args ...any) {
	panic(internalError{msg: fmt.Sprintf(format, args...)})
}

// checkpoint is everything a failed top-level statement must roll back.
type checkpoint struct {
	objects   []stackObject
	depth     int
	labels    int
	hidden    int
	used      int
	functions int
	frames    map[string]*functionFrame
	structs   map[string]*ast.StructDeclaration
	warnings  int
}

func (g *generator) checkpoint() checkpoint {
	return checkpoint{
		objects:   append([]stackObject(nil), g.unit.objects...),
		depth:     g.unit.depth,
		labels:    g.labels,
		hidden:    g.hidden,
		used:      len(g.used),
		functions: len(g.functions),
		frames:    maps.Clone(g.frames),
		structs:   maps.Clone(g.structs),
		warnings:  len(g.warnings),
	}
}

func (g *generator) rollback(cp checkpoint) {
	g.unit = &codeUnit{objects: cp.objects, depth: cp.depth}
	g.labels = cp.labels
	g.hidden = cp.hidden
	for _, name := range g.used[cp.used:] {
		delete(g.usedSet, name)
	}
	g.used = g.used[:cp.used]
	g.functions = g.functions[:cp.functions]
	g.frames = cp.frames
	g.structs = cp.structs
	g.warnings = g.warnings[:cp.warnings]
}

// compileTopLevel compiles one program statement as a transaction: on
// failure the object stack, labels and builtin usage are restored and the
// partial code is dropped, so later statements still compile.
func (g *generator) compileTopLevel(stmt ast.Statement) {
	cp := g.checkpoint()
	b := NewBuffer()
	if g.opts.Comments {
		loc := stmt.Span().Start
		b.Comment("%d:%d %s", loc.Line, loc.Column, stmt.NodeType())
	}
	if err := g.guard(func() error { return g.compileStatement(b, stmt) }); err != nil {
		g.rollback(cp)
		g.errors = append(g.errors, runtime.At(err, stmt.Span()))
		return
	}
	g.main.Append(b)
}

func (g *generator) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(internalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()
	return fn()
}

func (g *generator) warn(loc ast.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if loc.Start.Line > 0 {
		msg = fmt.Sprintf("%d:%d: %s", loc.Start.Line, loc.Start.Column, msg)
	}
	g.warnings = append(g.warnings, msg)
}

func (g *generator) nextLabelID() int {
	id := g.labels
	g.labels++
	return id
}

func (g *generator) newLabel(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, g.nextLabelID())
}

// hiddenName returns a slot name no source identifier can collide with.
func (g *generator) hiddenName(prefix string) string {
	name := fmt.Sprintf("$%s%d", prefix, g.hidden)
	g.hidden++
	return name
}

// callBuiltin emits a call to a shared routine and schedules its body.
func (g *generator) callBuiltin(b *Buffer, name string, loc ast.Span) error {
	if _, ok := builtinTable[name]; !ok {
		return runtime.Errorf(runtime.UnknownBuiltin, loc, "Builtin function %s not found", name)
	}
	g.useBuiltin(name)
	b.jal(name)
	return nil
}

func (g *generator) useBuiltin(name string) {
	if g.usedSet[name] {
		return
	}
	g.usedSet[name] = true
	g.used = append(g.used, name)
	for _, dep := range builtinTable[name].deps {
		g.useBuiltin(dep)
	}
}

// usedBuiltins lists the routines a compilation referenced, in first-use
// order.
func (g *generator) usedBuiltins() []string {
	return append([]string(nil), g.used...)
}
