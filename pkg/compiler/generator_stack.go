package compiler

import (
	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/runtime"
)

const wordSize = 4

// Object stack. Each helper that moves sp updates the object list in the
// same call, so the two cannot drift apart.

func (g *generator) pushObject(obj stackObject) {
	if obj.Length == 0 {
		obj.Length = wordSize
	}
	obj.Depth = g.unit.depth
	g.unit.objects = append(g.unit.objects, obj)
}

func (g *generator) popObject() stackObject {
	n := len(g.unit.objects)
	if n == 0 {
		g.internalf("pop from an empty object stack")
	}
	obj := g.unit.objects[n-1]
	g.unit.objects = g.unit.objects[:n-1]
	return obj
}

func (g *generator) top() stackObject {
	n := len(g.unit.objects)
	if n == 0 {
		g.internalf("empty object stack")
	}
	return g.unit.objects[n-1]
}

// retypeTop changes the static type of the top object without emitting code.
func (g *generator) retypeTop(typ string, dims []int) {
	n := len(g.unit.objects)
	if n == 0 {
		g.internalf("retype on an empty object stack")
	}
	g.unit.objects[n-1].Type = typ
	g.unit.objects[n-1].Dims = dims
}

func (g *generator) push(b *Buffer, reg string, obj stackObject) {
	b.addi(rSP, rSP, -wordSize)
	b.sw(reg, 0, rSP)
	g.pushObject(obj)
}

func (g *generator) pushFloat(b *Buffer, reg string, obj stackObject) {
	b.addi(rSP, rSP, -wordSize)
	b.fsw(reg, 0, rSP)
	g.pushObject(obj)
}

func (g *generator) pop(b *Buffer, reg string) stackObject {
	obj := g.popObject()
	b.lw(reg, 0, rSP)
	b.addi(rSP, rSP, obj.Length)
	return obj
}

func (g *generator) popFloat(b *Buffer, reg string) stackObject {
	obj := g.popObject()
	b.flw(reg, 0, rSP)
	b.addi(rSP, rSP, obj.Length)
	return obj
}

// popValue pops into intReg, or floatReg when the top object is a float.
func (g *generator) popValue(b *Buffer, intReg, floatReg string) stackObject {
	if g.top().Type == runtime.TypeFloat {
		return g.popFloat(b, floatReg)
	}
	return g.pop(b, intReg)
}

// pushValue is the inverse of popValue.
func (g *generator) pushValue(b *Buffer, intReg, floatReg string, obj stackObject) {
	if obj.Type == runtime.TypeFloat {
		g.pushFloat(b, floatReg, obj)
		return
	}
	g.push(b, intReg, obj)
}

// popNumber pops a numeric value into a float register, converting ints.
func (g *generator) popNumber(b *Buffer, intReg, floatReg string) stackObject {
	if g.top().Type == runtime.TypeFloat {
		return g.popFloat(b, floatReg)
	}
	obj := g.pop(b, intReg)
	b.Emit("fcvt.s.w", floatReg, intReg)
	return obj
}

// discard drops the top value.
func (g *generator) discard(b *Buffer) {
	obj := g.popObject()
	b.addi(rSP, rSP, obj.Length)
}

// forget drops the top object without emitting code. Used where two
// branches each push one value and only one of them runs.
func (g *generator) forget() stackObject {
	return g.popObject()
}

func (g *generator) height() int {
	return len(g.unit.objects)
}

// bytesAbove is the stack space taken by the objects above height.
func (g *generator) bytesAbove(height int) int {
	total := 0
	for _, obj := range g.unit.objects[height:] {
		total += obj.Length
	}
	return total
}

func (g *generator) newScope() {
	g.unit.depth++
}

// endScope removes the objects and locals of the innermost scope and
// returns how many stack bytes they occupied.
func (g *generator) endScope() int {
	depth := g.unit.depth
	bytes := 0
	objects := g.unit.objects
	for len(objects) > 0 && objects[len(objects)-1].Depth >= depth {
		bytes += objects[len(objects)-1].Length
		objects = objects[:len(objects)-1]
	}
	g.unit.objects = objects
	locals := g.unit.locals
	for len(locals) > 0 && locals[len(locals)-1].depth >= depth {
		locals = locals[:len(locals)-1]
	}
	g.unit.locals = locals
	g.unit.depth--
	return bytes
}

// closeScope ends the scope and releases its stack space in one step.
func (g *generator) closeScope(b *Buffer) {
	if bytes := g.endScope(); bytes > 0 {
		b.addi(rSP, rSP, bytes)
	}
}

// stackOffset finds the innermost object called name and returns its
// distance from sp.
func (g *generator) stackOffset(name string) (int, stackObject, bool) {
	offset := 0
	objects := g.unit.objects
	for i := len(objects) - 1; i >= 0; i-- {
		if objects[i].Name == name {
			return offset, objects[i], true
		}
		offset += objects[i].Length
	}
	return 0, stackObject{}, false
}

// Variables

// varRef addresses a variable as offset(base).
type varRef struct {
	name   string
	base   string
	offset int
	obj    stackObject
}

// resolve finds name among function locals, then the object stack, then
// the globals visible from the current function. Stack offsets depend on
// sp, so callers resolve after any pops they emit.
func (g *generator) resolve(name string, loc ast.Span) (varRef, error) {
	if frame := g.unit.frame; frame != nil {
		for i := len(g.unit.locals) - 1; i >= 0; i-- {
			local := g.unit.locals[i]
			if local.name == name {
				return varRef{name: name, base: rFP, offset: -wordSize * local.slot, obj: local.obj}, nil
			}
		}
	}
	if offset, obj, ok := g.stackOffset(name); ok {
		return varRef{name: name, base: rSP, offset: offset, obj: obj}, nil
	}
	if frame := g.unit.frame; frame != nil {
		if ref, ok := frame.globals[name]; ok {
			return ref, nil
		}
	}
	return varRef{}, runtime.Errorf(runtime.UndefinedVariable, loc, "Variable %s not found", name)
}

func (g *generator) pushVar(b *Buffer, ref varRef) {
	obj := stackObject{Type: ref.obj.Type, Dims: ref.obj.Dims}
	if ref.obj.Type == runtime.TypeFloat {
		b.flw(rFT0, ref.offset, ref.base)
		g.pushFloat(b, rFT0, obj)
		return
	}
	b.lw(rT0, ref.offset, ref.base)
	g.push(b, rT0, obj)
}

func (g *generator) storeVar(b *Buffer, ref varRef, intReg, floatReg string) {
	if ref.obj.Type == runtime.TypeFloat {
		b.fsw(floatReg, ref.offset, ref.base)
		return
	}
	b.sw(intReg, ref.offset, ref.base)
}

// declare binds the value on top of the stack to name. In the main program
// the object itself becomes the variable; inside a function the value moves
// into the next frame slot the frame visitor reserved.
func (g *generator) declare(b *Buffer, name string, loc ast.Span) error {
	unit := g.unit
	value := g.top()
	if unit.frame == nil {
		for i := len(unit.objects) - 2; i >= 0 && unit.objects[i].Depth == unit.depth; i-- {
			if unit.objects[i].Name == name {
				return runtime.Errorf(runtime.DuplicateDeclaration, loc, "Variable %s already exists", name)
			}
		}
		unit.objects[len(unit.objects)-1].Name = name
		return nil
	}
	for i := len(unit.locals) - 1; i >= 0 && unit.locals[i].depth == unit.depth; i-- {
		if unit.locals[i].name == name {
			return runtime.Errorf(runtime.DuplicateDeclaration, loc, "Variable %s already exists", name)
		}
	}
	if unit.nextLocal >= len(unit.frame.Locals) {
		g.internalf("function %s has no frame slot left for %s", unit.frame.Name, name)
	}
	slot := unit.frame.Locals[unit.nextLocal]
	if slot.Name != name {
		g.internalf("frame slot %d of %s is %s, not %s", slot.Offset, unit.frame.Name, slot.Name, name)
	}
	unit.nextLocal++
	g.popValue(b, rT0, rFT0)
	obj := stackObject{Type: value.Type, Length: wordSize, Dims: value.Dims, Name: name}
	ref := varRef{name: name, base: rFP, offset: -wordSize * slot.Offset, obj: obj}
	g.storeVar(b, ref, rT0, rFT0)
	unit.locals = append(unit.locals, localBinding{name: name, slot: slot.Offset, obj: obj, depth: unit.depth})
	return nil
}

// coerceTop converts the top value to target where the language widens
// implicitly, and rejects any other mismatch.
func (g *generator) coerceTop(b *Buffer, target string, loc ast.Span) error {
	obj := g.top()
	switch {
	case target == "" || target == runtime.TypeVar || target == obj.Type:
		return nil
	case target == runtime.TypeFloat && obj.Type == runtime.TypeInt:
		g.pop(b, rT0)
		b.Emit("fcvt.s.w", rFT0, rT0)
		g.pushFloat(b, rFT0, stackObject{Type: runtime.TypeFloat})
		return nil
	}
	return runtime.Errorf(runtime.InvalidOperandTypes, loc, "Cannot use %s as %s", obj.Type, target)
}

// pushConstant materialises a literal. Strings are copied byte by byte into
// the heap and the handle is pushed.
func (g *generator) pushConstant(b *Buffer, lit runtime.Literal) {
	obj := stackObject{Type: lit.Type}
	switch v := lit.Value.(type) {
	case int64:
		b.li(rT0, v)
	case float64:
		b.liHex(rT0, float32Bits(v))
	case bool:
		if v {
			b.li(rT0, 1)
		} else {
			b.li(rT0, 0)
		}
	case rune:
		b.li(rT0, int64(v))
	case string:
		b.mv(rT0, rHP)
		for i := 0; i < len(v); i++ {
			b.li(rT1, int64(v[i]))
			b.sb(rT1, 0, rHP)
			b.addi(rHP, rHP, 1)
		}
		b.sb(rZero, 0, rHP)
		b.addi(rHP, rHP, 1)
		b.alignHeap()
	default:
		b.li(rT0, 0)
	}
	g.push(b, rT0, obj)
}
