package compiler

import "strings"

// render assembles the program: data section, heap setup, the main body,
// the exit call, then function bodies and the builtins that were used.
func (g *generator) render() string {
	var sb strings.Builder
	sb.WriteString(".data\n")
	sb.WriteString("heap:\n")
	sb.WriteString(".text\n")

	prologue := NewBuffer()
	prologue.Comment("Initialize Heap Pointer")
	prologue.Emit("la", rHP, "heap")
	prologue.mv(rGB, rSP)
	prologue.Label("main")
	sb.WriteString(prologue.String())
	sb.WriteString(g.main.String())

	epilogue := NewBuffer()
	epilogue.Comment("End of program")
	epilogue.ecall(sysExit)
	sb.WriteString(epilogue.String())

	for _, fn := range g.functions {
		sb.WriteString(fn.String())
	}
	for _, name := range g.usedBuiltins() {
		b := NewBuffer()
		b.Label(name)
		builtinTable[name].emit(g, b)
		b.Emit("ret")
		sb.WriteString(b.String())
	}
	return sb.String()
}
