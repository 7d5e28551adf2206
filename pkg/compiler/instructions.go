package compiler

import (
	"fmt"
	"strings"
)

// Register names. The heap pointer and global base live in saved registers
// that no routine in this package clobbers.
const (
	rZero = "zero"
	rRA   = "ra"
	rSP   = "sp"
	rFP   = "fp"
	rHP   = "s11"
	rGB   = "s10"

	rT0 = "t0"
	rT1 = "t1"
	rT2 = "t2"
	rT3 = "t3"
	rT4 = "t4"
	rT5 = "t5"
	rT6 = "t6"

	rA0 = "a0"
	rA1 = "a1"
	rA2 = "a2"
	rA7 = "a7"

	rFT0 = "ft0"
	rFT1 = "ft1"
	rFT2 = "ft2"
	rFT3 = "ft3"
	rFA0 = "fa0"
)

// Environment call numbers understood by RARS-style simulators.
const (
	sysPrintInt    = 1
	sysPrintFloat  = 2
	sysPrintString = 4
	sysExit        = 10
	sysPrintChar   = 11
)

// Instruction is one line of assembly: an operation, a label or a comment.
type Instruction struct {
	Op       string
	Operands []string
	Label    string
	Comment  string
}

func (in Instruction) String() string {
	switch {
	case in.Label != "":
		return in.Label + ":"
	case in.Comment != "":
		return "    # " + in.Comment
	case len(in.Operands) == 0:
		return "    " + in.Op
	default:
		return "    " + in.Op + " " + strings.Join(in.Operands, ", ")
	}
}

// Buffer is an ordered instruction list. The main program and every
// function body are compiled into separate buffers.
type Buffer struct {
	lines []Instruction
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Emit(op string, operands ...string) {
	b.lines = append(b.lines, Instruction{Op: op, Operands: operands})
}

func (b *Buffer) Label(name string) {
	b.lines = append(b.lines, Instruction{Label: name})
}

func (b *Buffer) Comment(format string, args ...any) {
	b.lines = append(b.lines, Instruction{Comment: fmt.Sprintf(format, args...)})
}

// Append moves other's lines onto the end of b.
func (b *Buffer) Append(other *Buffer) {
	b.lines = append(b.lines, other.lines...)
}

func (b *Buffer) String() string {
	var sb strings.Builder
	for _, line := range b.lines {
		sb.WriteString(line.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Emission helpers.

func (b *Buffer) li(rd string, imm int64) {
	b.Emit("li", rd, fmt.Sprint(imm))
}

func (b *Buffer) liHex(rd string, bits uint32) {
	b.Emit("li", rd, fmt.Sprintf("0x%08x", bits))
}

func (b *Buffer) addi(rd, rs string, imm int) {
	b.Emit("addi", rd, rs, fmt.Sprint(imm))
}

func (b *Buffer) mv(rd, rs string) {
	b.Emit("mv", rd, rs)
}

func (b *Buffer) lw(rd string, offset int, base string) {
	b.Emit("lw", rd, fmt.Sprintf("%d(%s)", offset, base))
}

func (b *Buffer) sw(rs string, offset int, base string) {
	b.Emit("sw", rs, fmt.Sprintf("%d(%s)", offset, base))
}

func (b *Buffer) lb(rd string, offset int, base string) {
	b.Emit("lb", rd, fmt.Sprintf("%d(%s)", offset, base))
}

func (b *Buffer) sb(rs string, offset int, base string) {
	b.Emit("sb", rs, fmt.Sprintf("%d(%s)", offset, base))
}

func (b *Buffer) flw(rd string, offset int, base string) {
	b.Emit("flw", rd, fmt.Sprintf("%d(%s)", offset, base))
}

func (b *Buffer) fsw(rs string, offset int, base string) {
	b.Emit("fsw", rs, fmt.Sprintf("%d(%s)", offset, base))
}

func (b *Buffer) jump(label string) {
	b.Emit("j", label)
}

func (b *Buffer) jal(label string) {
	b.Emit("jal", label)
}

func (b *Buffer) branch(op, rs1, rs2, label string) {
	b.Emit(op, rs1, rs2, label)
}

func (b *Buffer) ecall(code int) {
	b.li(rA7, int64(code))
	b.Emit("ecall")
}

// printChar prints one character through the print-char call.
func (b *Buffer) printChar(c byte) {
	b.li(rA0, int64(c))
	b.ecall(sysPrintChar)
}

// printText prints text one character at a time, for routines that must
// not touch the heap.
func (b *Buffer) printText(text string) {
	for i := 0; i < len(text); i++ {
		b.printChar(text[i])
	}
}

// alignHeap rounds the heap pointer up to a word boundary.
func (b *Buffer) alignHeap() {
	b.addi(rHP, rHP, 3)
	b.Emit("andi", rHP, rHP, "-4")
}
