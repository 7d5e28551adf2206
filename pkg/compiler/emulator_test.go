package compiler

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// emulator executes generated assembly on a small RV32IMF model. It knows
// exactly the instructions this package emits and the RARS environment
// calls for printing and exit. Code addresses are instruction indexes.
type emulator struct {
	code   []emuInstr
	labels map[string]int
	data   map[string]int32
	x      map[string]int32
	f      map[string]float32
	mem    []byte
	pc     int
	steps  int
	exited bool
	err    error
	out    strings.Builder
}

type emuInstr struct {
	op   string
	args []string
	line int
}

const (
	emuMemory   = 1 << 20
	emuHeapBase = 0x1000
	emuMaxSteps = 5_000_000
)

var emuIntRegs = map[string]bool{
	"zero": true, "ra": true, "sp": true, "fp": true, "s10": true, "s11": true,
	"t0": true, "t1": true, "t2": true, "t3": true, "t4": true, "t5": true, "t6": true,
	"a0": true, "a1": true, "a2": true, "a7": true,
}

var emuFloatRegs = map[string]bool{"ft0": true, "ft1": true, "ft2": true, "ft3": true, "fa0": true}

// Minimum operand counts; fcvt.w.s may carry a rounding mode as well.
var emuArity = map[string]int{
	"li": 2, "la": 2, "mv": 2, "seqz": 2, "snez": 2,
	"add": 3, "sub": 3, "mul": 3, "div": 3, "rem": 3, "and": 3, "or": 3, "slt": 3,
	"addi": 3, "andi": 3, "xori": 3, "slli": 3,
	"lw": 2, "sw": 2, "lb": 2, "sb": 2, "flw": 2, "fsw": 2,
	"j": 1, "jal": 1, "jr": 1, "ret": 0, "ecall": 0,
	"beq": 3, "bne": 3, "blt": 3, "bge": 3, "bgt": 3,
	"fadd.s": 3, "fsub.s": 3, "fmul.s": 3, "fdiv.s": 3,
	"feq.s": 3, "flt.s": 3, "fle.s": 3,
	"fneg.s": 2, "fabs.s": 2, "fmv.w.x": 2, "fcvt.s.w": 2, "fcvt.w.s": 2,
}

func loadAssembly(asm string) (*emulator, error) {
	e := &emulator{
		labels: make(map[string]int),
		data:   make(map[string]int32),
		x:      make(map[string]int32),
		f:      make(map[string]float32),
		mem:    make([]byte, emuMemory),
	}
	text := false
	for n, raw := range strings.Split(asm, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case line == ".data":
			text = false
		case line == ".text":
			text = true
		case strings.HasSuffix(line, ":"):
			name := strings.TrimSuffix(line, ":")
			if !text {
				e.data[name] = emuHeapBase
				continue
			}
			if _, dup := e.labels[name]; dup {
				return nil, fmt.Errorf("line %d: duplicate label %s", n+1, name)
			}
			e.labels[name] = len(e.code)
		default:
			op, rest, _ := strings.Cut(line, " ")
			var args []string
			if rest != "" {
				args = strings.Split(rest, ", ")
			}
			want, ok := emuArity[op]
			if !ok {
				return nil, fmt.Errorf("line %d: unsupported instruction %q", n+1, line)
			}
			if len(args) < want {
				return nil, fmt.Errorf("line %d: %s needs %d operands", n+1, op, want)
			}
			e.code = append(e.code, emuInstr{op: op, args: args, line: n + 1})
		}
	}
	e.x["sp"] = emuMemory
	e.x["fp"] = emuMemory
	return e, nil
}

// runAssembly loads and runs asm, returning the emulator in its final state.
func runAssembly(asm string) (*emulator, error) {
	e, err := loadAssembly(asm)
	if err != nil {
		return nil, err
	}
	return e, e.run()
}

func (e *emulator) run() error {
	for !e.exited {
		if e.steps == emuMaxSteps {
			return fmt.Errorf("no exit after %d steps", e.steps)
		}
		if e.pc < 0 || e.pc >= len(e.code) {
			return fmt.Errorf("pc %d outside the program", e.pc)
		}
		in := e.code[e.pc]
		e.pc++
		e.steps++
		e.step(in)
		if e.err != nil {
			return fmt.Errorf("line %d: %s %s: %w", in.line, in.op, strings.Join(in.args, ", "), e.err)
		}
	}
	return nil
}

func (e *emulator) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf(format, args...)
	}
}

func (e *emulator) reg(name string) int32 {
	if !emuIntRegs[name] {
		e.fail("unknown register %s", name)
	}
	return e.x[name]
}

func (e *emulator) setReg(name string, v int32) {
	if !emuIntRegs[name] {
		e.fail("unknown register %s", name)
		return
	}
	if name != "zero" {
		e.x[name] = v
	}
}

func (e *emulator) freg(name string) float32 {
	if !emuFloatRegs[name] {
		e.fail("unknown float register %s", name)
	}
	return e.f[name]
}

func (e *emulator) setFreg(name string, v float32) {
	if !emuFloatRegs[name] {
		e.fail("unknown float register %s", name)
		return
	}
	e.f[name] = v
}

func (e *emulator) imm(s string) int32 {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		e.fail("bad immediate %s", s)
	}
	return int32(uint32(v))
}

func (e *emulator) target(label string) int {
	pc, ok := e.labels[label]
	if !ok {
		e.fail("unknown label %s", label)
	}
	return pc
}

// addr resolves an off(base) operand, checking bounds and alignment.
func (e *emulator) addr(operand string, size int) int {
	off, base, ok := strings.Cut(operand, "(")
	if !ok || !strings.HasSuffix(base, ")") {
		e.fail("bad memory operand %s", operand)
		return 0
	}
	a := int(e.reg(strings.TrimSuffix(base, ")"))) + int(e.imm(off))
	if a < 0 || a+size > len(e.mem) || a%size != 0 {
		e.fail("bad address %d", a)
		return 0
	}
	return a
}

func (e *emulator) loadWord(operand string) uint32 {
	return binary.LittleEndian.Uint32(e.mem[e.addr(operand, 4):])
}

func (e *emulator) storeWord(operand string, v uint32) {
	binary.LittleEndian.PutUint32(e.mem[e.addr(operand, 4):], v)
}

func flag(cond bool) int32 {
	if cond {
		return 1
	}
	return 0
}

func (e *emulator) step(in emuInstr) {
	a := in.args
	switch in.op {
	case "li":
		e.setReg(a[0], e.imm(a[1]))
	case "la":
		addr, ok := e.data[a[1]]
		if !ok {
			e.fail("unknown data label %s", a[1])
		}
		e.setReg(a[0], addr)
	case "mv":
		e.setReg(a[0], e.reg(a[1]))
	case "add":
		e.setReg(a[0], e.reg(a[1])+e.reg(a[2]))
	case "sub":
		e.setReg(a[0], e.reg(a[1])-e.reg(a[2]))
	case "mul":
		e.setReg(a[0], e.reg(a[1])*e.reg(a[2]))
	case "div":
		n, d := e.reg(a[1]), e.reg(a[2])
		switch {
		case d == 0:
			e.setReg(a[0], -1)
		case n == math.MinInt32 && d == -1:
			e.setReg(a[0], n)
		default:
			e.setReg(a[0], n/d)
		}
	case "rem":
		n, d := e.reg(a[1]), e.reg(a[2])
		switch {
		case d == 0:
			e.setReg(a[0], n)
		case n == math.MinInt32 && d == -1:
			e.setReg(a[0], 0)
		default:
			e.setReg(a[0], n%d)
		}
	case "and":
		e.setReg(a[0], e.reg(a[1])&e.reg(a[2]))
	case "or":
		e.setReg(a[0], e.reg(a[1])|e.reg(a[2]))
	case "slt":
		e.setReg(a[0], flag(e.reg(a[1]) < e.reg(a[2])))
	case "addi":
		e.setReg(a[0], e.reg(a[1])+e.imm(a[2]))
	case "andi":
		e.setReg(a[0], e.reg(a[1])&e.imm(a[2]))
	case "xori":
		e.setReg(a[0], e.reg(a[1])^e.imm(a[2]))
	case "slli":
		e.setReg(a[0], e.reg(a[1])<<uint(e.imm(a[2])&31))
	case "seqz":
		e.setReg(a[0], flag(e.reg(a[1]) == 0))
	case "snez":
		e.setReg(a[0], flag(e.reg(a[1]) != 0))
	case "lw":
		e.setReg(a[0], int32(e.loadWord(a[1])))
	case "sw":
		e.storeWord(a[1], uint32(e.reg(a[0])))
	case "lb":
		e.setReg(a[0], int32(int8(e.mem[e.addr(a[1], 1)])))
	case "sb":
		e.mem[e.addr(a[1], 1)] = byte(e.reg(a[0]))
	case "flw":
		e.setFreg(a[0], math.Float32frombits(e.loadWord(a[1])))
	case "fsw":
		e.storeWord(a[1], math.Float32bits(e.freg(a[0])))
	case "j":
		e.pc = e.target(a[0])
	case "jal":
		e.setReg("ra", int32(e.pc))
		e.pc = e.target(a[0])
	case "jr":
		e.pc = int(e.reg(a[0]))
	case "ret":
		e.pc = int(e.reg("ra"))
	case "beq", "bne", "blt", "bge", "bgt":
		l, r := e.reg(a[0]), e.reg(a[1])
		taken := map[string]bool{"beq": l == r, "bne": l != r, "blt": l < r, "bge": l >= r, "bgt": l > r}[in.op]
		if dest := e.target(a[2]); taken {
			e.pc = dest
		}
	case "fadd.s":
		e.setFreg(a[0], e.freg(a[1])+e.freg(a[2]))
	case "fsub.s":
		e.setFreg(a[0], e.freg(a[1])-e.freg(a[2]))
	case "fmul.s":
		e.setFreg(a[0], e.freg(a[1])*e.freg(a[2]))
	case "fdiv.s":
		e.setFreg(a[0], e.freg(a[1])/e.freg(a[2]))
	case "feq.s":
		e.setReg(a[0], flag(e.freg(a[1]) == e.freg(a[2])))
	case "flt.s":
		e.setReg(a[0], flag(e.freg(a[1]) < e.freg(a[2])))
	case "fle.s":
		e.setReg(a[0], flag(e.freg(a[1]) <= e.freg(a[2])))
	case "fneg.s":
		e.setFreg(a[0], -e.freg(a[1]))
	case "fabs.s":
		e.setFreg(a[0], float32(math.Abs(float64(e.freg(a[1])))))
	case "fmv.w.x":
		e.setFreg(a[0], math.Float32frombits(uint32(e.reg(a[1]))))
	case "fcvt.s.w":
		e.setFreg(a[0], float32(e.reg(a[1])))
	case "fcvt.w.s":
		v := float64(e.freg(a[1]))
		if len(a) > 2 && a[2] == "rtz" {
			v = math.Trunc(v)
		} else {
			v = math.RoundToEven(v)
		}
		switch {
		case math.IsNaN(v) || v >= math.MaxInt32:
			e.setReg(a[0], math.MaxInt32)
		case v <= math.MinInt32:
			e.setReg(a[0], math.MinInt32)
		default:
			e.setReg(a[0], int32(v))
		}
	case "ecall":
		e.ecall()
	}
}

// Floats print in their shortest decimal form, the way the interpreter
// prints them, rather than in the simulator's Java notation.
func (e *emulator) ecall() {
	switch code := e.reg(rA7); code {
	case sysPrintInt:
		e.out.WriteString(strconv.Itoa(int(e.reg(rA0))))
	case sysPrintFloat:
		e.out.WriteString(strconv.FormatFloat(float64(e.freg(rFA0)), 'f', -1, 32))
	case sysPrintString:
		for p := int(e.reg(rA0)); ; p++ {
			if p < 0 || p >= len(e.mem) {
				e.fail("string at %d runs off memory", e.reg(rA0))
				return
			}
			if e.mem[p] == 0 {
				return
			}
			e.out.WriteByte(e.mem[p])
		}
	case sysExit:
		e.exited = true
	case sysPrintChar:
		e.out.WriteByte(byte(e.reg(rA0)))
	default:
		e.fail("unsupported environment call %d", code)
	}
}
