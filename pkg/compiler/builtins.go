package compiler

// Builtins are shared routines emitted once, after the functions, in the
// order the program first used them. Each body is followed by a ret.
// Arguments arrive in t0/t1 (ft0/ft1) for operators and a0..a2 (fa0) for
// everything else; results come back in t0 or ft0. Routines may clobber
// t0..t6 and ft0..ft3, never s10 or s11 beyond advancing the heap pointer.

type builtin struct {
	deps []string
	emit func(g *generator, b *Buffer)
}

var builtinTable = map[string]builtin{
	"addInt": {emit: op3("add", rT0, rT0, rT1)},
	"subInt": {emit: op3("sub", rT0, rT0, rT1)},
	"mulInt": {emit: op3("mul", rT0, rT0, rT1)},
	"divInt": {emit: emitGuardedDivide("div")},
	"remInt": {emit: emitGuardedDivide("rem")},
	"negInt": {emit: op3("sub", rT0, rZero, rT0)},

	"addFloat": {emit: op3("fadd.s", rFT0, rFT0, rFT1)},
	"subFloat": {emit: op3("fsub.s", rFT0, rFT0, rFT1)},
	"mulFloat": {emit: op3("fmul.s", rFT0, rFT0, rFT1)},
	"divFloat": {emit: op3("fdiv.s", rFT0, rFT0, rFT1)},
	"negFloat": {emit: func(_ *generator, b *Buffer) { b.Emit("fneg.s", rFT0, rFT0) }},
	"negBool":  {emit: func(_ *generator, b *Buffer) { b.Emit("xori", rT0, rT0, "1") }},

	"lessThanInt":    {emit: op3("slt", rT0, rT0, rT1)},
	"greaterThanInt": {emit: op3("slt", rT0, rT1, rT0)},
	"lessEqualInt": {emit: func(_ *generator, b *Buffer) {
		b.Emit("slt", rT0, rT1, rT0)
		b.Emit("xori", rT0, rT0, "1")
	}},
	"greaterEqualInt": {emit: func(_ *generator, b *Buffer) {
		b.Emit("slt", rT0, rT0, rT1)
		b.Emit("xori", rT0, rT0, "1")
	}},
	"equalInt": {emit: func(_ *generator, b *Buffer) {
		b.Emit("sub", rT0, rT0, rT1)
		b.Emit("seqz", rT0, rT0)
	}},
	"notEqualInt": {emit: func(_ *generator, b *Buffer) {
		b.Emit("sub", rT0, rT0, rT1)
		b.Emit("snez", rT0, rT0)
	}},

	"lessThanFloat":     {emit: op3("flt.s", rT0, rFT0, rFT1)},
	"greaterThanFloat":  {emit: op3("flt.s", rT0, rFT1, rFT0)},
	"lessEqualFloat":    {emit: op3("fle.s", rT0, rFT0, rFT1)},
	"greaterEqualFloat": {emit: op3("fle.s", rT0, rFT1, rFT0)},
	"equalFloat":        {emit: op3("feq.s", rT0, rFT0, rFT1)},
	"notEqualFloat": {emit: func(_ *generator, b *Buffer) {
		b.Emit("feq.s", rT0, rFT0, rFT1)
		b.Emit("xori", rT0, rT0, "1")
	}},

	"andInt": {emit: op3("and", rT0, rT0, rT1)},
	"orInt":  {emit: op3("or", rT0, rT0, rT1)},

	"concatString":  {emit: emitConcatString},
	"compareString": {emit: emitCompareString},
	"printBool":     {emit: emitPrintBool},
	"printArray":    {emit: emitPrintArray},
	"allocArray":    {emit: emitAllocArray},
	"getElement":    {deps: []string{"outOfBounds"}, emit: emitGetElement},
	"setElement":    {deps: []string{"outOfBounds"}, emit: emitSetElement},
	"outOfBounds":   {emit: emitOutOfBounds},
	"indexOf":       {emit: emitIndexOf},
	"parseInt":      {emit: emitParseInt},
	"parseFloat":    {emit: emitParseFloat},
	"intToString":   {emit: emitIntToString},
	"floatToString": {emit: emitFloatToString},
	"boolToString":  {emit: emitBoolToString},
	"charToString":  {emit: emitCharToString},
	"toLowerCase":   {emit: emitCaseMap('A', 'Z', 32)},
	"toUpperCase":   {emit: emitCaseMap('a', 'z', -32)},
}

func op3(op, rd, rs1, rs2 string) func(*generator, *Buffer) {
	return func(_ *generator, b *Buffer) {
		b.Emit(op, rd, rs1, rs2)
	}
}

// emitGuardedDivide yields 0 instead of trapping when the divisor is 0.
func emitGuardedDivide(op string) func(*generator, *Buffer) {
	return func(g *generator, b *Buffer) {
		zero := g.newLabel(op + "zero")
		done := g.newLabel(op + "done")
		b.branch("beq", rT1, rZero, zero)
		b.Emit(op, rT0, rT0, rT1)
		b.jump(done)
		b.Label(zero)
		b.li(rT0, 0)
		b.Label(done)
	}
}

// copyString appends the NUL-terminated string at src to the heap, without
// the terminator, advancing src.
func copyString(g *generator, b *Buffer, src string) {
	loop := g.newLabel("copy")
	done := g.newLabel("copydone")
	b.Label(loop)
	b.lb(rT1, 0, src)
	b.branch("beq", rT1, rZero, done)
	b.sb(rT1, 0, rHP)
	b.addi(rHP, rHP, 1)
	b.addi(src, src, 1)
	b.jump(loop)
	b.Label(done)
}

// terminateString writes the NUL byte and realigns the heap.
func terminateString(b *Buffer) {
	b.sb(rZero, 0, rHP)
	b.addi(rHP, rHP, 1)
	b.alignHeap()
}

func emitConcatString(g *generator, b *Buffer) {
	b.mv(rT0, rHP)
	copyString(g, b, rA0)
	copyString(g, b, rA1)
	terminateString(b)
}

func emitCompareString(g *generator, b *Buffer) {
	loop := g.newLabel("cmp")
	equal := g.newLabel("cmpequal")
	differ := g.newLabel("cmpdiffer")
	b.Label(loop)
	b.lb(rT1, 0, rA0)
	b.lb(rT2, 0, rA1)
	b.branch("bne", rT1, rT2, differ)
	b.branch("beq", rT1, rZero, equal)
	b.addi(rA0, rA0, 1)
	b.addi(rA1, rA1, 1)
	b.jump(loop)
	b.Label(equal)
	b.li(rT0, 1)
	b.Emit("ret")
	b.Label(differ)
	b.li(rT0, 0)
}

func emitPrintBool(g *generator, b *Buffer) {
	yes := g.newLabel("printtrue")
	done := g.newLabel("printbooldone")
	b.branch("bne", rA0, rZero, yes)
	b.printText("false")
	b.jump(done)
	b.Label(yes)
	b.printText("true")
	b.Label(done)
}

// emitPrintArray prints a2-kind elements of the array at a0 (length a1)
// separated by single spaces.
func emitPrintArray(g *generator, b *Buffer) {
	loop := g.newLabel("parr")
	next := g.newLabel("parrnext")
	done := g.newLabel("parrdone")
	asFloat := g.newLabel("parrfloat")
	asChar := g.newLabel("parrchar")
	asString := g.newLabel("parrstring")
	asBool := g.newLabel("parrbool")
	boolTrue := g.newLabel("parrtrue")

	b.mv(rT3, rA0)
	b.mv(rT4, rA1)
	b.mv(rT5, rA2)
	b.Label(loop)
	b.branch("beq", rT4, rZero, done)
	b.lw(rA0, 0, rT3)
	for kind, label := range []string{1: asFloat, 2: asChar, 3: asString, 4: asBool} {
		if label == "" {
			continue
		}
		b.li(rT1, int64(kind))
		b.branch("beq", rT5, rT1, label)
	}
	b.ecall(sysPrintInt)
	b.jump(next)
	b.Label(asFloat)
	b.flw(rFA0, 0, rT3)
	b.ecall(sysPrintFloat)
	b.jump(next)
	b.Label(asChar)
	b.ecall(sysPrintChar)
	b.jump(next)
	b.Label(asString)
	b.ecall(sysPrintString)
	b.jump(next)
	b.Label(asBool)
	b.branch("bne", rA0, rZero, boolTrue)
	b.printText("false")
	b.jump(next)
	b.Label(boolTrue)
	b.printText("true")
	b.Label(next)
	b.addi(rT3, rT3, wordSize)
	b.addi(rT4, rT4, -1)
	b.branch("beq", rT4, rZero, done)
	b.printChar(' ')
	b.jump(loop)
	b.Label(done)
}

// emitAllocArray reserves a length header plus a0 zeroed words and returns
// the address of the first element.
func emitAllocArray(g *generator, b *Buffer) {
	loop := g.newLabel("alloc")
	done := g.newLabel("allocdone")
	b.sw(rA0, 0, rHP)
	b.addi(rHP, rHP, wordSize)
	b.mv(rT0, rHP)
	b.mv(rT1, rA0)
	b.Label(loop)
	b.branch("beq", rT1, rZero, done)
	b.sw(rZero, 0, rHP)
	b.addi(rHP, rHP, wordSize)
	b.addi(rT1, rT1, -1)
	b.jump(loop)
	b.Label(done)
}

// elementAddress bounds-checks a1 against the header of a0 and leaves the
// element address in t1.
func elementAddress(b *Buffer) {
	b.lw(rT1, -wordSize, rA0)
	b.branch("blt", rA1, rZero, "outOfBounds")
	b.branch("bge", rA1, rT1, "outOfBounds")
	b.Emit("slli", rT1, rA1, "2")
	b.Emit("add", rT1, rA0, rT1)
}

func emitGetElement(_ *generator, b *Buffer) {
	elementAddress(b)
	b.lw(rT0, 0, rT1)
}

func emitSetElement(_ *generator, b *Buffer) {
	elementAddress(b)
	b.sw(rA2, 0, rT1)
}

func emitOutOfBounds(_ *generator, b *Buffer) {
	b.printText("Index out of bounds\n")
	b.ecall(sysExit)
}

// emitIndexOf scans a2 words at a0 for a1.
func emitIndexOf(g *generator, b *Buffer) {
	loop := g.newLabel("indexof")
	missing := g.newLabel("indexofmissing")
	done := g.newLabel("indexofdone")
	b.li(rT0, 0)
	b.Label(loop)
	b.branch("bge", rT0, rA2, missing)
	b.Emit("slli", rT1, rT0, "2")
	b.Emit("add", rT1, rA0, rT1)
	b.lw(rT1, 0, rT1)
	b.branch("beq", rT1, rA1, done)
	b.addi(rT0, rT0, 1)
	b.jump(loop)
	b.Label(missing)
	b.li(rT0, -1)
	b.Label(done)
}

// readSign consumes a leading '-' at a0 and sets t2 when present.
func readSign(g *generator, b *Buffer) {
	positive := g.newLabel("unsigned")
	b.li(rT2, 0)
	b.lb(rT1, 0, rA0)
	b.li(rT3, '-')
	b.branch("bne", rT1, rT3, positive)
	b.li(rT2, 1)
	b.addi(rA0, rA0, 1)
	b.Label(positive)
}

// readDigits accumulates decimal digits at a0 into acc; when count is not
// empty it is multiplied by ten per digit. The first non-digit is left in t1.
func readDigits(g *generator, b *Buffer, acc, count string) {
	loop := g.newLabel("digits")
	done := g.newLabel("digitsdone")
	b.Label(loop)
	b.lb(rT1, 0, rA0)
	b.li(rT3, '0')
	b.branch("blt", rT1, rT3, done)
	b.li(rT3, '9')
	b.branch("bgt", rT1, rT3, done)
	b.addi(rT1, rT1, -'0')
	b.li(rT3, 10)
	b.Emit("mul", acc, acc, rT3)
	b.Emit("add", acc, acc, rT1)
	if count != "" {
		b.Emit("mul", count, count, rT3)
	}
	b.addi(rA0, rA0, 1)
	b.jump(loop)
	b.Label(done)
}

func emitParseInt(g *generator, b *Buffer) {
	done := g.newLabel("parseintdone")
	b.li(rT0, 0)
	readSign(g, b)
	readDigits(g, b, rT0, "")
	b.branch("beq", rT2, rZero, done)
	b.Emit("sub", rT0, rZero, rT0)
	b.Label(done)
}

func emitParseFloat(g *generator, b *Buffer) {
	build := g.newLabel("parsefloatbuild")
	done := g.newLabel("parsefloatdone")
	b.li(rT0, 0)
	b.li(rT4, 0)
	b.li(rT5, 1)
	readSign(g, b)
	readDigits(g, b, rT0, "")
	b.li(rT3, '.')
	b.branch("bne", rT1, rT3, build)
	b.addi(rA0, rA0, 1)
	readDigits(g, b, rT4, rT5)
	b.Label(build)
	b.Emit("fcvt.s.w", rFT0, rT0)
	b.Emit("fcvt.s.w", rFT1, rT4)
	b.Emit("fcvt.s.w", rFT2, rT5)
	b.Emit("fdiv.s", rFT1, rFT1, rFT2)
	b.Emit("fadd.s", rFT0, rFT0, rFT1)
	b.branch("beq", rT2, rZero, done)
	b.Emit("fneg.s", rFT0, rFT0)
	b.Label(done)
}

// writeDigits writes the non-negative value in t1 as decimal at the heap
// pointer and advances it.
func writeDigits(g *generator, b *Buffer) {
	count := g.newLabel("count")
	counted := g.newLabel("counted")
	write := g.newLabel("write")
	b.mv(rT3, rT1)
	b.li(rT4, 1)
	b.li(rT5, 10)
	b.Label(count)
	b.branch("blt", rT3, rT5, counted)
	b.Emit("div", rT3, rT3, rT5)
	b.addi(rT4, rT4, 1)
	b.jump(count)
	b.Label(counted)
	b.Emit("add", rT3, rHP, rT4)
	b.mv(rT2, rT3)
	b.Label(write)
	b.addi(rT3, rT3, -1)
	b.Emit("rem", rT6, rT1, rT5)
	b.addi(rT6, rT6, '0')
	b.sb(rT6, 0, rT3)
	b.Emit("div", rT1, rT1, rT5)
	b.branch("bne", rT3, rHP, write)
	b.mv(rHP, rT2)
}

func emitIntToString(g *generator, b *Buffer) {
	positive := g.newLabel("itospositive")
	b.mv(rT0, rHP)
	b.mv(rT1, rA0)
	b.branch("bge", rT1, rZero, positive)
	b.li(rT2, '-')
	b.sb(rT2, 0, rHP)
	b.addi(rHP, rHP, 1)
	b.Emit("sub", rT1, rZero, rT1)
	b.Label(positive)
	writeDigits(g, b)
	terminateString(b)
}

// emitFloatToString writes fa0 with up to four fractional digits, dropping
// trailing zeros and a bare point.
func emitFloatToString(g *generator, b *Buffer) {
	positive := g.newLabel("ftospositive")
	frac := g.newLabel("ftosfrac")
	trim := g.newLabel("ftostrim")
	point := g.newLabel("ftospoint")
	done := g.newLabel("ftosdone")

	b.mv(rT0, rHP)
	b.Emit("fmv.w.x", rFT2, rZero)
	b.Emit("flt.s", rT1, rFA0, rFT2)
	b.Emit("fabs.s", rFT3, rFA0)
	b.branch("beq", rT1, rZero, positive)
	b.li(rT2, '-')
	b.sb(rT2, 0, rHP)
	b.addi(rHP, rHP, 1)
	b.Label(positive)
	b.Emit("fcvt.w.s", rT1, rFT3, "rtz")
	b.Emit("fcvt.s.w", rFT1, rT1)
	b.Emit("fsub.s", rFT1, rFT3, rFT1)
	writeDigits(g, b)
	b.li(rT6, '.')
	b.sb(rT6, 0, rHP)
	b.addi(rHP, rHP, 1)
	b.li(rT4, 4)
	b.li(rT6, 10)
	b.Emit("fcvt.s.w", rFT2, rT6)
	b.Label(frac)
	b.Emit("fmul.s", rFT1, rFT1, rFT2)
	b.Emit("fcvt.w.s", rT1, rFT1, "rtz")
	b.Emit("fcvt.s.w", rFT3, rT1)
	b.Emit("fsub.s", rFT1, rFT1, rFT3)
	b.addi(rT1, rT1, '0')
	b.sb(rT1, 0, rHP)
	b.addi(rHP, rHP, 1)
	b.addi(rT4, rT4, -1)
	b.branch("bne", rT4, rZero, frac)
	b.Label(trim)
	b.lb(rT1, -1, rHP)
	b.li(rT6, '0')
	b.branch("bne", rT1, rT6, point)
	b.addi(rHP, rHP, -1)
	b.jump(trim)
	b.Label(point)
	b.li(rT6, '.')
	b.branch("bne", rT1, rT6, done)
	b.addi(rHP, rHP, -1)
	b.Label(done)
	terminateString(b)
}

func emitBoolToString(g *generator, b *Buffer) {
	yes := g.newLabel("btostrue")
	done := g.newLabel("btosdone")
	b.mv(rT0, rHP)
	b.branch("bne", rA0, rZero, yes)
	writeText(b, "false")
	b.jump(done)
	b.Label(yes)
	writeText(b, "true")
	b.Label(done)
	terminateString(b)
}

// writeText stores constant text at the heap pointer.
func writeText(b *Buffer, text string) {
	for i := 0; i < len(text); i++ {
		b.li(rT1, int64(text[i]))
		b.sb(rT1, i, rHP)
	}
	b.addi(rHP, rHP, len(text))
}

func emitCharToString(_ *generator, b *Buffer) {
	b.mv(rT0, rHP)
	b.sb(rA0, 0, rHP)
	b.addi(rHP, rHP, 1)
	terminateString(b)
}

// emitCaseMap copies the string at a0, shifting bytes in [lo, hi] by delta.
func emitCaseMap(lo, hi byte, delta int) func(*generator, *Buffer) {
	return func(g *generator, b *Buffer) {
		loop := g.newLabel("case")
		store := g.newLabel("casestore")
		done := g.newLabel("casedone")
		b.mv(rT0, rHP)
		b.Label(loop)
		b.lb(rT1, 0, rA0)
		b.branch("beq", rT1, rZero, done)
		b.li(rT2, int64(lo))
		b.branch("blt", rT1, rT2, store)
		b.li(rT2, int64(hi))
		b.branch("bgt", rT1, rT2, store)
		b.addi(rT1, rT1, delta)
		b.Label(store)
		b.sb(rT1, 0, rHP)
		b.addi(rHP, rHP, 1)
		b.addi(rA0, rA0, 1)
		b.jump(loop)
		b.Label(done)
		terminateString(b)
	}
}
