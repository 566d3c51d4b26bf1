// Package codegen implements ALAN-2022's C5 stage: a stack-machine
// instruction emitter that lowers the parser's syntax-directed calls
// into textual Jasmin assembly (spec.md §4.5). It owns label
// generation, per-subroutine local-slot counting, and a constant pool
// of the string literals a program prints.
//
// There is no original-source reference for this stage (original_source/
// has no codegen.c); the instruction schemas below are designed from
// ordinary JVM/Jasmin conventions and documented in DESIGN.md.
package codegen

import (
	"bytes"
	"fmt"

	"nikand.dev/go/heap"

	"github.com/alan-2022/alanc/internal/valtype"
)

// frame holds the emission state for one subroutine (including the
// implicit "main" program body).
type frame struct {
	name   string
	params []valtype.Type
	ret    valtype.Type

	lines   []string
	nLabels int

	// maxLocals tracks the local-slot count reported by the symbol
	// table when the subroutine closes (internal/symtab.Table's
	// CurrentLocalsWidth), not computed here.
	maxLocals uint32

	// stackDepth/maxStack track the emitter's own running estimate of
	// the operand stack, conservatively bumped by each push-like
	// instruction and dropped by each pop-like one.
	stackDepth int
	maxStack   int

	// pending is a min-heap of not-yet-resolved forward branches,
	// ordered by the instruction index that referenced them. It exists
	// to let Close walk outstanding fixups in position order and
	// assert every one was eventually defined, catching a malformed
	// control-flow lowering (a label referenced by a branch from
	// IfChain, WhileLoop or EmitRelOp but never Define'd) instead of silently shipping broken Jasmin text.
	// Grounded on compiler/back/back6.go's jobs heap, which orders
	// pending work items by position for the same reason: to process
	// (or in this case, verify) them in program order rather than
	// insertion order.
	pending heap.Heap[fixup]
	defined map[string]bool
}

type fixup struct {
	pos   int
	label string
}

func fixupLess(d []fixup, i, j int) bool {
	return d[i].pos < d[j].pos
}

func newFrame(name string, params []valtype.Type, ret valtype.Type) *frame {
	return &frame{
		name:    name,
		params:  params,
		ret:     ret,
		defined: map[string]bool{},
		pending: heap.Heap[fixup]{Less: fixupLess},
	}
}

// Emitter assembles one Jasmin .j source file: a class declaration,
// the constant pool bookkeeping for string literals, and one .method
// block per subroutine plus the implicit main program body.
type Emitter struct {
	class string

	pool    []string
	poolIdx map[string]int

	cur    *frame
	frames []*frame
}

// New creates an emitter for a class named after the source program's
// name (spec.md §4.1's "source <name>").
func New(className string) *Emitter {
	return &Emitter{
		class:   className,
		poolIdx: map[string]int{},
	}
}

// OpenMain begins the implicit top-level program body, which Jasmin
// emits as a public static main([Ljava/lang/String;)V method.
func (e *Emitter) OpenMain() {
	e.cur = newFrame("main", nil, valtype.None)
}

// OpenSubroutine begins a user-defined procedure or function body.
// Parameters occupy the first len(params) local slots; the symbol
// table continues numbering locals from there (spec.md §4.5).
func (e *Emitter) OpenSubroutine(name string, params []valtype.Type, ret valtype.Type) {
	e.cur = newFrame(name, params, ret)
}

// CloseSubroutine finalizes the current frame: it records localsWidth
// (internal/symtab.Table.CurrentLocalsWidth, read before the caller
// closes the scope), verifies every forward branch was resolved, and
// appends the finished .method block to the class buffer. The
// rendered .limit locals is localsWidth+1 (spec.md §4.5: slot 0 is
// reserved).
func (e *Emitter) CloseSubroutine(localsWidth uint32) {
	f := e.cur
	f.maxLocals = localsWidth

	for f.pending.Len() > 0 {
		fx := f.pending.Pop()

		if !f.defined[fx.label] {
			panic(fmt.Sprintf("codegen: label %s referenced at instruction %d in %s never defined", fx.label, fx.pos, f.name))
		}
	}

	e.frames = append(e.frames, f)
	e.cur = nil
}

// NewLabel allocates a fresh, subroutine-local label name.
func (e *Emitter) NewLabel() string {
	f := e.cur
	f.nLabels++

	return fmt.Sprintf("L%d", f.nLabels)
}

// Define marks label as bound to the next instruction about to be
// emitted.
func (e *Emitter) Define(label string) {
	f := e.cur
	f.defined[label] = true
	f.lines = append(f.lines, label+":")
}

// referenceForward records that the instruction about to be appended
// (at the current line count) refers to label, for CloseSubroutine's
// dangling-label check.
func (e *Emitter) referenceForward(label string) {
	f := e.cur
	if !f.defined[label] {
		f.pending.Push(fixup{pos: len(f.lines), label: label})
	}
}

func (e *Emitter) emit(format string, args ...any) {
	e.cur.lines = append(e.cur.lines, "        "+fmt.Sprintf(format, args...))
}

func (e *Emitter) push(n int) {
	f := e.cur
	f.stackDepth += n

	if f.stackDepth > f.maxStack {
		f.maxStack = f.stackDepth
	}
}

func (e *Emitter) pop(n int) {
	e.cur.stackDepth -= n
}

// internString dedupes s into the constant pool and returns its index.
// The Jasmin text itself inlines the literal directly (ldc "..."), so
// the index is bookkeeping only: it lets a caller (or a test) ask how
// many distinct string literals a program contains without rescanning
// the emitted text.
func (e *Emitter) internString(s string) int {
	if i, ok := e.poolIdx[s]; ok {
		return i
	}

	i := len(e.pool)
	e.pool = append(e.pool, s)
	e.poolIdx[s] = i

	return i
}

// PoolSize reports the number of distinct string literals interned so
// far.
func (e *Emitter) PoolSize() int {
	return len(e.pool)
}

// Flush renders the complete .j source text for everything emitted so
// far.
func (e *Emitter) Flush() []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, ".class public %s\n", e.class)
	fmt.Fprintf(&b, ".super java/lang/Object\n\n")

	fmt.Fprintf(&b, ".field private static in Ljava/util/Scanner;\n\n")

	fmt.Fprintf(&b, ".method static <clinit>()V\n")
	fmt.Fprintf(&b, "        .limit stack 3\n")
	fmt.Fprintf(&b, "        .limit locals 0\n")
	fmt.Fprintf(&b, "        new java/util/Scanner\n")
	fmt.Fprintf(&b, "        dup\n")
	fmt.Fprintf(&b, "        getstatic java/lang/System/in Ljava/io/InputStream;\n")
	fmt.Fprintf(&b, "        invokespecial java/util/Scanner/<init>(Ljava/io/InputStream;)V\n")
	fmt.Fprintf(&b, "        putstatic %s/in Ljava/util/Scanner;\n", e.class)
	fmt.Fprintf(&b, "        return\n")
	fmt.Fprintf(&b, ".end method\n\n")

	for _, f := range e.frames {
		e.flushFrame(&b, f)
	}

	return b.Bytes()
}

func (e *Emitter) flushFrame(b *bytes.Buffer, f *frame) {
	if f.name == "main" {
		fmt.Fprintf(b, ".method public static main([Ljava/lang/String;)V\n")
	} else {
		fmt.Fprintf(b, ".method public static %s%s\n", f.name, methodDescriptor(f.params, f.ret))
	}

	fmt.Fprintf(b, "        .limit stack %d\n", max(1, f.maxStack))
	fmt.Fprintf(b, "        .limit locals %d\n", f.maxLocals+1)

	for _, l := range f.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	if f.name == "main" || f.ret.Base == valtype.NONE {
		fmt.Fprintf(b, "        return\n")
	}

	fmt.Fprintf(b, ".end method\n\n")
}

func max[T int | uint32](a, b T) T {
	if a > b {
		return a
	}

	return b
}
