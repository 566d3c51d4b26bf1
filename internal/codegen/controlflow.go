package codegen

// IfChain drives the label bookkeeping for an if/elsif*/else?/end
// statement (spec.md §4.4's if_stat). The parser calls StartBranch
// after emitting each guard's condition, EndBranch after each guarded
// body, and End once after the whole chain. An else alternative needs
// no call of its own: it is emitted right after the last EndBranch.
type IfChain struct {
	e        *Emitter
	endLabel string
	next     string
}

// NewIfChain begins a new if/elsif chain.
func (e *Emitter) NewIfChain() *IfChain {
	return &IfChain{e: e, endLabel: e.NewLabel()}
}

// StartBranch must be called immediately after the guard expression's
// value has been pushed; it branches past the branch's body when the
// guard is false and returns control to the caller to emit the body.
func (c *IfChain) StartBranch() {
	c.next = c.e.NewLabel()
	c.e.EmitIfFalse(c.next)
}

// EndBranch closes a branch's body: it jumps to the chain's end label
// and defines the label the guard branched to on failure, so the next
// elsif/else body begins there.
func (c *IfChain) EndBranch() {
	c.e.EmitGoto(c.endLabel)
	c.e.Define(c.next)
}

// End closes the whole chain.
func (c *IfChain) End() {
	c.e.Define(c.endLabel)
}

// WhileLoop drives the label bookkeeping for a while/do/end statement
// (spec.md §4.4's while_stat).
type WhileLoop struct {
	e          *Emitter
	startLabel string
	endLabel   string
}

// NewWhileLoop defines the loop's top label (the guard is re-evaluated
// there on each iteration) and returns a handle for the rest of the
// lowering.
func (e *Emitter) NewWhileLoop() *WhileLoop {
	w := &WhileLoop{e: e, startLabel: e.NewLabel(), endLabel: e.NewLabel()}
	e.Define(w.startLabel)

	return w
}

// GuardFailed must be called immediately after the guard expression's
// value has been pushed; it exits the loop when the guard is false.
func (w *WhileLoop) GuardFailed() {
	w.e.EmitIfFalse(w.endLabel)
}

// End closes the loop body: jump back to the guard, then define the
// exit label.
func (w *WhileLoop) End() {
	w.e.EmitGoto(w.startLabel)
	w.e.Define(w.endLabel)
}
