package arena

import "github.com/mna/misp/lang/cell"

// Frame slot layout, fixed for every environment frame (spec §3):
// parent, node, args, stack, trap, then the stack's own elements.
const (
	ParentSlot = 0
	NodeSlot   = 1
	ArgsSlot   = 2
	StackSlot  = 3
	TrapSlot   = 4
	FixedSlots = 5
)

// Env tracks the evaluator's current frame: a cursor (Cur) into an Arena.
// Cur is always a List cell whose pointer is the frame's base and whose
// length satisfies the invariant Cur.Ptr()+Cur.Len() == end of the frame
// region — the length field doubles as "remaining capacity to the region
// boundary", which is what lets Top compute the next bump pointer from
// nothing but the current frame's own cell.
type Env struct {
	Arena *Arena
	Cur   cell.Cell
}

// NewEnv seeds an Env whose first Begin call will place the root frame at
// regionPtr+FixedSlots. Until the first Begin, Cur is not itself a real
// frame — it is the placeholder the original implementation also uses, whose
// fixed slots read as zero cells (the arena starts zeroed): its empty stack
// puts the first top() directly past those FixedSlots placeholder cells.
func NewEnv(a *Arena, regionPtr, regionLen uint32) *Env {
	return &Env{Arena: a, Cur: cell.Lst(regionPtr, regionLen)}
}

func (e *Env) Parent() cell.Cell { return e.Arena.Get(e.Cur, ParentSlot) }
func (e *Env) Node() cell.Cell   { return e.Arena.Get(e.Cur, NodeSlot) }
func (e *Env) Args() cell.Cell   { return e.Arena.Get(e.Cur, ArgsSlot) }
func (e *Env) Stack() cell.Cell  { return e.Arena.Get(e.Cur, StackSlot) }
func (e *Env) Trap() cell.Cell   { return e.Arena.Get(e.Cur, TrapSlot) }

// StackLen returns the number of elements pushed onto the current frame's
// stack.
func (e *Env) StackLen() uint32 { return e.Stack().Len() }

// StackGet returns stack element i (0-indexed) of the current frame.
func (e *Env) StackGet(i uint32) cell.Cell { return e.Arena.Get(e.Stack(), i) }

// SetParentNull overwrites the current frame's parent slot with the null
// list, marking it as the root frame: returning from it halts the machine.
func (e *Env) SetParentNull() { e.Arena.Set(e.Cur, ParentSlot, cell.Null) }

// top computes the next bump-allocated frame location: directly past the
// current frame's fixed slots and whatever has been pushed onto its stack.
func (e *Env) top() cell.Cell {
	stack := e.Stack()
	return e.Arena.Sub(e.Cur, FixedSlots+stack.Len(), e.Cur.Len())
}

// Begin allocates a new frame at the current top, evaluating node with the
// given args and trap, and makes it the current frame. It returns
// ErrOutOfMemory if the new frame (or even its fixed slots) would not fit in
// the arena.
func (e *Env) Begin(node, args, trap cell.Cell) error {
	next := e.top()
	if next.Len() < FixedSlots || !e.Arena.fits(next.Ptr(), next.Len()) {
		return ErrOutOfMemory
	}

	e.Arena.Set(next, ParentSlot, e.Cur)
	e.Arena.Set(next, NodeSlot, node)
	e.Arena.Set(next, ArgsSlot, args)
	e.Arena.Set(next, StackSlot, e.Arena.Sub(next, FixedSlots, FixedSlots))
	e.Arena.Set(next, TrapSlot, trap)

	e.Cur = next
	return nil
}

// Push extends the current frame's stack by one element, set to v.
func (e *Env) Push(v cell.Cell) error {
	stack := e.Stack()
	grown := cell.Lst(stack.Ptr(), stack.Len()+1)
	if !e.Arena.fits(grown.Ptr(), grown.Len()) {
		return ErrOutOfMemory
	}
	e.Arena.Set(e.Cur, StackSlot, grown)
	e.Arena.Set(grown, grown.Len()-1, v)
	return nil
}

// Pop shrinks the current frame's stack by amount elements.
func (e *Env) Pop(amount uint32) {
	stack := e.Stack()
	e.Arena.Set(e.Cur, StackSlot, cell.Lst(stack.Ptr(), stack.Len()-amount))
}

// Ret transitions control to the parent frame and pushes value onto its
// stack. It reports whether the machine has just halted (the parent is the
// null list, i.e. the frame that returned was the root).
func (e *Env) Ret(value cell.Cell) (halted bool, err error) {
	parent := e.Parent()
	e.Cur = parent
	if e.Cur.Len() == 0 {
		return true, nil
	}
	if err := e.Push(value); err != nil {
		return false, err
	}
	return false, nil
}
