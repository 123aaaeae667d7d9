package arena

import (
	"testing"

	"github.com/mna/misp/lang/cell"
)

func newTestEnv(capacity, regionPtr, regionLen uint32) *Env {
	a := New(capacity)
	return NewEnv(a, regionPtr, regionLen)
}

func TestBeginPushPopRet(t *testing.T) {
	e := newTestEnv(64, 10, 50)

	node := cell.Lst(0, 2) // arbitrary node cell for the root frame
	args := cell.Lst(0, 0)
	if err := e.Begin(node, args, cell.Null); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetParentNull()

	if e.StackLen() != 0 {
		t.Fatalf("fresh frame stack len = %d, want 0", e.StackLen())
	}

	if err := e.Push(cell.Num(7)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if e.StackLen() != 1 {
		t.Fatalf("stack len after push = %d, want 1", e.StackLen())
	}
	if got := e.StackGet(0); got.Int() != 7 {
		t.Errorf("stack[0] = %v, want 7", got)
	}

	// begin a child frame, it must be allocated beyond the parent's top
	parentTop := e.top()
	child := cell.Lst(0, 1)
	if err := e.Begin(child, e.Args(), cell.Null); err != nil {
		t.Fatalf("child Begin: %v", err)
	}
	if e.Cur.Ptr() != parentTop.Ptr() {
		t.Errorf("child frame ptr = %d, want %d", e.Cur.Ptr(), parentTop.Ptr())
	}

	if err := e.Push(cell.Num(99)); err != nil {
		t.Fatalf("child Push: %v", err)
	}
	halted, err := e.Ret(e.StackGet(0))
	if err != nil {
		t.Fatalf("Ret: %v", err)
	}
	if halted {
		t.Fatal("Ret from child should not halt (parent is the root frame)")
	}
	if e.StackLen() != 2 {
		t.Fatalf("parent stack len after child return = %d, want 2", e.StackLen())
	}
	if got := e.StackGet(1); got.Int() != 99 {
		t.Errorf("parent stack[1] = %v, want 99", got)
	}

	e.Pop(2)
	if e.StackLen() != 0 {
		t.Fatalf("stack len after Pop(2) = %d, want 0", e.StackLen())
	}

	halted, err = e.Ret(cell.Num(1))
	if err != nil {
		t.Fatalf("root Ret: %v", err)
	}
	if !halted {
		t.Fatal("returning from the root frame should halt")
	}
}

func TestBeginOutOfMemory(t *testing.T) {
	// the root frame lands at cell 5 (past the placeholder's slots) and its
	// fixed slots take cells 5..9
	e := newTestEnv(13, 0, 13)
	if err := e.Begin(cell.Lst(0, 1), cell.Lst(0, 0), cell.Null); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	e.SetParentNull()
	// the remaining region (3 cells) is smaller than FixedSlots (5)
	if err := e.Begin(cell.Lst(0, 1), cell.Lst(0, 0), cell.Null); err != ErrOutOfMemory {
		t.Fatalf("Begin past capacity: got %v, want ErrOutOfMemory", err)
	}
}

func TestFrameDiscipline(t *testing.T) {
	// Walking parent links from the current frame must reach the null list
	// in finite steps (spec §8 "Frame discipline").
	e := newTestEnv(64, 0, 64)
	if err := e.Begin(cell.Lst(0, 1), cell.Lst(0, 0), cell.Null); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.SetParentNull()
	for i := 0; i < 3; i++ {
		if err := e.Begin(cell.Lst(0, 1), e.Args(), cell.Null); err != nil {
			t.Fatalf("Begin %d: %v", i, err)
		}
	}

	steps := 0
	cur := e.Cur
	for cur.Len() != 0 {
		parent := e.Arena.Get(cur, ParentSlot)
		if parent.Len() != 0 && parent.Ptr() > cur.Ptr() {
			t.Fatalf("parent %v must not be allocated after its child %v", parent, cur)
		}
		cur = parent
		steps++
		if steps > 100 {
			t.Fatal("parent chain did not reach the null list")
		}
	}
}
