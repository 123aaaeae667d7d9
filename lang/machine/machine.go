// Package machine implements MISP's step-based evaluator: the driver loop
// that walks a cell tree one event at a time using no native call-stack
// recursion, reifying every pending evaluation as a frame in the arena's
// frame chain (lang/arena.Env) instead.
package machine

import (
	"io"
	"os"

	"github.com/mna/misp/lang/arena"
	"github.com/mna/misp/lang/cell"
)

// DefaultHeadroom is the number of cells reserved for the frame chain beyond
// the program's code, matching the reference implementation's fixed
// 1024-cell allowance (src/misp.c, mem_size = code_size + 1024*CELL_SIZE).
const DefaultHeadroom = 1024

// Machine couples an arena, the evaluator's current-frame cursor, and the
// terminal Panic register. A Machine that has not halted has a zero Panic.
type Machine struct {
	Arena  *arena.Arena
	Env    *arena.Env
	Halted bool
	Panic  Panic

	// Stdout receives the output of the debug opcode and is otherwise
	// unused; it defaults to os.Stdout.
	Stdout io.Writer
}

// NewProgram lays out a fresh arena holding codeCells immediately followed
// by headroomCells of frame-chain space, then begins the root frame
// evaluating root. The root frame's args is a list spanning the entire
// arena, mirroring the reference driver's LIST(0, mem_size/CELL_SIZE) — the
// root program has no meaningful argument vector, but get/set against it
// are not themselves forbidden by any invariant.
func NewProgram(codeCells []cell.Cell, root cell.Cell, headroomCells uint32) (*Machine, error) {
	codeLen := uint32(len(codeCells))
	capacity := codeLen + headroomCells

	a := arena.New(capacity)
	a.WriteAt(0, codeCells)

	env := arena.NewEnv(a, codeLen, headroomCells)
	m := &Machine{Arena: a, Env: env, Stdout: os.Stdout}

	args := cell.Lst(0, capacity)
	if err := env.Begin(root, args, cell.Null); err != nil {
		return nil, err
	}
	env.SetParentNull()
	return m, nil
}

// Run steps the machine to completion: either it halts normally (the root
// frame returns) or it halts on a Panic.
func (m *Machine) Run() {
	for !m.Halted {
		m.Step()
	}
}

// fail records a terminal Panic and halts the machine.
func (m *Machine) fail(kind Kind, node cell.Cell) {
	m.Halted = true
	m.Panic = Panic{Kind: kind, Node: node}
}

// ret returns value from the current frame. node is the frame's own node,
// reported as the offending cell if the parent's stack has no room left.
func (m *Machine) ret(node, value cell.Cell) {
	halted, err := m.Env.Ret(value)
	if err != nil {
		m.fail(OutOfMemory, node)
		return
	}
	if halted {
		m.Halted = true
	}
}

// evalChild performs the generic "eval" step on c: if c is a List, it
// begins a child frame evaluating it as code (the child's eventual Ret
// pushes its result onto the frame that called evalChild); otherwise c is a
// literal Number, pushed directly. Either branch consumes exactly one Step.
func (m *Machine) evalChild(c cell.Cell) {
	if c.IsList() {
		args := m.Env.Args()
		trap := m.Env.Trap()
		if err := m.Env.Begin(c, args, trap); err != nil {
			m.fail(OutOfMemory, c)
		}
		return
	}
	if err := m.Env.Push(c); err != nil {
		m.fail(OutOfMemory, c)
	}
}

// evalParams implements the generic left-to-right eager operand evaluation
// shared by every opcode that is not quote/cond/loop: while fewer params have been
// evaluated than params.Len(), evaluate the next one and report "not ready"
// (the caller must return from Step immediately, the step having been
// consumed). Once the stack holds at least params.Len() elements, report
// ready and let the caller proceed with its opcode-specific logic in the
// same Step call.
func (m *Machine) evalParams(params, stack cell.Cell) (ready bool) {
	if stack.Len() >= params.Len() {
		return true
	}
	m.evalChild(m.Arena.Get(params, stack.Len()))
	return false
}
