package machine

import "github.com/mna/misp/lang/cell"

// Kind identifies why the machine halted abnormally. Values match the
// reference implementation's misp_panic_type_t enum, with DivByZero and
// OutOfMemory appended for cases the original left as undefined behavior
// (spec.md §7, Open Questions c and e).
type Kind uint8

const ( //nolint:revive
	None Kind = iota
	TypeError
	OutOfBounds
	InvalidOpc
	BadNode
	BadNodeParams
	DivByZero
	OutOfMemory
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case TypeError:
		return "type error"
	case OutOfBounds:
		return "out of bounds"
	case InvalidOpc:
		return "invalid opcode"
	case BadNode:
		return "bad node"
	case BadNodeParams:
		return "bad node params"
	case DivByZero:
		return "division by zero"
	case OutOfMemory:
		return "out of memory"
	default:
		return "unknown panic"
	}
}

// Panic records a terminal error: the kind and the offending node cell.
type Panic struct {
	Kind Kind
	Node cell.Cell
}
