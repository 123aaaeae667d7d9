package machine

import (
	"fmt"
	"io"

	"github.com/mna/misp/lang/arena"
	"github.com/mna/misp/lang/cell"
)

// maxListElements bounds how many elements of a list Debug prints before
// truncating with "...", matching the reference implementation's
// misp_debug (it prints indices 0 through 10, eleven elements, before
// cutting the rest).
const maxListElements = 11

// shorthandDepth is the nesting depth (the printed value itself being depth
// 1) at or beyond which Debug renders a List as "(<length>:0x<ptr>)" instead
// of recursing into its elements.
const shorthandDepth = 3

// Debug writes a human-readable rendering of v to w: a Number as decimal, a
// List as a parenthesized, space-separated sequence of its elements — or,
// at nesting depth shorthandDepth and deeper, as "(<length>:0x<pointer>)".
func Debug(w io.Writer, a *arena.Arena, v cell.Cell) {
	debugAt(w, a, v, 1)
}

func debugAt(w io.Writer, a *arena.Arena, v cell.Cell, depth int) {
	if v.IsNumber() {
		fmt.Fprintf(w, "%d", v.Int())
		return
	}

	fmt.Fprint(w, "(")
	if depth >= shorthandDepth {
		fmt.Fprintf(w, "%d:0x%x", v.Len(), v.Ptr())
	} else {
		for i := uint32(0); i < v.Len(); i++ {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			if i >= maxListElements {
				fmt.Fprint(w, "...")
				break
			}
			debugAt(w, a, a.Get(v, i), depth+1)
		}
	}
	fmt.Fprint(w, ")")
}

// DumpFrame writes the current frame's node, args and stack, the same
// three fields the reference implementation's single-step debugger and
// panic report both show.
func (m *Machine) DumpFrame(w io.Writer) {
	fmt.Fprint(w, "NODE: ")
	Debug(w, m.Arena, m.Env.Node())
	fmt.Fprintln(w)

	fmt.Fprint(w, "ARGS: ")
	Debug(w, m.Arena, m.Env.Args())
	fmt.Fprintln(w)

	fmt.Fprint(w, "STACK: ")
	Debug(w, m.Arena, m.Env.Stack())
	fmt.Fprintln(w)
}
