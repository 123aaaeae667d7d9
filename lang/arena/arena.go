// Package arena implements MISP's single contiguous memory arena: a fixed
// byte buffer addressed at cell.Size granularity, and the environment-frame
// bump allocator built on top of it (the "Arena" and "Environment frame"
// components of the design). There is no reclamation: extending a frame or
// beginning a child frame only ever moves the allocation pointer forward.
package arena

import (
	"fmt"

	"github.com/mna/misp/lang/cell"
)

// Arena is a fixed-capacity buffer of cells. Bytes are zero-initialized;
// cell index i occupies bytes [9i, 9i+9).
type Arena struct {
	buf []byte
}

// New allocates an arena with room for capacityCells cells, all zeroed.
func New(capacityCells uint32) *Arena {
	return &Arena{buf: make([]byte, uint64(capacityCells)*cell.Size)}
}

// Capacity returns the arena's size in cells.
func (a *Arena) Capacity() uint32 { return uint32(len(a.buf) / cell.Size) }

// Read returns the cell stored at index i.
func (a *Arena) Read(i uint32) cell.Cell {
	off := uint64(i) * cell.Size
	return cell.Read(a.buf[off : off+cell.Size])
}

// Write stores c at index i.
func (a *Arena) Write(i uint32, c cell.Cell) {
	off := uint64(i) * cell.Size
	cell.Write(a.buf[off:off+cell.Size], c)
}

// WriteAt deposits a stream of already-encoded cells starting at index i,
// used by the reader to seed the arena's code prefix in one shot.
func (a *Arena) WriteAt(i uint32, cells []cell.Cell) {
	for n, c := range cells {
		a.Write(i+uint32(n), c)
	}
}

// Get returns element i of list (0-indexed over the list's own elements),
// with no bounds checking: callers validate indices against list.Len()
// themselves, matching the reference implementation's unchecked
// misp_list_get.
func (a *Arena) Get(list cell.Cell, i uint32) cell.Cell {
	return a.Read(list.Ptr() + i)
}

// Set writes v into element i of list, unchecked.
func (a *Arena) Set(list cell.Cell, i uint32, v cell.Cell) {
	a.Write(list.Ptr()+i, v)
}

// Sub returns the list slice [a, b) of list, unchecked.
func (ar *Arena) Sub(list cell.Cell, a, b uint32) cell.Cell {
	return cell.Lst(list.Ptr()+a, b-a)
}

// fits reports whether a frame starting at ptr with length length lies
// entirely within the arena.
func (a *Arena) fits(ptr, length uint32) bool {
	return uint64(ptr)+uint64(length) <= uint64(a.Capacity())
}

// ErrOutOfMemory is returned by Env.Begin when extending the frame chain
// would run off the end of the arena.
var ErrOutOfMemory = fmt.Errorf("arena: out of memory")
