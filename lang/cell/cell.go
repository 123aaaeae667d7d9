// Package cell implements the tagged value type shared by every other MISP
// package: a Number (a signed 64-bit integer) or a List (a non-owning
// (pointer, length) view into an arena of cells).
package cell

import (
	"encoding/binary"
	"fmt"
)

// Tag distinguishes the two shapes a Cell can take.
type Tag uint8

const (
	Number Tag = 0
	List   Tag = 1
)

// Size is the number of bytes a Cell occupies when serialized: 8 bytes of
// payload (little-endian) followed by 1 tag byte whose low bit selects
// Number or List. No padding, no alignment.
const Size = 9

// A Cell is an immutable tagged value. The zero Cell is the Number 0.
type Cell struct {
	data uint64
	tag  Tag
}

// Num returns the Number cell holding i.
func Num(i int64) Cell { return Cell{data: uint64(i), tag: Number} }

// Lst returns the List cell viewing length cells starting at ptr (both
// measured in cells, not bytes).
func Lst(ptr, length uint32) Cell {
	return Cell{data: uint64(ptr)<<32 | uint64(length), tag: List}
}

// Null is the empty list (ptr=0, length=0).
var Null = Lst(0, 0)

func (c Cell) Tag() Tag       { return c.tag }
func (c Cell) IsNumber() bool { return c.tag == Number }
func (c Cell) IsList() bool   { return c.tag == List }

// Int returns the integer held by a Number cell. The result is meaningless
// if c is a List.
func (c Cell) Int() int64 { return int64(c.data) }

// Ptr returns the cell index of the first element of a List cell.
func (c Cell) Ptr() uint32 { return uint32(c.data >> 32) }

// Len returns the element count of a List cell.
func (c Cell) Len() uint32 { return uint32(c.data) }

// Truth implements the language's truthiness rule: a Number is true iff
// nonzero, a List is true iff nonempty.
func (c Cell) Truth() bool {
	if c.tag == Number {
		return c.Int() != 0
	}
	return c.Len() != 0
}

func (c Cell) String() string {
	if c.tag == Number {
		return fmt.Sprintf("%d", c.Int())
	}
	return fmt.Sprintf("list(ptr=%d,len=%d)", c.Ptr(), c.Len())
}

// Read decodes the Cell stored at buf[0:Size].
func Read(buf []byte) Cell {
	data := binary.LittleEndian.Uint64(buf[:8])
	tag := Tag(buf[8] & 0x1)
	return Cell{data: data, tag: tag}
}

// Write encodes c into buf[0:Size].
func Write(buf []byte, c Cell) {
	binary.LittleEndian.PutUint64(buf[:8], c.data)
	buf[8] = byte(c.tag) & 0x1
}

// SameList reports whether x and y are List cells viewing the same
// (pointer, length) region. List equality is identity, never structural.
func SameList(x, y Cell) bool {
	return x.tag == List && y.tag == List && x.data == y.data
}
