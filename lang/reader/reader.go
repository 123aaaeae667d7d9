// Package reader implements the textual S-expression reader: an external
// collaborator to the evaluator (spec.md scopes it out of the core), but
// the one thing standing between a source file and a cell tree the machine
// package can step through.
package reader

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mna/misp/lang/cell"
	"github.com/mna/misp/lang/opcode"
)

// Parse reads a single top-level S-expression from src and returns the flat
// stream of cells it deposits (in emission order: every list's children are
// written contiguously before the list cell itself is handed to its
// parent) along with the root cell. The root cell is not itself stored in
// the returned stream — per the arena format, the root is carried
// separately.
func Parse(src string) (cells []cell.Cell, root cell.Cell, err error) {
	r := &reader{src: src}
	r.skipSpace()
	if r.eof() {
		return nil, cell.Null, nil
	}

	if r.peek() == '(' {
		r.pos++
		root, err = r.parseList()
	} else {
		root, err = r.parseNumber()
	}
	if err != nil {
		return nil, cell.Cell{}, err
	}
	return r.cells, root, nil
}

// reader holds the temporary growable buffer of emitted cells; it is
// discarded once parsing completes (spec.md §5: "the reader owns its
// temporary growable buffer, released when parsing completes").
type reader struct {
	src   string
	pos   int
	cells []cell.Cell
}

func (r *reader) eof() bool { return r.pos >= len(r.src) }

func (r *reader) peek() rune {
	ru, _ := utf8.DecodeRuneInString(r.src[r.pos:])
	return ru
}

func (r *reader) advance() rune {
	ru, size := utf8.DecodeRuneInString(r.src[r.pos:])
	r.pos += size
	return ru
}

func (r *reader) skipSpace() {
	for !r.eof() && unicode.IsSpace(r.peek()) {
		r.pos++
	}
}

func isDelim(ru rune) bool {
	return ru == '(' || ru == ')' || unicode.IsSpace(ru)
}

// parseList parses the contents of a list up to and including its closing
// ')'; the opening '(' has already been consumed by the caller.
func (r *reader) parseList() (cell.Cell, error) {
	var children []cell.Cell
	for {
		r.skipSpace()
		if r.eof() {
			return cell.Cell{}, fmt.Errorf("reader: unterminated list at offset %d", r.pos)
		}
		if r.peek() == ')' {
			r.pos++
			break
		}

		var child cell.Cell
		var err error
		if r.peek() == '(' {
			r.pos++
			child, err = r.parseList()
		} else {
			child, err = r.parseAtom()
		}
		if err != nil {
			return cell.Cell{}, err
		}
		children = append(children, child)
	}

	ptr := uint32(len(r.cells))
	r.cells = append(r.cells, children...)
	return cell.Lst(ptr, uint32(len(children))), nil
}

// parseAtom parses a whitespace/paren-delimited token and classifies it as a
// number or, failing that, a keyword (mapped to its opcode, or the Unknown
// sentinel if the keyword table has no entry for it).
func (r *reader) parseAtom() (cell.Cell, error) {
	start := r.pos
	for !r.eof() && !isDelim(r.peek()) {
		r.advance()
	}
	tok := r.src[start:r.pos]
	if tok == "" {
		return cell.Cell{}, fmt.Errorf("reader: unexpected character %q at offset %d", r.peek(), r.pos)
	}

	if looksNumeric(tok) {
		n, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return cell.Cell{}, fmt.Errorf("reader: invalid number %q: %w", tok, err)
		}
		return cell.Num(n), nil
	}

	op, ok := opcode.Lookup(tok)
	if !ok {
		op = opcode.Unknown
	}
	return cell.Num(int64(op)), nil
}

// parseNumber parses a single top-level numeral (the grammar's top-level
// `expr` production is number|list only; a bare keyword is not a valid
// top-level program).
func (r *reader) parseNumber() (cell.Cell, error) {
	start := r.pos
	for !r.eof() && !isDelim(r.peek()) {
		r.advance()
	}
	tok := r.src[start:r.pos]
	if !looksNumeric(tok) {
		return cell.Cell{}, fmt.Errorf("reader: expected a number or a list, got %q", tok)
	}
	n, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return cell.Cell{}, fmt.Errorf("reader: invalid number %q: %w", tok, err)
	}
	return cell.Num(n), nil
}

// looksNumeric reports whether tok starts with a digit, or a sign followed
// by a digit — base is then auto-detected (0x hex, leading-0 octal, else
// decimal) the same way the reference reader's strtol(s, &s, 0) behaves.
func looksNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	i := 0
	if tok[0] == '+' || tok[0] == '-' {
		i++
	}
	return i < len(tok) && tok[i] >= '0' && tok[i] <= '9'
}
