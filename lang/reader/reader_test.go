package reader

import (
	"testing"

	"github.com/mna/misp/lang/cell"
	"github.com/mna/misp/lang/opcode"
)

func TestParseBareNumber(t *testing.T) {
	cells, root, err := Parse("42")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cells) != 0 {
		t.Fatalf("expected no emitted cells for a bare number, got %d", len(cells))
	}
	if !root.IsNumber() || root.Int() != 42 {
		t.Fatalf("root = %v, want Num(42)", root)
	}
}

func TestParseEmpty(t *testing.T) {
	cells, root, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cells) != 0 {
		t.Fatalf("expected no cells, got %d", len(cells))
	}
	if root != cell.Null {
		t.Fatalf("root = %v, want the null list", root)
	}
}

func TestParseSimpleAdd(t *testing.T) {
	// (+ 1 2)
	cells, root, err := Parse("(+ 1 2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !root.IsList() || root.Len() != 3 {
		t.Fatalf("root = %v, want a 3-element list", root)
	}
	op := cells[root.Ptr()]
	a := cells[root.Ptr()+1]
	b := cells[root.Ptr()+2]
	if op.Int() != int64(opcode.NADD) {
		t.Errorf("op = %d, want NADD (%d)", op.Int(), opcode.NADD)
	}
	if a.Int() != 1 || b.Int() != 2 {
		t.Errorf("operands = (%d, %d), want (1, 2)", a.Int(), b.Int())
	}
}

func TestParseNestedList(t *testing.T) {
	// (debug (+ 1 2))
	cells, root, err := Parse("(debug (+ 1 2))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Len() != 2 {
		t.Fatalf("root len = %d, want 2", root.Len())
	}
	op := cells[root.Ptr()]
	if op.Int() != int64(opcode.DBUG) {
		t.Fatalf("op = %d, want DBUG", op.Int())
	}
	inner := cells[root.Ptr()+1]
	if !inner.IsList() || inner.Len() != 3 {
		t.Fatalf("inner = %v, want a 3-element list", inner)
	}
	// the inner list's cells must have been emitted before the outer list's,
	// i.e. at a lower offset (children emitted contiguously first).
	if inner.Ptr() >= root.Ptr() {
		t.Errorf("inner list ptr %d should be before outer list ptr %d", inner.Ptr(), root.Ptr())
	}
}

func TestParseUnknownKeyword(t *testing.T) {
	cells, root, err := Parse("(frobnicate 1 2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	op := cells[root.Ptr()]
	if op.Int() != int64(opcode.Unknown) {
		t.Errorf("op = %d, want Unknown (%d)", op.Int(), opcode.Unknown)
	}
}

func TestParseNumberBases(t *testing.T) {
	cells, root, err := Parse("(+ 0x10 010)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a := cells[root.Ptr()+1]
	b := cells[root.Ptr()+2]
	if a.Int() != 16 {
		t.Errorf("0x10 = %d, want 16", a.Int())
	}
	if b.Int() != 8 {
		t.Errorf("010 = %d, want 8 (octal)", b.Int())
	}
}

func TestParseNegativeNumber(t *testing.T) {
	_, root, err := Parse("-7")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Int() != -7 {
		t.Errorf("root = %d, want -7", root.Int())
	}
}

func TestParseUnterminatedList(t *testing.T) {
	if _, _, err := Parse("(+ 1 2"); err == nil {
		t.Fatal("expected an error for an unterminated list")
	}
}

func TestParseSublistLiteral(t *testing.T) {
	// (sublist (quote (10 20 30 40)) 1 3)
	cells, root, err := Parse("(sublist (quote (10 20 30 40)) 1 3)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Len() != 4 {
		t.Fatalf("root len = %d, want 4", root.Len())
	}
	op := cells[root.Ptr()]
	if op.Int() != int64(opcode.LSUB) {
		t.Fatalf("op = %d, want LSUB", op.Int())
	}
}
