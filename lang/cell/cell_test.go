package cell

import "testing"

func TestNumRoundTrip(t *testing.T) {
	c := Num(-42)
	if !c.IsNumber() || c.IsList() {
		t.Fatalf("Num(-42) tag = %v, want Number", c.Tag())
	}
	if c.Int() != -42 {
		t.Errorf("Int() = %d, want -42", c.Int())
	}
}

func TestLstRoundTrip(t *testing.T) {
	c := Lst(7, 3)
	if !c.IsList() || c.IsNumber() {
		t.Fatalf("Lst(7,3) tag = %v, want List", c.Tag())
	}
	if c.Ptr() != 7 || c.Len() != 3 {
		t.Errorf("Lst(7,3) = (ptr=%d,len=%d), want (7,3)", c.Ptr(), c.Len())
	}
}

func TestTruth(t *testing.T) {
	cases := []struct {
		c    Cell
		want bool
	}{
		{Num(0), false},
		{Num(1), true},
		{Num(-1), true},
		{Null, false},
		{Lst(0, 1), true},
	}
	for _, tc := range cases {
		if got := tc.c.Truth(); got != tc.want {
			t.Errorf("%v.Truth() = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestByteCodec(t *testing.T) {
	cases := []Cell{Num(0), Num(1), Num(-1), Null, Lst(123456, 7)}
	buf := make([]byte, Size)
	for _, c := range cases {
		Write(buf, c)
		got := Read(buf)
		if got != c {
			t.Errorf("round trip of %v produced %v", c, got)
		}
	}
}

func TestSameList(t *testing.T) {
	a := Lst(0, 3)
	b := Lst(0, 3)
	c := Lst(0, 4)
	if !SameList(a, b) {
		t.Error("two List cells with the same (ptr,len) should be SameList")
	}
	if SameList(a, c) {
		t.Error("List cells with different len should not be SameList")
	}
	if SameList(a, Num(0)) {
		t.Error("a Number can never be SameList as a List")
	}
}

func TestZeroValueIsNumberZero(t *testing.T) {
	var c Cell
	if !c.IsNumber() || c.Int() != 0 {
		t.Errorf("zero Cell = %v, want Num(0)", c)
	}
}
