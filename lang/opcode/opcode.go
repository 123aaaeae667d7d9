// Package opcode defines the MISP instruction set and the keyword table the
// reader uses to translate source atoms into opcode numbers.
package opcode

import "github.com/dolthub/swiss"

// Opcode identifies the primitive operation at the head of a list node.
type Opcode int64

// Opcode numbers match the reference implementation's src/opc.h, preserved
// here so arena dumps and panics report the same numbers a reader of the
// original source would expect.
const ( //nolint:revive
	QUOTE Opcode = 1
	EQ    Opcode = 2
	EQN   Opcode = 3
	COND  Opcode = 5
	LOOP  Opcode = 6
	EVAL  Opcode = 7
	DO    Opcode = 10
	LET   Opcode = 11
	GET   Opcode = 12
	SET   Opcode = 13

	NADD Opcode = 20
	NSUB Opcode = 21
	NMUL Opcode = 22
	NDIV Opcode = 23
	NREM Opcode = 24
	NMOD Opcode = 25
	NAND Opcode = 26
	NOR  Opcode = 27
	NXOR Opcode = 28
	NLSR   Opcode = 29
	NGRT   Opcode = 30
	NGRTEQ Opcode = 31
	NLSREQ Opcode = 32

	NNOT Opcode = 35

	LLEN Opcode = 71
	LGET Opcode = 72
	LSET Opcode = 73
	LSUB Opcode = 74
	LINT Opcode = 75 // reserved: recognized by the reader, unimplemented by the evaluator

	DBUG Opcode = 67

	// Unknown is the sentinel opcode the reader emits for an atom that
	// matches no keyword. Evaluating a node headed by Unknown panics
	// InvalidOpc.
	Unknown Opcode = 66
)

// keyword maps a source-level name to its opcode, built once at package
// init as a swiss.Map the same way lang/machine/map.go backs nenuphar's own
// runtime Map value in the teacher repository.
var keyword = buildKeywords()

func buildKeywords() *swiss.Map[string, Opcode] {
	m := swiss.NewMap[string, Opcode](48)
	entries := map[string]Opcode{
		"+":         NADD,
		"-":         NSUB,
		"*":         NMUL,
		"/":         NDIV,
		"%":         NMOD,
		"remainder": NREM,
		"and":       NAND,
		"or":        NOR,
		"xor":       NXOR,
		"not":       NNOT,
		"<":         NLSR,
		">":         NGRT,
		"<=":        NLSREQ,
		">=":        NGRTEQ,
		"=":         EQ,
		"!=":        EQN,
		"#":         LLEN,
		"getl":      LGET,
		"setl":      LSET,
		"sublist":   LSUB,
		"intersect": LINT,
		"get":       GET,
		"set":       SET,
		"quote":     QUOTE,
		"do":        DO,
		"let":       LET,
		"cond":      COND,
		"loop":      LOOP,
		"eval":      EVAL,
		"debug":     DBUG,
	}
	for k, v := range entries {
		m.Put(k, v)
	}
	return m
}

// Lookup returns the opcode for a source keyword, or (Unknown, false) if the
// name is not in the table.
func Lookup(name string) (Opcode, bool) {
	op, ok := keyword.Get(name)
	if !ok {
		return Unknown, false
	}
	return op, true
}

// IsNumericBinary reports whether op is one of the two-operand numeric
// arithmetic/comparison/bitwise opcodes handled uniformly by the evaluator.
func IsNumericBinary(op Opcode) bool {
	return op >= NADD && op <= NLSREQ
}
