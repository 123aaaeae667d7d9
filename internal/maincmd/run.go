package maincmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/misp/lang/machine"
	"github.com/mna/misp/lang/reader"
)

// run loads path, parses it as a single S-expression, and steps the
// resulting machine to completion. A Halted machine with a non-zero Panic
// is reported (with a frame dump) and treated as a command failure; the
// file itself failing to open is reported through a distinct error so Main
// can exit with -1, matching the reference driver's behavior on a bad path.
func (c *Cmd) run(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fileOpenError{err}
	}

	cells, root, err := reader.Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	m, err := machine.NewProgram(cells, root, machine.DefaultHeadroom)
	if err != nil {
		return fmt.Errorf("initialize machine: %w", err)
	}
	m.Stdout = stdio.Stdout

	if c.Debug {
		c.runDebug(stdio, m)
	} else {
		m.Run()
	}

	if m.Panic.Kind != machine.None {
		fmt.Fprintf(stdio.Stdout, "PANIC: %d (%s)\n", m.Panic.Kind, m.Panic.Kind)
		m.DumpFrame(stdio.Stdout)
		return fmt.Errorf("%s halted on a panic", binName)
	}
	return nil
}

// runDebug single-steps the machine, dumping the current frame and waiting
// for a keystroke from stdio.Stdin before each step — the reference
// implementation's interactive debugger, reduced to what a non-interactive
// Stdio can drive (no screen clearing, just a frame dump per step).
func (c *Cmd) runDebug(stdio mainer.Stdio, m *machine.Machine) {
	in := bufio.NewReader(stdio.Stdin)
	for !m.Halted {
		m.DumpFrame(stdio.Stdout)
		fmt.Fprint(stdio.Stdout, "-- press enter to step --\n")
		if _, err := in.ReadString('\n'); err != nil {
			break
		}
		m.Step()
	}
}

// fileOpenError wraps an error opening the source file, letting Main report
// exit code -1 specifically for that failure rather than a generic
// mainer.Failure.
type fileOpenError struct{ err error }

func (e fileOpenError) Error() string { return e.err.Error() }
func (e fileOpenError) Unwrap() error { return e.err }
