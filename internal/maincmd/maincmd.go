package maincmd

import (
	"errors"
	"fmt"

	"github.com/mna/mainer"
)

const binName = "misp"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [-d|--debug] <input_file>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [-d|--debug] <input_file>
       %[1]s -h|--help
       %[1]s -v|--version

Step-based evaluator for the MISP S-expression language: reads a single
top-level expression from <input_file>, runs it to completion, and reports
a panic (with a frame dump) if it halts abnormally.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -d --debug                Single-step: dump the current frame and
                                 wait for Enter before every step.
`, binName)

	licenseBanner = `This program is free software: you can redistribute it and/or modify it
under the terms of the GNU General Public License as published by the Free
Software Foundation, either version 3 of the License, or (at your option)
any later version. This program comes with ABSOLUTELY NO WARRANTY.
`
)

// Cmd is the root command: parse flags, then run the single input file.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Debug   bool `flag:"d,debug"`

	args []string
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) != 1 {
		return errors.New("exactly one input file must be provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n%s", binName, c.BuildVersion, c.BuildDate, licenseBanner)
		return mainer.Success
	}

	if err := c.run(stdio, c.args[0]); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		var fileErr fileOpenError
		if errors.As(err, &fileErr) {
			return mainer.ExitCode(-1)
		}
		return mainer.Failure
	}
	return mainer.Success
}
