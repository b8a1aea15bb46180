// Package maincmd implements the slo command-line surface (spec.md §6):
// a REPL when invoked with no path argument, or a one-shot file run when
// given exactly one. Structured the way the teacher's own maincmd wires
// mna/mainer — a Cmd struct mainer.Parser fills from flags/args, a Main
// method that dispatches and maps outcomes to process exit codes.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "slo"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter for the %[1]s programming language.

With no <path>, starts an interactive REPL: read a line, interpret it in
the long-lived VM, print the result or error, loop. With <path>, reads and
interprets that file and exits.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --stress-gc               Force a collection before every
                                 allocation (slow; for GC-safety testing).
       --log-gc                  Print an allocate/collect trace to
                                 stderr.

Exit codes: 0 success, 65 compile error, 70 runtime error, 74 file I/O
error, 64 usage error.
`, binName)
)

// Exit codes spec.md §6 assigns to the file-run mode. mainer.ExitCode is
// int-backed; these are cast to it at each return site rather than added
// to mainer's own small Success/Failure/InvalidArgs set, since they're
// this interpreter's own contract, not mainer's.
const (
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
	exitUsageError   = 64
)

// Cmd is the parsed command line, filled in by mainer.Parser (spec.md §6,
// SPEC_FULL.md's ambient CLI section).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help     bool `flag:"h,help"`
	Version  bool `flag:"v,version"`
	StressGC bool `flag:"stress-gc"`
	LogGC    bool `flag:"log-gc"`

	args []string
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(map[string]bool) {
	// no boolean flag needs post-parse inspection beyond the struct fields
	// mainer already populated directly.
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one <path> may be given")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsageError
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 0 {
		c.repl(ctx, stdio)
		return mainer.Success
	}
	return c.runFile(ctx, stdio, c.args[0])
}
