package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mhr3/slo/lang/machine"
	"github.com/mhr3/slo/lang/value"
)

// repl implements spec.md §6's no-argument mode: read a line, interpret it
// in a long-lived VM, print the result or error, loop until EOF. Errors
// never terminate the REPL (spec.md §7: "the REPL ... catches the
// InterpretResult and continues").
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio) {
	vm := machine.New(machine.Options{
		Stdout:   stdio.Stdout,
		Stderr:   stdio.Stderr,
		Stdin:    stdio.Stdin,
		StressGC: c.StressGC,
		LogGC:    c.LogGC,
	})

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		result, err := vm.RunSource(ctx, []byte(line), "<repl>")
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			continue
		}
		if result != nil && result != value.Nil {
			fmt.Fprintln(stdio.Stdout, result.String())
		}
	}
}
