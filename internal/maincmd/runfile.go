package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mhr3/slo/lang/diag"
	"github.com/mhr3/slo/lang/machine"
)

// runFile implements spec.md §6's one-argument mode: read path, interpret
// it, map the outcome to one of the four documented exit codes.
func (c *Cmd) runFile(ctx context.Context, stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitIOError
	}

	vm := machine.New(machine.Options{
		Stdout:   stdio.Stdout,
		Stderr:   stdio.Stderr,
		Stdin:    stdio.Stdin,
		StressGC: c.StressGC,
		LogGC:    c.LogGC,
	})

	_, err = vm.RunSource(ctx, src, path)
	if err == nil {
		return mainer.Success
	}

	fmt.Fprintln(stdio.Stderr, err)
	switch err.(type) {
	case diag.CompileErrors:
		return exitCompileError
	case *diag.RuntimeError:
		return exitRuntimeError
	default:
		return exitRuntimeError
	}
}
