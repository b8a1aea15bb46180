// Package diag formats the two error classes spec.md §7 defines: compile
// errors, collected across an entire panic-mode compiler pass, and runtime
// errors, each carrying a VM stack trace. Its accumulate-sort-join shape is
// the teacher's go/scanner.ErrorList idiom (see github.com/mna/nenuphar's
// lang/scanner package); the per-message format is spec.md's own
// "[line N] Error at 'tok': message", which go/scanner's own Error.Error()
// (file:line:col-prefixed) cannot produce, so this package defines its own
// lightweight CompileError instead of aliasing the stdlib type.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// CompileError is one message produced by the compiler's panic-mode error
// recovery (spec.md §7).
type CompileError struct {
	Line int
	Near string // the lexeme at which the error was detected, or "" for EOF
	Msg  string
}

func (e CompileError) Error() string {
	where := "end"
	if e.Near != "" {
		where = fmt.Sprintf("'%s'", e.Near)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Line, where, e.Msg)
}

// CompileErrors is a sortable list of CompileError, matching the teacher's
// ErrorList shape: Add to accumulate one per panic-mode recovery point,
// Err to get a single error (or nil) once compilation is done.
type CompileErrors []CompileError

// Add appends a compile error.
func (c *CompileErrors) Add(line int, near, msg string) {
	*c = append(*c, CompileError{Line: line, Near: near, Msg: msg})
}

// Sort orders errors by source line, stably preserving detection order for
// errors on the same line.
func (c CompileErrors) Sort() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Line < c[j].Line })
}

// Err returns nil if c is empty, or c itself (formatted, one message per
// line) otherwise.
func (c CompileErrors) Err() error {
	if len(c) == 0 {
		return nil
	}
	return c
}

func (c CompileErrors) Error() string {
	lines := make([]string, len(c))
	for i, e := range c {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// StackFrame is one call frame in a runtime error's trace (spec.md §7:
// "function name + source file + line per frame, innermost first").
type StackFrame struct {
	FuncName string
	File     string
	Line     int
}

func (f StackFrame) String() string {
	name := f.FuncName
	if name == "" {
		name = "script"
	}
	return fmt.Sprintf("[line %d] in %s (%s)", f.Line, name, f.File)
}

// RuntimeError is a terminal VM error: its message plus the unwound call
// stack, innermost frame first (spec.md §7).
type RuntimeError struct {
	Msg   string
	Trace []StackFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	for _, f := range e.Trace {
		b.WriteByte('\n')
		b.WriteString(f.String())
	}
	return b.String()
}
