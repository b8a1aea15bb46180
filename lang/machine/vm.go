// Package machine implements the bytecode virtual machine that executes a
// compiled slo chunk, plus the mark-and-sweep collector that owns every
// heap object the VM allocates at run time (spec.md §4.3, §4.4).
package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dolthub/swiss"

	"github.com/mhr3/slo/lang/compiler"
	"github.com/mhr3/slo/lang/diag"
	"github.com/mhr3/slo/lang/natives"
	"github.com/mhr3/slo/lang/value"
)

const (
	// stackMax is the VM's fixed value-stack capacity (spec.md §4.3: "≈
	// 256x256").
	stackMax = 256 * 256
	// framesMax is the maximum number of nested call frames before the VM
	// raises a stack-overflow runtime error (spec.md §7).
	framesMax = 1024
)

// Options configures a VM beyond its I/O streams: GC stress/trace toggles
// and execution limits, the ambient-stack knobs SPEC_FULL.md adds around
// the core spec's VM (mirroring the teacher's Thread field set: MaxSteps,
// MaxCallStackDepth, Name).
type Options struct {
	// Name optionally identifies this VM instance for diagnostics.
	Name string

	// Stdout, Stderr, Stdin are the standard I/O abstractions natives write
	// to and read from. Nil means os.Stdout/os.Stderr/os.Stdin, matching
	// the teacher's Thread field semantics.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// StressGC forces a collection before every single allocation. Used by
	// tests to flush out GC-safety bugs (spec.md §4.4, §8's GC-safety
	// property).
	StressGC bool

	// LogGC prints an allocate/collect trace line to Stderr for every
	// allocation and collection (spec.md §4.4).
	LogGC bool

	// MaxSteps bounds the number of dispatch-loop iterations before the VM
	// cancels the running program. Zero means no limit.
	MaxSteps uint64

	// MaxCallStackDepth overrides framesMax when positive.
	MaxCallStackDepth int
}

// VM is a single slo interpreter instance: its value stack, call frames,
// globals, interned strings, heap object list, and GC accounting (spec.md
// §4.3's "State" paragraph). A VM is not safe for concurrent use (spec.md
// §5: the interpreter is single-threaded).
type VM struct {
	Options

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	rt *natives.Runtime

	stack   [stackMax]value.Value
	top     int
	frames  []frame
	globals *value.Table
	finals  map[string]struct{}

	openUpvalues *value.Upvalue

	strings *value.Table // interned strings, spec.md §3/§4.4's weak string table

	moduleCache *swiss.Map[string, *value.Module]
	loading     map[string]bool // cycle detection for IMPORT/IMPORT_AS
	moduleDir   string
	curFile     string

	// GC bookkeeping (spec.md §4.4).
	objects        value.Obj
	bytesAllocated int
	nextGC         int
	markParity     bool
	gray           []value.Obj

	steps uint64
	ctx   context.Context

	cancelled atomic.Bool
}

// New constructs a VM with its built-in classes and global natives wired
// in (natives.New), ready to Run compiled chunks.
func New(opts Options) *VM {
	stdout, stderr, stdin := opts.Stdout, opts.Stderr, opts.Stdin
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if stdin == nil {
		stdin = os.Stdin
	}

	vm := &VM{
		Options:     opts,
		Stdout:      stdout,
		Stderr:      stderr,
		Stdin:       stdin,
		globals:     value.NewTable(),
		finals:      make(map[string]struct{}),
		strings:     value.NewTable(),
		moduleCache: swiss.NewMap[string, *value.Module](8),
		loading:     make(map[string]bool),
		nextGC:      1 << 20, // 1 MiB floor, spec.md §4.4
		ctx:         context.Background(),
	}
	vm.rt = natives.New(stdout, stderr)
	vm.rt.Globals.Each(func(k, v value.Value) {
		vm.globals.Set(k, v)
	})

	return vm
}

func (vm *VM) maxFrames() int {
	if vm.MaxCallStackDepth > 0 {
		return vm.MaxCallStackDepth
	}
	return framesMax
}

// Run compiles nothing itself — fn must already be the product of
// compiler.Compile — wraps it in a top-level Closure, and executes it
// (spec.md §2: "the VM wraps it in a closure, installs it as frame 0").
func (vm *VM) Run(ctx context.Context, fn *value.Function, file string) (value.Value, error) {
	if ctx != nil {
		vm.ctx = ctx
	}
	vm.curFile = file
	closure := vm.allocClosure(fn)
	vm.push(closure)
	if _, err := vm.call(closure, 0); err != nil {
		vm.top = 0
		return nil, err
	}
	result, err := vm.runLoop()
	if err != nil {
		vm.top = 0
		return nil, err
	}
	return result, nil
}

// RunSource compiles and runs source in one step, the common entry point
// for a REPL or file-run CLI.
func (vm *VM) RunSource(ctx context.Context, source []byte, file string) (value.Value, error) {
	fn, err := compiler.Compile(source, file)
	if err != nil {
		return nil, err
	}
	return vm.Run(ctx, fn, file)
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.top] = v
	vm.top++
}

func (vm *VM) pop() value.Value {
	vm.top--
	v := vm.stack[vm.top]
	vm.stack[vm.top] = nil
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.top-1-distance]
}

func (vm *VM) resetStack() {
	vm.top = 0
	vm.frames = vm.frames[:0]
}

// runtimeError builds a *diag.RuntimeError carrying the current call
// stack's trace (innermost first, spec.md §7), then resets the VM stack
// per spec.md §7's "Runtime errors ... clear the VM stack".
func (vm *VM) runtimeError(msg string) error {
	trace := make([]diag.StackFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		line := fr.closure.Fn.Chunk.GetLine(fr.ip - 1)
		trace = append(trace, diag.StackFrame{
			FuncName: fr.closure.Fn.Name,
			File:     fr.closure.Fn.File,
			Line:     line,
		})
	}
	vm.resetStack()
	return &diag.RuntimeError{Msg: msg, Trace: trace}
}

func (vm *VM) runtimeErrorf(format string, args ...interface{}) error {
	return vm.runtimeError(fmt.Sprintf(format, args...))
}
