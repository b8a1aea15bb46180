package value

import "fmt"

// NativeFn is the signature every native (built-in) function implements:
// spec.md §6's "(argCount, argv[]) -> Value" contract, expressed in Go as a
// slice of already-validated arguments. Returning an Error value causes the
// VM to raise a runtime error at the call site using the error's message.
type NativeFn func(args []Value) Value

// Native is a built-in function bound into globals at VM init (spec.md §3's
// Native variant: "function pointer, min arity, max arity (-1 = unbounded),
// param info"). ArityMax == -1 signals a variadic native, accepting any
// number of arguments >= ArityMin (spec.md §9 Open Questions).
type Native struct {
	Header
	Name     string
	ArityMin int
	ArityMax int
	Fn       NativeFn
}

var (
	_ Value = (*Native)(nil)
	_ Obj   = (*Native)(nil)
)

func (n *Native) header() *Header  { return &n.Header }
func (n *Native) ObjType() ObjType { return ObjNative }
func (n *Native) Kind() Kind       { return KindObj }
func (n *Native) Type() string     { return "native" }
func (n *Native) String() string   { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *Native) Trace(func(Value)) {
	// natives close over no Value state
}
func (n *Native) Size() int { return 48 }

// AcceptsArity reports whether argCount is a legal number of arguments for
// this native.
func (n *Native) AcceptsArity(argCount int) bool {
	if argCount < n.ArityMin {
		return false
	}
	return n.ArityMax == -1 || argCount <= n.ArityMax
}

// NewNative constructs a Native with the given arity bounds.
func NewNative(name string, arityMin, arityMax int, fn NativeFn) *Native {
	return &Native{Name: name, ArityMin: arityMin, ArityMax: arityMax, Fn: fn}
}
