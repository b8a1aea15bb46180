// Package value implements slo's tagged value representation, its heap
// object variants, the open-addressed hash table, and the bytecode Chunk —
// the shared vocabulary of the compiler and the VM (spec.md §3).
package value

import "strconv"

// Kind discriminates the variants of Value: Nil, Bool, Number, Obj, Error
// (spec.md §3). Value itself stays a small interface rather than a packed
// struct so that heap objects (which must be compared and traced by
// identity) and immediate values share one representation without boxing
// overhead beyond Go's normal interface word pair.
type Kind uint8

//nolint:revive
const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObj:
		return "obj"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value is any value the VM can hold on its stack, store in a local, or put
// in the constant pool: Nil, Bool, Number, an Obj reference, or a
// propagating Error sentinel (spec.md §3).
type Value interface {
	Kind() Kind
	String() string
	// Type returns the short type name used in runtime error messages
	// ("number", "string", "list", ...).
	Type() string
}

type nilType struct{}

func (nilType) Kind() Kind     { return KindNil }
func (nilType) String() string { return "nil" }
func (nilType) Type() string   { return "nil" }

// Nil is the unique nil value.
var Nil Value = nilType{}

// Bool is the boolean Value variant.
type Bool bool

func (b Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Type() string { return "bool" }

// True and False are the two Bool values.
const (
	True  = Bool(true)
	False = Bool(false)
)

// NewBool returns True or False.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Number is slo's only numeric Value variant: a float64 that integer
// operations truncate at use (spec.md §3).
type Number float64

func (n Number) Kind() Kind { return KindNumber }
func (n Number) String() string {
	f := float64(n)
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
func (n Number) Type() string { return "number" }

// Error is the propagating error-value sentinel a native may return to
// raise a runtime error at its call site (spec.md §3, §4.3).
type Error string

func (e Error) Kind() Kind     { return KindError }
func (e Error) String() string { return string(e) }
func (e Error) Type() string   { return "error" }

// Truthy implements spec.md §4.2's truthiness rule: Nil and False are
// false, everything else — including 0, "", and an empty list — is true.
func Truthy(v Value) bool {
	switch v.Kind() {
	case KindNil:
		return false
	case KindBool:
		return bool(v.(Bool))
	default:
		return true
	}
}

// Equal implements spec.md §3's equality rule: structural for primitives and
// for String (by content, not identity — NewString doesn't intern, so two
// constants with the same text are routinely distinct pointers; see Table's
// use of Equal for key lookup, which would otherwise break for string keys
// built at separate call sites), pointer identity for every other Obj kind.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNil:
		return true
	case KindBool:
		return a.(Bool) == b.(Bool)
	case KindNumber:
		return a.(Number) == b.(Number)
	case KindError:
		return a.(Error) == b.(Error)
	case KindObj:
		oa, ob := a.(Obj), b.(Obj)
		if sa, ok := oa.(*String); ok {
			sb, ok := ob.(*String)
			return ok && sa.Hash == sb.Hash && sa.Chars == sb.Chars
		}
		return oa == ob
	default:
		return false
	}
}
