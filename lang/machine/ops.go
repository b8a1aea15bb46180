package machine

import (
	"math"

	"github.com/mhr3/slo/lang/value"
)

// add implements ADD's polymorphism (spec.md §4.3 "Arithmetic typing"):
// numbers add, strings concatenate, lists concatenate; mixed operands are
// a runtime error.
func (vm *VM) add(a, b value.Value) (value.Value, error) {
	if an, ok := a.(value.Number); ok {
		if bn, ok := b.(value.Number); ok {
			return an + bn, nil
		}
	}
	if as, ok := a.(*value.String); ok {
		if bs, ok := b.(*value.String); ok {
			return vm.intern(as.Chars + bs.Chars), nil
		}
	}
	if al, ok := a.(*value.List); ok {
		if bl, ok := b.(*value.List); ok {
			merged := make([]value.Value, 0, len(al.Elems)+len(bl.Elems))
			merged = append(merged, al.Elems...)
			merged = append(merged, bl.Elems...)
			return vm.allocList(merged), nil
		}
	}
	return nil, vm.runtimeErrorf("cannot add %s and %s", a.Type(), b.Type())
}

func numericBinary(a, b value.Value, op string) (value.Number, value.Number, error) {
	an, ok := a.(value.Number)
	if !ok {
		return 0, 0, vmTypeError(op, a)
	}
	bn, ok := b.(value.Number)
	if !ok {
		return 0, 0, vmTypeError(op, b)
	}
	return an, bn, nil
}

func vmTypeError(op string, v value.Value) error {
	return typeErr{op: op, v: v}
}

type typeErr struct {
	op string
	v  value.Value
}

func (e typeErr) Error() string {
	return "operand of '" + e.op + "' must be a number, got " + e.v.Type()
}

func (vm *VM) arith(op byte, a, b value.Value) (value.Value, error) {
	names := map[byte]string{'-': "subtract", '*': "multiply", '/': "divide", '%': "modulo", '^': "pow"}
	an, bn, err := numericBinary(a, b, names[op])
	if err != nil {
		return nil, vm.runtimeError(err.Error())
	}
	switch op {
	case '-':
		return an - bn, nil
	case '*':
		return an * bn, nil
	case '/':
		if bn == 0 {
			return nil, vm.runtimeError("division by zero")
		}
		return an / bn, nil
	case '%':
		if bn == 0 {
			return nil, vm.runtimeError("division by zero")
		}
		return value.Number(int64(an) % int64(bn)), nil
	case '^':
		return value.Number(math.Pow(float64(an), float64(bn))), nil
	default:
		panic("unreachable arith op")
	}
}

func (vm *VM) negate(v value.Value) (value.Value, error) {
	n, ok := v.(value.Number)
	if !ok {
		return nil, vm.runtimeErrorf("operand of unary '-' must be a number, got %s", v.Type())
	}
	return -n, nil
}

// compareEqual and compareOrder implement EQUAL/NOT_EQUAL/GREATER/GREATER_EQUAL/LESS/LESS_EQUAL.
// Equality uses value.Equal (structural for primitives and Strings,
// identity otherwise); ordering comparisons require both operands numeric.
func (vm *VM) compareEqual(a, b value.Value) value.Value {
	return value.NewBool(value.Equal(a, b))
}

func (vm *VM) compareOrder(op byte, a, b value.Value) (value.Value, error) {
	an, ok := a.(value.Number)
	if !ok {
		return nil, vm.runtimeErrorf("cannot compare %s and %s", a.Type(), b.Type())
	}
	bn, ok := b.(value.Number)
	if !ok {
		return nil, vm.runtimeErrorf("cannot compare %s and %s", a.Type(), b.Type())
	}
	switch op {
	case '>':
		return value.NewBool(an > bn), nil
	case 'G': // >=
		return value.NewBool(an >= bn), nil
	case '<':
		return value.NewBool(an < bn), nil
	case 'L': // <=
		return value.NewBool(an <= bn), nil
	default:
		panic("unreachable compare op")
	}
}

// has implements HAS/HAS_NOT membership testing: string substring, list
// element (by Equal), dict key presence.
func (vm *VM) has(needle, haystack value.Value) (bool, error) {
	switch h := haystack.(type) {
	case *value.String:
		s, ok := needle.(*value.String)
		if !ok {
			return false, vm.runtimeErrorf("'in' on a string requires a string operand, got %s", needle.Type())
		}
		return containsString(h.Chars, s.Chars), nil
	case *value.List:
		for _, e := range h.Elems {
			if value.Equal(e, needle) {
				return true, nil
			}
		}
		return false, nil
	case *value.Dict:
		_, ok := h.Table.Get(needle)
		return ok, nil
	default:
		return false, vm.runtimeErrorf("'in' requires a string, list, or dict, got %s", haystack.Type())
	}
}

func containsString(hay, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		if hay[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// length implements LEN.
func (vm *VM) length(v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case *value.String:
		return value.Number(t.Len()), nil
	case *value.List:
		return value.Number(len(t.Elems)), nil
	case *value.Dict:
		return value.Number(t.Table.Count()), nil
	default:
		return nil, vm.runtimeErrorf("len() requires a string, list, or dict, got %s", v.Type())
	}
}

// getIndex implements GET_INDEX: numeric subscript on String/List,
// arbitrary-key lookup on Dict (spec.md §4.3, §7's "index-out-of-range").
func (vm *VM) getIndex(container, index value.Value) (value.Value, error) {
	switch c := container.(type) {
	case *value.List:
		i, err := vm.toIndex(index, len(c.Elems))
		if err != nil {
			return nil, err
		}
		return c.Elems[i], nil
	case *value.String:
		i, err := vm.toIndex(index, len(c.Chars))
		if err != nil {
			return nil, err
		}
		return vm.intern(string(c.Chars[i])), nil
	case *value.Dict:
		v, ok := c.Table.Get(index)
		if !ok {
			return nil, vm.runtimeErrorf("key not found in dict")
		}
		return v, nil
	default:
		return nil, vm.runtimeErrorf("cannot index a %s", container.Type())
	}
}

// setIndex implements SET_INDEX.
func (vm *VM) setIndex(container, index, val value.Value) error {
	switch c := container.(type) {
	case *value.List:
		i, err := vm.toIndex(index, len(c.Elems))
		if err != nil {
			return err
		}
		c.Elems[i] = val
		return nil
	case *value.Dict:
		c.Table.Set(index, val)
		return nil
	default:
		return vm.runtimeErrorf("cannot assign into a %s", container.Type())
	}
}

// toIndex resolves a Number index against length, allowing negative
// indices to count from the end (spec.md §4.3's Slicing paragraph applies
// the same rule to plain indexing by convention of this implementation).
func (vm *VM) toIndex(index value.Value, length int) (int, error) {
	n, ok := index.(value.Number)
	if !ok {
		return 0, vm.runtimeErrorf("index must be a number, got %s", index.Type())
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, vm.runtimeErrorf("index out of range")
	}
	return i, nil
}

// slice implements SLICE(container, start, end): negative indices count
// from the end, nil bounds default to 0/length, out-of-range bounds clamp
// (spec.md §4.3's Slicing paragraph, verbatim).
func (vm *VM) slice(container, start, end value.Value) (value.Value, error) {
	switch c := container.(type) {
	case *value.List:
		lo, hi := vm.sliceBounds(start, end, len(c.Elems))
		out := make([]value.Value, hi-lo)
		copy(out, c.Elems[lo:hi])
		return vm.allocList(out), nil
	case *value.String:
		lo, hi := vm.sliceBounds(start, end, len(c.Chars))
		return vm.intern(c.Chars[lo:hi]), nil
	default:
		return nil, vm.runtimeErrorf("cannot slice a %s", container.Type())
	}
}

func (vm *VM) sliceBounds(start, end value.Value, length int) (int, int) {
	lo := 0
	if n, ok := start.(value.Number); ok {
		lo = clampIndex(int(n), length)
	}
	hi := length
	if n, ok := end.(value.Number); ok {
		hi = clampIndex(int(n), length)
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clampIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
