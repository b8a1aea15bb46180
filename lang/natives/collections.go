package natives

import (
	"sort"
	"strings"

	"github.com/mhr3/slo/lang/value"
)

// Every method below follows the same calling convention as a bound native
// method: args[0] is the receiver (the List/Dict/String/File the method was
// invoked on), args[1:] are the call's actual arguments. The machine package
// arranges this when it dispatches OP_INVOKE, or calls a native bound by
// GET_PROPERTY, against one of these classes' NativeFns tables instead of a
// user Instance's Methods; each
// Native's declared ArityMin/ArityMax still counts only the script-level
// arguments (value.Native.AcceptsArity), since the receiver isn't something
// the caller wrote in the argument list.

func (rt *Runtime) listMethods() []*value.Native {
	return []*value.Native{
		value.NewNative("push", 1, -1, listPush),
		value.NewNative("pop", 0, 0, listPop),
		value.NewNative("sort", 0, 0, listSort),
	}
}

func listPush(args []value.Value) value.Value {
	l, ok := args[0].(*value.List)
	if !ok {
		return argError("push() called on a non-list")
	}
	l.Elems = append(l.Elems, args[1:]...)
	return value.Nil
}

func listPop(args []value.Value) value.Value {
	l, ok := args[0].(*value.List)
	if !ok {
		return argError("pop() called on a non-list")
	}
	if len(l.Elems) == 0 {
		return argError("pop() called on an empty list")
	}
	last := l.Elems[len(l.Elems)-1]
	l.Elems = l.Elems[:len(l.Elems)-1]
	return last
}

func listSort(args []value.Value) value.Value {
	l, ok := args[0].(*value.List)
	if !ok {
		return argError("sort() called on a non-list")
	}
	var sortErr value.Value
	sort.SliceStable(l.Elems, func(i, j int) bool {
		a, aok := l.Elems[i].(value.Number)
		b, bok := l.Elems[j].(value.Number)
		if !aok || !bok {
			if sortErr == nil {
				sortErr = argError("sort() requires every element to be a number")
			}
			return false
		}
		return a < b
	})
	if sortErr != nil {
		return sortErr
	}
	return value.Nil
}

func (rt *Runtime) dictMethods() []*value.Native {
	return []*value.Native{
		value.NewNative("keys", 0, 0, dictKeys),
		value.NewNative("values", 0, 0, dictValues),
	}
}

func dictKeys(args []value.Value) value.Value {
	d, ok := args[0].(*value.Dict)
	if !ok {
		return argError("keys() called on a non-dict")
	}
	var keys []value.Value
	d.Table.Each(func(k, _ value.Value) { keys = append(keys, k) })
	return value.NewList(keys)
}

func dictValues(args []value.Value) value.Value {
	d, ok := args[0].(*value.Dict)
	if !ok {
		return argError("values() called on a non-dict")
	}
	var vals []value.Value
	d.Table.Each(func(_, v value.Value) { vals = append(vals, v) })
	return value.NewList(vals)
}

func (rt *Runtime) stringMethods() []*value.Native {
	return []*value.Native{
		value.NewNative("upper", 0, 0, stringUpper),
		value.NewNative("lower", 0, 0, stringLower),
		value.NewNative("split", 1, 1, stringSplit),
		value.NewNative("trim", 0, 0, stringTrim),
	}
}

func stringUpper(args []value.Value) value.Value {
	s, ok := args[0].(*value.String)
	if !ok {
		return argError("upper() called on a non-string")
	}
	return value.NewString(strings.ToUpper(s.Chars))
}

func stringLower(args []value.Value) value.Value {
	s, ok := args[0].(*value.String)
	if !ok {
		return argError("lower() called on a non-string")
	}
	return value.NewString(strings.ToLower(s.Chars))
}

func stringSplit(args []value.Value) value.Value {
	s, ok := args[0].(*value.String)
	if !ok {
		return argError("split() called on a non-string")
	}
	sep, ok := args[1].(*value.String)
	if !ok {
		return argError("split() expects a string separator")
	}
	parts := strings.Split(s.Chars, sep.Chars)
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.NewString(p)
	}
	return value.NewList(elems)
}

func stringTrim(args []value.Value) value.Value {
	s, ok := args[0].(*value.String)
	if !ok {
		return argError("trim() called on a non-string")
	}
	return value.NewString(strings.TrimSpace(s.Chars))
}
