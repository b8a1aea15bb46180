package natives_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/natives"
	"github.com/mhr3/slo/lang/value"
)

func call(t *testing.T, tbl *value.Table, name string, args ...value.Value) value.Value {
	t.Helper()
	v, ok := tbl.Get(value.NewString(name))
	require.True(t, ok, "native %q not registered", name)
	fn, ok := v.(*value.Native)
	require.True(t, ok)
	return fn.Fn(args)
}

func TestGlobalNativesRegistered(t *testing.T) {
	var out, errOut bytes.Buffer
	rt := natives.New(&out, &errOut)

	for _, name := range []string{"clock", "time", "sleep", "exit", "print", "println", "len", "abs", "min", "max", "type", "open"} {
		_, ok := rt.Globals.Get(value.NewString(name))
		require.True(t, ok, "expected native %q", name)
	}
}

func TestLen(t *testing.T) {
	var out bytes.Buffer
	rt := natives.New(&out, &out)

	require.Equal(t, value.Number(5), call(t, rt.Globals, "len", value.NewString("hello")))
	require.Equal(t, value.Number(3), call(t, rt.Globals, "len", value.NewList([]value.Value{value.Number(1), value.Number(2), value.Number(3)})))
}

func TestMinMax(t *testing.T) {
	var out bytes.Buffer
	rt := natives.New(&out, &out)

	require.Equal(t, value.Number(1), call(t, rt.Globals, "min", value.Number(3), value.Number(1), value.Number(2)))
	require.Equal(t, value.Number(3), call(t, rt.Globals, "max", value.Number(3), value.Number(1), value.Number(2)))
}

func TestPrintWritesToConfiguredWriter(t *testing.T) {
	var out bytes.Buffer
	rt := natives.New(&out, &out)

	call(t, rt.Globals, "println", value.NewString("hi"), value.Number(1))
	require.Equal(t, "hi 1\n", out.String())
}

func TestListPushPopSort(t *testing.T) {
	var out bytes.Buffer
	rt := natives.New(&out, &out)

	l := value.NewList(nil)
	call(t, rt.ListClass.NativeFns, "push", l, value.Number(3))
	call(t, rt.ListClass.NativeFns, "push", l, value.Number(1))
	call(t, rt.ListClass.NativeFns, "push", l, value.Number(2))
	require.Equal(t, 3, len(l.Elems))

	call(t, rt.ListClass.NativeFns, "sort", l)
	require.Equal(t, value.Number(1), l.Elems[0])
	require.Equal(t, value.Number(3), l.Elems[2])

	popped := call(t, rt.ListClass.NativeFns, "pop", l)
	require.Equal(t, value.Number(3), popped)
	require.Equal(t, 2, len(l.Elems))
}

func TestStringMethods(t *testing.T) {
	var out bytes.Buffer
	rt := natives.New(&out, &out)

	s := value.NewString("  Hello World  ")
	require.Equal(t, "  HELLO WORLD  ", call(t, rt.StringClass.NativeFns, "upper", s).(*value.String).Chars)
	require.Equal(t, "  hello world  ", call(t, rt.StringClass.NativeFns, "lower", s).(*value.String).Chars)
	require.Equal(t, "Hello World", call(t, rt.StringClass.NativeFns, "trim", s).(*value.String).Chars)
}

func TestDictKeysValues(t *testing.T) {
	var out bytes.Buffer
	rt := natives.New(&out, &out)

	d := value.NewDict()
	d.Table.Set(value.NewString("a"), value.Number(1))

	keys := call(t, rt.DictClass.NativeFns, "keys", d).(*value.List)
	require.Equal(t, 1, len(keys.Elems))
	values := call(t, rt.DictClass.NativeFns, "values", d).(*value.List)
	require.Equal(t, 1, len(values.Elems))
}
