package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/value"
)

func TestTruthiness(t *testing.T) {
	require.False(t, value.Truthy(value.Nil))
	require.False(t, value.Truthy(value.False))
	require.True(t, value.Truthy(value.True))
	require.True(t, value.Truthy(value.Number(0)))
	require.True(t, value.Truthy(value.NewString("")))
	require.True(t, value.Truthy(value.NewList(nil)))
}

func TestEqualPrimitives(t *testing.T) {
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.True(t, value.Equal(value.Nil, value.Nil))
	require.False(t, value.Equal(value.Number(1), value.NewString("1")))
}

func TestEqualStringByContent(t *testing.T) {
	a := value.NewString("hi")
	b := value.NewString("hi")
	// NewString does not intern, but Equal still compares by content.
	require.True(t, value.Equal(a, b))
	require.True(t, value.Equal(a, a))
	require.False(t, value.Equal(a, value.NewString("bye")))
}

func TestEqualObjByReference(t *testing.T) {
	a := value.NewList([]value.Value{value.Number(1)})
	b := value.NewList([]value.Value{value.Number(1)})
	// Unlike String, every other Obj kind compares by identity: equal
	// contents, distinct lists, not equal.
	require.False(t, value.Equal(a, b))
	require.True(t, value.Equal(a, a))
}

func TestNumberString(t *testing.T) {
	require.Equal(t, "7", value.Number(7).String())
	require.Equal(t, "1.5", value.Number(1.5).String())
}
