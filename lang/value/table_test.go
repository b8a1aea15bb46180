package value_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/value"
)

func TestTableSetGetDelete(t *testing.T) {
	tbl := value.NewTable()

	k := value.NewString("key")
	isNew := tbl.Set(k, value.Number(1))
	require.True(t, isNew)

	v, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, value.Number(1), v)

	isNew = tbl.Set(k, value.Number(2))
	require.False(t, isNew)
	v, ok = tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)

	require.True(t, tbl.Delete(k))
	_, ok = tbl.Get(k)
	require.False(t, ok)
	require.False(t, tbl.Delete(k))
}

func TestTableLoadFactor(t *testing.T) {
	tbl := value.NewTable()
	for i := 0; i < 200; i++ {
		tbl.Set(value.NewString(fmt.Sprintf("k%d", i)), value.Number(float64(i)))
	}
	require.Equal(t, 200, tbl.Count())
	require.LessOrEqual(t, float64(tbl.Count()), float64(tbl.Capacity())*0.75)

	for i := 0; i < 200; i++ {
		v, ok := tbl.Get(value.NewString(fmt.Sprintf("k%d", i)))
		require.True(t, ok)
		require.Equal(t, value.Number(float64(i)), v)
	}
}

func TestTableTombstonesPreserveProbeChain(t *testing.T) {
	tbl := value.NewTable()
	a := value.NewString("a")
	b := value.NewString("b")
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))
	require.True(t, tbl.Delete(a))

	v, ok := tbl.Get(b)
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)
}

func TestTableMixedKeyKinds(t *testing.T) {
	// Nil is reserved to mark empty slots (spec.md §4.5) and must never be
	// used as a user key; only non-nil kinds are exercised here.
	tbl := value.NewTable()
	tbl.Set(value.Number(1), value.NewString("one"))
	tbl.Set(value.True, value.NewString("yes"))

	v, ok := tbl.Get(value.Number(1))
	require.True(t, ok)
	require.Equal(t, "one", v.(*value.String).Chars)

	v, ok = tbl.Get(value.True)
	require.True(t, ok)
	require.Equal(t, "yes", v.(*value.String).Chars)
}
