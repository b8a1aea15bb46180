package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/value"
)

func TestChunkLineRoundTrip(t *testing.T) {
	c := value.NewChunk()
	offsets := make(map[int]int)

	lines := []int{1, 1, 2, 2, 2, 5, 5, 9}
	for _, line := range lines {
		off := c.WriteOp(value.OpPop, line)
		offsets[off] = line
	}

	for off, line := range offsets {
		require.Equal(t, line, c.GetLine(off), "offset %d", off)
	}
}

func TestChunkConstantPoolLimit(t *testing.T) {
	c := value.NewChunk()
	for i := 0; i < value.MaxConstants; i++ {
		_, err := c.AddConstant(value.Number(float64(i)))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(value.Number(0))
	require.Error(t, err)
}

func TestChunkJumpPatch(t *testing.T) {
	c := value.NewChunk()
	c.WriteOp(value.OpJump, 1)
	patchAt := c.WriteUint16(0xFFFF, 1)
	c.WriteOp(value.OpNil, 1)
	c.PatchUint16(patchAt, uint16(len(c.Code)-patchAt-2))
	require.Equal(t, uint16(1), c.ReadUint16(patchAt))
}
