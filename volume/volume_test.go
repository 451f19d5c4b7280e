package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumeAdd(Te *testing.T) {
	V := New(2, 3, 4)
	assert.Equal(Te, 24, V.Len())
	V.Add(1, 2, 3)
	V.Add(1, 2, 3)
	V.Add(0, 0, 0)
	assert.Equal(Te, 2.0, V.At(1, 2, 3))
	assert.Equal(Te, 2.0, V.VoxelRange.Max)
	assert.Equal(Te, 3.0, V.Total())
	assert.Equal(Te, 23, V.Index(1, 2, 3))
	V.Clear()
	assert.Zero(Te, V.Total())
	assert.Zero(Te, V.VoxelRange.Max)
}

func TestVolumeEmpty(Te *testing.T) {
	assert.True(Te, New(4, 0, 4).Empty())
	V := New(1, 1, 1)
	assert.False(Te, V.Empty())
	V.Resize(2, 2, 2)
	assert.Len(Te, V.VoxelData, 8)
}
