//Package volume contains the voxel grid that density accumulation writes into
//and that volume renderers read from.
package volume

import (
	"fmt"

	"github.com/rmera/mdstats/histo"
	"gonum.org/v1/gonum/floats"
)

//Volume is a 3D grid of voxel counts, stored x-fastest.
type Volume struct {
	Dim        [3]int
	VoxelData  []float64
	VoxelRange histo.Range //minimum and maximum count observed
}

//New returns a zeroed volume with the given dimensions.
//A dimension of 0 is allowed, and produces an empty volume.
func New(x, y, z int) *Volume {
	if x < 0 || y < 0 || z < 0 {
		panic(fmt.Sprintf("mdstats/volume.New: negative dimension %d %d %d", x, y, z))
	}
	return &Volume{Dim: [3]int{x, y, z}, VoxelData: make([]float64, x*y*z)}
}

//Empty returns true if any of the dimensions of the volume is zero.
func (V *Volume) Empty() bool {
	return V.Dim[0] == 0 || V.Dim[1] == 0 || V.Dim[2] == 0
}

//Len returns the number of voxels
func (V *Volume) Len() int {
	return V.Dim[0] * V.Dim[1] * V.Dim[2]
}

//Index returns the position in VoxelData of the voxel x, y, z.
func (V *Volume) Index(x, y, z int) int {
	return z*V.Dim[0]*V.Dim[1] + y*V.Dim[0] + x
}

func (V *Volume) At(x, y, z int) float64 {
	return V.VoxelData[V.Index(x, y, z)]
}

//Resize changes the dimensions of the volume and clears it.
func (V *Volume) Resize(x, y, z int) {
	V.Dim = [3]int{x, y, z}
	if cap(V.VoxelData) >= V.Len() {
		V.VoxelData = V.VoxelData[:V.Len()]
	} else {
		V.VoxelData = make([]float64, V.Len())
	}
	V.Clear()
}

//Clear zeroes all voxels and the voxel range.
func (V *Volume) Clear() {
	for i := range V.VoxelData {
		V.VoxelData[i] = 0
	}
	V.VoxelRange = histo.Range{}
}

//Add increments the voxel x, y, z by one and
//keeps track of the largest count.
func (V *Volume) Add(x, y, z int) {
	i := V.Index(x, y, z)
	V.VoxelData[i]++
	if V.VoxelData[i] > V.VoxelRange.Max {
		V.VoxelRange.Max = V.VoxelData[i]
	}
}

//Total returns the sum of all voxel counts.
func (V *Volume) Total() float64 {
	return floats.Sum(V.VoxelData)
}
