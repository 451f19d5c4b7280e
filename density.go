/*
 * density.go, part of mdstats.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package stats

import (
	"math"

	v3 "github.com/rmera/mdstats/v3"
	"github.com/rmera/mdstats/volume"
)

//ComputeDensityVolume fills vol with the positions of the filtered structures of
//the properties with EnableVolume set, over the frames in frameRange (all, if
//frameRange is zero). worldToVolume maps world coordinates into the unit cube
//of the volume; coordinates outside it are wrapped around.
func (S *Stats) ComputeDensityVolume(vol *volume.Volume, worldToVolume *v3.Transform, traj Trajectory, frameRange Range) error {
	err := S.ComputeDensityVolumeWithBasis(vol, traj, frameRange, func(int) *v3.Transform { return worldToVolume })
	return errDecorate(err, "ComputeDensityVolume")
}

//ComputeDensityVolumeWithBasis is like ComputeDensityVolume, but the world to volume
//transform is obtained for each frame from basis. This allows boxes that change in time.
func (S *Stats) ComputeDensityVolumeWithBasis(vol *volume.Volume, traj Trajectory, frameRange Range, basis func(frame int) *v3.Transform) error {
	if vol.Empty() {
		err := newError(ErrZeroDimension, "ComputeDensityVolumeWithBasis", "volume dimensions %v", vol.Dim)
		S.log.Error("can't compute density", "error", err)
		return err
	}
	var props []*Property
	for _, p := range S.Properties() {
		if p.EnableVolume && p.Valid() {
			props = append(props, p)
		}
	}
	if len(props) == 0 {
		return nil
	}
	vol.Clear()
	var mol Atomer
	if a, ok := traj.(Atomer); ok {
		mol = a
	} else if dyn := S.dynamic(); dyn != nil {
		mol = dyn
	}
	beg, end := frameSpan(frameRange, traj.NumFrames())
	for f := beg; f < end; f++ {
		T := basis(f)
		pos := traj.Positions(f)
		for _, p := range props {
			if f >= p.NumFrames() {
				continue
			}
			ForEachFilteredStructure(p, f, func(s Structure, strategy AggregationStrategy) {
				if strategy == AggregateCOM && mol != nil {
					com, err := CenterOfMass(s, pos, mol)
					if err != nil {
						S.log.Debug("no center of mass for density", "property", p.name, "structure", s, "error", err)
						return
					}
					addPoint(vol, T, com[:])
					return
				}
				for i := s.Beg; i < s.End; i++ {
					addPoint(vol, T, pos.Vec(i))
				}
			})
		}
	}
	return nil
}

//addPoint maps the world point w into vol with T and counts it.
func addPoint(vol *volume.Volume, T *v3.Transform, w []float64) {
	c := T.Apply(w)
	var idx [3]int
	for k := 0; k < 3; k++ {
		frac := c[k] - math.Floor(c[k])
		i := int(math.Floor(frac * float64(vol.Dim[k])))
		idx[k] = clampInt(i, 0, vol.Dim[k]-1)
	}
	vol.Add(idx[0], idx[1], idx[2])
}

//UpdateDensityVolume recomputes the shared density volume with the current dynamic.
func (S *Stats) UpdateDensityVolume(worldToVolume *v3.Transform, frameRange Range) error {
	dyn := S.dynamic()
	if dyn == nil {
		return newError(ErrNoDynamic, "UpdateDensityVolume", "no dynamic to compute the density from")
	}
	return errDecorate(S.ComputeDensityVolume(S.volume, worldToVolume, dyn, frameRange), "UpdateDensityVolume")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
