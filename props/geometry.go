/*
 * geometry.go, part of mdstats.
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

package props

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/mdstats/v3"
)

const appzero float64 = 0.000000000001 //used to correct floating point errors

const rad2deg = 180 / math.Pi

func vec(p [3]float64) r3.Vec {
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

//Distance returns the distance between a and b.
func Distance(a, b [3]float64) float64 {
	return r3.Norm(r3.Sub(vec(b), vec(a)))
}

//Angle returns the angle a-b-c, in radians.
func Angle(a, b, c [3]float64) float64 {
	v1 := r3.Sub(vec(a), vec(b))
	v2 := r3.Sub(vec(c), vec(b))
	normproduct := r3.Norm(v1) * r3.Norm(v2)
	if normproduct == 0 {
		return 0
	}
	argument := r3.Dot(v1, v2) / normproduct
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

//Dihedral returns the dihedral angle a-b-c-d, in radians, between -pi and pi.
func Dihedral(a, b, c, d [3]float64) float64 {
	//bma=b minus a
	bma := r3.Sub(vec(b), vec(a))
	cmb := r3.Sub(vec(c), vec(b))
	dmc := r3.Sub(vec(d), vec(c))
	bmascaled := r3.Scale(r3.Norm(cmb), bma)
	first := r3.Dot(bmascaled, r3.Cross(cmb, dmc))
	v1 := r3.Cross(bma, cmb)
	v2 := r3.Cross(cmb, dmc)
	second := r3.Dot(v1, v2)
	return math.Atan2(first, second)
}

//RMSD returns the root mean square deviation between test and template,
//without superimposing them.
func RMSD(test, template *v3.Matrix) (float64, error) {
	if test.NVecs() != template.NVecs() || test.NVecs() == 0 {
		return 0, fmt.Errorf("RMSD: ill formed matrices, %d and %d vectors", test.NVecs(), template.NVecs())
	}
	var sq float64
	for i := 0; i < test.NVecs(); i++ {
		d := floats.Distance(test.Vec(i), template.Vec(i), 2)
		sq += d * d
	}
	return math.Sqrt(sq / float64(test.NVecs())), nil
}
