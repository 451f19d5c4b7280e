/*
 * transform.go, part of mdstats.
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

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Transform is a 4x4 affine operator acting on column vectors (x, y, z, 1).
//The last row is assumed to be (0, 0, 0, 1), no perspective division is done.
type Transform struct {
	*mat.Dense
}

//Identity returns the identity transformation.
func Identity() *Transform {
	T := &Transform{mat.NewDense(4, 4, nil)}
	for i := 0; i < 4; i++ {
		T.Set(i, i, 1)
	}
	return T
}

//NewTransform returns a Transform from 16 row-major elements.
func NewTransform(data []float64) (*Transform, error) {
	if len(data) != 16 {
		return nil, Error{fmt.Sprintf("A transformation needs 16 elements, got %d", len(data)), []string{"NewTransform"}, true}
	}
	d := make([]float64, 16)
	copy(d, data)
	return &Transform{mat.NewDense(4, 4, d)}, nil
}

//Scaling returns a transformation that scales each axis by the given factors.
func Scaling(sx, sy, sz float64) *Transform {
	T := Identity()
	T.Set(0, 0, sx)
	T.Set(1, 1, sy)
	T.Set(2, 2, sz)
	return T
}

//Translation returns a transformation that adds (tx, ty, tz) to each point.
func Translation(tx, ty, tz float64) *Transform {
	T := Identity()
	T.Set(0, 3, tx)
	T.Set(1, 3, ty)
	T.Set(2, 3, tz)
	return T
}

//BoxToFractional returns the transformation from cartesian coordinates
//to fractional coordinates of the periodic box with origin at origin and
//box vectors a, b and c (the 9 elements of box, one vector after the other).
//Points inside the box are mapped to the unit cube.
func BoxToFractional(box []float64, origin ...[]float64) (*Transform, error) {
	if len(box) < 9 {
		return nil, Error{"A box needs 9 elements", []string{"BoxToFractional"}, true}
	}
	B := mat.NewDense(3, 3, nil)
	for v := 0; v < 3; v++ {
		for k := 0; k < 3; k++ {
			B.Set(k, v, box[3*v+k]) //box vectors as columns
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(B); err != nil {
		return nil, Error{fmt.Sprintf("%s: %s", ErrSingular, err.Error()), []string{"BoxToFractional"}, true}
	}
	T := Identity()
	T.Slice(0, 3, 0, 3).(*mat.Dense).Copy(&inv)
	if len(origin) > 0 && len(origin[0]) >= 3 {
		o := mat.NewVecDense(3, []float64{-origin[0][0], -origin[0][1], -origin[0][2]})
		var t mat.VecDense
		t.MulVec(&inv, o)
		for i := 0; i < 3; i++ {
			T.Set(i, 3, t.AtVec(i))
		}
	}
	return T, nil
}

//Mul puts the composition A*B (B applied first) in the receiver.
func (T *Transform) Mul(A, B *Transform) {
	if T == A || T == B {
		var tmp mat.Dense
		tmp.Mul(A.Dense, B.Dense)
		T.Dense.Copy(&tmp)
		return
	}
	T.Dense.Mul(A.Dense, B.Dense)
}

//Apply returns the transformed point p. p needs at least 3 elements.
func (T *Transform) Apply(p []float64) [3]float64 {
	m := T.RawMatrix()
	d, s := m.Data, m.Stride
	var r [3]float64
	for i := 0; i < 3; i++ {
		row := d[i*s : i*s+4]
		r[i] = row[0]*p[0] + row[1]*p[1] + row[2]*p[2] + row[3]
	}
	return r
}
