/*
 * gonum.go, part of mdstats.
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
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
//data is used as backing storage, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Vec returns the ith vector as a 3-element slice sharing storage with F.
func (F *Matrix) Vec(i int) []float64 {
	return F.RawRowView(i)
}

//View returns a view of F spanning the vectors from i (inclusive) to j (exclusive).
//Changes in the view are reflected in F and vice-versa
func (F *Matrix) View(i, j int) *Matrix {
	if i < 0 || j > F.NVecs() || i > j {
		panic(ErrShape)
	}
	return &Matrix{F.Dense.Slice(i, j, 0, 3).(*mat.Dense)}
}

//SomeVecs puts in the receiver the vectors of A with the indexes in clist,
//in the same order. F must have len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) error {
	if F.NVecs() != len(clist) {
		return Error{fmt.Sprintf("%d vectors requested for a matrix of %d", len(clist), F.NVecs()), []string{"SomeVecs"}, true}
	}
	n := A.NVecs()
	for key, val := range clist {
		if val < 0 || val >= n {
			return Error{fmt.Sprintf("vector %d out of range for %d vectors", val, n), []string{"SomeVecs"}, true}
		}
		F.SetRow(key, A.RawRowView(val))
	}
	return nil
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, _ := F.Dims()
	v := make([]string, 0, r)
	for i := 0; i < r; i++ {
		row := F.RawRowView(i)
		v = append(v, fmt.Sprintf("%6.2f %6.2f %6.2f", row[0], row[1], row[2]))
	}
	return "\n[" + strings.Join(v, "\n ") + " ]"
}

//Errors

//Error is the error type for the package. It carries the
//functions it went through, in order.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return fmt.Sprintf("mdstats/v3: %s", err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix = PanicMsg("mdstats/v3: A VecMatrix should have 3 columns")
	ErrShape        = PanicMsg("mdstats/v3: Dimension mismatch")
	ErrSingular     = PanicMsg("mdstats/v3: Singular transformation")
)
