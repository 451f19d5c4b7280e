/*
 * v3_test.go
 *
 * Copyright 2013 Raul Mera <rmera@zinc>
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
 */

package v3

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	require.NoError(Te, err)
	B := Zeros(3)
	require.NoError(Te, B.SomeVecs(A, []int{1, 3, 5}))
	fmt.Println(A, "\n", B)
	assert.Equal(Te, []float64{4, 5, 6}, B.Vec(0))
	assert.Equal(Te, []float64{16, 17, 18}, B.Vec(2))

	C := Zeros(2) //wrong size
	assert.Error(Te, C.SomeVecs(A, []int{1, 3, 5}))
	assert.Error(Te, B.SomeVecs(A, []int{1, 3, 6}))
}

func TestNewMatrixBadLength(Te *testing.T) {
	_, err := NewMatrix([]float64{1, 2})
	assert.Error(Te, err)
}

func TestViews(Te *testing.T) {
	A, err := NewMatrix([]float64{0, 0, 0, 1, 1, 1, 2, 2, 2})
	require.NoError(Te, err)
	W := A.View(1, 3)
	assert.Equal(Te, 2, W.NVecs())
	W.Set(0, 0, 100)
	assert.Equal(Te, 100.0, A.At(1, 0))
	assert.Panics(Te, func() { A.View(2, 4) })
}

func TestTransform(Te *testing.T) {
	p := []float64{1, 2, 3}
	assert.Equal(Te, [3]float64{1, 2, 3}, Identity().Apply(p))
	assert.Equal(Te, [3]float64{2, 4, 6}, Scaling(2, 2, 2).Apply(p))
	T := Identity()
	T.Mul(Translation(1, 1, 1), Scaling(2, 2, 2))
	assert.Equal(Te, [3]float64{3, 5, 7}, T.Apply(p))
	_, err := NewTransform([]float64{1})
	assert.Error(Te, err)
}

func TestBoxToFractional(Te *testing.T) {
	T, err := BoxToFractional([]float64{10, 0, 0, 0, 20, 0, 0, 0, 40})
	require.NoError(Te, err)
	f := T.Apply([]float64{5, 5, 10})
	assert.InDelta(Te, 0.5, f[0], 1e-12)
	assert.InDelta(Te, 0.25, f[1], 1e-12)
	assert.InDelta(Te, 0.25, f[2], 1e-12)

	T2, err := BoxToFractional([]float64{10, 0, 0, 0, 10, 0, 0, 0, 10}, []float64{-5, -5, -5})
	require.NoError(Te, err)
	g := T2.Apply([]float64{0, 0, 0})
	assert.InDelta(Te, 0.5, g[0], 1e-12)

	_, err = BoxToFractional([]float64{1, 0, 0, 1, 0, 0, 0, 0, 1})
	assert.Error(Te, err)
}
