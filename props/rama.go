/*
 * rama.go, part of mdstats.
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

	stats "github.com/rmera/mdstats"
)

//RamaSet contains the indexes of the atoms needed for the backbone
//dihedrals of one residue.
type RamaSet struct {
	Cprev   int
	N       int
	Ca      int
	C       int
	Npost   int
	MolID   int
	Molname string
}

//Phi returns the atoms of the phi dihedral.
func (R RamaSet) Phi() [4]int {
	return [4]int{R.Cprev, R.N, R.Ca, R.C}
}

//Psi returns the atoms of the psi dihedral.
func (R RamaSet) Psi() [4]int {
	return [4]int{R.N, R.Ca, R.C, R.Npost}
}

// RamaList takes a molecule and returns a slice of RamaSet, which contains the
// indexes for each dihedral of the residues with a previous and a next residue
// in the same chain. Residues at the ends of chains are skipped.
func RamaList(M stats.Atomer) ([]RamaSet, error) {
	if M == nil {
		return nil, fmt.Errorf("RamaList: nil data given")
	}
	ret := make([]RamaSet, 0, M.Len()/8)
	C := -1
	N := -1
	Ca := -1
	Cprev := -1
	Npost := -1
	chainprev := "NOTAVALIDCHAIN" //any non-valid chain name
	for num := 0; num < M.Len(); num++ {
		at := M.Atom(num)
		if at.Chain != chainprev {
			chainprev = at.Chain
			C = -1
			N = -1
			Ca = -1
			Cprev = -1
			Npost = -1
		}
		if at.Name == "C" && Cprev == -1 {
			Cprev = num
		}
		if at.Name == "N" && Cprev != -1 && N == -1 && at.MolID > M.Atom(Cprev).MolID {
			N = num
		}
		if at.Name == "C" && Cprev != -1 && at.MolID > M.Atom(Cprev).MolID {
			C = num
		}
		if at.Name == "CA" && Cprev != -1 && at.MolID > M.Atom(Cprev).MolID {
			Ca = num
		}
		if at.Name == "N" && Ca != -1 && at.MolID > M.Atom(Ca).MolID {
			Npost = num
		}
		//when we have them all, we save
		if Cprev != -1 && Ca != -1 && N != -1 && C != -1 && Npost != -1 {
			//We check that the residue ids are what they are supposed to be
			r1 := M.Atom(Cprev).MolID
			r2 := M.Atom(N).MolID
			r2a := M.Atom(Ca).MolID
			r2b := M.Atom(C).MolID
			r3 := M.Atom(Npost).MolID
			if r1 != r2-1 || r2 != r2a || r2a != r2b || r2b != r3-1 {
				return nil, fmt.Errorf("RamaList: incorrect backbone Cprev: %d N-1: %d CA: %d C: %d Npost-1: %d", r1, r2-1, r2a, r2b, r3-1)
			}
			ret = append(ret, RamaSet{Cprev, N, Ca, C, Npost, r2, M.Atom(Ca).Molname})
			N = Npost
			Ca = -1
			Cprev = C
			C = -1
			Npost = -1
		}
	}
	return ret, nil
}

//ramaFilter returns the sets whose CA is in any of the structures in sel.
func ramaFilter(sets []RamaSet, sel []stats.StructureData) []RamaSet {
	ret := make([]RamaSet, 0, len(sets))
	for _, r := range sets {
	search:
		for _, sd := range sel {
			for _, s := range sd.Structures {
				if s.Beg <= r.Ca && r.Ca < s.End {
					ret = append(ret, r)
					break search
				}
			}
		}
	}
	return ret
}
