/*
 * topology.go, part of mdstats.
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
	"fmt"

	v3 "github.com/rmera/mdstats/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

//Atom contains the information of an atom except for the coordinates,
//which are kept in the trajectory.
type Atom struct {
	Name    string
	ID      int
	MolID   int    //residue number
	Molname string //residue name
	Chain   string
	Mass    float64 //if 0, the mass is taken from the symbol
	Symbol  string
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	return &N
}

//Residue is a contiguous run of atoms sharing residue number and chain.
type Residue struct {
	MolID   int
	Molname string
	Chain   string
	Beg     int //first atom
	End     int //one past the last atom
}

/*****Topology type***/

//Topology contains the information about a molecule which is not expected to change in time.
type Topology struct {
	Atoms    []*Atom
	residues []Residue
	masses   []float64
}

//NewTopology returns a topology with the given atoms.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, fmt.Errorf("Supplied a nil Topology")
	}
	return &Topology{Atoms: ats}, nil
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Masses returns the masses of the atoms. Atoms without a mass get the
//mass of their element, if it is known. An error is returned otherwise.
//The slice is computed once and cached, so it must not be modified.
func (T *Topology) Masses() ([]float64, error) {
	if T.masses == nil {
		m, err := masses(T, 0, T.Len())
		if err != nil {
			return nil, err
		}
		T.masses = m
	}
	return T.masses, nil
}

//Residues returns the residues of the topology, in order.
//The slice is computed once and cached.
func (T *Topology) Residues() []Residue {
	if T.residues == nil {
		T.residues = Residues(T)
	}
	return T.residues
}

//Residues groups consecutive atoms of mol with the same
//residue number and chain.
func Residues(mol Atomer) []Residue {
	ret := make([]Residue, 0, mol.Len()/10+1)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if l := len(ret); l > 0 && ret[l-1].MolID == at.MolID && ret[l-1].Chain == at.Chain {
			ret[l-1].End = i + 1
			continue
		}
		ret = append(ret, Residue{MolID: at.MolID, Molname: at.Molname, Chain: at.Chain, Beg: i, End: i + 1})
	}
	return ret
}

/*****Molecule type***/

//Molecule is a topology with a set of frames of coordinates. It is
//the simplest implementation of Dynamic, with all frames in memory.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
	Boxes  [][]float64 //optional, 9 elements per frame.
}

//NewMolecule makes a molecule from a topology and its frames.
//Every frame must have as many coordinates as atoms in the topology.
func NewMolecule(top *Topology, coords []*v3.Matrix) (*Molecule, error) {
	if top == nil {
		return nil, fmt.Errorf("NewMolecule: Supplied a nil topology")
	}
	for i, c := range coords {
		if c == nil || c.NVecs() != top.Len() {
			return nil, fmt.Errorf("NewMolecule: Frame %d doesn't match the %d atoms of the topology", i, top.Len())
		}
	}
	return &Molecule{Topology: top, Coords: coords}, nil
}

//NumFrames returns the number of frames in the molecule.
func (M *Molecule) NumFrames() int {
	return len(M.Coords)
}

//Positions returns the coordinates for the frame i.
func (M *Molecule) Positions(i int) *v3.Matrix {
	return M.Coords[i]
}

//Box returns the box vectors of frame i, or nil if there are none.
func (M *Molecule) Box(i int) []float64 {
	if i >= len(M.Boxes) {
		return nil
	}
	return M.Boxes[i]
}

//masses returns the masses of the atoms from beg to end.
func masses(mol Atomer, beg, end int) ([]float64, error) {
	ret := make([]float64, 0, end-beg)
	for i := beg; i < end; i++ {
		at := mol.Atom(i)
		m := at.Mass
		if m == 0 {
			var ok bool
			if m, ok = ElementMass(at.Symbol); !ok {
				return nil, fmt.Errorf("Masses: No mass for atom %d (%s %s)", i, at.Name, at.Symbol)
			}
		}
		ret = append(ret, m)
	}
	return ret, nil
}
