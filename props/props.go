/*
 * props.go, part of mdstats.
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

//Package props contains the usual geometric properties, ready
//to be registered in a stats.Stats object.
//
//	distance sel1 sel2            Å
//	angle sel1 sel2 sel3          degrees
//	dihedral sel1 sel2 sel3 sel4  degrees, periodic
//	rmsd sel                      Å, against the first frame, without superposition
//	phi [sel] / psi [sel]         degrees, periodic, one instance per residue
//	diff prop1 prop2              prop1-prop2, instance by instance
//
//Selections with more than one atom are reduced to their center of mass.
package props

import (
	"fmt"

	stats "github.com/rmera/mdstats"
	v3 "github.com/rmera/mdstats/v3"
)

//Register adds all the commands in this package to S. v, which can
//be nil, is used as the visualizer for all of them.
func Register(S *stats.Stats, v stats.Visualizer) error {
	cmds := []struct {
		keyword string
		f       stats.ComputeFunc
	}{
		{"distance", distance},
		{"angle", angle},
		{"dihedral", dihedral},
		{"rmsd", rmsd},
		{"phi", backbone(true)},
		{"psi", backbone(false)},
		{"diff", diff},
	}
	for _, c := range cmds {
		if err := S.RegisterCommand(c.keyword, c.f, v); err != nil {
			return fmt.Errorf("props.Register: %w", err)
		}
	}
	return nil
}

//setupSelections resolves exactly n selections into the structures of p, and
//sizes the instance data.
func setupSelections(p *stats.Property, req *stats.Request, n int) error {
	if len(req.Args) != n {
		return fmt.Errorf("%s needs %d selections, got %d", p.Command(), n, len(req.Args))
	}
	ninst, err := req.Structures(req.Args...)
	if err != nil {
		return err
	}
	p.InitInstances(ninst, req.NumFrames())
	return nil
}

//points puts in dst the position of each structure of the instance i at the current frame.
func points(p *stats.Property, req *stats.Request, i int, dst [][3]float64) error {
	pos := req.Dynamic.Positions(req.Frame)
	for k, sd := range p.Structures {
		var err error
		if dst[k], err = stats.CenterOfMass(sd.Structures[i], pos, req.Dynamic); err != nil {
			return err
		}
	}
	return nil
}

//geometric returns a command that evaluates f on the points of each instance.
func geometric(n int, unit string, periodic bool, f func(pts [][3]float64) float64) stats.ComputeFunc {
	return func(p *stats.Property, req *stats.Request) error {
		if req.Setup() {
			p.Unit = unit
			p.Periodic = periodic
			return setupSelections(p, req, n)
		}
		pts := make([][3]float64, n)
		for i := range p.Instances {
			if err := points(p, req, i, pts); err != nil {
				return err
			}
			p.Instances[i].Data[req.Frame] = f(pts)
		}
		return nil
	}
}

var distance = geometric(2, "Å", false, func(pts [][3]float64) float64 {
	return Distance(pts[0], pts[1])
})

var angle = geometric(3, "°", false, func(pts [][3]float64) float64 {
	return Angle(pts[0], pts[1], pts[2]) * rad2deg
})

var dihedral = geometric(4, "°", true, func(pts [][3]float64) float64 {
	return Dihedral(pts[0], pts[1], pts[2], pts[3]) * rad2deg
})

func rmsd(p *stats.Property, req *stats.Request) error {
	if req.Setup() {
		p.Unit = "Å"
		return setupSelections(p, req, 1)
	}
	ref := req.Dynamic.Positions(0)
	pos := req.Dynamic.Positions(req.Frame)
	for i := range p.Instances {
		s := p.Structures[0].Structures[i]
		v, err := RMSD(stats.ExtractPositions(s, pos), stats.ExtractPositions(s, ref))
		if err != nil {
			return err
		}
		p.Instances[i].Data[req.Frame] = v
	}
	return nil
}

//backbone returns the phi or psi command. Each residue with both neighbours in
//its chain (and, if selections are given, with its CA in them) is an instance.
//The four atoms of the dihedral become four single-atom structures.
func backbone(phi bool) stats.ComputeFunc {
	return func(p *stats.Property, req *stats.Request) error {
		if !req.Setup() {
			pos := req.Dynamic.Positions(req.Frame)
			m := v3.Zeros(4)
			atoms := make([]int, 4)
			var pts [4][3]float64
			for i := range p.Instances {
				for k, sd := range p.Structures {
					atoms[k] = sd.Structures[i].Beg
				}
				if err := m.SomeVecs(pos, atoms); err != nil {
					return err
				}
				for k := range pts {
					copy(pts[k][:], m.Vec(k))
				}
				p.Instances[i].Data[req.Frame] = Dihedral(pts[0], pts[1], pts[2], pts[3]) * rad2deg
			}
			return nil
		}
		p.Unit = "°"
		p.Periodic = true
		sets, err := RamaList(req.Dynamic)
		if err != nil {
			return err
		}
		if len(req.Args) > 0 {
			sel, err := req.Select(req.Args...)
			if err != nil {
				return err
			}
			sets = ramaFilter(sets, sel)
		}
		if len(sets) == 0 {
			return fmt.Errorf("%s: no residues with a complete backbone", p.Command())
		}
		p.Structures = make([]stats.StructureData, 4)
		for k := range p.Structures {
			p.Structures[k].Structures = make([]stats.Structure, len(sets))
		}
		for i, r := range sets {
			atoms := r.Psi()
			if phi {
				atoms = r.Phi()
			}
			for k, a := range atoms {
				p.Structures[k].Structures[i] = stats.Structure{Beg: a, End: a + 1}
			}
		}
		p.InitInstances(len(sets), req.NumFrames())
		return nil
	}
}

//diff is the difference, instance by instance, between two other properties.
//The second one can also have a single instance, used against all the instances of the first.
func diff(p *stats.Property, req *stats.Request) error {
	if !req.Setup() {
		a, b := p.Dependencies[0], p.Dependencies[len(p.Dependencies)-1] //the same, for diff x x
		for i := range p.Instances {
			j := i
			if len(b.Instances) == 1 {
				j = 0
			}
			p.Instances[i].Data[req.Frame] = a.Instances[i].Data[req.Frame] - b.Instances[j].Data[req.Frame]
		}
		return nil
	}
	if len(req.Args) != 2 {
		return fmt.Errorf("diff needs 2 properties, got %d", len(req.Args))
	}
	a, err := req.Property(req.Args[0])
	if err != nil {
		return err
	}
	b, err := req.Property(req.Args[1])
	if err != nil {
		return err
	}
	if len(a.Instances) == 0 || len(b.Instances) == 0 {
		return fmt.Errorf("diff: %s and %s must be computed first", a.Name(), b.Name())
	}
	if len(b.Instances) != 1 && len(b.Instances) != len(a.Instances) {
		return fmt.Errorf("diff: %s has %d instances and %s has %d", a.Name(), len(a.Instances), b.Name(), len(b.Instances))
	}
	p.Unit = a.Unit
	p.Periodic = a.Periodic
	p.Structures = append([]stats.StructureData(nil), a.Structures...)
	p.InitInstances(len(a.Instances), req.NumFrames())
	return nil
}
