/*
 * interfaces.go, part of mdstats.
 *
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

import v3 "github.com/rmera/mdstats/v3"

// Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the Topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	Len() int
}

// Trajectory is a set of frames already resident in memory.
// Positions must not be modified by the caller.
type Trajectory interface {

	//Returns the number of frames
	NumFrames() int

	//Returns the coordinates of all atoms in the frame i
	Positions(i int) *v3.Matrix
}

// Dynamic is a molecule together with its trajectory: what the
// property commands operate on.
type Dynamic interface {
	Atomer
	Trajectory
}

// ComputeCapability computes one kind of property. It is registered
// under a keyword with Stats.RegisterCommand.
//
// Compute is first called with req.Frame == SetupFrame. In that call it must validate
// the arguments, set up the structures of the property (see Request.Structures),
// declare dependencies (Request.Property) and size the instance data
// (Property.InitInstances). Then it is called once per frame, and it must write
// the value of each instance for req.Frame.
type ComputeCapability interface {
	Compute(p *Property, req *Request) error
}

// ComputeFunc allows the use of ordinary functions as ComputeCapability.
type ComputeFunc func(p *Property, req *Request) error

func (f ComputeFunc) Compute(p *Property, req *Request) error {
	return f(p, req)
}

// Visualizer draws, or otherwise presents, a property. It is optional.
type Visualizer interface {
	Visualize(p *Property, dyn Dynamic) error
}

// VisualizeFunc allows the use of ordinary functions as Visualizer.
type VisualizeFunc func(p *Property, dyn Dynamic) error

func (f VisualizeFunc) Visualize(p *Property, dyn Dynamic) error {
	return f(p, dyn)
}

// Masser can return a slice with the masses of each atom in the reference.
// CenterOfMass uses it, when the Atomer it gets implements it.
type Masser interface {

	//Returns the masses of all atoms
	Masses() ([]float64, error)
}
