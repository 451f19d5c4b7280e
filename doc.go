/*
 * doc.go, part of mdstats.
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

/*
Package stats computes per-frame properties over a molecular dynamics
trajectory, and statistics on them.

A property is created by name from a command keyword and its arguments,
for instance

	S.Create("d1", "distance resid(10) resid(50)")

The keyword selects a ComputeCapability registered with RegisterCommand
(the package props registers the usual ones). The arguments are usually
structure selections, which are resolved against the topology:

	atom(i) atom(i:j)        atoms i to j, 1-based and inclusive, as one structure
	resid(i) resid(i:j)      the residues numbered i to j, one structure each
	residue(i) residue(i:j)  the ith to jth residues, 1-based, one structure each
	resname(ALA,GLY)         all residues with those names, one structure each
	chain(A)                 the atoms of the chain A
	com(sel)                 any of the above, reduced to the center of mass of each structure

A property has one instance per structure in its selections, and one value per
frame in each instance. The computation runs in the background (see Update, Start
and StopAndWait). Only the properties marked dirty are computed, in the order
their dependencies require. Afterwards, each property gets histograms of its
values (complete and filtered by the value filter of the property), and the
average, standard deviation and filtered fraction of its instances at each frame.

The positions of the structures that pass the filters can be accumulated into a
density volume with ComputeDensityVolume.

*/
package stats
