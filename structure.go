/*
 * structure.go, part of mdstats.
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
	"strconv"
	"strings"

	v3 "github.com/rmera/mdstats/v3"
	"gonum.org/v1/gonum/stat"
)

//Structure is a contiguous range of atoms [Beg, End).
type Structure struct {
	Beg int
	End int
}

//Len returns the number of atoms in the structure.
func (S Structure) Len() int {
	return S.End - S.Beg
}

func (S Structure) String() string {
	return fmt.Sprintf("[%d, %d)", S.Beg, S.End)
}

//AggregationStrategy tells how the atoms of a structure are used.
type AggregationStrategy int

const (
	AggregateNone AggregationStrategy = iota //every atom on its own
	AggregateCOM                             //the center of mass of the structure
)

//StructureData is the set of structures produced by one selection argument.
//Structure i belongs to the instance i of the property.
type StructureData struct {
	Structures []Structure
	Strategy   AggregationStrategy
}

//StructureFunc resolves the argument of a selection keyword (the text
//between the parentheses) into structures of mol.
type StructureFunc func(arg string, mol Atomer) ([]Structure, error)

//RegisterStructureCommand makes the keyword available in selections.
func (S *Stats) RegisterStructureCommand(keyword string, f StructureFunc) error {
	if keyword == "" || strings.ContainsAny(keyword, " \t\n(),:") || f == nil {
		return newError(nil, "RegisterStructureCommand", "invalid structure command %q", keyword)
	}
	if keyword == comKeyword {
		return newError(ErrDuplicateCommand, "RegisterStructureCommand", "%q is reserved", keyword)
	}
	if _, ok := S.structCmds[keyword]; ok {
		return newError(ErrDuplicateCommand, "RegisterStructureCommand", "structure command %q already registered", keyword)
	}
	S.structCmds[keyword] = f
	S.structOrder = append(S.structOrder, keyword)
	return nil
}

//StructureCommands returns the structure keywords available, in registration order.
func (S *Stats) StructureCommands() []string {
	ret := make([]string, len(S.structOrder))
	copy(ret, S.structOrder)
	return ret
}

const comKeyword = "com"

//ExtractStructures resolves each selection token in args into one StructureData.
//A token has the form keyword(arg), or com(keyword(arg)) to aggregate each
//structure to its center of mass. Every structure is checked against the atoms in mol.
func (S *Stats) ExtractStructures(args []string, mol Atomer) ([]StructureData, error) {
	if mol == nil {
		return nil, newError(ErrNoDynamic, "ExtractStructures", "no molecule to select from")
	}
	ret := make([]StructureData, 0, len(args))
	for _, tok := range args {
		sd, err := S.resolve(tok, mol)
		if err != nil {
			return nil, errDecorate(err, "ExtractStructures")
		}
		ret = append(ret, sd)
	}
	return ret, nil
}

func (S *Stats) resolve(tok string, mol Atomer) (StructureData, error) {
	var sd StructureData
	keyword, arg, err := splitCall(tok)
	if err != nil {
		return sd, err
	}
	if keyword == comKeyword {
		sd.Strategy = AggregateCOM
		if keyword, arg, err = splitCall(arg); err != nil {
			return sd, err
		}
	}
	f, ok := S.structCmds[keyword]
	if !ok {
		return sd, newError(ErrSelection, "resolve", "unknown structure command %q in %q", keyword, tok)
	}
	structs, err := f(arg, mol)
	if err != nil {
		return sd, newError(ErrSelection, "resolve", "%q: %s", tok, err.Error())
	}
	if len(structs) == 0 {
		return sd, newError(ErrSelection, "resolve", "%q matched no atoms", tok)
	}
	for _, s := range structs {
		if err := checkStructure(s, mol.Len()); err != nil {
			return sd, newError(ErrSelection, "resolve", "%q: %s", tok, err.Error())
		}
	}
	sd.Structures = structs
	return sd, nil
}

//checkStructure verifies that 0 <= Beg <= End <= natoms
func checkStructure(s Structure, natoms int) error {
	if s.Beg > s.End {
		return fmt.Errorf("inverted range %s", s)
	}
	if s.Beg < 0 || s.End > natoms {
		return fmt.Errorf("range %s out of bounds for %d atoms", s, natoms)
	}
	return nil
}

//splitCall splits "keyword(arg)" into keyword and arg.
func splitCall(tok string) (string, string, error) {
	open := strings.IndexByte(tok, '(')
	if open <= 0 || !strings.HasSuffix(tok, ")") {
		return "", "", newError(ErrSelection, "splitCall", "malformed selection %q, expected keyword(argument)", tok)
	}
	return tok[:open], tok[open+1 : len(tok)-1], nil
}

//SyncStructureDataLength makes all the entries in data have the same number
//of structures, which is returned. Entries with only one structure are repeated
//to match the others; any other mismatch is an error.
func SyncStructureDataLength(data []StructureData) (int, error) {
	max := 0
	for _, sd := range data {
		if len(sd.Structures) > max {
			max = len(sd.Structures)
		}
	}
	if max == 0 {
		return 0, newError(ErrStructureLength, "SyncStructureDataLength", "no structures")
	}
	for i, sd := range data {
		switch len(sd.Structures) {
		case max:
		case 1:
			s := sd.Structures[0]
			data[i].Structures = make([]Structure, max)
			for j := range data[i].Structures {
				data[i].Structures[j] = s
			}
		default:
			return 0, newError(ErrStructureLength, "SyncStructureDataLength", "argument %d has %d structures, expected 1 or %d", i+1, len(sd.Structures), max)
		}
	}
	return max, nil
}

//ExtractPositions returns a view of the coordinates of the atoms in s.
func ExtractPositions(s Structure, positions *v3.Matrix) *v3.Matrix {
	return positions.View(s.Beg, s.End)
}

//CenterOfMass returns the center of mass of the atoms in s.
func CenterOfMass(s Structure, positions *v3.Matrix, mol Atomer) ([3]float64, error) {
	var ret [3]float64
	if s.Len() == 1 {
		copy(ret[:], positions.Vec(s.Beg))
		return ret, nil
	}
	if s.Len() <= 0 {
		return ret, newError(ErrSelection, "CenterOfMass", "empty structure %s", s)
	}
	w, err := structureMasses(mol, s)
	if err != nil {
		return ret, newError(err, "CenterOfMass", "can't obtain masses")
	}
	col := make([]float64, s.Len())
	for k := 0; k < 3; k++ {
		for i := range col {
			col[i] = positions.At(s.Beg+i, k)
		}
		ret[k] = stat.Mean(col, w)
	}
	return ret, nil
}

//structureMasses returns the masses of the atoms in s. They are taken from
//mol if it is a Masser able to give them, and from each atom (or its element)
//otherwise.
func structureMasses(mol Atomer, s Structure) ([]float64, error) {
	if m, ok := mol.(Masser); ok {
		if all, err := m.Masses(); err == nil && len(all) >= s.End {
			return all[s.Beg:s.End], nil
		}
	}
	return masses(mol, s.Beg, s.End)
}

//ForEachFilteredStructure calls fn with every structure of the instances of p that,
//at frame, have values within the filter of p. Instance i contributes the
//structure i of each StructureData.
func ForEachFilteredStructure(p *Property, frame int, fn func(s Structure, strategy AggregationStrategy)) {
	filter := p.Filter()
	for i, inst := range p.Instances {
		if frame >= len(inst.Data) || !filter.Contains(inst.Data[frame]) {
			continue
		}
		for _, sd := range p.Structures {
			if i < len(sd.Structures) {
				fn(sd.Structures[i], sd.Strategy)
			}
		}
	}
}

/******Built-in structure commands********/

func registerDefaultStructureCommands(S *Stats) {
	S.RegisterStructureCommand("atom", atomStructures)
	S.RegisterStructureCommand("resid", residStructures)
	S.RegisterStructureCommand("residue", residueStructures)
	S.RegisterStructureCommand("resname", resnameStructures)
	S.RegisterStructureCommand("chain", chainStructures)
}

//atom(i) or atom(i:j), 1-based and inclusive. One structure.
func atomStructures(arg string, mol Atomer) ([]Structure, error) {
	lo, hi, err := parseIntRange(arg)
	if err != nil {
		return nil, err
	}
	return []Structure{{Beg: lo - 1, End: hi}}, nil
}

//resid(i) or resid(i:j), residue numbers. One structure per residue.
func residStructures(arg string, mol Atomer) ([]Structure, error) {
	lo, hi, err := parseIntRange(arg)
	if err != nil {
		return nil, err
	}
	ret := make([]Structure, 0, hi-lo+1)
	for _, r := range residuesOf(mol) {
		if lo <= r.MolID && r.MolID <= hi {
			ret = append(ret, Structure{r.Beg, r.End})
		}
	}
	return ret, nil
}

//residue(i) or residue(i:j), 1-based positions in the residue list. One structure per residue.
func residueStructures(arg string, mol Atomer) ([]Structure, error) {
	lo, hi, err := parseIntRange(arg)
	if err != nil {
		return nil, err
	}
	res := residuesOf(mol)
	if lo < 1 || hi > len(res) {
		return nil, fmt.Errorf("residues %d:%d out of bounds for %d residues", lo, hi, len(res))
	}
	ret := make([]Structure, 0, hi-lo+1)
	for _, r := range res[lo-1 : hi] {
		ret = append(ret, Structure{r.Beg, r.End})
	}
	return ret, nil
}

//resname(ALA) or resname(ALA,GLY). One structure per residue.
func resnameStructures(arg string, mol Atomer) ([]Structure, error) {
	names := splitList(arg)
	if len(names) == 0 {
		return nil, fmt.Errorf("no residue names given")
	}
	var ret []Structure
	for _, r := range residuesOf(mol) {
		if isInString(names, r.Molname) {
			ret = append(ret, Structure{r.Beg, r.End})
		}
	}
	return ret, nil
}

//chain(A) or chain(A,B). One structure per contiguous run of atoms of each chain.
func chainStructures(arg string, mol Atomer) ([]Structure, error) {
	chains := splitList(arg)
	if len(chains) == 0 {
		return nil, fmt.Errorf("no chains given")
	}
	var ret []Structure
	for _, c := range chains {
		beg := -1
		for i := 0; i <= mol.Len(); i++ {
			in := i < mol.Len() && mol.Atom(i).Chain == c
			if in && beg < 0 {
				beg = i
			} else if !in && beg >= 0 {
				ret = append(ret, Structure{beg, i})
				beg = -1
			}
		}
	}
	return ret, nil
}

func residuesOf(mol Atomer) []Residue {
	if r, ok := mol.(interface{ Residues() []Residue }); ok {
		return r.Residues()
	}
	return Residues(mol)
}

//parseIntRange parses "i" or "i:j" and checks that i <= j
func parseIntRange(arg string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(arg), ":")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("malformed range %q", arg)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed range %q", arg)
	}
	hi := lo
	if len(parts) == 2 {
		if hi, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return 0, 0, fmt.Errorf("malformed range %q", arg)
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("inverted range %d:%d", lo, hi)
	}
	return lo, hi, nil
}

func splitList(arg string) []string {
	var ret []string
	for _, v := range strings.Split(arg, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

//isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
