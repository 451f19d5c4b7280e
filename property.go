/*
 * property.go, part of mdstats.
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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rmera/mdstats/histo"
)

//Range is a closed interval of property values.
type Range = histo.Range

//InstanceData holds the value of one instance of a property at each frame.
type InstanceData struct {
	Data []float64
}

//Property is a named, user-defined time series computed over a trajectory.
//A property has one or more instances (for instance, one per residue selected),
//each with one value per frame.
//
//The fields holding computed data are written by the compute driver while it
//runs. They should be read only when the driver is not running.
type Property struct {
	id      uuid.UUID
	name    string
	args    string
	keyword string
	tokens  []string //the arguments after the keyword
	cmd     *command

	Unit     string
	Periodic bool //values wrap around (angles)

	//Timeline, distribution and volume are on for new properties.
	EnableVisualization bool
	EnableTimeline      bool
	EnableDistribution  bool
	EnableVolume        bool

	valid       atomic.Bool
	dataDirty   atomic.Bool
	filterDirty atomic.Bool

	computed [2]int //frames [beg, end) with computed data. Only the worker touches it.

	mu     sync.RWMutex
	filter Range
	errMsg string

	Instances    []InstanceData
	Structures   []StructureData
	Dependencies []*Property

	//Derived data
	TotalDataRange Range
	AvgDataRange   Range
	AvgData        []float64
	StdDevData     []float64
	FilterFraction []float64
	FullHistogram  *histo.Histogram
	FiltHistogram  *histo.Histogram
}

func newProperty(name, args string, bins int) *Property {
	p := &Property{
		id:            uuid.New(),
		name:          name,
		FullHistogram: histo.New(bins),
		FiltHistogram: histo.New(bins),

		EnableTimeline:     true,
		EnableDistribution: true,
		EnableVolume:       true,
	}
	p.setArgs(args)
	p.valid.Store(true)
	p.dataDirty.Store(true)
	return p
}

//setArgs stores args and splits them into keyword and arguments.
func (P *Property) setArgs(args string) {
	P.args = args
	P.keyword = ""
	P.tokens = nil
	f := strings.Fields(args)
	if len(f) > 0 {
		P.keyword = f[0]
		P.tokens = f[1:]
	}
}

//ID returns a unique identifier for the property.
func (P *Property) ID() uuid.UUID { return P.id }

func (P *Property) Name() string { return P.name }

//Args returns the argument string of the property, including the command keyword.
func (P *Property) Args() string { return P.args }

//Command returns the command keyword of the property.
func (P *Property) Command() string { return P.keyword }

//Valid returns false if the property could not be set up or computed.
func (P *Property) Valid() bool { return P.valid.Load() }

//ErrorMessage returns the reason why the property is not valid, or
//an empty string if it is.
func (P *Property) ErrorMessage() string {
	P.mu.RLock()
	defer P.mu.RUnlock()
	return P.errMsg
}

func (P *Property) setError(err error) {
	P.mu.Lock()
	P.errMsg = err.Error()
	P.mu.Unlock()
	P.valid.Store(false)
}

func (P *Property) setValid() {
	P.mu.Lock()
	P.errMsg = ""
	P.mu.Unlock()
	P.valid.Store(true)
}

//DataDirty returns true if the values of the property need to be recomputed.
func (P *Property) DataDirty() bool { return P.dataDirty.Load() }

//FilterDirty returns true if the filtered statistics need to be recomputed.
func (P *Property) FilterDirty() bool { return P.filterDirty.Load() }

//SetDataDirty marks the property to be recomputed on the next update.
func (P *Property) SetDataDirty() { P.dataDirty.Store(true) }

//SetFilterDirty marks the filtered statistics to be recomputed on the next update.
func (P *Property) SetFilterDirty() { P.filterDirty.Store(true) }

//Filter returns the value filter of the property. A zero Range means unset.
func (P *Property) Filter() Range {
	P.mu.RLock()
	defer P.mu.RUnlock()
	return P.filter
}

//SetFilter sets the value filter and marks the filtered statistics as dirty.
func (P *Property) SetFilter(r Range) {
	P.mu.Lock()
	P.filter = r
	P.mu.Unlock()
	P.filterDirty.Store(true)
}

//NumFrames returns the number of frames of data in the property.
func (P *Property) NumFrames() int {
	if len(P.Instances) == 0 {
		return 0
	}
	return len(P.Instances[0].Data)
}

//InitInstances sizes the property for n instances with frames values each.
//Existing storage is kept if it has the right size.
func (P *Property) InitInstances(n, frames int) {
	if len(P.Instances) != n {
		P.Instances = make([]InstanceData, n)
	}
	for i := range P.Instances {
		if len(P.Instances[i].Data) != frames {
			P.Instances[i].Data = make([]float64, frames)
		}
	}
	if len(P.AvgData) != frames {
		P.AvgData = make([]float64, frames)
		P.StdDevData = make([]float64, frames)
		P.FilterFraction = make([]float64, frames)
	}
}

//clearData drops the computed and derived data of the property.
func (P *Property) clearData() {
	P.Instances = nil
	P.Structures = nil
	P.computed = [2]int{}
	P.clearDerived()
}

//covers returns true if the frames [beg, end) have been computed.
func (P *Property) covers(beg, end int) bool {
	return beg >= end || (P.computed[0] <= beg && end <= P.computed[1])
}

func (P *Property) clearDerived() {
	P.TotalDataRange = Range{}
	P.AvgDataRange = Range{}
	P.AvgData = nil
	P.StdDevData = nil
	P.FilterFraction = nil
	P.FullHistogram.Clear()
	P.FiltHistogram.Clear()
}

//dependsOn returns true if q is a direct dependency of P.
func (P *Property) dependsOn(q *Property) bool {
	for _, d := range P.Dependencies {
		if d == q {
			return true
		}
	}
	return false
}

func (P *Property) String() string {
	valid := "valid"
	if !P.Valid() {
		valid = "invalid: " + P.ErrorMessage()
	}
	return fmt.Sprintf("%s (%s) %d instances, %d frames, %s", P.name, P.args, len(P.Instances), P.NumFrames(), valid)
}
