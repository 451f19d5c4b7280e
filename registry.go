/*
 * registry.go, part of mdstats.
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
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/mdstats/volume"
)

type command struct {
	keyword   string
	compute   ComputeCapability
	visualize Visualizer
}

//Stats keeps the registry of commands and properties, and drives their computation.
//All the methods are meant to be called from one goroutine (the "main" one); the
//computation itself runs in the background, see Start and Update.
type Stats struct {
	opts     *Options
	log      *slog.Logger
	metrics  *metrics
	registry *prometheus.Registry //nil if the user gave a Registerer

	commands    map[string]*command
	cmdOrder    []string
	structCmds  map[string]StructureFunc
	structOrder []string

	mu    sync.Mutex //guards props
	props []*Property

	style  VisualizationStyle
	volume *volume.Volume

	driver
}

//New returns a Stats object with the built-in structure commands registered.
//If o is nil, DefaultOptions are used.
func New(o *Options) (*Stats, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.validate(); err != nil {
		return nil, errDecorate(err, "New")
	}
	S := &Stats{
		opts:       o,
		log:        o.logger(),
		commands:   make(map[string]*command),
		structCmds: make(map[string]StructureFunc),
		style:      o.Style,
		volume:     volume.New(o.VolumeDim[0], o.VolumeDim[1], o.VolumeDim[2]),
	}
	reg := o.Registerer
	if reg == nil {
		S.registry = prometheus.NewRegistry()
		reg = S.registry
	}
	S.metrics = newMetrics(reg)
	registerDefaultStructureCommands(S)
	return S, nil
}

//Shutdown stops any running computation and removes all properties.
func (S *Stats) Shutdown() {
	S.StopAndWait()
	S.RemoveAll()
	S.log.Debug("stats shut down")
}

//Gatherer returns the registry with the metrics of S, or nil if
//the metrics went to a Registerer given in the options.
func (S *Stats) Gatherer() prometheus.Gatherer {
	if S.registry == nil {
		return nil
	}
	return S.registry
}

//Options returns the options S was created with.
func (S *Stats) Options() *Options {
	return S.opts
}

//RegisterCommand makes the property command keyword available, computed
//with c. v can be nil.
func (S *Stats) RegisterCommand(keyword string, c ComputeCapability, v Visualizer) error {
	if keyword == "" || strings.ContainsAny(keyword, " \t\n()") || c == nil {
		return newError(nil, "RegisterCommand", "invalid command %q", keyword)
	}
	if _, ok := S.commands[keyword]; ok {
		return newError(ErrDuplicateCommand, "RegisterCommand", "command %q already registered", keyword)
	}
	S.commands[keyword] = &command{keyword: keyword, compute: c, visualize: v}
	S.cmdOrder = append(S.cmdOrder, keyword)
	S.log.Debug("registered command", "keyword", keyword)
	return nil
}

//Commands returns the property keywords available, in registration order.
func (S *Stats) Commands() []string {
	ret := make([]string, len(S.cmdOrder))
	copy(ret, S.cmdOrder)
	return ret
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t\n\r")
}

//Create adds a new property with the given name. args is the command
//keyword followed by its arguments, for instance "distance atom(1) atom(10)".
//An unknown keyword is an error and no property is created. If the arguments
//are otherwise wrong, the property is still created but it is not valid, and
//the reason can be obtained with its ErrorMessage method.
func (S *Stats) Create(name, args string) (*Property, error) {
	if !validName(name) {
		return nil, newError(ErrInvalidName, "Create", "invalid property name %q", name)
	}
	if S.Find(name) != nil {
		return nil, newError(ErrDuplicateName, "Create", "name %q already in use", name)
	}
	p := newProperty(name, args, S.opts.NumBins)
	cmd, ok := S.commands[p.keyword]
	if !ok {
		return nil, newError(ErrUnknownCommand, "Create", "unknown command %q for property %s", p.keyword, name)
	}
	p.cmd = cmd
	if dyn := S.dynamic(); dyn != nil {
		if err := S.setup(p, dyn); err != nil {
			S.log.Warn("property is not valid", "property", name, "error", err)
		}
	}
	S.mu.Lock()
	S.props = append(S.props, p)
	S.metrics.properties.Set(float64(len(S.props)))
	S.mu.Unlock()
	S.log.Debug("created property", "property", name, "args", args)
	return p, nil
}

//SetArgs changes the arguments of p, which is marked for recomputation.
//As with Create, a property with wrong arguments is kept, but marked invalid.
func (S *Stats) SetArgs(p *Property, args string) error {
	if S.index(p) < 0 {
		return newError(ErrNotFound, "SetArgs", "property not in registry")
	}
	S.StopAndWait()
	p.setArgs(args)
	p.dataDirty.Store(true)
	p.cmd = S.commands[p.keyword]
	p.setValid()
	var err error
	if p.cmd == nil {
		err = newError(ErrUnknownCommand, "SetArgs", "unknown command %q", p.keyword)
		p.setError(err)
		p.clearData()
	} else if dyn := S.dynamic(); dyn != nil {
		err = S.setup(p, dyn)
	}
	return err
}

//Remove takes p out of the registry. A property other properties depend on
//can't be removed; remove the dependents first.
func (S *Stats) Remove(p *Property) error {
	S.StopAndWait()
	S.mu.Lock()
	defer S.mu.Unlock()
	i := indexOf(S.props, p)
	if i < 0 {
		return newError(ErrNotFound, "Remove", "property not in registry")
	}
	var deps []string
	for _, q := range S.props {
		if q != p && q.dependsOn(p) {
			deps = append(deps, q.name)
		}
	}
	if len(deps) > 0 {
		return newError(ErrHasDependents, "Remove", "%s is needed by %s", p.name, strings.Join(deps, ", "))
	}
	S.props = append(S.props[:i], S.props[i+1:]...)
	p.clearData()
	p.Dependencies = nil
	S.metrics.properties.Set(float64(len(S.props)))
	return nil
}

//RemoveAll empties the registry.
func (S *Stats) RemoveAll() {
	S.StopAndWait()
	S.mu.Lock()
	defer S.mu.Unlock()
	for _, p := range S.props {
		p.clearData()
		p.Dependencies = nil
	}
	S.props = nil
	S.metrics.properties.Set(0)
}

//MoveUp moves p one place towards the beginning of the registry.
//It does nothing if p is already first.
func (S *Stats) MoveUp(p *Property) error {
	return S.swap(p, -1)
}

//MoveDown moves p one place towards the end of the registry.
//It does nothing if p is already last.
func (S *Stats) MoveDown(p *Property) error {
	return S.swap(p, 1)
}

func (S *Stats) swap(p *Property, delta int) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	i := indexOf(S.props, p)
	if i < 0 {
		return newError(ErrNotFound, "swap", "property not in registry")
	}
	j := i + delta
	if j < 0 || j >= len(S.props) {
		return nil
	}
	S.props[i], S.props[j] = S.props[j], S.props[i]
	return nil
}

//Clear drops the data of p and marks it for recomputation.
func (S *Stats) Clear(p *Property) {
	S.StopAndWait()
	p.clearData()
	p.dataDirty.Store(true)
}

//ClearAll drops the data of all properties and marks them for recomputation.
func (S *Stats) ClearAll() {
	S.StopAndWait()
	for _, p := range S.Properties() {
		p.clearData()
		p.dataDirty.Store(true)
	}
}

//SetAllFlags marks every property as dirty in data, filter or both.
func (S *Stats) SetAllFlags(data, filter bool) {
	for _, p := range S.Properties() {
		if data {
			p.dataDirty.Store(true)
		}
		if filter {
			p.filterDirty.Store(true)
		}
	}
}

//Properties returns the properties in registry order.
func (S *Stats) Properties() []*Property {
	S.mu.Lock()
	defer S.mu.Unlock()
	ret := make([]*Property, len(S.props))
	copy(ret, S.props)
	return ret
}

//Find returns the property with the given name, or nil.
func (S *Stats) Find(name string) *Property {
	S.mu.Lock()
	defer S.mu.Unlock()
	for _, p := range S.props {
		if p.name == name {
			return p
		}
	}
	return nil
}

//PropertyNames returns the names of all properties, in registry order.
func (S *Stats) PropertyNames() []string {
	props := S.Properties()
	ret := make([]string, 0, len(props))
	for _, p := range props {
		ret = append(ret, p.name)
	}
	return ret
}

//Visualize calls the visualizer of each valid property with visualization
//enabled. Errors are logged and returned together.
func (S *Stats) Visualize(dyn Dynamic) error {
	var errs []error
	for _, p := range S.Properties() {
		if !p.EnableVisualization || !p.Valid() || p.cmd == nil || p.cmd.visualize == nil {
			continue
		}
		if err := p.cmd.visualize.Visualize(p, dyn); err != nil {
			S.log.Error("visualization failed", "property", p.name, "error", err)
			errs = append(errs, newError(err, "Visualize", "property %s", p.name))
		}
	}
	return errors.Join(errs...)
}

//Style returns the style used to visualize properties. It can be modified.
func (S *Stats) Style() *VisualizationStyle {
	return &S.style
}

//DensityVolume returns the volume shared by the density computations.
func (S *Stats) DensityVolume() *volume.Volume {
	return S.volume
}

//setup runs the setup pass of the command of p against dyn.
func (S *Stats) setup(p *Property, dyn Dynamic) error {
	p.Dependencies = p.Dependencies[:0]
	p.Structures = nil
	if p.cmd == nil {
		err := newError(ErrUnknownCommand, "setup", "unknown command %q", p.keyword)
		p.setError(err)
		return err
	}
	req := &Request{Args: p.tokens, Dynamic: dyn, Frame: SetupFrame, stats: S, prop: p}
	err := p.cmd.compute.Compute(p, req)
	if err == nil {
		err = checkInstances(p, dyn.NumFrames())
	}
	if err != nil {
		err = errDecorate(err, "setup")
		p.setError(err)
		return err
	}
	p.setValid()
	return nil
}

func checkInstances(p *Property, frames int) error {
	if len(p.Instances) == 0 {
		return newError(nil, "checkInstances", "property %s has no instances", p.name)
	}
	for i, inst := range p.Instances {
		if len(inst.Data) != frames {
			return newError(nil, "checkInstances", "instance %d of %s has %d frames, expected %d", i, p.name, len(inst.Data), frames)
		}
	}
	return nil
}

func (S *Stats) index(p *Property) int {
	S.mu.Lock()
	defer S.mu.Unlock()
	return indexOf(S.props, p)
}

func indexOf(props []*Property, p *Property) int {
	for i, q := range props {
		if q == p {
			return i
		}
	}
	return -1
}
