/*
 * driver.go, part of mdstats.
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
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

//State is the state of the compute driver.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFinished
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

//driver holds the state of the background computation.
type driver struct {
	dmu         sync.Mutex //guards the fields up to done
	dyn         Dynamic
	frameFilter Range
	onFinished  func()
	cancel      context.CancelFunc
	done        chan struct{}

	state       atomic.Int32
	outcome     atomic.Int32
	framesDone  atomic.Int64
	framesTotal atomic.Int64
}

func (S *Stats) dynamic() Dynamic {
	S.dmu.Lock()
	defer S.dmu.Unlock()
	return S.dyn
}

//Dynamic returns the molecule and trajectory properties are computed on, or nil.
func (S *Stats) Dynamic() Dynamic {
	return S.dynamic()
}

//State returns the current state of the driver.
func (S *Stats) State() State {
	return State(S.state.Load())
}

//LastOutcome returns how the last run ended: StateFinished or StateStopped.
//It is StateIdle if nothing has run yet.
func (S *Stats) LastOutcome() State {
	return State(S.outcome.Load())
}

//Running returns true while a computation is in progress.
func (S *Stats) Running() bool {
	return S.State() == StateRunning
}

//FractionDone returns the fraction, between 0 and 1, of the frames of the
//current (or last) run that have been computed. It is 1 when the run had
//nothing to do.
func (S *Stats) FractionDone() float64 {
	total := S.framesTotal.Load()
	if total == 0 {
		if S.Running() {
			return 0
		}
		return 1
	}
	done := S.framesDone.Load()
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}

//Update sets the dynamic and the frame filter, and the function to call after each
//successful run, which can be nil. Dynamics are compared by identity, so dyn
//should be a pointer; a non-comparable dyn counts as changed on every call. If any of those changed, the running computation
//is restarted. If nothing changed, a new computation is started only when none is
//running and some property is dirty. Update returns true if a computation was started.
func (S *Stats) Update(dyn Dynamic, frameFilter Range, onFinished func()) bool {
	S.dmu.Lock()
	dynChanged := !sameDynamic(dyn, S.dyn)
	changed := dynChanged || frameFilter != S.frameFilter
	S.dmu.Unlock()
	if !changed && (S.Running() || !S.anyDirty()) {
		return false
	}
	S.StopAndWait()
	S.dmu.Lock()
	S.dyn = dyn
	S.frameFilter = frameFilter
	S.onFinished = onFinished
	S.dmu.Unlock()
	if changed {
		S.SetAllFlags(dynChanged, true)
	}
	return S.Start()
}

//sameDynamic compares a and b by identity. Dynamics of non-comparable
//types are never the same, so they always trigger a recomputation.
func sameDynamic(a, b Dynamic) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func (S *Stats) anyDirty() bool {
	for _, p := range S.Properties() {
		if p.DataDirty() || p.FilterDirty() {
			return true
		}
	}
	return false
}

//Start begins computing the dirty properties in the background. It returns
//false if a computation is already running, or if there is no dynamic set.
func (S *Stats) Start() bool {
	S.dmu.Lock()
	defer S.dmu.Unlock()
	if S.State() == StateRunning {
		return false
	}
	if S.dyn == nil {
		S.log.Warn("can't start computation", "error", ErrNoDynamic)
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	S.cancel = cancel
	S.done = make(chan struct{})
	S.framesDone.Store(0)
	S.framesTotal.Store(0)
	S.metrics.progress.Set(0)
	S.state.Store(int32(StateRunning))
	go S.run(ctx, S.dyn, S.frameFilter, S.onFinished, S.done)
	return true
}

//Stop asks the running computation, if any, to stop. It does not wait.
func (S *Stats) Stop() {
	S.dmu.Lock()
	defer S.dmu.Unlock()
	if S.cancel != nil {
		S.cancel()
	}
}

//StopAndWait stops the running computation, if any, and waits for it to end.
//Partially computed data is kept, and the properties involved stay dirty.
func (S *Stats) StopAndWait() {
	S.Stop()
	S.Wait()
}

//Wait blocks until the running computation, if any, ends.
func (S *Stats) Wait() {
	S.dmu.Lock()
	done := S.done
	S.dmu.Unlock()
	if done != nil {
		<-done
	}
}

//run ends by closing done. onFinished is called after that, so it can
//use the driver (for instance, to call Update).
func (S *Stats) run(ctx context.Context, dyn Dynamic, frameFilter Range, onFinished func(), done chan struct{}) {
	start := time.Now()
	S.log.Debug("computation started", "frames", dyn.NumFrames(), "frame_filter", frameFilter)
	outcome := S.compute(ctx, dyn, frameFilter)
	elapsed := time.Since(start)
	S.metrics.runDuration.Observe(elapsed.Seconds())
	S.metrics.runs.WithLabelValues(outcome.String()).Inc()
	if outcome == StateFinished && S.framesTotal.Load() == 0 {
		S.metrics.progress.Set(1)
	}
	S.log.Info("computation ended", "outcome", outcome, "elapsed", elapsed, "fraction_done", S.FractionDone())
	S.outcome.Store(int32(outcome))
	//Start checks the state under dmu, so no new run begins before done is closed.
	S.dmu.Lock()
	close(done)
	S.state.Store(int32(StateIdle))
	S.dmu.Unlock()
	if outcome == StateFinished && onFinished != nil {
		onFinished()
	}
}

//compute does the actual work of a run, and returns StateFinished, or
//StateStopped if ctx was cancelled.
func (S *Stats) compute(ctx context.Context, dyn Dynamic, frameFilter Range) State {
	props := S.Properties()
	beg, end := frameSpan(frameFilter, dyn.NumFrames())

	//The first setup finds the dependencies. The second one, in dependency
	//order, sees its dependencies already set up.
	for _, p := range props {
		if p.DataDirty() {
			S.setup(p, dyn)
		}
	}
	order := S.order(props)
	var total int64
	for _, p := range order {
		if p.Valid() && !p.covers(beg, end) {
			p.dataDirty.Store(true) //frames outside what was computed before
		}
		for _, d := range p.Dependencies {
			if d.DataDirty() {
				p.dataDirty.Store(true)
			}
		}
		if p.DataDirty() {
			S.setup(p, dyn)
		}
		for _, d := range p.Dependencies {
			if !d.Valid() {
				p.setError(newError(ErrInvalidDep, "compute", "%s depends on %s, which is not valid", p.name, d.name))
			}
		}
		if p.Valid() && p.DataDirty() {
			total += int64(end - beg)
		}
	}
	S.framesTotal.Store(total)

	for _, p := range order {
		if ctx.Err() != nil {
			return StateStopped
		}
		if !p.Valid() || !p.DataDirty() {
			continue
		}
		if !S.computeFrames(ctx, p, dyn, beg, end) {
			return StateStopped
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(S.opts.Workers)
	for _, p := range props {
		if !p.DataDirty() && !p.FilterDirty() {
			continue
		}
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !p.Valid() {
				p.clearDerived()
			} else if err := computeDerived(p, beg, end); err != nil {
				S.log.Warn("no statistics for property", "property", p.name, "error", err)
			}
			p.dataDirty.Store(false)
			p.filterDirty.Store(false)
			return nil
		})
	}
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		return StateStopped
	}
	return StateFinished
}

//computeFrames computes the frames [beg, end) of p. It returns false if ctx was cancelled.
//A failure in the command makes p invalid, but it is not a reason to stop.
func (S *Stats) computeFrames(ctx context.Context, p *Property, dyn Dynamic, beg, end int) bool {
	req := &Request{Args: p.tokens, Dynamic: dyn, stats: S, prop: p}
	p.computed = [2]int{}
	for f := beg; f < end; f++ {
		if ctx.Err() != nil {
			return false
		}
		req.Frame = f
		if err := p.cmd.compute.Compute(p, req); err != nil {
			p.setError(newError(err, "computeFrames", "%s failed at frame %d", p.name, f))
			S.metrics.computeErrors.WithLabelValues(p.keyword).Inc()
			S.log.Warn("property failed", "property", p.name, "frame", f, "error", err)
			S.framesDone.Add(int64(end - f))
			return true
		}
		S.framesDone.Add(1)
		S.metrics.frames.Inc()
		S.metrics.progress.Set(S.FractionDone())
	}
	p.computed = [2]int{beg, end}
	return true
}

//order returns the properties sorted so that every property comes after
//its dependencies. Properties in dependency cycles are marked invalid and left out.
func (S *Stats) order(props []*Property) []*Property {
	g := simple.NewDirectedGraph()
	for i := range props {
		g.AddNode(simple.Node(i))
	}
	for i, p := range props {
		for _, d := range p.Dependencies {
			j := indexOf(props, d)
			switch {
			case j < 0:
				p.setError(newError(ErrNotFound, "order", "%s depends on %s, which is not in the registry", p.name, d.name))
			case j == i:
				p.setError(newError(ErrCycle, "order", "%s depends on itself", p.name))
			default:
				g.SetEdge(g.NewEdge(simple.Node(j), simple.Node(i)))
			}
		}
	}
	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			for _, c := range cycles {
				for _, n := range c {
					p := props[n.ID()]
					p.setError(newError(ErrCycle, "order", "%s is part of a dependency cycle", p.name))
				}
			}
		}
	}
	ret := make([]*Property, 0, len(sorted))
	for _, n := range sorted {
		if n == nil {
			continue
		}
		ret = append(ret, props[n.ID()])
	}
	return ret
}
