/*
 * derived.go, part of mdstats.
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
	"math"

	"github.com/rmera/mdstats/histo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//computeDerived fills the statistics of p from its instance data. The
//histograms and ranges use the frames in [beg, end); the per-frame
//series cover every frame.
func computeDerived(p *Property, beg, end int) error {
	nf := p.NumFrames()
	if end > nf {
		end = nf
	}
	if beg >= end {
		p.clearDerived()
		return histo.ErrEmptyData
	}
	samples := make([]float64, 0, len(p.Instances)*(end-beg))
	for _, inst := range p.Instances {
		samples = append(samples, inst.Data[beg:end]...)
	}
	p.TotalDataRange = Range{Min: floats.Min(samples), Max: floats.Max(samples)}

	p.mu.Lock()
	if p.filter.IsZero() {
		p.filter = p.TotalDataRange
	}
	filter := p.filter
	p.mu.Unlock()

	if err := p.FullHistogram.Compute(samples); err != nil {
		return err
	}
	if err := p.FiltHistogram.ComputeFiltered(samples, filter); err != nil {
		return err
	}

	if len(p.AvgData) != nf {
		p.AvgData = make([]float64, nf)
		p.StdDevData = make([]float64, nf)
		p.FilterFraction = make([]float64, nf)
	}
	vals := make([]float64, len(p.Instances))
	for f := 0; f < nf; f++ {
		in := 0
		for i, inst := range p.Instances {
			vals[i] = inst.Data[f]
			if filter.Contains(vals[i]) {
				in++
			}
		}
		p.AvgData[f], p.StdDevData[f] = stat.PopMeanStdDev(vals, nil)
		p.FilterFraction[f] = float64(in) / float64(len(vals))
	}
	p.AvgDataRange = Range{Min: floats.Min(p.AvgData[beg:end]), Max: floats.Max(p.AvgData[beg:end])}
	return nil
}

//frameSpan returns the frames [beg, end) selected by r out of n. A zero r selects all.
func frameSpan(r Range, n int) (int, int) {
	if r.IsZero() {
		return 0, n
	}
	beg := int(math.Max(0, math.Floor(r.Min)))
	end := int(math.Min(float64(n), math.Ceil(r.Max)))
	if end < beg {
		end = beg
	}
	return beg, end
}
