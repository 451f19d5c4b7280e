/*
 * statsplot.go, part of mdstats.
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

//Package statsplot draws properties to PNG files.
package statsplot

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	stats "github.com/rmera/mdstats"
)

//Visualizer writes, for each property it gets, <name>_timeline.png
//if the timeline is enabled and <name>_distribution.png if the distribution is.
type Visualizer struct {
	Dir    string
	Style  *stats.VisualizationStyle //DefaultStyle if nil
	Width  vg.Length
	Height vg.Length
}

//New returns a visualizer writing in dir, with the colors in style, which can be nil.
func New(dir string, style *stats.VisualizationStyle) *Visualizer {
	return &Visualizer{Dir: dir, Style: style, Width: 5 * vg.Inch, Height: 4 * vg.Inch}
}

//TimelineFile returns the name of the timeline plot for the property name.
func (V *Visualizer) TimelineFile(name string) string {
	return filepath.Join(V.Dir, name+"_timeline.png")
}

//DistributionFile returns the name of the distribution plot for the property name.
func (V *Visualizer) DistributionFile(name string) string {
	return filepath.Join(V.Dir, name+"_distribution.png")
}

func (V *Visualizer) style() *stats.VisualizationStyle {
	if V.Style != nil {
		return V.Style
	}
	s := stats.DefaultStyle()
	return &s
}

//Visualize implements stats.Visualizer.
func (V *Visualizer) Visualize(p *stats.Property, dyn stats.Dynamic) error {
	if p.EnableTimeline {
		if err := V.Timeline(p); err != nil {
			return err
		}
	}
	if p.EnableDistribution {
		if err := V.Distribution(p); err != nil {
			return err
		}
	}
	return nil
}

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func axisLabel(p *stats.Property) string {
	if p.Unit == "" {
		return p.Name()
	}
	return fmt.Sprintf("%s (%s)", p.Name(), p.Unit)
}

//Timeline plots every instance of p against the frame number, with
//the average on top and the filter limits as horizontal lines.
func (V *Visualizer) Timeline(p *stats.Property) error {
	if len(p.AvgData) == 0 {
		return fmt.Errorf("statsplot.Timeline: no data for %s", p.Name())
	}
	st := V.style()
	pl := basicPlot(p.Args(), "Frame", axisLabel(p))
	for _, inst := range p.Instances {
		l, err := plotter.NewLine(frameXYs(inst.Data))
		if err != nil {
			return fmt.Errorf("statsplot.Timeline: %w", err)
		}
		l.Color = st.Line()
		pl.Add(l)
	}
	avg, err := plotter.NewLine(frameXYs(p.AvgData))
	if err != nil {
		return fmt.Errorf("statsplot.Timeline: %w", err)
	}
	avg.Color = st.PointColor(0)
	avg.Width = vg.Points(1.5)
	pl.Add(avg)
	pl.Legend.Add("average", avg)

	f := p.Filter()
	if !f.IsZero() && f != p.TotalDataRange {
		last := float64(len(p.AvgData) - 1)
		for i, y := range []float64{f.Min, f.Max} {
			l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: y}, {X: last, Y: y}})
			if err != nil {
				return fmt.Errorf("statsplot.Timeline: %w", err)
			}
			l.Color = st.PointColor(1)
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			pl.Add(l)
			if i == 0 {
				pl.Legend.Add("filter", l)
			}
		}
	}
	if err := pl.Save(V.Width, V.Height, V.TimelineFile(p.Name())); err != nil {
		return fmt.Errorf("statsplot.Timeline: %w", err)
	}
	return nil
}

//Distribution plots the full histogram of p and, if it differs, the filtered one.
func (V *Visualizer) Distribution(p *stats.Property) error {
	if p.FullHistogram == nil || p.FullHistogram.NumSamples == 0 {
		return fmt.Errorf("statsplot.Distribution: no histogram for %s", p.Name())
	}
	st := V.style()
	pl := basicPlot(p.Args(), axisLabel(p), "Frequency")
	full, err := histLine(p.FullHistogram.Bins, p.FullHistogram.BinCenter, st.PointColor(0))
	if err != nil {
		return err
	}
	pl.Add(full)
	pl.Legend.Add("full", full)
	filt := p.FiltHistogram
	if filt != nil && filt.NumSamples > 0 && filt.NumSamples != p.FullHistogram.NumSamples {
		l, err := histLine(filt.Bins, filt.BinCenter, st.PointColor(1))
		if err != nil {
			return err
		}
		pl.Add(l)
		pl.Legend.Add("filtered", l)
	}
	if err := pl.Save(V.Width, V.Height, V.DistributionFile(p.Name())); err != nil {
		return fmt.Errorf("statsplot.Distribution: %w", err)
	}
	return nil
}

func histLine(bins []float64, center func(int) float64, c color.NRGBA) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(bins))
	for i, v := range bins {
		xys[i].X = center(i)
		xys[i].Y = v
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("statsplot.Distribution: %w", err)
	}
	l.StepStyle = plotter.MidStep
	l.Color = c
	fill := c
	fill.A /= 3
	l.FillColor = fill
	return l, nil
}

func frameXYs(data []float64) plotter.XYs {
	xys := make(plotter.XYs, len(data))
	for i, v := range data {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	return xys
}
