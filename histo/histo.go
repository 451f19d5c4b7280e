package histo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

//ErrEmptyData is returned when a histogram is requested for no samples.
var ErrEmptyData = errors.New("mdstats/histo: no data to histogram")

//Range is a closed interval of values. The zero Range is considered unset.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

//IsZero returns true if the range has not been set.
func (R Range) IsZero() bool {
	return R.Min == 0 && R.Max == 0
}

//Contains returns true if v lies in [Min, Max]
func (R Range) Contains(v float64) bool {
	return R.Min <= v && v <= R.Max
}

//Ext returns the extent (Max-Min) of the range.
func (R Range) Ext() float64 {
	return R.Max - R.Min
}

//Clamp returns the range limited to the limits of lim.
func (R Range) Clamp(lim Range) Range {
	return Range{Min: clamp(R.Min, lim.Min, lim.Max), Max: clamp(R.Max, lim.Min, lim.Max)}
}

func (R Range) String() string {
	return fmt.Sprintf("[%4.2f, %4.2f]", R.Min, R.Max)
}

//Histogram is a fixed-width histogram. The number of bins is set when
//the histogram is created and does not change afterwards.
type Histogram struct {
	Bins       []float64
	ValueRange Range //the values spanned by the data last binned
	BinRange   Range //the bins (as indexes, Max exclusive) active under the current filter
	NumSamples int
}

//New returns a histogram with numBins empty bins. It panics
//if numBins is not positive, since that is a programming error.
func New(numBins int) *Histogram {
	if numBins <= 0 {
		panic(fmt.Sprintf("mdstats/histo.New: invalid number of bins %d", numBins))
	}
	H := new(Histogram)
	H.Bins = make([]float64, numBins)
	H.BinRange = Range{0, float64(numBins)}
	return H
}

//Len returns the number of bins
func (H *Histogram) Len() int {
	return len(H.Bins)
}

//Clear zeroes all bins and the sample count. The bins are not reallocated.
func (H *Histogram) Clear() {
	for i := range H.Bins {
		H.Bins[i] = 0
	}
	H.NumSamples = 0
	H.ValueRange = Range{}
	H.BinRange = Range{0, float64(len(H.Bins))}
}

//Compute bins all the values in data. The value range is set to
//the minimum and maximum found in data.
func (H *Histogram) Compute(data []float64) error {
	H.Clear()
	if len(data) == 0 {
		return ErrEmptyData
	}
	H.ValueRange = Range{floats.Min(data), floats.Max(data)}
	for _, v := range data {
		H.Bins[H.binIndex(v)]++
	}
	H.NumSamples = len(data)
	return nil
}

//ComputeFiltered bins only the values in data that are within filter.
//The value range still spans all of data, so the result shares its axis
//with the unfiltered histogram of the same data. NumSamples counts only
//the values that passed the filter.
func (H *Histogram) ComputeFiltered(data []float64, filter Range) error {
	H.Clear()
	if len(data) == 0 {
		return ErrEmptyData
	}
	H.ValueRange = Range{floats.Min(data), floats.Max(data)}
	for _, v := range data {
		if !filter.Contains(v) {
			continue
		}
		H.Bins[H.binIndex(v)]++
		H.NumSamples++
	}
	n := float64(len(H.Bins))
	ext := H.ValueRange.Ext()
	if ext <= 0 {
		H.BinRange = Range{0, 1}
		return nil
	}
	beg := math.Floor((filter.Min - H.ValueRange.Min) / ext * n)
	end := math.Ceil((filter.Max - H.ValueRange.Min) / ext * n)
	H.BinRange = Range{clamp(beg, 0, n), clamp(end, 0, n)}
	return nil
}

//binIndex returns the bin where v goes, given the current value range.
func (H *Histogram) binIndex(v float64) int {
	n := len(H.Bins)
	ext := H.ValueRange.Ext()
	if ext <= 0 {
		return 0 //degenerate data, everything goes in the first bin
	}
	i := int(math.Floor((v - H.ValueRange.Min) / ext * float64(n)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

//Normalize rescales the bins so the largest one is 1.0.
//It does nothing for empty histograms.
func (H *Histogram) Normalize() {
	if H.NumSamples == 0 {
		return
	}
	max := H.Max()
	if max <= 0 {
		return
	}
	floats.Scale(1/max, H.Bins)
}

//Max returns the height of the tallest bin
func (H *Histogram) Max() float64 {
	if len(H.Bins) == 0 {
		return 0
	}
	return floats.Max(H.Bins)
}

func (H *Histogram) Sum() float64 {
	return floats.Sum(H.Bins)
}

//BinCenter returns the value at the center of the ith bin.
func (H *Histogram) BinCenter(i int) float64 {
	w := H.ValueRange.Ext() / float64(len(H.Bins))
	return H.ValueRange.Min + (float64(i)+0.5)*w
}

//CopyBins copies the bins into dest, if given and large enough, or into a new slice.
func (H *Histogram) CopyBins(dest ...[]float64) []float64 {
	var d []float64
	if len(dest) > 0 && len(dest[0]) >= len(H.Bins) {
		d = dest[0][:len(H.Bins)]
	} else {
		d = make([]float64, len(H.Bins))
	}
	copy(d, H.Bins)
	return d
}

//String returns a 2-line representation of the histogram.
func (H *Histogram) String() string {
	ret := fmt.Sprintf("Samples: %d, Values: %s, Bins: %s\n", H.NumSamples, H.ValueRange, H.BinRange)
	h := make([]string, 0, len(H.Bins))
	for _, v := range H.Bins {
		h = append(h, fmt.Sprintf("%7.2f", v))
	}
	return ret + strings.Join(h, " ")
}

func (H *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Bins       []float64 `json:"bins"`
		ValueRange Range     `json:"value_range"`
		BinRange   Range     `json:"bin_range"`
		NumSamples int       `json:"num_samples"`
	}{
		Bins:       H.Bins,
		ValueRange: H.ValueRange,
		BinRange:   H.BinRange,
		NumSamples: H.NumSamples,
	})
}

func (H *Histogram) UnmarshalJSON(b []byte) error {
	var a struct {
		Bins       []float64 `json:"bins"`
		ValueRange Range     `json:"value_range"`
		BinRange   Range     `json:"bin_range"`
		NumSamples int       `json:"num_samples"`
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	H.Bins = a.Bins
	H.ValueRange = a.ValueRange
	H.BinRange = a.BinRange
	H.NumSamples = a.NumSamples
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
