package stats

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	v3 "github.com/rmera/mdstats/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//linearDynamic returns a molecule with nres residues of one atom each,
//and nframes frames. Atom i is at (i, f, 0) in the frame f.
func linearDynamic(Te *testing.T, nres, nframes int) *Molecule {
	ats := make([]*Atom, nres)
	for i := range ats {
		ats[i] = &Atom{Name: "CA", ID: i + 1, MolID: i + 1, Molname: "ALA", Chain: "A", Symbol: "C"}
	}
	top, err := NewTopology(ats)
	require.NoError(Te, err)
	coords := make([]*v3.Matrix, nframes)
	for f := range coords {
		coords[f] = v3.Zeros(nres)
		for i := 0; i < nres; i++ {
			coords[f].Set(i, 0, float64(i))
			coords[f].Set(i, 1, float64(f))
		}
	}
	mol, err := NewMolecule(top, coords)
	require.NoError(Te, err)
	return mol
}

func testOptions() *Options {
	o := DefaultOptions()
	o.NumBins = 16
	o.Workers = 2
	o.VolumeDim = [3]int{4, 4, 4}
	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	o.Registerer = prometheus.NewRegistry()
	return o
}

//seriesCommand gives the instance i the value i*10+f at the frame f.
func seriesCommand(p *Property, req *Request) error {
	if req.Setup() {
		n, err := req.Structures(req.Args...)
		if err != nil {
			return err
		}
		p.InitInstances(n, req.NumFrames())
		return nil
	}
	for i := range p.Instances {
		p.Instances[i].Data[req.Frame] = float64(i*10 + req.Frame)
	}
	return nil
}

//sumCommand adds the first instance of the properties named in its arguments.
func sumCommand(p *Property, req *Request) error {
	if req.Setup() {
		if len(req.Args) == 0 {
			return fmt.Errorf("sum needs at least one property")
		}
		for _, name := range req.Args {
			if _, err := req.Property(name); err != nil {
				return err
			}
		}
		p.InitInstances(1, req.NumFrames())
		return nil
	}
	var s float64
	for _, d := range p.Dependencies {
		s += d.Instances[0].Data[req.Frame]
	}
	p.Instances[0].Data[req.Frame] = s
	return nil
}

func newTestStats(Te *testing.T) *Stats {
	S, err := New(testOptions())
	require.NoError(Te, err)
	require.NoError(Te, S.RegisterCommand("series", ComputeFunc(seriesCommand), nil))
	require.NoError(Te, S.RegisterCommand("sum", ComputeFunc(sumCommand), nil))
	Te.Cleanup(S.Shutdown)
	return S
}

func run(Te *testing.T, S *Stats, dyn Dynamic, frames Range) {
	require.True(Te, S.Update(dyn, frames, nil))
	S.Wait()
	require.Equal(Te, StateFinished, S.LastOutcome())
}

func TestAverages(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 10)
	p, err := S.Create("s", "series resid(1:3)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	require.True(Te, p.Valid(), p.ErrorMessage())
	require.Len(Te, p.Instances, 3)
	std := math.Sqrt(200.0 / 3.0)
	for f := 0; f < 10; f++ {
		assert.InDelta(Te, float64(10+f), p.AvgData[f], 1e-9)
		assert.InDelta(Te, std, p.StdDevData[f], 1e-9)
		assert.Equal(Te, 1.0, p.FilterFraction[f])
	}
	assert.Equal(Te, Range{Min: 0, Max: 29}, p.TotalDataRange)
	assert.Equal(Te, Range{Min: 10, Max: 19}, p.AvgDataRange)
	assert.Equal(Te, p.TotalDataRange, p.Filter())
	assert.Equal(Te, 30, p.FullHistogram.NumSamples)
	assert.Equal(Te, p.FullHistogram.Bins, p.FiltHistogram.Bins)
	assert.False(Te, p.DataDirty())
	assert.False(Te, p.FilterDirty())
	assert.Equal(Te, 1.0, S.FractionDone())
	fmt.Println(p)
}

func TestFilter(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 10)
	p, err := S.Create("s", "series resid(1:3)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	p.SetFilter(Range{Min: 0, Max: 9})
	assert.True(Te, p.FilterDirty())
	assert.False(Te, p.DataDirty())
	require.True(Te, S.Update(mol, Range{}, nil))
	S.Wait()
	for f := 0; f < 10; f++ {
		assert.InDelta(Te, 1.0/3.0, p.FilterFraction[f], 1e-9)
	}
	assert.Equal(Te, 10, p.FiltHistogram.NumSamples)
	assert.Equal(Te, 30, p.FullHistogram.NumSamples)
	assert.False(Te, p.FilterDirty())
}

func TestFrameFilter(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 10)
	p, err := S.Create("s", "series resid(1:3)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{Min: 2, Max: 5})
	assert.Equal(Te, 9, p.FullHistogram.NumSamples)
	assert.Equal(Te, Range{Min: 2, Max: 24}, p.TotalDataRange)
	assert.Equal(Te, 0.0, p.Instances[2].Data[7]) //not computed
	assert.Equal(Te, 24.0, p.Instances[2].Data[4])

	//Widening the filter computes the frames left out before.
	run(Te, S, mol, Range{})
	assert.Equal(Te, Range{Min: 0, Max: 29}, p.TotalDataRange)
	assert.Equal(Te, 27.0, p.Instances[2].Data[7])
	assert.Equal(Te, 17.0, p.AvgData[7])
	assert.Equal(Te, 30, p.FullHistogram.NumSamples)
	frames := testutil.ToFloat64(S.metrics.frames)
	assert.Equal(Te, 3.0+10.0, frames)

	//Narrowing it again needs no new frames.
	run(Te, S, mol, Range{Min: 3, Max: 6})
	assert.Equal(Te, frames, testutil.ToFloat64(S.metrics.frames))
	assert.Equal(Te, Range{Min: 3, Max: 25}, p.TotalDataRange)
	assert.Equal(Te, 27.0, p.Instances[2].Data[7])
}

func TestEmptyRun(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 10)
	assert.True(Te, S.Update(mol, Range{}, nil))
	S.StopAndWait()
	assert.False(Te, S.Running())
	assert.Equal(Te, StateIdle, S.State())
	assert.Equal(Te, 1.0, S.FractionDone())
	//nothing dirty, nothing changed
	assert.False(Te, S.Update(mol, Range{}, nil))
}

func TestStartWithoutDynamic(Te *testing.T) {
	S := newTestStats(Te)
	assert.False(Te, S.Start())
	assert.False(Te, S.Running())
}

func TestOnFinished(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 4)
	_, err := S.Create("s", "series resid(1:2)")
	require.NoError(Te, err)
	called := make(chan struct{})
	require.True(Te, S.Update(mol, Range{}, func() { close(called) }))
	select {
	case <-called:
	case <-time.After(10 * time.Second):
		Te.Fatal("onFinished was not called")
	}
}

func TestIdleAfterDone(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 4)
	_, err := S.Create("s", "series resid(1:2)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	for i := 0; i < 50; i++ {
		S.SetAllFlags(true, false)
		require.True(Te, S.Start())
		S.dmu.Lock()
		done := S.done
		S.dmu.Unlock()
		for S.Running() {
			time.Sleep(10 * time.Microsecond)
		}
		select {
		case <-done:
		default:
			Te.Fatalf("run %d: idle before its worker ended", i)
		}
	}
}

//taggedDynamic can't be compared with ==.
type taggedDynamic struct {
	*Molecule
	tags []string
}

func TestUncomparableDynamic(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 4)
	p, err := S.Create("s", "series resid(1:2)")
	require.NoError(Te, err)
	dyn := taggedDynamic{mol, []string{"x"}}
	run(Te, S, dyn, Range{})
	run(Te, S, dyn, Range{}) //always counts as a new dynamic
	assert.Equal(Te, 13.0, p.Instances[1].Data[3])

	assert.True(Te, sameDynamic(nil, nil))
	assert.True(Te, sameDynamic(mol, mol))
	assert.False(Te, sameDynamic(mol, nil))
	assert.False(Te, sameDynamic(dyn, dyn))
	assert.False(Te, sameDynamic(mol, linearDynamic(Te, 2, 4)))
}

func TestStop(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 1, 200)
	require.NoError(Te, S.RegisterCommand("slow", ComputeFunc(func(p *Property, req *Request) error {
		if req.Setup() {
			p.InitInstances(1, req.NumFrames())
			return nil
		}
		time.Sleep(5 * time.Millisecond)
		p.Instances[0].Data[req.Frame] = 1
		return nil
	}), nil))
	p, err := S.Create("slow", "slow")
	require.NoError(Te, err)
	require.True(Te, S.Update(mol, Range{}, nil))
	require.Eventually(Te, func() bool { return S.FractionDone() > 0 }, 5*time.Second, time.Millisecond)
	S.StopAndWait()
	assert.Equal(Te, StateStopped, S.LastOutcome())
	assert.False(Te, S.Running())
	assert.True(Te, p.DataDirty())
	assert.Less(Te, S.FractionDone(), 1.0)
}

func TestDependencyOrder(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 5)
	//d comes first in the registry, but it needs a and b.
	d, err := S.Create("d", "sum a b")
	require.NoError(Te, err)
	a, err := S.Create("a", "series atom(1)")
	require.NoError(Te, err)
	b, err := S.Create("b", "series atom(2)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	require.True(Te, d.Valid(), d.ErrorMessage())
	assert.Equal(Te, []*Property{a, b}, d.Dependencies)
	for f := 0; f < 5; f++ {
		assert.Equal(Te, float64(2*f), d.Instances[0].Data[f])
	}

	err = S.Remove(a)
	assert.ErrorIs(Te, err, ErrHasDependents)
	assert.NotNil(Te, S.Find("a"))
	require.NoError(Te, S.Remove(d))
	require.NoError(Te, S.Remove(a))
	assert.Equal(Te, []string{"b"}, S.PropertyNames())
}

func TestDirtyPropagation(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 5)
	a, err := S.Create("a", "series atom(1)")
	require.NoError(Te, err)
	d, err := S.Create("d", "sum a")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	d.Instances[0].Data[3] = -1
	S.Clear(a)
	assert.True(Te, a.DataDirty())
	assert.False(Te, d.DataDirty())
	require.True(Te, S.Update(mol, Range{}, nil))
	S.Wait()
	assert.False(Te, d.DataDirty())
	assert.Equal(Te, 3.0, d.Instances[0].Data[3]) //recomputed after a
}

func TestCycle(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 5)
	a, err := S.Create("a", "sum b")
	require.NoError(Te, err)
	b, err := S.Create("b", "sum a")
	require.NoError(Te, err)
	c, err := S.Create("c", "series atom(1)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	assert.False(Te, a.Valid())
	assert.False(Te, b.Valid())
	assert.Contains(Te, a.ErrorMessage(), "cycle")
	assert.True(Te, c.Valid())
	assert.Equal(Te, 4.0, c.Instances[0].Data[4])
	assert.Nil(Te, a.AvgData)
}

func TestInvalidDependency(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 5)
	a, err := S.Create("a", "series atom(9)")
	require.NoError(Te, err)
	d, err := S.Create("d", "sum a")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	assert.False(Te, a.Valid())
	assert.False(Te, d.Valid())
	assert.Contains(Te, d.ErrorMessage(), "not valid")
}

func TestCreate(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 5)
	run(Te, S, mol, Range{})

	p, err := S.Create("x", "nothing atom(1)")
	assert.Nil(Te, p)
	assert.ErrorIs(Te, err, ErrUnknownCommand)

	_, err = S.Create("with space", "series atom(1)")
	assert.ErrorIs(Te, err, ErrInvalidName)
	_, err = S.Create("", "series atom(1)")
	assert.ErrorIs(Te, err, ErrInvalidName)

	p, err = S.Create("x", "series atom(1:2)")
	require.NoError(Te, err)
	assert.True(Te, p.Valid())
	assert.Equal(Te, "series", p.Command())
	assert.Len(Te, p.Instances, 1)
	assert.Len(Te, p.Instances[0].Data, 5) //sized in the setup

	_, err = S.Create("x", "series atom(1)")
	assert.ErrorIs(Te, err, ErrDuplicateName)

	inv, err := S.Create("inverted", "series atom(3:1)")
	require.NoError(Te, err)
	assert.False(Te, inv.Valid())
	assert.Contains(Te, inv.ErrorMessage(), "inverted")

	oob, err := S.Create("oob", "series atom(1:99)")
	require.NoError(Te, err)
	assert.False(Te, oob.Valid())
	assert.Contains(Te, oob.ErrorMessage(), "out of bounds")

	assert.Equal(Te, []string{"x", "inverted", "oob"}, S.PropertyNames())
	assert.NotEqual(Te, p.ID(), inv.ID())

	require.NoError(Te, S.SetArgs(inv, "series atom(1:3)"))
	assert.True(Te, inv.Valid())
	assert.Empty(Te, inv.ErrorMessage())
	assert.ErrorIs(Te, S.SetArgs(oob, "nothing"), ErrUnknownCommand)
	assert.False(Te, oob.Valid())
}

func TestRegisterCommand(Te *testing.T) {
	S := newTestStats(Te)
	err := S.RegisterCommand("series", ComputeFunc(seriesCommand), nil)
	assert.ErrorIs(Te, err, ErrDuplicateCommand)
	assert.Error(Te, S.RegisterCommand("two words", ComputeFunc(seriesCommand), nil))
	assert.Equal(Te, []string{"series", "sum"}, S.Commands())
	assert.Equal(Te, []string{"atom", "resid", "residue", "resname", "chain"}, S.StructureCommands())
}

func TestRegistryOrder(Te *testing.T) {
	S := newTestStats(Te)
	for _, n := range []string{"a", "b", "c"} {
		_, err := S.Create(n, "series atom(1)")
		require.NoError(Te, err)
	}
	require.NoError(Te, S.MoveUp(S.Find("c")))
	assert.Equal(Te, []string{"a", "c", "b"}, S.PropertyNames())
	require.NoError(Te, S.MoveUp(S.Find("a"))) //already first
	require.NoError(Te, S.MoveDown(S.Find("a")))
	assert.Equal(Te, []string{"c", "a", "b"}, S.PropertyNames())
	require.NoError(Te, S.MoveDown(S.Find("b"))) //already last
	assert.Equal(Te, []string{"c", "a", "b"}, S.PropertyNames())
	assert.Nil(Te, S.Find("z"))

	S.RemoveAll()
	assert.Empty(Te, S.Properties())
	assert.ErrorIs(Te, S.MoveUp(&Property{}), ErrNotFound)
}

func TestClear(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 4)
	p, err := S.Create("s", "series resid(1:3)")
	require.NoError(Te, err)
	q, err := S.Create("t", "series resid(1)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	S.Clear(p)
	assert.Nil(Te, p.Instances)
	assert.True(Te, p.DataDirty())
	assert.False(Te, q.DataDirty())
	assert.Equal(Te, "s", p.Name())
	assert.Equal(Te, "series resid(1:3)", p.Args())
	run(Te, S, mol, Range{})
	assert.Len(Te, p.Instances, 3)

	S.ClearAll()
	assert.True(Te, q.DataDirty())
	assert.Nil(Te, q.Instances)
	S.SetAllFlags(false, true)
	assert.True(Te, p.FilterDirty())
}

func TestFailingCommand(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 1, 6)
	require.NoError(Te, S.RegisterCommand("fail", ComputeFunc(func(p *Property, req *Request) error {
		if req.Setup() {
			p.InitInstances(1, req.NumFrames())
			return nil
		}
		if req.Frame == 3 {
			return fmt.Errorf("no luck")
		}
		return nil
	}), nil))
	bad, err := S.Create("bad", "fail")
	require.NoError(Te, err)
	good, err := S.Create("good", "series atom(1)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	assert.False(Te, bad.Valid())
	assert.Contains(Te, bad.ErrorMessage(), "frame 3")
	assert.True(Te, good.Valid())
	assert.Equal(Te, 1.0, S.FractionDone())
	assert.Equal(Te, 1.0, testutil.ToFloat64(S.metrics.computeErrors.WithLabelValues("fail")))
}

func TestMetrics(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 3, 10)
	_, err := S.Create("s", "series resid(1:3)")
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, testutil.ToFloat64(S.metrics.properties))
	run(Te, S, mol, Range{})
	assert.Equal(Te, 1.0, testutil.ToFloat64(S.metrics.runs.WithLabelValues("finished")))
	assert.Equal(Te, 10.0, testutil.ToFloat64(S.metrics.frames))
	assert.Equal(Te, 1.0, testutil.ToFloat64(S.metrics.progress))
	assert.Nil(Te, S.Gatherer()) //the registry came in the options

	o := testOptions()
	o.Registerer = nil
	S2, err := New(o)
	require.NoError(Te, err)
	n, err := testutil.GatherAndCount(S2.Gatherer(), "mdstats_properties")
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)
}

func TestVisualize(Te *testing.T) {
	S := newTestStats(Te)
	mol := linearDynamic(Te, 2, 3)
	var calls atomic.Int32
	vis := VisualizeFunc(func(p *Property, dyn Dynamic) error {
		calls.Add(1)
		if p.Name() == "broken" {
			return fmt.Errorf("can't draw")
		}
		return nil
	})
	require.NoError(Te, S.RegisterCommand("drawn", ComputeFunc(seriesCommand), vis))
	p, err := S.Create("p", "drawn atom(1)")
	require.NoError(Te, err)
	q, err := S.Create("broken", "drawn atom(1)")
	require.NoError(Te, err)
	_, err = S.Create("hidden", "drawn atom(1)")
	require.NoError(Te, err)
	run(Te, S, mol, Range{})
	p.EnableVisualization = true
	q.EnableVisualization = true
	err = S.Visualize(mol)
	assert.Error(Te, err)
	assert.True(Te, strings.Contains(err.Error(), "can't draw"))
	assert.Equal(Te, int32(2), calls.Load())
}
