package stats

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

//Options contains the settings for a Stats object. They
//can be given directly or read from a YAML file.
type Options struct {
	NumBins   int                `yaml:"num_bins"`   //bins for the property histograms
	Workers   int                `yaml:"workers"`    //goroutines for the per-property statistics
	VolumeDim [3]int             `yaml:"volume_dim"` //dimensions of the shared density volume
	Style     VisualizationStyle `yaml:"style"`
	LogLevel  string             `yaml:"log_level"`

	//Not read from files.
	Logger     *slog.Logger          `yaml:"-"` //if nil, one is built from LogLevel
	Registerer prometheus.Registerer `yaml:"-"` //if nil, a private registry is used
}

//DefaultOptions returns reasonable options: 128 bins, all logical
//CPUs and a 128^3 density volume.
func DefaultOptions() *Options {
	r := new(Options)
	r.NumBins = 128
	r.Workers = runtime.NumCPU()
	r.VolumeDim = [3]int{128, 128, 128}
	r.Style = DefaultStyle()
	r.LogLevel = "info"
	return r
}

//ParseOptions reads options from YAML. Keys not present in b
//keep their default values.
func ParseOptions(b []byte) (*Options, error) {
	o := DefaultOptions()
	if err := yaml.Unmarshal(b, o); err != nil {
		return nil, newError(err, "ParseOptions", "can't parse options")
	}
	if err := o.validate(); err != nil {
		return nil, errDecorate(err, "ParseOptions")
	}
	return o, nil
}

//LoadOptions reads the options from the YAML file name.
func LoadOptions(name string) (*Options, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, newError(err, "LoadOptions", "can't read options file %s", name)
	}
	o, err := ParseOptions(b)
	if err != nil {
		return nil, errDecorate(err, "LoadOptions")
	}
	return o, nil
}

func (O *Options) validate() error {
	if O.NumBins <= 0 {
		return newError(nil, "validate", "num_bins must be positive, got %d", O.NumBins)
	}
	for _, d := range O.VolumeDim {
		if d < 0 {
			return newError(nil, "validate", "volume_dim can't be negative: %v", O.VolumeDim)
		}
	}
	if O.Workers <= 0 {
		O.Workers = 1
	}
	return nil
}

//logger returns the logger set in the options or a text logger to stderr
//at the level in LogLevel.
func (O *Options) logger() *slog.Logger {
	if O.Logger != nil {
		return O.Logger
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(O.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func (O *Options) String() string {
	return fmt.Sprintf("bins: %d, workers: %d, volume: %v, log: %s", O.NumBins, O.Workers, O.VolumeDim, O.LogLevel)
}
