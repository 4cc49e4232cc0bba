// Package config holds the run parameters of a BMIM PF6 simulation and
// their YAML form.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/drudesim/internal/forcefield"
	"github.com/san-kum/drudesim/internal/units"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEpsilonR    = 1.0
	DefaultMassDrude   = 0.8
	DefaultWalltime    = 1.0
	DefaultPath        = "./bmimpf6_bulk/"
	DefaultSeed        = 42
	DefaultIonPairs    = 100
	DefaultDensity     = 0.5
	DefaultTemperature = 353.0
	DefaultTempDrude   = 1.0
	DefaultTimeStepFs  = 1.0
	DefaultGammaCOM    = 1.0
	DefaultSkin        = 0.4
	DefaultMinCut      = 3.5
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	EpsilonR  float64 `yaml:"epsilon_r"`
	MassDrude float64 `yaml:"mass_drude"`
	// Walltime is the integration budget in hours. It sets the number of
	// production cycles unless Cycles is positive.
	Walltime float64 `yaml:"walltime"`
	Cycles   int     `yaml:"cycles"`
	Drude    bool    `yaml:"drude"`
	Thole    bool    `yaml:"thole"`
	IntraEx  bool    `yaml:"intra_ex"`
	Visual   bool    `yaml:"visual"`
	GPU      bool    `yaml:"gpu"`
	Path     string  `yaml:"path"`
	Compress bool    `yaml:"compress"`
	Seed     int64   `yaml:"seed"`
	LogLevel string  `yaml:"log_level"`

	System         SystemConfig         `yaml:"system"`
	Minimize       MinimizeConfig       `yaml:"minimize"`
	Electrostatics ElectrostaticsConfig `yaml:"electrostatics"`
	Schedule       ScheduleConfig       `yaml:"schedule"`
}

type SystemConfig struct {
	IonPairs         int     `yaml:"ion_pairs"`
	Density          float64 `yaml:"density"`
	Temperature      float64 `yaml:"temperature"`
	TemperatureDrude float64 `yaml:"temperature_drude"`
	TimeStepFs       float64 `yaml:"time_step_fs"`
	GammaCOM         float64 `yaml:"gamma_com"`
	Skin             float64 `yaml:"skin"`
	MinGlobalCut     float64 `yaml:"min_global_cut"`
}

type MinimizeConfig struct {
	FMax            float64 `yaml:"f_max"`
	Gamma           float64 `yaml:"gamma"`
	MaxDisplacement float64 `yaml:"max_displacement"`
	MaxSteps        int     `yaml:"max_steps"`
}

type ElectrostaticsConfig struct {
	Accuracy float64 `yaml:"accuracy"`
	// MaxCutoff caps the real-space cutoff, which is otherwise half the box.
	MaxCutoff float64 `yaml:"max_cutoff"`
}

type ScheduleConfig struct {
	WarmupSteps    int     `yaml:"warmup_steps"`
	WarmupDtFactor float64 `yaml:"warmup_dt_factor"`
	TimingSteps    int     `yaml:"timing_steps"`
	EquilCycles    int     `yaml:"equil_cycles"`
	EquilSteps     int     `yaml:"equil_steps"`
	CycleSteps     int     `yaml:"cycle_steps"`
	RDFBins        int     `yaml:"rdf_bins"`
	VisualSteps    int     `yaml:"visual_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		EpsilonR:  DefaultEpsilonR,
		MassDrude: DefaultMassDrude,
		Walltime:  DefaultWalltime,
		Drude:     true,
		Thole:     true,
		IntraEx:   true,
		Path:      DefaultPath,
		Seed:      DefaultSeed,
		LogLevel:  "info",
		System: SystemConfig{
			IonPairs:         DefaultIonPairs,
			Density:          DefaultDensity,
			Temperature:      DefaultTemperature,
			TemperatureDrude: DefaultTempDrude,
			TimeStepFs:       DefaultTimeStepFs,
			GammaCOM:         DefaultGammaCOM,
			Skin:             DefaultSkin,
			MinGlobalCut:     DefaultMinCut,
		},
		Minimize: MinimizeConfig{
			FMax:            5.0,
			Gamma:           0.01,
			MaxDisplacement: 0.01,
			MaxSteps:        100000,
		},
		Electrostatics: ElectrostaticsConfig{
			Accuracy:  1e-3,
			MaxCutoff: 12.0,
		},
		Schedule: ScheduleConfig{
			WarmupSteps:    1000,
			WarmupDtFactor: 0.1,
			TimingSteps:    1000,
			EquilCycles:    100,
			EquilSteps:     10,
			CycleSteps:     1000,
			RDFBins:        100,
			VisualSteps:    10,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(DefaultConfig(), path)
}

// LoadOnto reads path over a copy of base. Keys missing from the file keep
// the values of base.
func LoadOnto(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// BoxLength is the cubic box edge for the configured system.
func (c *Config) BoxLength() float64 {
	return units.BoxLength(c.System.IonPairs, c.System.Density)
}

// Validate rejects values the run cannot start with.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"epsilon_r", c.EpsilonR},
		{"mass_drude", c.MassDrude},
		{"system.density", c.System.Density},
		{"system.temperature", c.System.Temperature},
		{"system.temperature_drude", c.System.TemperatureDrude},
		{"system.time_step_fs", c.System.TimeStepFs},
		{"minimize.gamma", c.Minimize.Gamma},
		{"minimize.max_displacement", c.Minimize.MaxDisplacement},
		{"electrostatics.accuracy", c.Electrostatics.Accuracy},
		{"electrostatics.max_cutoff", c.Electrostatics.MaxCutoff},
		{"schedule.warmup_dt_factor", c.Schedule.WarmupDtFactor},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, p.name, p.v)
		}
	}
	counts := []struct {
		name string
		v    int
	}{
		{"system.ion_pairs", c.System.IonPairs},
		{"schedule.timing_steps", c.Schedule.TimingSteps},
		{"schedule.cycle_steps", c.Schedule.CycleSteps},
		{"schedule.rdf_bins", c.Schedule.RDFBins},
	}
	for _, p := range counts {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, p.name, p.v)
		}
	}
	switch {
	case c.Electrostatics.Accuracy >= 1:
		return fmt.Errorf("%w: electrostatics.accuracy must be below 1", ErrInvalid)
	case c.Walltime < 0 || c.Cycles < 0:
		return fmt.Errorf("%w: walltime and cycles must not be negative", ErrInvalid)
	case c.Path == "":
		return fmt.Errorf("%w: empty output path", ErrInvalid)
	}
	if c.Drude {
		// the lightest core is a virtual cation bead of unit mass
		if c.MassDrude >= 1 {
			return fmt.Errorf("%w: mass_drude %g must be below the virtual bead mass 1", ErrInvalid, c.MassDrude)
		}
	}

	l := c.BoxLength()
	table := forcefield.NewTable()
	for _, s := range table.Species() {
		if cut := table.Cutoff(s.Name); cut > l/2 {
			return fmt.Errorf("%w: box length %.3f too small for the %s cutoff %.3f; raise ion_pairs or lower density",
				ErrInvalid, l, s.Name, cut)
		}
	}
	return nil
}
