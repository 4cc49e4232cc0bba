package config

import "sort"

// Presets are named starting points. GetPreset returns copies, so callers
// may modify the result.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"no-drude": func() *Config {
		c := DefaultConfig()
		c.Drude, c.Thole, c.IntraEx = false, false, false
		return c
	}(),
	"no-thole": func() *Config {
		c := DefaultConfig()
		c.Thole = false
		return c
	}(),
	"quick": func() *Config {
		c := DefaultConfig()
		c.System.IonPairs = 16
		c.System.Density = 0.2
		c.Cycles = 5
		c.Minimize.MaxSteps = 5000
		return c
	}(),
	"smoke": func() *Config {
		c := DefaultConfig()
		c.System.IonPairs = 8
		c.System.Density = 0.1
		c.Cycles = 1
		c.Minimize.MaxSteps = 2000
		c.Schedule = ScheduleConfig{
			WarmupSteps:    50,
			WarmupDtFactor: 0.1,
			TimingSteps:    20,
			EquilCycles:    2,
			EquilSteps:     10,
			CycleSteps:     20,
			RDFBins:        20,
			VisualSteps:    10,
		}
		return c
	}(),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
