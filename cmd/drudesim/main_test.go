package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/drudesim/internal/config"
)

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*config.Config) bool
	}{
		{"defaults", nil, func(c *config.Config) bool {
			return c.Drude && c.Thole && c.IntraEx && c.EpsilonR == 1 && c.MassDrude == 0.8
		}},
		{"no-drude", []string{"--no-drude"}, func(c *config.Config) bool {
			return !c.Drude && c.Thole
		}},
		{"last thole flag wins", []string{"--thole", "--no-thole"}, func(c *config.Config) bool {
			return !c.Thole
		}},
		{"last drude flag wins", []string{"--no-drude", "--drude"}, func(c *config.Config) bool {
			return c.Drude
		}},
		{"explicit value on negation", []string{"--no-intra_ex=false"}, func(c *config.Config) bool {
			return c.IntraEx
		}},
		{"no-intra_ex", []string{"--no-intra_ex"}, func(c *config.Config) bool {
			return !c.IntraEx
		}},
		{"scalars", []string{"--epsilon_r", "2", "--mass_drude", "0.5", "--walltime", "0.25", "--cycles", "7"}, func(c *config.Config) bool {
			return c.EpsilonR == 2 && c.MassDrude == 0.5 && c.Walltime == 0.25 && c.Cycles == 7
		}},
		{"preset", []string{"--preset", "quick", "--seed", "7"}, func(c *config.Config) bool {
			return c.System.IonPairs == 16 && c.Seed == 7
		}},
		{"switches", []string{"--visual", "--gpu", "--compress", "--path", "out"}, func(c *config.Config) bool {
			return c.Visual && c.GPU && c.Compress && c.Path == "out"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, configFile = "", ""
			cmd := newRootCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := resolveConfig(cmd)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestResolveConfigFileUnderFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("epsilon_r: 3\nthole: false\nseed: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}
	preset, configFile = "", ""
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", path, "--seed", "5", "--thole"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EpsilonR != 3 || cfg.Seed != 5 || !cfg.Thole {
		t.Errorf("got epsilon_r %g, seed %d, thole %v", cfg.EpsilonR, cfg.Seed, cfg.Thole)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	preset, configFile = "", ""
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--mass_drude", "2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}

	cmd = newRootCmd()
	if err := cmd.ParseFlags([]string{"--preset", "nope"}); err != nil {
		t.Fatal(err)
	}
	defer func() { preset = "" }()
	if _, err := resolveConfig(cmd); err == nil || !strings.Contains(err.Error(), "unknown preset") {
		t.Errorf("err = %v, want unknown preset", err)
	}
}

func TestPrintMetricsSorted(t *testing.T) {
	var buf bytes.Buffer
	printMetrics(&buf, map[string]float64{"temperature": 3, "energy": 1, "energy_drift": 2})
	want := "  energy: 1.000000\n  energy_drift: 2.000000\n  temperature: 3.000000\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
