// Package storage keeps a directory of finished runs: one folder per run
// holding metadata.json and the sampled energy series.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/drudesim/internal/config"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Run status values.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

type RunMetadata struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Config    *config.Config `json:"config"`

	NumParticles int     `json:"num_particles"`
	BoxLength    float64 `json:"box_length"`
	NsPerDay     float64 `json:"ns_per_day"`
	Cycles       int     `json:"cycles"`
	Steps        int     `json:"steps"`
	SimTimeNs    float64 `json:"sim_time_ns"`
	MinimizeFrom float64 `json:"minimize_energy_before"`
	MinimizeTo   float64 `json:"minimize_energy_after"`

	Trajectory string             `json:"trajectory,omitempty"`
	RDF        string             `json:"rdf,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// EnergySample is one row of the energy series, in kJ/mol and ns.
type EnergySample struct {
	TimeNs      float64
	Total       float64
	Kinetic     float64
	LJ          float64
	Coulomb     float64
	Thole       float64
	Bonded      float64
	Temperature float64
}

var energyHeader = []string{"time_ns", "total", "kinetic", "lj", "coulomb", "thole", "bonded", "temperature"}

func (e EnergySample) row() []string {
	vals := []float64{e.TimeNs, e.Total, e.Kinetic, e.LJ, e.Coulomb, e.Thole, e.Bonded, e.Temperature}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}

// NewRunID derives a run id from the start time.
func NewRunID(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%03d", prefix, t.Format("20060102-150405"), t.Nanosecond()/1e6)
}

// Save writes the metadata and energy series of a run. An empty meta.ID is
// filled in.
func (s *Store) Save(meta *RunMetadata, energies []EnergySample) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = NewRunID("bmimpf6", meta.Timestamp)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "energies.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(energyHeader); err != nil {
		return "", err
	}
	for _, e := range energies {
		if err := w.Write(e.row()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEnergies reads the energy series back. Unparsable rows are skipped.
func (s *Store) LoadEnergies(runID string) ([]EnergySample, error) {
	csvPath := filepath.Join(s.baseDir, runID, "energies.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([]EnergySample, 0, len(records))
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != len(energyHeader) {
			continue
		}
		var vals [8]float64
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		out = append(out, EnergySample{
			TimeNs: vals[0], Total: vals[1], Kinetic: vals[2], LJ: vals[3],
			Coulomb: vals[4], Thole: vals[5], Bonded: vals[6], Temperature: vals[7],
		})
	}

	return out, nil
}
