package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/drudesim/internal/config"
)

func sampleRun() (*RunMetadata, []EnergySample) {
	meta := &RunMetadata{
		Status:   StatusCompleted,
		Config:   config.GetPreset("smoke"),
		NsPerDay: 1.25,
		Cycles:   3,
		Metrics: map[string]float64{
			"energy": 1.5,
		},
	}
	energies := []EnergySample{
		{TimeNs: 0, Total: -120.5, Kinetic: 30, LJ: -80, Coulomb: -70.5, Temperature: 2.9},
		{TimeNs: 0.001, Total: -118.25, Kinetic: 31.5, LJ: -79, Coulomb: -70.75, Temperature: 3.0},
	}
	return meta, energies
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, energies := sampleRun()
	runID, err := st.Save(meta, energies)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got.Config.Seed != 42 {
		t.Errorf("expected seed 42, got %d", got.Config.Seed)
	}

	if got.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", got.Metrics["energy"])
	}

	if got.Status != StatusCompleted {
		t.Errorf("expected status completed, got %q", got.Status)
	}

	loaded, err := st.LoadEnergies(runID)
	if err != nil {
		t.Fatalf("load energies failed: %v", err)
	}

	if len(loaded) != len(energies) {
		t.Fatalf("expected %d samples, got %d", len(energies), len(loaded))
	}
	for i := range energies {
		if loaded[i] != energies[i] {
			t.Errorf("sample %d = %+v, want %+v", i, loaded[i], energies[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty store failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		meta, energies := sampleRun()
		meta.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if _, err := st.Save(meta, energies); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	// stray files and broken runs are ignored
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if !runs[0].Timestamp.After(runs[2].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	meta, energies := sampleRun()
	runID, err := st.Save(meta, energies)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("exported JSON invalid: %v", err)
	}
	if data.Run.ID != runID || len(data.Energies) != 2 {
		t.Errorf("export = %+v", data)
	}
}

func TestNewRunID(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 5, 250e6, time.UTC)
	if got := NewRunID("bmimpf6", ts); got != "bmimpf6_20240301-123005_250" {
		t.Errorf("NewRunID = %q", got)
	}
}
