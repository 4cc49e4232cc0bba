package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run      *RunMetadata   `json:"run"`
	Energies []EnergySample `json:"energies"`
}

// ExportJSON writes a run and its energy series as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	energies, err := s.LoadEnergies(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Energies: energies})
}
