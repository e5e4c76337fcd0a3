package writers

import (
	"time"

	"github.com/google/uuid"

	"contactmap/internal/config"
	"contactmap/internal/pipeline"
)

// Manifest describes one run next to its arrays.
type Manifest struct {
	RunID     string         `json:"run_id"`
	Version   string         `json:"version"`
	Created   time.Time      `json:"created"`
	Dataset   string         `json:"dataset"`
	Total     int            `json:"total"`
	Kept      int            `json:"kept"`
	Skipped   int            `json:"skipped"`
	Dropped   int            `json:"dropped_at_load"`
	Reasons   map[string]int `json:"skip_reasons"`
	Classes   []string       `json:"classes"`
	Config    config.Config  `json:"config"`
	Artifacts []string       `json:"artifacts"`
}

// NewManifest stamps a fresh run id. dropped counts rows rejected while
// loading the dataset; they are included in Total and Skipped.
func NewManifest(version, dataset string, cfg config.Config, sum pipeline.Summary, dropped int, classes []string) Manifest {
	return Manifest{
		RunID:     uuid.NewString(),
		Version:   version,
		Created:   time.Now().UTC(),
		Dataset:   dataset,
		Total:     sum.Total + dropped,
		Kept:      sum.Kept,
		Skipped:   sum.Skipped + dropped,
		Dropped:   dropped,
		Reasons:   sum.Reasons(),
		Classes:   classes,
		Config:    cfg,
		Artifacts: Artifacts(),
	}
}
