package engine

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"satchel/pkg/fileutil"
)

// Report is the machine-readable record of one run, written for the
// invoking scheduler to inspect. The caller never needs to parse
// free-text logs to learn which destination failed and why.
type Report struct {
	StartedAt      time.Time           `json:"started_at"`
	FinishedAt     time.Time           `json:"finished_at"`
	ArchiveName    string              `json:"archive_name"`
	OverallSuccess bool                `json:"overall_success"`
	Destinations   []DestinationReport `json:"destinations"`
}

// DestinationReport records one destination leg.
type DestinationReport struct {
	Kind             string   `json:"kind"`
	Success          bool     `json:"success"`
	FinalPath        string   `json:"final_path,omitempty"`
	Error            string   `json:"error,omitempty"`
	Removed          []string `json:"removed,omitempty"`
	RotationWarnings []string `json:"rotation_warnings,omitempty"`
}

// Report converts the aggregate into its serializable form.
func (a Aggregate) Report() Report {
	r := Report{
		StartedAt:      a.StartedAt,
		FinishedAt:     a.FinishedAt,
		ArchiveName:    a.ArchiveName,
		OverallSuccess: a.OK(),
	}
	for _, o := range a.Outcomes {
		dr := DestinationReport{
			Kind:             string(o.Kind),
			Success:          o.Success(),
			FinalPath:        o.FinalPath,
			Removed:          o.Removed,
			RotationWarnings: o.RotationWarnings,
		}
		if o.Err != nil {
			dr.Error = o.Err.Error()
		}
		r.Destinations = append(r.Destinations, dr)
	}
	return r
}

// WriteReport persists the report as JSON at path, creating the parent
// directory if needed. The write is atomic so a crash mid-write never
// leaves a truncated report for the scheduler to misread.
func WriteReport(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating report directory")
	}
	return fileutil.AtomicWriteJSON(path, r)
}
