package migration

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report summarizes one run for humans. It is write-only output: nothing
// ever reads it back, resumability comes from the back-reference lookups.
type Report struct {
	Team       string    `yaml:"team"`
	DryRun     bool      `yaml:"dry_run"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Epics       Counts `yaml:"epics"`
	Stories     Counts `yaml:"stories"`
	Assignments Counts `yaml:"assignments"`

	CreatedIssues []string  `yaml:"created_issues,omitempty"`
	Failures      []Failure `yaml:"failures,omitempty"`
}

// Counts tallies outcomes per entity kind.
type Counts struct {
	Created int `yaml:"created"`
	Skipped int `yaml:"skipped"`
	Failed  int `yaml:"failed"`
}

// Failure records one non-fatal per-item error.
type Failure struct {
	Kind     string `yaml:"kind"`
	SourceID int    `yaml:"source_id"`
	Error    string `yaml:"error"`
}

func newReport(team string, dryRun bool) *Report {
	return &Report{
		Team:      team,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
}

func (r *Report) finish() {
	r.FinishedAt = time.Now().UTC()
}

func (r *Report) fail(kind string, sourceID int, err error) {
	switch kind {
	case "epic":
		r.Epics.Failed++
	case "story":
		r.Stories.Failed++
	}
	r.Failures = append(r.Failures, Failure{Kind: kind, SourceID: sourceID, Error: err.Error()})
}

// Write renders the report as YAML at path.
func (r *Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // Report is not sensitive
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
