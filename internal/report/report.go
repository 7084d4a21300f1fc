// Package report collects the outcome of a test and seeding run and renders it as
// text, an xlsx workbook and an email.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StepResult is the outcome of one step of a resource test chain
type StepResult struct {
	Resource   string
	Step       string
	Passed     bool
	StatusCode int
	Detail     string
	Duration   time.Duration
}

// SeedResult counts the records created for one resource during seeding
type SeedResult struct {
	Resource  string
	Requested int
	Created   int
	Failed    int
	Skipped   bool
}

type Report struct {
	RunID     string
	StartedAt time.Time
	Steps     []StepResult
	Seeds     []SeedResult
}

func New() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

func (r *Report) Record(step StepResult) {
	r.Steps = append(r.Steps, step)
}

func (r *Report) RecordSeed(result SeedResult) {
	r.Seeds = append(r.Seeds, result)
}

// FailedSteps returns the steps that did not pass, in run order
func (r *Report) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.Passed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Failed reports whether any step failed or any seed item could not be created
func (r *Report) Failed() bool {
	if len(r.FailedSteps()) > 0 {
		return true
	}
	for _, s := range r.Seeds {
		if s.Failed > 0 || s.Skipped {
			return true
		}
	}
	return false
}

func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s started %s\n", r.RunID, r.StartedAt.Format(time.RFC3339))

	if len(r.Steps) > 0 {
		failed := r.FailedSteps()
		fmt.Fprintf(&b, "Steps: %d run, %d passed, %d failed\n", len(r.Steps), len(r.Steps)-len(failed), len(failed))
		for _, s := range failed {
			fmt.Fprintf(&b, "  FAILED %s %s", s.Resource, s.Step)
			if s.StatusCode != 0 {
				fmt.Fprintf(&b, " (status %d)", s.StatusCode)
			}
			if s.Detail != "" {
				fmt.Fprintf(&b, ": %s", s.Detail)
			}
			b.WriteString("\n")
		}
	}

	for _, s := range r.Seeds {
		if s.Skipped {
			fmt.Fprintf(&b, "Seeded %s: skipped\n", s.Resource)
			continue
		}
		fmt.Fprintf(&b, "Seeded %s: %d/%d created, %d failed\n", s.Resource, s.Created, s.Requested, s.Failed)
	}
	return b.String()
}
