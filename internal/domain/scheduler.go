package domain

import (
	"context"
	"time"
)

// ArtifactHandle identifies a registered schedulable artifact.
type ArtifactHandle struct {
	ID         string
	Name       string
	Backend    string
	ScriptPath string // only set by the task backend
}

// Scheduler abstracts the execution backend (OS task scheduler or database
// agent job). Both implementations self-remove after the terminal step runs
// and export a run-history report before removal.
type Scheduler interface {
	// Kind names the backend ("task" or "agent").
	Kind() string

	// CleanupCommand returns the backend's terminal-step command: export
	// run history to the report file under destDir, then remove the
	// artifact itself.
	CleanupCommand(jobName, destDir, reportFile string) string

	// Exists reports whether an artifact of the given name is already
	// registered. Used by the name-uniqueness precondition check.
	Exists(ctx context.Context, name string) (bool, error)

	// Create registers the plan as a schedulable artifact. Rejection is
	// fatal to the run, never retried interactively.
	Create(ctx context.Context, plan *Plan) (*ArtifactHandle, error)

	// AttachOneTimeTrigger attaches a single future-time trigger. Attach is
	// idempotent by the timestamp-derived trigger name.
	AttachOneTimeTrigger(ctx context.Context, h *ArtifactHandle, moment time.Time) error

	// Describe reads back what was persisted so the final report doubles as
	// a verification step.
	Describe(ctx context.Context, h *ArtifactHandle) (*PlanSummary, error)
}

// SchedulerFactory binds a backend to the validated target host.
type SchedulerFactory func(host string) Scheduler
