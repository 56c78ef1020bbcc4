package domain

import "time"

// Step is one entry in a Plan. Edges reference other steps by name; an
// empty edge means the step is terminal.
type Step struct {
	Name       string
	Database   string
	Command    string
	BackupFile string
	OnSuccess  string
	OnFailure  string
}

// Plan is the ordered step graph built before registration. It is built
// once and never mutated afterwards; adapters only read it.
type Plan struct {
	JobName     string
	Description string
	Instance    string
	Destination string
	ReportPath  string
	Steps       []Step
	Cleanup     Step
}

// AllSteps returns the backup steps followed by the terminal cleanup step,
// in execution order.
func (p *Plan) AllSteps() []Step {
	steps := make([]Step, 0, len(p.Steps)+1)
	steps = append(steps, p.Steps...)
	return append(steps, p.Cleanup)
}

type StepSummary struct {
	Name    string
	Command string
}

// PlanSummary is the read-back of a registered artifact, produced from the
// backend's persisted state rather than from the in-memory Plan.
type PlanSummary struct {
	Artifact        string
	Backend         string
	Steps           []StepSummary
	ScheduleEnabled bool
	ScheduleType    string
	StartAt         time.Time
}
