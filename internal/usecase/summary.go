package usecase

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/mchris2/sqljobctl/internal/domain"
)

// printSummary renders the read-back of the persisted artifact. It prints
// what the backend returned, not the in-memory plan, so the operator sees
// exactly what was registered.
func (uc *Schedule) printSummary(s *domain.PlanSummary) {
	title := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)

	title.Fprintf(uc.out, "\nScheduled %q via %s backend\n", s.Artifact, s.Backend)
	for i, step := range s.Steps {
		fmt.Fprintf(uc.out, "  %2d. %s\n", i+1, step.Name)
		dim.Fprintf(uc.out, "      %s\n", step.Command)
	}

	state := "disabled"
	if s.ScheduleEnabled {
		state = "enabled"
	}
	when := "unknown"
	if !s.StartAt.IsZero() {
		when = s.StartAt.Format(uc.momentLayout)
	}
	fmt.Fprintf(uc.out, "Schedule: %s (%s), fires at %s\n", s.ScheduleType, state, when)
	fmt.Fprintf(uc.out, "The job removes itself after completion and leaves its run report in the backup destination.\n")
}
