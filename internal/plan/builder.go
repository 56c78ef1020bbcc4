// Package plan turns validated inputs into the ordered step graph submitted
// to the scheduler backend.
package plan

import (
	"fmt"
	"path/filepath"

	"github.com/mchris2/sqljobctl/internal/domain"
)

const cleanupStepName = "finalize-and-remove"

// CleanupCommander supplies the backend-specific terminal-step command.
// The builder fixes the placement of the cleanup step, not its content.
type CleanupCommander interface {
	CleanupCommand(jobName, destDir, reportFile string) string
}

type BuildInput struct {
	Instance    string
	Databases   []string
	Destination string
	JobName     string
	Description string
}

type Builder struct {
	commands   domain.BackupCommandBuilder
	cleanup    CleanupCommander
	reportFile string
}

func NewBuilder(commands domain.BackupCommandBuilder, cleanup CleanupCommander, reportFile string) *Builder {
	return &Builder{commands: commands, cleanup: cleanup, reportFile: reportFile}
}

// Build produces one step per database in input order (duplicates each get
// their own step) plus the terminal cleanup step. Every non-terminal step's
// success edge points to the next step, the last one to cleanup; every
// failure edge points straight to cleanup, so a failure in step k skips the
// remaining backup steps but cleanup still runs exactly once.
func (b *Builder) Build(in BuildInput) (*domain.Plan, error) {
	if len(in.Databases) == 0 {
		return nil, fmt.Errorf("%w: no databases to back up", domain.ErrStepWiringFailed)
	}
	if in.JobName == "" {
		return nil, fmt.Errorf("%w: empty job identity", domain.ErrStepWiringFailed)
	}

	p := &domain.Plan{
		JobName:     in.JobName,
		Description: in.Description,
		Instance:    in.Instance,
		Destination: in.Destination,
		ReportPath:  filepath.Join(in.Destination, b.reportFile),
	}

	for i, database := range in.Databases {
		step := domain.Step{
			Name:       fmt.Sprintf("backup-%d-%s", i+1, database),
			Database:   database,
			Command:    b.commands.BackupCommand(in.Instance, database, in.Destination),
			BackupFile: b.commands.BackupFile(database, in.Destination),
			OnFailure:  cleanupStepName,
		}
		p.Steps = append(p.Steps, step)
	}
	for i := range p.Steps {
		if i < len(p.Steps)-1 {
			p.Steps[i].OnSuccess = p.Steps[i+1].Name
		} else {
			p.Steps[i].OnSuccess = cleanupStepName
		}
	}

	p.Cleanup = domain.Step{
		Name:    cleanupStepName,
		Command: b.cleanup.CleanupCommand(in.JobName, in.Destination, b.reportFile),
	}
	if p.Cleanup.Command == "" {
		return nil, fmt.Errorf("%w: backend produced no cleanup command", domain.ErrHistoryExportFailed)
	}

	return p, nil
}
