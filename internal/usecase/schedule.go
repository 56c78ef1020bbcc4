package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mchris2/sqljobctl/internal/domain"
	"github.com/mchris2/sqljobctl/internal/plan"
	"github.com/mchris2/sqljobctl/internal/validate"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Seeds pre-fill the interactive prompts from command-line flags. A seeded
// value still runs through validation and falls back to a re-prompt when it
// fails.
type Seeds struct {
	Instance    string
	Databases   string
	Destination string
	JobName     string
	Moment      string
	Description string
}

// Schedule drives one run: the validation chain, plan construction,
// artifact registration, trigger attach and the read-back summary.
type Schedule struct {
	validator    *validate.Validator
	connector    domain.Connector
	commands     domain.BackupCommandBuilder
	factory      domain.SchedulerFactory
	logger       Logger
	out          io.Writer
	reportFile   string
	momentLayout string
	now          func() time.Time
	seeds        Seeds
}

func NewSchedule(
	validator *validate.Validator,
	connector domain.Connector,
	commands domain.BackupCommandBuilder,
	factory domain.SchedulerFactory,
	logger Logger,
	out io.Writer,
	reportFile string,
	momentLayout string,
	seeds Seeds,
) *Schedule {
	return &Schedule{
		validator:    validator,
		connector:    connector,
		commands:     commands,
		factory:      factory,
		logger:       logger,
		out:          out,
		reportFile:   reportFile,
		momentLayout: momentLayout,
		now:          time.Now,
		seeds:        seeds,
	}
}

// Execute runs the full pipeline. Validation failures loop back to the
// operator; registration and attach failures end the run with an error and
// leave whatever the backend accepted in place for inspection.
func (uc *Schedule) Execute(ctx context.Context) error {
	instance, err := uc.validator.Field(ctx, validate.Instance(uc.connector, uc.seeds.Instance))
	if err != nil {
		return err
	}
	uc.logger.Infof("Connected to %s", instance)

	sched := uc.factory(instance)

	databases, err := uc.validator.List(ctx, validate.Databases(uc.seeds.Databases))
	if err != nil {
		return err
	}
	uc.logger.Infof("All %d database(s) exist on %s", len(databases), instance)

	destination, err := uc.validator.Field(ctx, validate.Destination(uc.logger, uc.seeds.Destination))
	if err != nil {
		return err
	}

	jobName, err := uc.validator.Field(ctx, validate.ArtifactName(sched.Exists, uc.seeds.JobName))
	if err != nil {
		return err
	}

	moment, err := uc.validator.Moment(ctx, validate.MomentField(uc.momentLayout, uc.seeds.Moment), uc.momentLayout, uc.now)
	if err != nil {
		return err
	}

	description := uc.seeds.Description
	if description == "" {
		description = fmt.Sprintf("One-off backup of %d database(s) on %s, scheduled by sqljobctl", len(databases), instance)
	}

	builder := plan.NewBuilder(uc.commands, sched, uc.reportFile)
	p, err := builder.Build(plan.BuildInput{
		Instance:    instance,
		Databases:   databases,
		Destination: destination,
		JobName:     jobName,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}

	uc.logger.Infof("Registering %s artifact %q (%d backup step(s) + cleanup)", sched.Kind(), jobName, len(p.Steps))
	handle, err := sched.Create(ctx, p)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	if err := sched.AttachOneTimeTrigger(ctx, handle, moment); err != nil {
		uc.logger.Errorf("Trigger attach failed, artifact %q may be left registered without a trigger", handle.Name)
		return fmt.Errorf("attach trigger: %w", err)
	}

	summary, err := sched.Describe(ctx, handle)
	if err != nil {
		return fmt.Errorf("read back artifact: %w", err)
	}

	uc.printSummary(summary)
	return nil
}
