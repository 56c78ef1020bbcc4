package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mchris2/sqljobctl/internal/domain"
	"github.com/mchris2/sqljobctl/internal/validate"
)

// scriptedPrompter answers with the offered default when one is present and
// with the next scripted answer otherwise.
type scriptedPrompter struct {
	answers  []string
	confirms []bool
}

func (p *scriptedPrompter) Ask(prompt, def string) (string, error) {
	if def != "" {
		return def, nil
	}
	if len(p.answers) == 0 {
		return "", fmt.Errorf("prompt %q has no scripted answer", prompt)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) Confirm(prompt string) (bool, error) {
	if len(p.confirms) == 0 {
		return false, fmt.Errorf("confirmation %q has no scripted answer", prompt)
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

type recordingLogger struct {
	warnings []string
	errors   []string
}

func (l *recordingLogger) Infof(template string, args ...interface{}) {}
func (l *recordingLogger) Warnf(template string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(template, args...))
}
func (l *recordingLogger) Errorf(template string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(template, args...))
}

type fakeConn struct {
	host      string
	databases []string
}

func (c *fakeConn) Host() string { return c.host }

func (c *fakeConn) ListDatabases(ctx context.Context) ([]string, error) {
	return c.databases, nil
}

type fakeConnector struct {
	databases []string
}

func (c *fakeConnector) Connect(ctx context.Context, host string) (domain.Connection, error) {
	return &fakeConn{host: host, databases: c.databases}, nil
}

type fakeCommands struct{}

func (fakeCommands) BackupCommand(instance, database, destDir string) string {
	return fmt.Sprintf("backup %s on %s", database, instance)
}
func (fakeCommands) BackupFile(database, destDir string) string {
	return destDir + "/" + database + ".bak"
}

type fakeScheduler struct {
	existing  map[string]bool
	createErr error
	attachErr error

	createdPlan *domain.Plan
	attachedAt  time.Time
	host        string
}

func (s *fakeScheduler) Kind() string { return "fake" }

func (s *fakeScheduler) CleanupCommand(jobName, destDir, reportFile string) string {
	return "cleanup " + jobName
}

func (s *fakeScheduler) Exists(ctx context.Context, name string) (bool, error) {
	return s.existing[name], nil
}

func (s *fakeScheduler) Create(ctx context.Context, p *domain.Plan) (*domain.ArtifactHandle, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdPlan = p
	return &domain.ArtifactHandle{ID: "h-1", Name: p.JobName, Backend: s.Kind()}, nil
}

func (s *fakeScheduler) AttachOneTimeTrigger(ctx context.Context, h *domain.ArtifactHandle, moment time.Time) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	s.attachedAt = moment
	return nil
}

func (s *fakeScheduler) Describe(ctx context.Context, h *domain.ArtifactHandle) (*domain.PlanSummary, error) {
	summary := &domain.PlanSummary{
		Artifact:        h.Name,
		Backend:         s.Kind(),
		ScheduleEnabled: true,
		ScheduleType:    "Once",
		StartAt:         s.attachedAt,
	}
	for _, step := range s.createdPlan.AllSteps() {
		summary.Steps = append(summary.Steps, domain.StepSummary{Name: step.Name, Command: step.Command})
	}
	return summary, nil
}

const layout = "2006-01-02 15:04"

func newSchedule(prompter domain.Prompter, logger *recordingLogger, sched *fakeScheduler, out *bytes.Buffer, seeds Seeds) *Schedule {
	connector := &fakeConnector{databases: []string{"HR", "Sales", "master"}}
	factory := func(host string) domain.Scheduler {
		sched.host = host
		return sched
	}
	return NewSchedule(validate.New(prompter, logger), connector, fakeCommands{}, factory,
		logger, out, "report.csv", layout, seeds)
}

func TestSchedule(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fully answered run", t, func() {
		dest := t.TempDir()
		prompter := &scriptedPrompter{answers: []string{
			"SQLHOST1",
			"Sales, HR",
			dest,
			"NightlyOnce",
			"2099-01-01 02:30",
		}}
		logger := &recordingLogger{}
		sched := &fakeScheduler{existing: map[string]bool{}}
		var out bytes.Buffer

		uc := newSchedule(prompter, logger, sched, &out, Seeds{})

		Convey("When executing", func() {
			err := uc.Execute(ctx)
			So(err, ShouldBeNil)

			Convey("The backend should be built for the validated instance", func() {
				So(sched.host, ShouldEqual, "SQLHOST1")
			})

			Convey("The registered plan should carry one step per database plus cleanup", func() {
				So(sched.createdPlan, ShouldNotBeNil)
				So(len(sched.createdPlan.Steps), ShouldEqual, 2)
				So(sched.createdPlan.Steps[0].Database, ShouldEqual, "Sales")
				So(sched.createdPlan.Steps[1].Database, ShouldEqual, "HR")
				So(sched.createdPlan.Cleanup.Command, ShouldEqual, "cleanup NightlyOnce")
				So(sched.createdPlan.Description, ShouldContainSubstring, "2 database(s)")
			})

			Convey("The trigger should fire at the validated moment", func() {
				So(sched.attachedAt.Format(layout), ShouldEqual, "2099-01-01 02:30")
			})

			Convey("The summary should print the read-back, not the input", func() {
				So(out.String(), ShouldContainSubstring, `Scheduled "NightlyOnce" via fake backend`)
				So(out.String(), ShouldContainSubstring, "backup-1-Sales")
				So(out.String(), ShouldContainSubstring, "finalize-and-remove")
				So(out.String(), ShouldContainSubstring, "Once (enabled), fires at 2099-01-01 02:30")
			})
		})
	})

	Convey("Given seeded flag values", t, func() {
		dest := t.TempDir()
		logger := &recordingLogger{}
		sched := &fakeScheduler{existing: map[string]bool{}}
		var out bytes.Buffer

		uc := newSchedule(&scriptedPrompter{}, logger, sched, &out, Seeds{
			Instance:    "SQLHOST1",
			Databases:   "Sales",
			Destination: dest,
			JobName:     "SeededJob",
			Moment:      "2099-01-01 02:30",
			Description: "operator supplied",
		})

		Convey("It should run without any interactive answers", func() {
			So(uc.Execute(ctx), ShouldBeNil)
			So(sched.createdPlan.JobName, ShouldEqual, "SeededJob")
			So(sched.createdPlan.Description, ShouldEqual, "operator supplied")
		})
	})

	Convey("Given a colliding job name", t, func() {
		dest := t.TempDir()
		prompter := &scriptedPrompter{answers: []string{
			"SQLHOST1", "Sales", dest,
			"Taken", "Fresh",
			"2099-01-01 02:30",
		}}
		logger := &recordingLogger{}
		sched := &fakeScheduler{existing: map[string]bool{"Taken": true}}
		var out bytes.Buffer

		uc := newSchedule(prompter, logger, sched, &out, Seeds{})

		Convey("It should warn and accept the re-entered name", func() {
			So(uc.Execute(ctx), ShouldBeNil)
			So(sched.createdPlan.JobName, ShouldEqual, "Fresh")
			So(len(logger.warnings), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a backend that rejects the registration", t, func() {
		dest := t.TempDir()
		prompter := &scriptedPrompter{answers: []string{
			"SQLHOST1", "Sales", dest, "NightlyOnce", "2099-01-01 02:30",
		}}
		logger := &recordingLogger{}
		sched := &fakeScheduler{
			existing:  map[string]bool{},
			createErr: fmt.Errorf("%w: simulated rejection", domain.ErrRegistrationFailed),
		}
		var out bytes.Buffer

		uc := newSchedule(prompter, logger, sched, &out, Seeds{})

		Convey("The run should end with the fatal error", func() {
			err := uc.Execute(ctx)
			So(errors.Is(err, domain.ErrRegistrationFailed), ShouldBeTrue)
			So(out.String(), ShouldBeEmpty)
		})
	})

	Convey("Given a backend that accepts the artifact but rejects the trigger", t, func() {
		dest := t.TempDir()
		prompter := &scriptedPrompter{answers: []string{
			"SQLHOST1", "Sales", dest, "NightlyOnce", "2099-01-01 02:30",
		}}
		logger := &recordingLogger{}
		sched := &fakeScheduler{
			existing:  map[string]bool{},
			attachErr: fmt.Errorf("%w: simulated rejection", domain.ErrTriggerAttachFailed),
		}
		var out bytes.Buffer

		uc := newSchedule(prompter, logger, sched, &out, Seeds{})

		Convey("The run should fail and flag the possibly orphaned artifact", func() {
			err := uc.Execute(ctx)
			So(errors.Is(err, domain.ErrTriggerAttachFailed), ShouldBeTrue)
			So(len(logger.errors), ShouldBeGreaterThan, 0)
			So(logger.errors[0], ShouldContainSubstring, "may be left registered")
		})
	})
}
