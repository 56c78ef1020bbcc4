// Package scheduler holds the two execution backends behind the same
// interface: an OS scheduled task running a generated standalone script,
// and a database agent job with native steps and a one-time schedule row.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mchris2/sqljobctl/internal/domain"
	"github.com/mchris2/sqljobctl/internal/render"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// TaskScheduler registers the plan as an OS scheduled task (schtasks). The
// plan lives in a rendered script on disk; the script appends report rows
// as it runs, unregisters the task after the terminal step and deletes
// itself.
type TaskScheduler struct {
	runner    domain.CommandRunner
	scriptDir string
	logger    Logger
	now       func() time.Time
}

func NewTask(runner domain.CommandRunner, scriptDir string, logger Logger) *TaskScheduler {
	return &TaskScheduler{runner: runner, scriptDir: scriptDir, logger: logger, now: time.Now}
}

func (s *TaskScheduler) Kind() string {
	return "task"
}

// CleanupCommand: the script has already written the report rows by the
// time the cleanup label runs, so the terminal step unregisters the task
// and removes the script itself.
func (s *TaskScheduler) CleanupCommand(jobName, destDir, reportFile string) string {
	return fmt.Sprintf(`schtasks /Delete /TN "%s" /F & del "%%~f0"`, jobName)
}

// Exists probes the task by name. schtasks exits non-zero when the task is
// not registered, which is the only failure mode a query by name has.
func (s *TaskScheduler) Exists(ctx context.Context, name string) (bool, error) {
	if _, err := s.runner.Run(ctx, "schtasks", "/Query", "/TN", name); err != nil {
		return false, nil
	}
	return true, nil
}

// Create renders the plan into the standalone script and persists it. The
// schtasks registration itself happens at trigger attach, because the OS
// task carries its one-time moment as part of registration.
func (s *TaskScheduler) Create(ctx context.Context, plan *domain.Plan) (*domain.ArtifactHandle, error) {
	text, err := render.Script(plan, s.now().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistrationFailed, err)
	}
	if err := os.MkdirAll(s.scriptDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create script directory: %v", domain.ErrRegistrationFailed, err)
	}
	scriptPath := filepath.Join(s.scriptDir, plan.JobName+".cmd")
	if err := os.WriteFile(scriptPath, []byte(text), 0o755); err != nil {
		return nil, fmt.Errorf("%w: write task script: %v", domain.ErrRegistrationFailed, err)
	}
	s.logger.Infof("Wrote task script %s (%d step(s) + cleanup)", scriptPath, len(plan.Steps))

	return &domain.ArtifactHandle{
		ID:         uuid.NewString(),
		Name:       plan.JobName,
		Backend:    s.Kind(),
		ScriptPath: scriptPath,
	}, nil
}

// AttachOneTimeTrigger registers the task with its single-shot moment.
// Uniqueness was enforced during validation, so a task already present
// under this name is ours and the attach is a no-op.
func (s *TaskScheduler) AttachOneTimeTrigger(ctx context.Context, h *domain.ArtifactHandle, moment time.Time) error {
	if exists, _ := s.Exists(ctx, h.Name); exists {
		s.logger.Infof("Task %q already registered with its trigger, nothing to attach", h.Name)
		return nil
	}
	_, err := s.runner.Run(ctx, "schtasks",
		"/Create",
		"/TN", h.Name,
		"/TR", h.ScriptPath,
		"/SC", "ONCE",
		"/SD", moment.Format("01/02/2006"),
		"/ST", moment.Format("15:04"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTriggerAttachFailed, err)
	}
	s.logger.Infof("Task %q scheduled once at %s", h.Name, moment.Format("2006-01-02 15:04"))
	return nil
}

// Describe reads the persisted state back: plan content from the script on
// disk, schedule state from the task registry.
func (s *TaskScheduler) Describe(ctx context.Context, h *domain.ArtifactHandle) (*domain.PlanSummary, error) {
	raw, err := os.ReadFile(h.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("read task script: %w", err)
	}
	parsed, err := render.ParseScript(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse task script: %w", err)
	}

	output, err := s.runner.Run(ctx, "schtasks", "/Query", "/TN", h.Name, "/V", "/FO", "LIST")
	if err != nil {
		return nil, fmt.Errorf("query task %q: %w", h.Name, err)
	}
	enabled, schedType, startAt := parseTaskQuery(string(output))

	return &domain.PlanSummary{
		Artifact:        parsed.JobName,
		Backend:         s.Kind(),
		Steps:           parsed.Steps,
		ScheduleEnabled: enabled,
		ScheduleType:    schedType,
		StartAt:         startAt,
	}, nil
}

func parseTaskQuery(output string) (enabled bool, schedType string, startAt time.Time) {
	fields := map[string]string{}
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		fields[key] = strings.TrimSpace(line[idx+1:])
	}

	enabled = strings.EqualFold(fields["Scheduled Task State"], "Enabled")
	schedType = fields["Schedule Type"]
	if strings.Contains(strings.ToLower(schedType), "one time") || strings.EqualFold(schedType, "Once") {
		schedType = "Once"
	}

	when := fields["Start Date"] + " " + fields["Start Time"]
	for _, layout := range []string{
		"01/02/2006 15:04:05",
		"1/2/2006 15:04:05",
		"01/02/2006 15:04",
		"1/2/2006 15:04",
	} {
		if t, err := time.ParseInLocation(layout, when, time.Local); err == nil {
			startAt = t
			break
		}
	}
	return enabled, schedType, startAt
}
