package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mchris2/sqljobctl/internal/domain"
	"github.com/mchris2/sqljobctl/internal/report"
)

// SQLClient is the slice of the database client the agent backend needs.
type SQLClient interface {
	Exec(ctx context.Context, host, query string) error
	Query(ctx context.Context, host, query string) ([][]string, error)
}

// AgentScheduler registers the plan as a SQL Server Agent job: one CmdExec
// step per database wired with explicit success/failure step ids, a
// terminal cleanup step, and a one-time msdb schedule row.
type AgentScheduler struct {
	client       SQLClient
	host         string
	sqlcmdPrefix string
	logger       Logger
}

func NewAgent(client SQLClient, host, sqlcmdPrefix string, logger Logger) *AgentScheduler {
	return &AgentScheduler{client: client, host: host, sqlcmdPrefix: sqlcmdPrefix, logger: logger}
}

func (s *AgentScheduler) Kind() string {
	return "agent"
}

func escapeSQL(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

// CleanupCommand exports the job's run history from msdb to the report file
// and then deletes the job itself. The header row is echoed first so the
// sqlcmd output can run headerless, without the dashed underline noise.
func (s *AgentScheduler) CleanupCommand(jobName, destDir, reportFile string) string {
	reportPath := filepath.Join(destDir, reportFile)
	export := fmt.Sprintf(
		"SET NOCOUNT ON; "+
			"SELECT s.step_name, "+
			"CASE h.run_status WHEN 1 THEN 'Success' WHEN 0 THEN 'Failed' ELSE 'Error' END, "+
			"'N/A', '', "+
			"CONVERT(varchar(19), msdb.dbo.agent_datetime(h.run_date, h.run_time), 120), "+
			"h.message "+
			"FROM msdb.dbo.sysjobhistory h "+
			"JOIN msdb.dbo.sysjobs j ON h.job_id = j.job_id "+
			"JOIN msdb.dbo.sysjobsteps s ON h.job_id = s.job_id AND h.step_id = s.step_id "+
			"WHERE j.name = N'%s' AND h.step_id > 0 ORDER BY h.instance_id",
		escapeSQL(jobName))
	remove := fmt.Sprintf("EXEC msdb.dbo.sp_delete_job @job_name = N'%s'", escapeSQL(jobName))

	return fmt.Sprintf(`> "%s" echo %s & %s -h -1 -s"," -W -Q "%s" >> "%s" & %s -Q "%s"`,
		reportPath, report.HeaderLine("JobName"),
		s.sqlcmdPrefix, export, reportPath,
		s.sqlcmdPrefix, remove)
}

// Exists looks the job name up in msdb. A query failure is surfaced so the
// validator can treat it as a recoverable connection problem.
func (s *AgentScheduler) Exists(ctx context.Context, name string) (bool, error) {
	rows, err := s.client.Query(ctx, s.host,
		fmt.Sprintf("SELECT name FROM msdb.dbo.sysjobs WHERE name = N'%s'", escapeSQL(name)))
	if err != nil {
		return false, fmt.Errorf("look up agent job %q: %w", name, err)
	}
	return len(rows) > 0, nil
}

// Create registers the job and its steps. The step graph maps one-to-one:
// on-success goes to the next step id, on-failure goes to the cleanup step
// id, cleanup quits with success or failure. Any rejection is fatal.
func (s *AgentScheduler) Create(ctx context.Context, plan *domain.Plan) (*domain.ArtifactHandle, error) {
	addJob := fmt.Sprintf(
		"EXEC msdb.dbo.sp_add_job @job_name = N'%s', @description = N'%s', @enabled = 1",
		escapeSQL(plan.JobName), escapeSQL(plan.Description))
	if err := s.client.Exec(ctx, s.host, addJob); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistrationFailed, err)
	}

	cleanupID := len(plan.Steps) + 1
	for i, step := range plan.Steps {
		addStep := fmt.Sprintf(
			"EXEC msdb.dbo.sp_add_jobstep @job_name = N'%s', @step_id = %d, @step_name = N'%s', "+
				"@subsystem = N'CMDEXEC', @command = N'%s', "+
				"@on_success_action = 4, @on_success_step_id = %d, "+
				"@on_fail_action = 4, @on_fail_step_id = %d",
			escapeSQL(plan.JobName), i+1, escapeSQL(step.Name), escapeSQL(step.Command),
			i+2, cleanupID)
		if err := s.client.Exec(ctx, s.host, addStep); err != nil {
			return nil, fmt.Errorf("%w: step %q: %v", domain.ErrStepWiringFailed, step.Name, err)
		}
	}

	addCleanup := fmt.Sprintf(
		"EXEC msdb.dbo.sp_add_jobstep @job_name = N'%s', @step_id = %d, @step_name = N'%s', "+
			"@subsystem = N'CMDEXEC', @command = N'%s', "+
			"@on_success_action = 1, @on_fail_action = 2",
		escapeSQL(plan.JobName), cleanupID, escapeSQL(plan.Cleanup.Name), escapeSQL(plan.Cleanup.Command))
	if err := s.client.Exec(ctx, s.host, addCleanup); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryExportFailed, err)
	}

	addServer := fmt.Sprintf("EXEC msdb.dbo.sp_add_jobserver @job_name = N'%s', @server_name = N'(LOCAL)'",
		escapeSQL(plan.JobName))
	if err := s.client.Exec(ctx, s.host, addServer); err != nil {
		return nil, fmt.Errorf("%w: assign job server: %v", domain.ErrRegistrationFailed, err)
	}

	s.logger.Infof("Agent job %q registered with %d step(s) + cleanup", plan.JobName, len(plan.Steps))
	return &domain.ArtifactHandle{
		ID:      uuid.NewString(),
		Name:    plan.JobName,
		Backend: s.Kind(),
	}, nil
}

// AttachOneTimeTrigger creates a one-time schedule row named after the
// moment and the job, only if no identically named row exists, then
// attaches it to the job.
func (s *AgentScheduler) AttachOneTimeTrigger(ctx context.Context, h *domain.ArtifactHandle, moment time.Time) error {
	schedName := fmt.Sprintf("once-%s-%s", moment.Format("200601021504"), h.Name)

	rows, err := s.client.Query(ctx, s.host,
		fmt.Sprintf("SELECT name FROM msdb.dbo.sysschedules WHERE name = N'%s'", escapeSQL(schedName)))
	if err != nil {
		return fmt.Errorf("%w: look up schedule %q: %v", domain.ErrTriggerAttachFailed, schedName, err)
	}
	if len(rows) == 0 {
		addSchedule := fmt.Sprintf(
			"EXEC msdb.dbo.sp_add_schedule @schedule_name = N'%s', @freq_type = 1, "+
				"@active_start_date = %s, @active_start_time = %s",
			escapeSQL(schedName), moment.Format("20060102"), moment.Format("150405"))
		if err := s.client.Exec(ctx, s.host, addSchedule); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTriggerAttachFailed, err)
		}
	} else {
		s.logger.Infof("Schedule %q already present, reusing it", schedName)
	}

	attach := fmt.Sprintf(
		"EXEC msdb.dbo.sp_attach_schedule @job_name = N'%s', @schedule_name = N'%s'",
		escapeSQL(h.Name), escapeSQL(schedName))
	if err := s.client.Exec(ctx, s.host, attach); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTriggerAttachFailed, err)
	}

	s.logger.Infof("Agent job %q scheduled once at %s", h.Name, moment.Format("2006-01-02 15:04"))
	return nil
}

// Describe reads the persisted job back out of the msdb catalog views.
func (s *AgentScheduler) Describe(ctx context.Context, h *domain.ArtifactHandle) (*domain.PlanSummary, error) {
	stepRows, err := s.client.Query(ctx, s.host, fmt.Sprintf(
		"SELECT s.step_name, s.command FROM msdb.dbo.sysjobsteps s "+
			"JOIN msdb.dbo.sysjobs j ON s.job_id = j.job_id "+
			"WHERE j.name = N'%s' ORDER BY s.step_id", escapeSQL(h.Name)))
	if err != nil {
		return nil, fmt.Errorf("read back job steps: %w", err)
	}
	if len(stepRows) == 0 {
		return nil, fmt.Errorf("job %q has no persisted steps", h.Name)
	}

	summary := &domain.PlanSummary{
		Artifact:     h.Name,
		Backend:      s.Kind(),
		ScheduleType: "Once",
	}
	for _, row := range stepRows {
		if len(row) < 2 {
			return nil, fmt.Errorf("unexpected step row %v", row)
		}
		summary.Steps = append(summary.Steps, domain.StepSummary{Name: row[0], Command: row[1]})
	}

	schedRows, err := s.client.Query(ctx, s.host, fmt.Sprintf(
		"SELECT s.enabled, s.active_start_date, s.active_start_time FROM msdb.dbo.sysschedules s "+
			"JOIN msdb.dbo.sysjobschedules js ON s.schedule_id = js.schedule_id "+
			"JOIN msdb.dbo.sysjobs j ON js.job_id = j.job_id "+
			"WHERE j.name = N'%s' AND s.freq_type = 1", escapeSQL(h.Name)))
	if err != nil {
		return nil, fmt.Errorf("read back job schedule: %w", err)
	}
	if len(schedRows) > 0 && len(schedRows[0]) >= 3 {
		summary.ScheduleEnabled = schedRows[0][0] == "1"
		summary.StartAt = agentStart(schedRows[0][1], schedRows[0][2])
	}
	return summary, nil
}

// agentStart converts msdb's integer date (yyyymmdd) and time (hhmmss)
// columns to a local time.
func agentStart(dateField, timeField string) time.Time {
	d, err := strconv.Atoi(dateField)
	if err != nil {
		return time.Time{}
	}
	t, err := strconv.Atoi(timeField)
	if err != nil {
		return time.Time{}
	}
	return time.Date(d/10000, time.Month((d/100)%100), d%100,
		t/10000, (t/100)%100, t%100, 0, time.Local)
}
