// Package render turns a Plan into the standalone script the OS task
// backend registers. Rendering is a pure function over the plan so it is
// testable without a live scheduler.
package render

import (
	"bufio"
	"fmt"
	"strings"
	"text/template"

	"github.com/mchris2/sqljobctl/internal/domain"
	"github.com/mchris2/sqljobctl/internal/report"
)

// The script embeds the fully resolved plan as literal text. Each backup
// step runs in input order; the first failure jumps straight to the cleanup
// label, so cleanup runs exactly once no matter how many steps fail. The
// cleanup command unregisters the task and deletes the script itself.
const scriptTemplate = `@echo off
rem sqljobctl one-off backup task, generated {{.Generated}}
rem job {{.Plan.JobName}}
rem report {{.Plan.ReportPath}}
setlocal EnableDelayedExpansion
set "REPORT={{.Plan.ReportPath}}"
> "%REPORT%" echo {{.Header}}
{{- range .Steps}}

rem step {{.Name}}
{{.Command}}
if errorlevel 1 (
  >> "%REPORT%" echo {{.FailedRow}}
  goto cleanup
)
set "SIZE=N/A"
for %%A in ("{{.BackupFile}}") do set "SIZE=%%~zA"
>> "%REPORT%" echo {{.SuccessRow}}
{{- end}}

:cleanup
rem step {{.Plan.Cleanup.Name}}
{{.Plan.Cleanup.Command}}
`

var scriptTmpl = template.Must(template.New("task-script").Parse(scriptTemplate))

type stepView struct {
	Name       string
	Command    string
	BackupFile string
	FailedRow  string
	SuccessRow string
}

type scriptValues struct {
	Plan      *domain.Plan
	Steps     []stepView
	Header    string
	Generated string
}

// Script renders the standalone task script for the given plan. The report
// rows are pre-rendered here; the size, timestamp and exit-code fields stay
// as shell runtime variables resolved when the step actually runs.
func Script(plan *domain.Plan, generated string) (string, error) {
	if len(plan.Steps) == 0 {
		return "", fmt.Errorf("plan has no backup steps")
	}

	steps := make([]stepView, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		steps = append(steps, stepView{
			Name:       s.Name,
			Command:    s.Command,
			BackupFile: s.BackupFile,
			FailedRow: report.Line(report.Row{
				Name:          s.Database,
				Status:        report.StatusFailed,
				Size:          report.SizeOrNA(-1),
				BackupFile:    s.BackupFile,
				CompletedTime: "!DATE! !TIME!",
				Error:         "step exited with code !ERRORLEVEL!",
			}),
			SuccessRow: report.Line(report.Row{
				Name:          s.Database,
				Status:        report.StatusSuccess,
				Size:          "!SIZE!",
				BackupFile:    s.BackupFile,
				CompletedTime: "!DATE! !TIME!",
			}),
		})
	}

	values := scriptValues{
		Plan:      plan,
		Steps:     steps,
		Header:    report.HeaderLine("Database"),
		Generated: generated,
	}
	var sb strings.Builder
	if err := scriptTmpl.Execute(&sb, values); err != nil {
		return "", fmt.Errorf("render task script: %w", err)
	}
	return sb.String(), nil
}

// ParsedScript is the plan content read back out of a rendered script.
type ParsedScript struct {
	JobName    string
	ReportPath string
	Steps      []domain.StepSummary
}

// ParseScript recovers job name, report path and step name/command pairs
// from a rendered script. The task backend's describe uses it so the
// summary reflects what is on disk, not an in-memory copy.
func ParseScript(text string) (*ParsedScript, error) {
	parsed := &ParsedScript{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	var pendingStep string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case pendingStep != "":
			parsed.Steps = append(parsed.Steps, domain.StepSummary{Name: pendingStep, Command: line})
			pendingStep = ""
		case strings.HasPrefix(line, "rem job "):
			parsed.JobName = strings.TrimPrefix(line, "rem job ")
		case strings.HasPrefix(line, "rem report "):
			parsed.ReportPath = strings.TrimPrefix(line, "rem report ")
		case strings.HasPrefix(line, "rem step "):
			pendingStep = strings.TrimPrefix(line, "rem step ")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}
	if parsed.JobName == "" || len(parsed.Steps) == 0 {
		return nil, fmt.Errorf("script does not carry an embedded plan")
	}
	return parsed, nil
}
