package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mchris2/sqljobctl/internal/adapter/mssql"
	"github.com/mchris2/sqljobctl/internal/adapter/scheduler"
	"github.com/mchris2/sqljobctl/internal/adapter/shell"
	"github.com/mchris2/sqljobctl/internal/config"
	"github.com/mchris2/sqljobctl/internal/domain"
	"github.com/mchris2/sqljobctl/internal/infrastructure/logger"
	"github.com/mchris2/sqljobctl/internal/prompt"
	"github.com/mchris2/sqljobctl/internal/usecase"
	"github.com/mchris2/sqljobctl/internal/validate"
)

const (
	BackendTask  = "task"
	BackendAgent = "agent"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	schedule *usecase.Schedule
}

// New wires one run: logger, sqlcmd client, the chosen scheduler backend
// and the orchestrating use case.
func New(cfg *config.Config, backend string, seeds usecase.Seeds) (*App, error) {
	backend = strings.ToLower(backend)
	if backend != BackendTask && backend != BackendAgent {
		return nil, fmt.Errorf("unknown backend %q, use %q or %q", backend, BackendTask, BackendAgent)
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s (%s backend)", cfg.App.Name, backend)

	runner := shell.Runner{}
	client := mssql.NewClient(runner, cfg.SQL.Port, cfg.SQL.Username, cfg.SQL.Password, cfg.SQL.CommandTimeoutSeconds)
	commands := mssql.NewCommandBuilder(cfg.SQL.Port, cfg.SQL.Username, cfg.SQL.Password, cfg.SQL.CommandTimeoutSeconds)

	factory := domain.SchedulerFactory(func(host string) domain.Scheduler {
		if backend == BackendAgent {
			prefix := mssql.Sqlcmd(host, cfg.SQL.Port, cfg.SQL.Username, cfg.SQL.Password, cfg.SQL.CommandTimeoutSeconds)
			return scheduler.NewAgent(client, host, prefix, log)
		}
		return scheduler.NewTask(runner, cfg.Job.ScriptDir, log)
	})

	validator := validate.New(prompt.New(), log)

	schedule := usecase.NewSchedule(
		validator,
		client,
		commands,
		factory,
		log,
		os.Stdout,
		cfg.Job.ReportFile,
		cfg.Job.MomentLayout,
		seeds,
	)

	return &App{config: cfg, logger: log, schedule: schedule}, nil
}

func (a *App) Run(ctx context.Context) error {
	return a.schedule.Execute(ctx)
}

func (a *App) Shutdown() {
	a.logger.Close()
}
