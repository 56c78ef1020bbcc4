package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mchris2/sqljobctl/internal/app"
	"github.com/mchris2/sqljobctl/internal/config"
	"github.com/mchris2/sqljobctl/internal/usecase"
)

var (
	backend string
	seeds   usecase.Seeds
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Interactively schedule a one-off backup job",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.App.LogLevel = logLevel
		}
		if logFile != "" {
			cfg.App.LogFile = logFile
		}

		application, err := app.New(cfg, backend, seeds)
		if err != nil {
			return fmt.Errorf("initialize app: %w", err)
		}
		defer application.Shutdown()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return application.Run(ctx)
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&backend, "backend", app.BackendTask, `execution backend: "task" or "agent"`)
	scheduleCmd.Flags().StringVar(&seeds.Instance, "instance", "", "SQL Server instance (prompted when omitted)")
	scheduleCmd.Flags().StringVar(&seeds.Databases, "databases", "", "comma separated databases to back up")
	scheduleCmd.Flags().StringVar(&seeds.Destination, "dest", "", "backup destination directory")
	scheduleCmd.Flags().StringVar(&seeds.JobName, "name", "", "name for the scheduling artifact")
	scheduleCmd.Flags().StringVar(&seeds.Moment, "at", "", "one-time execution moment, e.g. \"2026-09-01 02:30\"")
	scheduleCmd.Flags().StringVar(&seeds.Description, "description", "", "artifact description")

	rootCmd.AddCommand(scheduleCmd)
}
