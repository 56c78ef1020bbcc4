package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "sqljobctl",
	Short: "Schedule one-off, self-removing SQL Server backup jobs",
	Long: `sqljobctl schedules a one-off backup of one or more databases on a
SQL Server instance, using either the OS task scheduler or the SQL Server
Agent as the execution backend. The scheduled job exports a run report to
the backup destination and removes itself after completion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sqljobctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "override configured log file")
}
