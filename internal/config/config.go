package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	App AppConfig `mapstructure:"app"`
	SQL SQLConfig `mapstructure:"sql"`
	Job JobConfig `mapstructure:"job"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type SQLConfig struct {
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Per-command execution time limit handed to the backup commands and
	// the scheduler backend; the orchestration itself enforces no timeout.
	CommandTimeoutSeconds int `mapstructure:"command_timeout_seconds"`
}

type JobConfig struct {
	ScriptDir    string `mapstructure:"script_dir"`
	ReportFile   string `mapstructure:"report_file"`
	MomentLayout string `mapstructure:"moment_layout"`
}

// Load reads the optional YAML config. With an empty path the file is
// searched in the working directory and is allowed to be absent; built-in
// defaults must be enough for a run.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "sqljobctl")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("sql.port", 1433)
	v.SetDefault("sql.command_timeout_seconds", 300)
	v.SetDefault("job.script_dir", filepath.Join(os.TempDir(), "sqljobctl"))
	v.SetDefault("job.report_file", "BackupRunReport.csv")
	v.SetDefault("job.moment_layout", "2006-01-02 15:04")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("sqljobctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SQL.Port <= 0 || c.SQL.Port > 65535 {
		return fmt.Errorf("sql.port %d is out of range", c.SQL.Port)
	}
	if c.Job.ScriptDir == "" {
		return fmt.Errorf("job.script_dir is required")
	}
	if c.Job.ReportFile == "" {
		return fmt.Errorf("job.report_file is required")
	}
	if filepath.Base(c.Job.ReportFile) != c.Job.ReportFile {
		return fmt.Errorf("job.report_file must be a bare file name, got %q", c.Job.ReportFile)
	}
	if c.Job.MomentLayout == "" {
		return fmt.Errorf("job.moment_layout is required")
	}
	return nil
}
