package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given no config file", t, func() {
		cfg, err := Load("")

		Convey("The built-in defaults should be enough for a run", func() {
			So(err, ShouldBeNil)
			So(cfg.App.Name, ShouldEqual, "sqljobctl")
			So(cfg.App.LogLevel, ShouldEqual, "info")
			So(cfg.SQL.Port, ShouldEqual, 1433)
			So(cfg.SQL.CommandTimeoutSeconds, ShouldEqual, 300)
			So(cfg.Job.ReportFile, ShouldEqual, "BackupRunReport.csv")
			So(cfg.Job.MomentLayout, ShouldEqual, "2006-01-02 15:04")
			So(cfg.Job.ScriptDir, ShouldNotBeEmpty)
		})
	})

	Convey("Given a config file overriding the defaults", t, func() {
		path := filepath.Join(t.TempDir(), "sqljobctl.yaml")
		content := `
sql:
  port: 14330
  username: backup_svc
  password: s3cret
job:
  report_file: History.csv
`
		So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

		cfg, err := Load(path)

		Convey("File values should win, untouched keys keep their defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.SQL.Port, ShouldEqual, 14330)
			So(cfg.SQL.Username, ShouldEqual, "backup_svc")
			So(cfg.Job.ReportFile, ShouldEqual, "History.csv")
			So(cfg.SQL.CommandTimeoutSeconds, ShouldEqual, 300)
			So(cfg.Job.MomentLayout, ShouldEqual, "2006-01-02 15:04")
		})
	})

	Convey("Given an explicit path that does not exist", t, func() {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldNotBeNil)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SQL: SQLConfig{Port: 1433},
			Job: JobConfig{ScriptDir: "/tmp/sqljobctl", ReportFile: "report.csv", MomentLayout: "2006-01-02 15:04"},
		}
	}

	Convey("A default-shaped config should validate", t, func() {
		So(valid().Validate(), ShouldBeNil)
	})

	Convey("An out-of-range port should be rejected", t, func() {
		cfg := valid()
		cfg.SQL.Port = 70000
		So(cfg.Validate(), ShouldNotBeNil)
	})

	Convey("The report file must be a bare name, not a path", t, func() {
		cfg := valid()
		cfg.Job.ReportFile = "subdir/report.csv"
		So(cfg.Validate(), ShouldNotBeNil)
	})

	Convey("An empty moment layout should be rejected", t, func() {
		cfg := valid()
		cfg.Job.MomentLayout = ""
		So(cfg.Validate(), ShouldNotBeNil)
	})
}
