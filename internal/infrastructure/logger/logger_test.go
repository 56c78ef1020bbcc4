package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the run logger", t, func() {
		Convey("When built with console output only", func() {
			log, err := New("info", "")

			So(err, ShouldBeNil)
			So(log, ShouldNotBeNil)
			So(func() { log.Infof("run started on %s", "SQLHOST1") }, ShouldNotPanic)
		})

		Convey("When built with a log file", func() {
			logFile := filepath.Join(t.TempDir(), "run", "sqljobctl.log")

			log, err := New("debug", logFile)
			So(err, ShouldBeNil)

			Convey("It should create the directory and the rotated sink", func() {
				log.Debugf("validated %d database(s)", 2)
				log.Close()

				_, err := os.Stat(logFile)
				So(err, ShouldBeNil)
			})
		})

		Convey("When built with an unknown level", func() {
			log, err := New("chatty", "")

			Convey("It should fall back to info instead of failing", func() {
				So(err, ShouldBeNil)
				So(func() { log.Info("still logging") }, ShouldNotPanic)
			})
		})

		Convey("When the log directory cannot be created", func() {
			blocker := filepath.Join(t.TempDir(), "blocker")
			So(os.WriteFile(blocker, []byte("x"), 0o644), ShouldBeNil)

			log, err := New("info", filepath.Join(blocker, "nested", "run.log"))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to create log directory")
			So(log, ShouldBeNil)
		})

		Convey("Close should be safe on a console-only logger", func() {
			log, err := New("info", "")
			So(err, ShouldBeNil)
			So(func() { log.Close() }, ShouldNotPanic)
		})
	})
}
