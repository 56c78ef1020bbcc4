package mssql

import (
	"fmt"
	"path/filepath"
	"time"
)

// CommandBuilder produces the per-database backup command placed into plan
// steps. One builder covers one run, so every step shares a timestamp and
// the command text matches the backup file it writes.
type CommandBuilder struct {
	port           int
	user           string
	password       string
	timeoutSeconds int
	stamp          string
}

func NewCommandBuilder(port int, user, password string, timeoutSeconds int) *CommandBuilder {
	return &CommandBuilder{
		port:           port,
		user:           user,
		password:       password,
		timeoutSeconds: timeoutSeconds,
		stamp:          time.Now().Format("20060102_150405"),
	}
}

func (b *CommandBuilder) BackupFile(database, destDir string) string {
	return filepath.Join(destDir, fmt.Sprintf("%s_%s.bak", database, b.stamp))
}

func (b *CommandBuilder) BackupCommand(instance, database, destDir string) string {
	file := b.BackupFile(database, destDir)
	stmt := fmt.Sprintf("BACKUP DATABASE [%s] TO DISK = N'%s' WITH INIT, CHECKSUM, STATS = 10", database, file)
	return fmt.Sprintf(`%s -Q "%s"`, Sqlcmd(instance, b.port, b.user, b.password, b.timeoutSeconds), stmt)
}

// Sqlcmd returns the sqlcmd invocation prefix for the given target, shared
// by the backup commands and the agent backend's cleanup step.
func Sqlcmd(host string, port int, user, password string, timeoutSeconds int) string {
	prefix := fmt.Sprintf("sqlcmd -S %s -b", address(host, port))
	for _, a := range authArgs(user, password) {
		prefix += " " + a
	}
	if timeoutSeconds > 0 {
		prefix += fmt.Sprintf(" -t %d", timeoutSeconds)
	}
	return prefix
}
