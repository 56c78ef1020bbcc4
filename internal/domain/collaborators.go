package domain

import "context"

// Prompter supplies operator input. Implementations block until the
// operator responds; an error means the operator interrupted the run.
type Prompter interface {
	Ask(message, defaultValue string) (string, error)
	Confirm(message string) (bool, error)
}

// Connection is a live, verified handle to a server instance. It is cached
// for the duration of one run so later existence checks reuse it.
type Connection interface {
	Host() string
	ListDatabases(ctx context.Context) ([]string, error)
}

// Connector opens connections. A ConnectionFailed validation error is the
// only outcome of a failed attempt; the handle is never considered valid
// until a live attempt has succeeded.
type Connector interface {
	Connect(ctx context.Context, host string) (Connection, error)
}

// BackupCommandBuilder produces the opaque backend-appropriate command that
// dumps one database to the destination. The core places the command inside
// the plan but never inspects its contents.
type BackupCommandBuilder interface {
	BackupCommand(instance, database, destDir string) string
	BackupFile(database, destDir string) string
}

// CommandRunner executes an external command and returns its combined
// output. Adapters take it injected so tests can script the backend.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
