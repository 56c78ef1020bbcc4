package validate

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mchris2/sqljobctl/internal/domain"
)

var (
	instancePattern = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)
	databasePattern = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)
	artifactPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	// characters no host filesystem accepts in a destination path
	badPathChars = regexp.MustCompile(`[<>"|?*]`)
)

// Instance checks the host name syntactically, then proves reachability by
// opening a connection. The successful handle is cached on the run context
// so later existence checks reuse it.
func Instance(connector domain.Connector, dflt string) Field {
	return Field{
		Name:    "instance",
		Prompt:  "SQL Server instance to back up",
		Default: dflt,
		Pattern: instancePattern,
		Check: func(ctx context.Context, vc *Context, value string) error {
			conn, err := connector.Connect(ctx, value)
			if err != nil {
				return domain.NewValidationError(domain.ConnectionFailed, "instance", "cannot reach %s: %v", value, err)
			}
			vc.Conn = conn
			return nil
		},
	}
}

// Databases checks every requested name against the live database list on
// the cached connection; any missing name rejects the whole submission.
func Databases(dflt string) ListField {
	return ListField{
		Name:    "database",
		Prompt:  "Databases to back up (comma separated)",
		Default: dflt,
		Pattern: databasePattern,
		Check: func(ctx context.Context, vc *Context, values []string) error {
			if vc.Conn == nil {
				return fmt.Errorf("database existence check before instance validation")
			}
			existing, err := vc.Conn.ListDatabases(ctx)
			if err != nil {
				return domain.NewValidationError(domain.ConnectionFailed, "database", "cannot list databases on %s: %v", vc.Conn.Host(), err)
			}
			known := make(map[string]struct{}, len(existing))
			for _, name := range existing {
				known[name] = struct{}{}
			}
			var missing []string
			for _, name := range values {
				if _, ok := known[name]; !ok {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				return domain.NotFoundError("database", missing)
			}
			return nil
		},
	}
}

// Destination validates path syntax, creates the directory when missing and
// warns (non-fatally) when the path looks like a network share the
// execution principal may not be able to write to.
func Destination(logger Logger, dflt string) Field {
	return Field{
		Name:    "destination",
		Prompt:  "Backup destination directory",
		Default: dflt,
		Check: func(ctx context.Context, vc *Context, value string) error {
			if value == "" || badPathChars.MatchString(value) {
				return domain.NewValidationError(domain.SyntaxInvalid, "destination", "%q is not a valid path", value)
			}
			if isNetworkShare(value) {
				logger.Warnf("Destination %s looks like a network share, make sure the scheduler account can write to it", value)
			}
			info, err := os.Stat(value)
			switch {
			case err == nil:
				if !info.IsDir() {
					return domain.NewValidationError(domain.PathUnavailable, "destination", "%s exists and is not a directory", value)
				}
			case os.IsNotExist(err):
				if err := os.MkdirAll(value, 0o755); err != nil {
					return domain.NewValidationError(domain.PathUnavailable, "destination", "cannot create %s: %v", value, err)
				}
				logger.Infof("Created backup destination %s", value)
			default:
				return domain.NewValidationError(domain.PathUnavailable, "destination", "cannot access %s: %v", value, err)
			}
			return nil
		},
	}
}

func isNetworkShare(path string) bool {
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// ExistsFunc is the backend's artifact lookup.
type ExistsFunc func(ctx context.Context, name string) (bool, error)

// ArtifactName enforces the backend charset rule and strict uniqueness:
// an existing artifact of the same name re-prompts, never overwrites.
func ArtifactName(exists ExistsFunc, dflt string) Field {
	return Field{
		Name:    "job name",
		Prompt:  "Name for the scheduled backup job",
		Default: dflt,
		Pattern: artifactPattern,
		Check: func(ctx context.Context, vc *Context, value string) error {
			found, err := exists(ctx, value)
			if err != nil {
				return domain.NewValidationError(domain.ConnectionFailed, "job name", "cannot query existing artifacts: %v", err)
			}
			if found {
				return domain.NewValidationError(domain.NameCollision, "job name", "an artifact named %q already exists", value)
			}
			return nil
		},
	}
}

// MomentField feeds the Moment loop; parsing and the past-time confirmation
// happen in Validator.Moment.
func MomentField(layout, dflt string) Field {
	return Field{
		Name:    "moment",
		Prompt:  fmt.Sprintf("When to run the backup (%s)", layout),
		Default: dflt,
	}
}
