// Package shell is the default CommandRunner, executing external tools the
// same way the backup commands themselves will run.
package shell

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

type Runner struct {
	Timeout time.Duration
}

// Run executes the command and returns its combined output. A non-zero
// exit surfaces as an error wrapping the output for operator diagnostics.
func (r Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed: %w, output: %s", name, err, string(output))
	}
	return output, nil
}
