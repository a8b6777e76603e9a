package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/logger"
)

// ErrSetupFailed wraps any failure of run-level setup
var ErrSetupFailed = errors.New("run setup failed")

// Hooks are shell commands run once per run, from Config.BaseDir
type Hooks struct {
	BeforeAll []string
	AfterAll  []string
}

// setup waits for every service then runs the beforeAll hooks, stopping at
// the first failure
func (r *Runner) setup(ctx context.Context) error {
	for _, w := range r.config.WaitFor {
		if err := r.waitForService(ctx, w); err != nil {
			return fmt.Errorf("%w: %v", ErrSetupFailed, err)
		}
	}
	for _, cmd := range r.config.Hooks.BeforeAll {
		if err := r.executeHook(ctx, cmd); err != nil {
			return fmt.Errorf("%w: beforeAll hook: %v", ErrSetupFailed, err)
		}
	}
	return nil
}

// teardown runs every afterAll hook. Failures are logged and do not affect
// the run result.
func (r *Runner) teardown(ctx context.Context) {
	for _, cmd := range r.config.Hooks.AfterAll {
		if err := r.executeHook(ctx, cmd); err != nil {
			r.log.Log(fmt.Sprintf("afterAll hook failed: %v", err), logger.LevelWarn)
		}
	}
}

func (r *Runner) executeHook(ctx context.Context, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}

	baseDir := r.config.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	// ./script and ../script are relative to the config directory
	parts := strings.Fields(command)
	if strings.HasPrefix(parts[0], "./") || strings.HasPrefix(parts[0], "../") {
		parts[0] = filepath.Join(baseDir, parts[0])
		command = strings.Join(parts, " ")
	}

	r.log.Log(fmt.Sprintf("Running hook: %s", command), logger.LevelInfo)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = baseDir
	cmd.Env = os.Environ()
	cmd.WaitDelay = time.Second

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command %q failed: %v: %s", command, err, strings.TrimSpace(string(output)))
	}
	return nil
}
