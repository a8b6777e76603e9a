package units

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/assertions"
	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/tidwall/gjson"
)

// DataEnvVar carries the JSON-encoded TestData into shell commands
const DataEnvVar = "SUITERUN_DATA"

// ShellOutput is what a finished command produced
type ShellOutput struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Value resolves expectation subjects: exitCode, stdout, stderr, output
// (both streams) and stdout.<path> when stdout is JSON
func (o *ShellOutput) Value(subject string) (any, error) {
	switch subject {
	case "exitCode":
		return o.ExitCode, nil
	case "stdout":
		return strings.TrimSpace(o.Stdout), nil
	case "stderr":
		return strings.TrimSpace(o.Stderr), nil
	case "output":
		return strings.TrimSpace(o.Stdout + o.Stderr), nil
	}
	if path, ok := strings.CutPrefix(subject, "stdout."); ok {
		if !gjson.Valid(o.Stdout) {
			return nil, fmt.Errorf("stdout is not JSON")
		}
		return assertions.JSONValue(gjson.Parse(o.Stdout), path), nil
	}
	return nil, fmt.Errorf("unknown shell subject %q", subject)
}

type shellUnit struct {
	params       params
	baseDir      string
	ignoreExit   bool
	expectedExit int
	expectations []assertions.Expectation
}

// NewShellFactory returns the factory of the shell unit. Relative working
// directories resolve against baseDir.
//
// Params: command (required; a leading "-" ignores the exit code), dir, env,
// timeout, expectExitCode (default 0), expectOutput (substring of stdout),
// expect.
func NewShellFactory(baseDir string) Factory {
	return func(raw map[string]any) (Unit, error) {
		p := params(raw)

		command, err := p.required("command")
		if err != nil {
			return nil, err
		}
		if _, err := p.stringMap("env"); err != nil {
			return nil, err
		}
		if _, err := p.duration("timeout"); err != nil {
			return nil, err
		}
		exit, err := p.integer("expectExitCode", 0)
		if err != nil {
			return nil, err
		}
		exps, err := assertions.Parse(raw["expect"])
		if err != nil {
			return nil, err
		}

		u := &shellUnit{
			params:       p,
			baseDir:      baseDir,
			ignoreExit:   strings.HasPrefix(strings.TrimSpace(command), "-"),
			expectedExit: exit,
			expectations: exps,
		}
		if out := p.str("expectOutput"); out != "" {
			u.expectations = append(u.expectations, assertions.Expectation{Subject: "stdout", Op: "contains", Value: out})
		}
		return u, nil
	}
}

func (u *shellUnit) Run(ctx context.Context, data registry.TestData) (Result, error) {
	p, unresolved := u.params.resolve(data)
	if len(unresolved) > 0 {
		return Failed("%s", strings.Join(unresolved, "; ")), nil
	}

	command := strings.TrimSpace(p.str("command"))
	command = strings.TrimSpace(strings.TrimPrefix(command, "-"))

	if timeout, _ := p.duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	encoded, err := dataJSON(data)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = u.dir(p.str("dir"))
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(), DataEnvVar+"="+encoded)
	extra, _ := p.stringMap("env")
	for k, v := range extra {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	out := &ShellOutput{Command: command}
	runErr := cmd.Run()
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Result{}, fmt.Errorf("shell command failed to start: %s: %w", command, runErr)
		}
		out.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return Failed("shell command timed out: %s", command), nil
		}
	}

	if !u.ignoreExit && out.ExitCode != u.expectedExit {
		return Failed("shell command exited with %d, expected %d: %s\nOutput: %s",
			out.ExitCode, u.expectedExit, command, strings.TrimSpace(out.Stdout+out.Stderr)), nil
	}

	results := assertions.EvaluateAll(out, u.expectations, assertions.WithBaseDir(u.baseDir))
	if msg := assertions.Failures(results); msg != "" {
		return Failed("%s", msg), nil
	}

	return Passed(strings.TrimSpace(out.Stdout)), nil
}

func (u *shellUnit) dir(dir string) string {
	if dir == "" {
		return u.baseDir
	}
	if filepath.IsAbs(dir) || u.baseDir == "" {
		return dir
	}
	return filepath.Join(u.baseDir, dir)
}
