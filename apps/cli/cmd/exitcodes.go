package cmd

import (
	"errors"
	"fmt"
)

// Exit codes for suiterun CLI
const (
	// ExitSuccess indicates the run completed and all tests passed
	ExitSuccess = 0

	// ExitFailure indicates a failed test or a fatal error
	ExitFailure = 1

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries a process exit code through cobra's error return
type exitError struct {
	code int
	err  error
	// logged is set when err was already written through the logger
	logged bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageErrorf(format string, args ...any) error {
	return &exitError{code: ExitUsageError, err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFailure
}

// shouldPrint reports whether Execute still has to print err
func shouldPrint(err error) bool {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.err != nil && !ee.logged
	}
	return err != nil
}
