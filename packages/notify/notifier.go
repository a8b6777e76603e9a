// Package notify posts run summaries to chat webhooks.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
	"github.com/abdul-hamid-achik/suiterun/packages/http"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	NotifyAlways  NotifyOn = "always"
	NotifyFailure NotifyOn = "failure"
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends on failure and on the first success after one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates s, defaulting to NotifyFailure when empty
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(strings.ToLower(strings.TrimSpace(s))); n {
	case "":
		return NotifyFailure, nil
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	default:
		return "", fmt.Errorf("invalid notify-on value %q (use always, failure, success, recovery)", s)
	}
}

// RunSummary represents the summary of a test run for notifications
type RunSummary struct {
	Suite         string        `json:"suite,omitempty"`
	TotalTests    int           `json:"total_tests"`
	PassedTests   int           `json:"passed_tests"`
	FailedTests   int           `json:"failed_tests"`
	Duration      time.Duration `json:"duration"`
	FailedResults []FailedTest  `json:"failed_results,omitempty"`
	IsRecovery    bool          `json:"is_recovery,omitempty"`
}

type FailedTest struct {
	Name  string `json:"name"`
	Unit  string `json:"unit,omitempty"`
	Error string `json:"error,omitempty"`
}

// SummaryFromRun builds a RunSummary; suite names what was run
func SummaryFromRun(result *runner.RunResult, suite string) *RunSummary {
	s := &RunSummary{
		Suite:       suite,
		TotalTests:  result.Total,
		PassedTests: result.Passed,
		FailedTests: result.Failed,
		Duration:    result.Duration,
	}
	for _, r := range result.FailedTests() {
		s.FailedResults = append(s.FailedResults, FailedTest{Name: r.Name, Unit: r.Unit, Error: r.Error})
	}
	return s
}

func (s *RunSummary) title() string {
	switch {
	case s.FailedTests > 0:
		return fmt.Sprintf("%d test(s) failed", s.FailedTests)
	case s.IsRecovery:
		return "Tests recovered!"
	default:
		return "All tests passed!"
	}
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(ctx context.Context, summary *RunSummary) error
	Name() string
}

// Manager manages multiple notifiers
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Len returns the number of notifiers
func (m *Manager) Len() int {
	return len(m.notifiers)
}

// Notify sends notifications based on the configured policy. Every notifier
// is attempted; their errors are joined.
func (m *Manager) Notify(ctx context.Context, summary *RunSummary) error {
	shouldNotify := false
	currentSuccess := summary.FailedTests == 0

	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !currentSuccess
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !currentSuccess {
			shouldNotify = true
		}
	}

	m.lastState = currentSuccess

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// postJSON sends payload to url and checks the status against accepted
func postJSON(ctx context.Context, client *http.Client, url string, payload any, accepted ...int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req := http.NewRequest("POST", url).
		SetHeader("Content-Type", "application/json").
		SetBody(string(data))

	resp, err := client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, resp.BodyString())
}

func defaultClient() *http.Client {
	return http.NewClient(http.WithTimeout(10 * time.Second))
}
