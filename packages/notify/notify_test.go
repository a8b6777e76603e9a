package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	name  string
	err   error
	calls []*RunSummary
}

func (f *fakeNotifier) Notify(_ context.Context, s *RunSummary) error {
	f.calls = append(f.calls, s)
	return f.err
}

func (f *fakeNotifier) Name() string { return f.name }

func summary(failed int) *RunSummary {
	return &RunSummary{TotalTests: 3, PassedTests: 3 - failed, FailedTests: failed}
}

func TestParseNotifyOn(t *testing.T) {
	n, err := ParseNotifyOn("")
	require.NoError(t, err)
	assert.Equal(t, NotifyFailure, n)

	n, err = ParseNotifyOn(" Recovery ")
	require.NoError(t, err)
	assert.Equal(t, NotifyRecovery, n)

	_, err = ParseNotifyOn("sometimes")
	assert.Error(t, err)
}

func TestManager_Policy(t *testing.T) {
	tests := []struct {
		name     string
		on       NotifyOn
		failures []int
		want     int
	}{
		{"always", NotifyAlways, []int{0, 1}, 2},
		{"failure", NotifyFailure, []int{0, 1, 0}, 1},
		{"success", NotifySuccess, []int{0, 1, 0}, 2},
		{"recovery", NotifyRecovery, []int{0, 1, 0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeNotifier{name: "fake"}
			m := NewManager(tt.on, f)
			for _, failed := range tt.failures {
				require.NoError(t, m.Notify(context.Background(), summary(failed)))
			}
			assert.Len(t, f.calls, tt.want)
		})
	}
}

func TestManager_RecoveryFlag(t *testing.T) {
	f := &fakeNotifier{name: "fake"}
	m := NewManager(NotifyRecovery, f)

	require.NoError(t, m.Notify(context.Background(), summary(1)))
	recovered := summary(0)
	require.NoError(t, m.Notify(context.Background(), recovered))

	assert.True(t, recovered.IsRecovery)
	assert.Equal(t, "Tests recovered!", recovered.title())
}

func TestManager_AttemptsEveryNotifier(t *testing.T) {
	bad := &fakeNotifier{name: "bad", err: errors.New("down")}
	good := &fakeNotifier{name: "good"}
	m := NewManager(NotifyAlways, bad)
	m.AddNotifier(good)

	err := m.Notify(context.Background(), summary(0))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Len(t, good.calls, 1)
	assert.Equal(t, 2, m.Len())
}

func TestSummaryFromRun(t *testing.T) {
	s := SummaryFromRun(&runner.RunResult{
		Results: []*runner.TestResult{
			{Name: "a", Passed: true},
			{Name: "b", Unit: "http", Error: "Test b failed: status 500"},
		},
		Total:    2,
		Passed:   1,
		Failed:   1,
		Duration: time.Second,
	}, "tag smoke")

	assert.Equal(t, "tag smoke", s.Suite)
	assert.Equal(t, 2, s.TotalTests)
	assert.Equal(t, []FailedTest{{Name: "b", Unit: "http", Error: "Test b failed: status 500"}}, s.FailedResults)
	assert.Equal(t, "1 test(s) failed", s.title())
}

func captureServer(t *testing.T, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func TestSlackNotifier(t *testing.T) {
	server, got := captureServer(t, http.StatusOK)
	s := NewSlackNotifier(server.URL, WithSlackChannel("#qa"))

	s2 := SummaryFromRun(&runner.RunResult{
		Results: []*runner.TestResult{{Name: "checkout", Error: "boom"}},
		Total:   1,
		Failed:  1,
	}, "")
	require.NoError(t, s.Notify(context.Background(), s2))

	assert.Equal(t, "slack", s.Name())
	assert.Equal(t, "#qa", (*got)["channel"])
	assert.Equal(t, "suiterun", (*got)["username"])
	attachments := (*got)["attachments"].([]any)
	require.Len(t, attachments, 1)
	att := attachments[0].(map[string]any)
	assert.Equal(t, "danger", att["color"])
	assert.Contains(t, att["text"], "`checkout`: boom")
}

func TestSlackNotifier_ErrorStatus(t *testing.T) {
	server, _ := captureServer(t, http.StatusForbidden)
	err := NewSlackNotifier(server.URL).Notify(context.Background(), summary(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestTeamsNotifier(t *testing.T) {
	server, got := captureServer(t, http.StatusAccepted)
	n := NewTeamsNotifier(server.URL)

	require.NoError(t, n.Notify(context.Background(), &RunSummary{TotalTests: 2, PassedTests: 2, Suite: "all"}))

	assert.Equal(t, "teams", n.Name())
	assert.Equal(t, "message", (*got)["type"])
	card := (*got)["attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, "application/vnd.microsoft.card.adaptive", card["contentType"])
	content := card["content"].(map[string]any)
	body := content["body"].([]any)
	assert.Equal(t, "All tests passed!", body[0].(map[string]any)["text"])
	assert.Equal(t, "**Suite:** all", body[2].(map[string]any)["text"])
}
