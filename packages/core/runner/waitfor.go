package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/http"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
)

const (
	DefaultWaitTimeout  = 30 * time.Second
	DefaultWaitInterval = time.Second
)

// WaitFor describes a service that must answer before the first test runs
type WaitFor struct {
	URL      string
	Status   int
	Timeout  time.Duration
	Interval time.Duration
}

func (w WaitFor) withDefaults() WaitFor {
	if w.Status == 0 {
		w.Status = 200
	}
	if w.Timeout <= 0 {
		w.Timeout = DefaultWaitTimeout
	}
	if w.Interval <= 0 {
		w.Interval = DefaultWaitInterval
	}
	return w
}

// waitForService polls the URL until it returns the expected status or the
// timeout elapses
func (r *Runner) waitForService(ctx context.Context, w WaitFor) error {
	w = w.withDefaults()

	r.log.Log(fmt.Sprintf("Waiting for %s to return %d (timeout: %v)", w.URL, w.Status, w.Timeout), logger.LevelInfo)

	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	var lastErr error
	var lastStatus int
	for {
		resp, err := r.client.Do(ctx, http.NewRequest("GET", w.URL))
		if err != nil {
			lastErr = err
		} else {
			lastStatus = resp.StatusCode
			if resp.StatusCode == w.Status {
				r.log.Log(fmt.Sprintf("Service %s is ready", w.URL), logger.LevelSuccess)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if lastStatus != 0 {
				return fmt.Errorf("service %s not ready after %v: got status %d, expected %d", w.URL, w.Timeout, lastStatus, w.Status)
			}
			return fmt.Errorf("service %s not ready after %v: %v", w.URL, w.Timeout, lastErr)
		case <-ticker.C:
		}
	}
}
