package report

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/suiterun/packages/logger"
)

// Trigger generates the report and, when open is set, opens it. A
// generation failure is returned; a failure to open is only logged.
func Trigger(ctx context.Context, rep Reporter, log logger.Logger, open bool) error {
	log.Log("Generating report", logger.LevelInfo)
	if err := rep.GenerateReport(ctx); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	log.Log("Report generated", logger.LevelSuccess)

	if !open {
		return nil
	}
	if err := rep.OpenReport(ctx); err != nil {
		log.Log(fmt.Sprintf("Could not open report: %v", err), logger.LevelWarn)
	}
	return nil
}
