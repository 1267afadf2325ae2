package cli

import (
	"context"
	"fmt"
)

// PerfReport prints the regression report for every stored metric.
func (a *App) PerfReport(ctx context.Context) error {
	metrics, err := a.perfRepo.Metrics(ctx)
	if err != nil {
		printlnFn("Could not read metrics:", err.Error())
		return nil
	}
	if len(metrics) == 0 {
		printlnFn("No performance samples recorded.")
		return nil
	}

	for _, metric := range metrics {
		rep, err := a.analyzer.Report(ctx, metric)
		if err != nil {
			printlnFn("Could not analyze", metric+":", err.Error())
			continue
		}

		status := "ok"
		if rep.Regression {
			status = "REGRESSION"
		}
		printlnFn(fmt.Sprintf("%-24s n=%-4d median=%.2f slope=%.4f/day %s",
			rep.Metric, rep.Count, rep.Median, rep.Slope, status))
	}
	return nil
}
