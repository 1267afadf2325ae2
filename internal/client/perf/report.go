package perf

import (
	"context"
	"fmt"
	"sort"
)

// DefaultRegressionBudget is the fraction of the median by which a series
// may drift upward over its span before it is flagged.
const DefaultRegressionBudget = 0.10

// minSamplesForTrend is the smallest series for which a slope is
// meaningful.
const minSamplesForTrend = 3

// Report summarizes a stored metric series. Slope is in metric units per
// day; Regression is set when the projected drift over the series' span
// exceeds the budget fraction of the median.
type Report struct {
	Metric     string
	Count      int
	Median     float64
	Slope      float64
	Regression bool
}

// Analyzer computes reports over stored metric series.
type Analyzer struct {
	repo   Repository
	budget float64
}

func NewAnalyzer(repo Repository, budget float64) *Analyzer {
	if budget <= 0 {
		budget = DefaultRegressionBudget
	}
	return &Analyzer{repo: repo, budget: budget}
}

// Report analyzes one metric. An empty series yields a zero report, not an
// error.
func (a *Analyzer) Report(ctx context.Context, metric string) (Report, error) {
	samples, err := a.repo.List(ctx, metric)
	if err != nil {
		return Report{}, fmt.Errorf("analyze %s: %w", metric, err)
	}

	rep := Report{Metric: metric, Count: len(samples)}
	if len(samples) == 0 {
		return rep, nil
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	rep.Median = Median(values)

	if len(samples) >= minSamplesForTrend {
		rep.Slope = Slope(samples)
		spanDays := samples[len(samples)-1].RecordedAt.Sub(samples[0].RecordedAt).Hours() / 24
		if rep.Slope > 0 && rep.Median > 0 && spanDays > 0 {
			rep.Regression = rep.Slope*spanDays > rep.Median*a.budget
		}
	}
	return rep, nil
}

// Median returns the middle value of the series; for even-length series,
// the mean of the two middle values. Panics on an empty slice.
func Median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Slope fits a least-squares line to (time, value) pairs and returns its
// slope in metric units per day. Series where all samples share one
// timestamp yield zero.
func Slope(samples []Sample) float64 {
	n := float64(len(samples))
	if n < 2 {
		return 0
	}

	t0 := samples[0].RecordedAt
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.RecordedAt.Sub(t0).Hours() / 24
		sumX += x
		sumY += s.Value
		sumXY += x * s.Value
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
