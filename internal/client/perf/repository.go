// Package perf implements the client-side performance harness: recording
// named metric samples (e.g. time-to-interactive) into the vault and
// detecting regressions over the stored series.
package perf

import (
	"context"
	"fmt"
	"time"

	"github.com/teachbridge/authkit/internal/dbx"
)

// Sample is one recorded measurement of a named metric.
type Sample struct {
	Metric     string
	Value      float64
	RecordedAt time.Time
}

// Repository stores and retrieves metric samples.
type Repository interface {
	Add(ctx context.Context, s Sample) error
	List(ctx context.Context, metric string) ([]Sample, error)
	Metrics(ctx context.Context) ([]string, error)
	Clear(ctx context.Context, metric string) error
}

// SQLiteRepository persists samples in the vault's perf_samples table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, s Sample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO perf_samples (metric, value, recorded_at) VALUES (?, ?, ?)`,
		s.Metric, s.Value, s.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to add sample[%s]: %w", s.Metric, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, metric string) ([]Sample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT metric, value, recorded_at FROM perf_samples WHERE metric = ? ORDER BY recorded_at`,
		metric)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples[%s]: %w", metric, err)
	}
	defer rows.Close()

	var result []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Metric, &s.Value, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sample rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Metrics(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT metric FROM perf_samples ORDER BY metric`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metric rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, metric string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM perf_samples WHERE metric = ?`, metric)
	if err != nil {
		return fmt.Errorf("failed to clear samples[%s]: %w", metric, err)
	}
	return nil
}
