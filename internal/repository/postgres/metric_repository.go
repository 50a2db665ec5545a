package postgres

import (
	"context"
	"fmt"

	"resume-screening-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type metricRepository struct {
	db *pgxpool.Pool
}

func NewMetricRepository(db *pgxpool.Pool) domain.MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) Increment(ctx context.Context, name string, delta int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO metrics (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			value = metrics.value + EXCLUDED.value,
			updated_at = NOW()`,
		name, delta)
	if err != nil {
		return fmt.Errorf("failed to increment metric %s: %w", name, err)
	}
	return nil
}

func (r *metricRepository) All(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT name, value FROM metrics ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			name  string
			value int64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}
