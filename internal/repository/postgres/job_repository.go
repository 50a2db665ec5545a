package postgres

import (
	"context"
	"errors"
	"fmt"

	"resume-screening-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type jobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) GetActive(ctx context.Context) (*domain.JobDescription, error) {
	return r.queryOne(ctx, `
		SELECT id, title, description, is_active FROM job_descriptions
		WHERE is_active = TRUE
		ORDER BY id
		LIMIT 1`)
}

func (r *jobRepository) ActiveTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT title FROM job_descriptions
		WHERE is_active = TRUE
		ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (r *jobRepository) FindByExactTitle(ctx context.Context, title string) (*domain.JobDescription, error) {
	return r.queryOne(ctx, `
		SELECT id, title, description, is_active FROM job_descriptions
		WHERE is_active = TRUE AND LOWER(title) = LOWER($1)
		ORDER BY id
		LIMIT 1`, title)
}

func (r *jobRepository) FindByTitleKeyword(ctx context.Context, keyword string) (*domain.JobDescription, error) {
	return r.queryOne(ctx, `
		SELECT id, title, description, is_active FROM job_descriptions
		WHERE is_active = TRUE AND title ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT 1`, keyword)
}

func (r *jobRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.JobDescription, error) {
	var jd domain.JobDescription
	err := r.db.QueryRow(ctx, query, args...).Scan(&jd.ID, &jd.Title, &jd.Description, &jd.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &jd, nil
}
