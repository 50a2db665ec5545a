package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resume-screening-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type screeningRepository struct {
	db *pgxpool.Pool
}

func NewScreeningRepository(db *pgxpool.Pool) domain.ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(ctx context.Context, res *domain.ScreeningResult) (int64, error) {
	analysisJSON, err := json.Marshal(res.Analysis)
	if err != nil {
		return 0, fmt.Errorf("marshal analysis: %w", err)
	}

	skills := res.MatchingSkills
	if skills == nil {
		skills = []string{}
	}
	concerns := res.Concerns
	if concerns == nil {
		concerns = []string{}
	}

	query := `
		INSERT INTO screening_results (
			candidate_id, job_description, fit_score, summary,
			matching_skills, concerns, recruiter_comments, analysis_json, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id`

	var id int64
	err = r.db.QueryRow(ctx, query,
		res.CandidateID, res.JobDescription, res.FitScore, res.Summary,
		pq.Array(skills), pq.Array(concerns), res.RecruiterComments, analysisJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert screening result: %w", err)
	}
	return id, nil
}

func (r *screeningRepository) GetByCandidateID(ctx context.Context, candidateID string) (*domain.ScreeningResult, error) {
	query := `
		SELECT id, candidate_id, job_description, fit_score, summary,
		       matching_skills, concerns, recruiter_comments, analysis_json, created_at
		FROM screening_results
		WHERE candidate_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var (
		res          domain.ScreeningResult
		skills       []string
		concerns     []string
		analysisJSON []byte
	)
	err := r.db.QueryRow(ctx, query, candidateID).Scan(
		&res.ID, &res.CandidateID, &res.JobDescription, &res.FitScore, &res.Summary,
		pq.Array(&skills), pq.Array(&concerns), &res.RecruiterComments, &analysisJSON, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	res.MatchingSkills = skills
	res.Concerns = concerns
	if len(analysisJSON) > 0 {
		if err := json.Unmarshal(analysisJSON, &res.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis_json: %w", err)
		}
	}
	return &res, nil
}

func (r *screeningRepository) AverageFitScore(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(AVG(fit_score), 0) FROM screening_results`).Scan(&avg)
	return avg, err
}
