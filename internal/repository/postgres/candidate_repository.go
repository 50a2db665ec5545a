package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resume-screening-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.StatusPending
	}

	parsedJSON, err := json.Marshal(c.Profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	flags := c.ValidationFlags
	if flags == nil {
		flags = []domain.ValidationFlag{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return "", fmt.Errorf("marshal validation flags: %w", err)
	}

	query := `
		INSERT INTO candidates (
			id, source_email, sender_name, email_subject, raw_email_body,
			resume_url, extracted_text, parsed_json, validation_flags, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err = r.db.Exec(ctx, query,
		c.ID, c.SourceEmail, c.SenderName, c.EmailSubject, c.RawEmailBody,
		c.ResumeURL, c.ExtractedText, parsedJSON, flagsJSON, c.Status,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate: %w", err)
	}
	return c.ID, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.CandidateWithScreening, error) {
	query := candidateSelect + ` WHERE c.id = $1`

	row := r.db.QueryRow(ctx, query, id)
	cand, err := scanCandidateWithScreening(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return cand, nil
}

func (r *candidateRepository) List(ctx context.Context) ([]domain.CandidateWithScreening, error) {
	// screened candidates first, best fit on top, then newest
	query := candidateSelect + ` ORDER BY COALESCE(s.fit_score, -1) DESC, c.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	result := []domain.CandidateWithScreening{}
	for rows.Next() {
		cand, err := scanCandidateWithScreening(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cand)
	}
	return result, rows.Err()
}

// candidateSelect joins each candidate with its latest screening result.
const candidateSelect = `
	SELECT
		c.id, c.source_email, c.sender_name, c.email_subject, c.raw_email_body,
		c.resume_url, c.extracted_text, c.parsed_json, c.validation_flags,
		c.status, c.created_at, c.updated_at,
		s.fit_score, s.summary, s.matching_skills, s.concerns,
		s.recruiter_comments, s.job_description, s.analysis_json
	FROM candidates c
	LEFT JOIN LATERAL (
		SELECT * FROM screening_results sr
		WHERE sr.candidate_id = c.id
		ORDER BY sr.created_at DESC
		LIMIT 1
	) s ON TRUE`

func scanCandidateWithScreening(row pgx.Row) (*domain.CandidateWithScreening, error) {
	var (
		cand         domain.CandidateWithScreening
		parsedJSON   []byte
		flagsJSON    []byte
		analysisJSON []byte
		skills       []string
		concerns     []string
	)

	err := row.Scan(
		&cand.ID, &cand.SourceEmail, &cand.SenderName, &cand.EmailSubject, &cand.RawEmailBody,
		&cand.ResumeURL, &cand.ExtractedText, &parsedJSON, &flagsJSON,
		&cand.Status, &cand.CreatedAt, &cand.UpdatedAt,
		&cand.FitScore, &cand.Summary, pq.Array(&skills), pq.Array(&concerns),
		&cand.RecruiterComments, &cand.JobDescription, &analysisJSON,
	)
	if err != nil {
		return nil, err
	}

	cand.Profile = domain.EmptyProfile()
	if len(parsedJSON) > 0 {
		if err := json.Unmarshal(parsedJSON, &cand.Profile); err != nil {
			return nil, fmt.Errorf("decode parsed_json for %s: %w", cand.ID, err)
		}
	}
	cand.ValidationFlags = []domain.ValidationFlag{}
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &cand.ValidationFlags); err != nil {
			return nil, fmt.Errorf("decode validation_flags for %s: %w", cand.ID, err)
		}
	}
	if len(analysisJSON) > 0 {
		var analysis domain.ScreeningAnalysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			return nil, fmt.Errorf("decode analysis_json for %s: %w", cand.ID, err)
		}
		cand.Analysis = &analysis
	}
	cand.MatchingSkills = skills
	cand.Concerns = concerns
	return &cand, nil
}

func (r *candidateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE candidates SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) ExistsByResume(ctx context.Context, sourceEmail, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM candidates
			WHERE source_email = $1 AND parsed_json->>'resume_filename' = $2
		)`, sourceEmail, filename).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate resume: %w", err)
	}
	return exists, nil
}

func (r *candidateRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM candidates WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (r *candidateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&count)
	return count, err
}
