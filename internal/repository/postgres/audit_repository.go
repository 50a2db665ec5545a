package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"resume-screening-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type auditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) domain.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, candidateID *string, action string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (candidate_id, action, details, created_at)
		VALUES ($1, $2, $3, NOW())`,
		candidateID, action, detailsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

func (r *auditRepository) HasProcessedMessage(ctx context.Context, messageID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM audit_logs
			WHERE action = $1 AND details->>'message_id' = $2
		)`, domain.AuditEmailProcessed, messageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed message: %w", err)
	}
	return exists, nil
}

func (r *auditRepository) ListAll(ctx context.Context) ([]domain.AuditEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, candidate_id, action, details, created_at
		FROM audit_logs
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	events := []domain.AuditEvent{}
	for rows.Next() {
		var (
			ev          domain.AuditEvent
			detailsJSON []byte
		)
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &ev.Action, &detailsJSON, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.Details = map[string]any{}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &ev.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
