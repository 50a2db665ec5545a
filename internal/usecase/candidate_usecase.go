package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/apperror"
	"resume-screening-backend/pkg/logger"
)

type candidateUsecase struct {
	candidateRepo domain.CandidateRepository
	screeningRepo domain.ScreeningRepository
	auditRepo     domain.AuditRepository
	metricRepo    domain.MetricRepository
}

func NewCandidateUsecase(
	candidateRepo domain.CandidateRepository,
	screeningRepo domain.ScreeningRepository,
	auditRepo domain.AuditRepository,
	metricRepo domain.MetricRepository,
) domain.CandidateUsecase {
	return &candidateUsecase{
		candidateRepo: candidateRepo,
		screeningRepo: screeningRepo,
		auditRepo:     auditRepo,
		metricRepo:    metricRepo,
	}
}

func (u *candidateUsecase) ListCandidates(ctx context.Context) ([]domain.CandidateWithScreening, error) {
	return u.candidateRepo.List(ctx)
}

func (u *candidateUsecase) GetCandidate(ctx context.Context, id string) (*domain.CandidateWithScreening, error) {
	cand, err := u.candidateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Candidate not found")
		}
		return nil, err
	}
	return cand, nil
}

// DeleteCandidate removes the candidate row and its screening results
// (cascade). Kept for data-subject erasure requests.
func (u *candidateUsecase) DeleteCandidate(ctx context.Context, id string) error {
	if err := u.candidateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Candidate not found")
		}
		return err
	}
	return nil
}

var validStatuses = map[string]bool{
	domain.StatusPending:         true,
	domain.StatusProcessing:      true,
	domain.StatusScreened:        true,
	domain.StatusInterviewInvite: true,
	domain.StatusFeedbackSent:    true,
}

func (u *candidateUsecase) UpdateStatus(ctx context.Context, id, status string) error {
	if !validStatuses[status] {
		return apperror.BadRequest("Invalid candidate status: " + status)
	}
	if err := u.candidateRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Candidate not found")
		}
		return err
	}
	if err := u.auditRepo.Insert(ctx, &id, domain.AuditStatusUpdate, map[string]any{"status": status}); err != nil {
		logger.Log.Error("Failed to record status_update", "error", err)
	}
	return nil
}

// ExportCandidates assembles the full compliance export: every candidate
// with screening data inlined, plus audit events grouped per candidate and
// system-level events separately.
func (u *candidateUsecase) ExportCandidates(ctx context.Context) (*domain.Export, error) {
	candidates, err := u.candidateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	events, err := u.auditRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byCandidate := map[string][]domain.AuditEvent{}
	general := []domain.AuditEvent{}
	for _, ev := range events {
		if ev.CandidateID != nil {
			byCandidate[*ev.CandidateID] = append(byCandidate[*ev.CandidateID], ev)
		} else {
			general = append(general, ev)
		}
	}
	for i := range candidates {
		candidates[i].AuditEvents = byCandidate[candidates[i].ID]
	}

	return &domain.Export{
		GeneratedAt:    time.Now().UTC(),
		CandidateCount: len(candidates),
		Candidates:     candidates,
		GeneralAudit:   general,
	}, nil
}

func (u *candidateUsecase) GetStats(ctx context.Context) (*domain.Stats, error) {
	total, err := u.candidateRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	screened, err := u.candidateRepo.CountByStatus(ctx, domain.StatusScreened)
	if err != nil {
		return nil, err
	}
	avg, err := u.screeningRepo.AverageFitScore(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		TotalCandidates:    total,
		ScreenedCandidates: screened,
		AverageFitScore:    math.Round(avg*10) / 10,
	}, nil
}

func (u *candidateUsecase) GetMetrics(ctx context.Context) (map[string]int64, error) {
	return u.metricRepo.All(ctx)
}
