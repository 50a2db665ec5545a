package domain

import (
	"context"
	"time"
)

// Recommendation values emitted by the screening engine.
const (
	RecommendationStrongYes = "strong_yes"
	RecommendationConsider  = "consider"
	RecommendationPass      = "pass"
)

// ScreeningAnalysis is the strictly decoded shape of a screening run.
// Both the AI path and the heuristic fallback produce this exact key set,
// so persistence and notifications never branch on the path taken.
type ScreeningAnalysis struct {
	FitScore             int      `json:"fit_score"`
	Summary              string   `json:"summary"`
	MatchingSkills       []string `json:"matching_skills"`
	SpecificStrengths    []string `json:"specific_strengths"`
	SpecificConcerns     []string `json:"specific_concerns"`
	Recommendation       string   `json:"recommendation"`
	RecommendationReason string   `json:"recommendation_reason"`
	Resources            []string `json:"resources,omitempty"`
}

// Normalize defaults missing fields and clamps the fit score into [0,100].
func (a *ScreeningAnalysis) Normalize() {
	if a.FitScore < 0 {
		a.FitScore = 0
	}
	if a.FitScore > 100 {
		a.FitScore = 100
	}
	if a.MatchingSkills == nil {
		a.MatchingSkills = []string{}
	}
	if a.SpecificStrengths == nil {
		a.SpecificStrengths = []string{}
	}
	if a.SpecificConcerns == nil {
		a.SpecificConcerns = []string{}
	}
	if a.Recommendation == "" {
		a.Recommendation = RecommendationConsider
	}
}

// ScreeningResult is the persisted outcome of screening one candidate
// against one job description. Rows are append-only: a reprocessing
// creates a new row rather than updating an existing one.
type ScreeningResult struct {
	ID                int64             `json:"id"`
	CandidateID       string            `json:"candidate_id"`
	JobDescription    string            `json:"job_description"`
	FitScore          int               `json:"fit_score"`
	Summary           string            `json:"summary"`
	MatchingSkills    []string          `json:"matching_skills"`
	Concerns          []string          `json:"concerns"`
	RecruiterComments string            `json:"recruiter_comments"`
	Analysis          ScreeningAnalysis `json:"analysis_json"`
	CreatedAt         time.Time         `json:"created_at"`
}

type ScreeningRepository interface {
	Create(ctx context.Context, r *ScreeningResult) (int64, error)
	GetByCandidateID(ctx context.Context, candidateID string) (*ScreeningResult, error)
	AverageFitScore(ctx context.Context) (float64, error)
}
