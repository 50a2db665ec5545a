package domain

import (
	"context"
	"time"
)

// Candidate lifecycle statuses.
const (
	StatusPending         = "pending"
	StatusProcessing      = "processing"
	StatusScreened        = "screened"
	StatusInterviewInvite = "interview_invited"
	StatusFeedbackSent    = "feedback_sent"
)

// WorkExperience is a single entry in a parsed resume's work history.
type WorkExperience struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type Links struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Profile is the structured representation of a resume. It is produced by
// the AI parser or, when the provider is unavailable, the heuristic
// fallback — both paths always yield the full shape with empty defaults.
type Profile struct {
	FullName       string           `json:"full_name"`
	ContactEmail   string           `json:"contact_email"`
	Phone          string           `json:"phone"`
	Summary        string           `json:"summary"`
	Skills         []string         `json:"skills"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	Links          Links            `json:"links"`
	// Tracking fields added by the pipeline, not the parser.
	ResumeFilename  string `json:"resume_filename,omitempty"`
	AppliedPosition string `json:"applied_position,omitempty"`
}

// EmptyProfile returns a zero-value profile with non-nil collections so
// callers and the persistence layer never see nil slices.
func EmptyProfile() Profile {
	return Profile{
		Skills:         []string{},
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
	}
}

// ValidationFlag is an advisory signal for human reviewers. Flags never
// block processing.
type ValidationFlag struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Candidate struct {
	ID              string           `json:"id"`
	SourceEmail     string           `json:"source_email"`
	SenderName      string           `json:"sender_name"`
	EmailSubject    string           `json:"email_subject"`
	RawEmailBody    string           `json:"raw_email_body"`
	ResumeURL       string           `json:"resume_url"`
	ExtractedText   string           `json:"extracted_text"`
	Profile         Profile          `json:"parsed_json"`
	ValidationFlags []ValidationFlag `json:"validation_flags"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CandidateWithScreening is the read model for listings and exports:
// candidate columns joined with the latest screening result, if any.
type CandidateWithScreening struct {
	Candidate
	FitScore          *int               `json:"fit_score,omitempty"`
	Summary           *string            `json:"summary,omitempty"`
	MatchingSkills    []string           `json:"matching_skills,omitempty"`
	Concerns          []string           `json:"concerns,omitempty"`
	RecruiterComments *string            `json:"recruiter_comments,omitempty"`
	JobDescription    *string            `json:"job_description,omitempty"`
	Analysis          *ScreeningAnalysis `json:"analysis_json,omitempty"`
	AuditEvents       []AuditEvent       `json:"audit_logs,omitempty"`
}

type CandidateRepository interface {
	Create(ctx context.Context, c *Candidate) (string, error)
	GetByID(ctx context.Context, id string) (*CandidateWithScreening, error)
	List(ctx context.Context) ([]CandidateWithScreening, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	// ExistsByResume reports whether a candidate with the same sender
	// address and resume filename was already stored (duplicate guard).
	ExistsByResume(ctx context.Context, sourceEmail, filename string) (bool, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Export is the compliance export document: every candidate with its audit
// trail inlined, plus events not tied to any candidate.
type Export struct {
	GeneratedAt    time.Time                `json:"generated_at"`
	CandidateCount int                      `json:"candidate_count"`
	Candidates     []CandidateWithScreening `json:"candidates"`
	GeneralAudit   []AuditEvent             `json:"general_audit_logs"`
}

type CandidateUsecase interface {
	ListCandidates(ctx context.Context) ([]CandidateWithScreening, error)
	GetCandidate(ctx context.Context, id string) (*CandidateWithScreening, error)
	DeleteCandidate(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	ExportCandidates(ctx context.Context) (*Export, error)
	GetStats(ctx context.Context) (*Stats, error)
	GetMetrics(ctx context.Context) (map[string]int64, error)
}

type Stats struct {
	TotalCandidates    int64   `json:"total_candidates"`
	ScreenedCandidates int64   `json:"screened_candidates"`
	AverageFitScore    float64 `json:"average_fit_score"`
}
