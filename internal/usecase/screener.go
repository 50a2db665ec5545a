package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/logger"
)

const screeningSchema = `{
    "fit_score": 0,
    "summary": "",
    "matching_skills": [""],
    "specific_strengths": [""],
    "specific_concerns": [""],
    "recommendation": "",
    "recommendation_reason": "",
    "resources": [""]
}`

// Screener evaluates a parsed profile against a job description. When the
// model provider is unreachable or over quota, a keyword heuristic produces
// the same analysis shape so downstream persistence and notifications never
// branch on which path ran.
type Screener struct {
	ai    domain.ChatCompleter
	model string
}

func NewScreener(ai domain.ChatCompleter, model string) *Screener {
	return &Screener{ai: ai, model: model}
}

func (s *Screener) Screen(ctx context.Context, profile domain.Profile, jobDescription string) domain.ScreeningAnalysis {
	if s.ai != nil {
		analysis, err := s.screenWithAI(ctx, profile, jobDescription)
		if err == nil {
			return analysis
		}
		logger.Log.Error("Error screening candidate, falling back to heuristic screening", "error", err)
	}
	return heuristicScreen(profile, jobDescription)
}

func (s *Screener) screenWithAI(ctx context.Context, profile domain.Profile, jobDescription string) (domain.ScreeningAnalysis, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return domain.ScreeningAnalysis{}, fmt.Errorf("marshal profile: %w", err)
	}

	prompt := "You are an experienced technical recruiter. Screen this candidate for the job position.\n\n" +
		"Job Description:\n" + jobDescription + "\n\n" +
		"Candidate Profile:\n" + string(profileJSON) + "\n\n" +
		"Analyze the candidate thoroughly against the specific job requirements and return ONLY a valid JSON object with this exact structure:\n" +
		screeningSchema +
		"\n\nScoring Guidelines:\n" +
		"- 90-100: Exceptional match, exceeds requirements\n" +
		"- 75-89: Strong match, meets most requirements\n" +
		"- 60-74: Good match, meets core requirements\n" +
		"- 40-59: Partial match, missing key skills\n" +
		"- 0-39: Poor match, significant gaps\n\n" +
		"For the 'resources' field, suggest 3-5 relevant learning resources (courses, books, tutorials, certifications) that would help the candidate improve their skills based on their current profile and any gaps identified in the analysis. Make suggestions specific to their background and the job requirements.\n\n" +
		"Important: Base your analysis ONLY on the actual candidate data provided. Do not invent details. Each field must be specific to this candidate and the job description. Return ONLY the JSON object, no other text."

	raw, err := s.ai.Complete(ctx, s.model, prompt, 800)
	if err != nil {
		return domain.ScreeningAnalysis{}, err
	}

	var analysis domain.ScreeningAnalysis
	if err := json.Unmarshal(extractJSONObject(raw), &analysis); err != nil {
		return domain.ScreeningAnalysis{}, fmt.Errorf("decode screening response: %w", err)
	}
	analysis.Normalize()
	return analysis, nil
}

// RecruiterComments generates a short informal note about the candidate.
// Failures degrade to a neutral stock comment.
func (s *Screener) RecruiterComments(ctx context.Context, profile domain.Profile, analysis domain.ScreeningAnalysis) string {
	const fallback = "Candidate profile reviewed. Will discuss with hiring team."
	if s.ai == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`You are Sarah, a friendly and insightful technical recruiter at Aurora Labs. Write a brief, personalized comment about this candidate.

Candidate: %s
Fit Score: %d
Summary: %s

Write 2-3 sentences with personality that:
- Sounds natural and conversational
- Highlights what excites you or concerns you
- Suggests next steps (interview, technical assessment, pass)

Be honest but professional. Show enthusiasm for strong candidates.`,
		profile.FullName, analysis.FitScore, analysis.Summary)

	raw, err := s.ai.Complete(ctx, s.model, prompt, 200)
	if err != nil {
		logger.Log.Error("Error generating recruiter comments", "error", err)
		return fallback
	}
	return strings.TrimSpace(raw)
}

// heuristicScreen scores on keyword overlap: base 40, +10 per matching
// skill (max +40), +3 per work experience entry (max +20), +5 for an
// advanced degree, clamped to [0,100].
func heuristicScreen(profile domain.Profile, jobDescription string) domain.ScreeningAnalysis {
	jd := strings.ToLower(jobDescription)

	var matching []string
	for _, skill := range profile.Skills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s != "" && strings.Contains(jd, s) {
			matching = append(matching, s)
		}
		if len(matching) == 10 {
			break
		}
	}

	expCount := len(profile.WorkExperience)

	degreeBonus := 0
	for _, edu := range profile.Education {
		degree := strings.ToLower(edu.Degree)
		if strings.Contains(degree, "master") || strings.Contains(degree, "phd") {
			degreeBonus = 5
			break
		}
	}

	skillPoints := len(matching) * 10
	if skillPoints > 40 {
		skillPoints = 40
	}
	expPoints := expCount * 3
	if expPoints > 20 {
		expPoints = 20
	}
	score := 40 + skillPoints + expPoints + degreeBonus

	var strengths []string
	for i, skill := range matching {
		if i == 5 {
			break
		}
		strengths = append(strengths, "Has relevant skill: "+skill)
	}
	if expCount > 0 {
		strengths = append(strengths, fmt.Sprintf("%d relevant roles listed in work experience", expCount))
	}

	var concerns []string
	if len(matching) == 0 {
		concerns = append(concerns, "No clear matching skills found in resume for this job description")
	}
	if expCount == 0 {
		concerns = append(concerns, "No work experience entries detected; verify resume content")
	}

	recommendation := domain.RecommendationPass
	switch {
	case score >= 90:
		recommendation = domain.RecommendationStrongYes
	case score >= 60:
		recommendation = domain.RecommendationConsider
	}

	analysis := domain.ScreeningAnalysis{
		FitScore:       score,
		Summary:        fmt.Sprintf("Heuristic: %d skill matches, %d roles listed.", len(matching), expCount),
		MatchingSkills: matching,
		Recommendation: recommendation,
		RecommendationReason: fmt.Sprintf(
			"Heuristic screening based on %d matching skills and %d experience entries. "+
				"This is an automated fallback result and may be less accurate than AI screening.",
			len(matching), expCount),
		SpecificStrengths: strengths,
		SpecificConcerns:  concerns,
	}
	analysis.Normalize()
	return analysis
}
