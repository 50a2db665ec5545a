package usecase

import (
	"context"
	"sort"
	"strings"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/logger"
)

// fallbackPatterns covers common roles when the job_descriptions table is
// empty or unreachable.
var fallbackPatterns = map[string][]string{
	"AI Engineer":         {"ai engineer", "ai engineering", "artificial intelligence"},
	"Backend Engineer":    {"backend engineer", "backend developer", "backend dev"},
	"Frontend Engineer":   {"frontend engineer", "frontend developer", "frontend dev"},
	"Full Stack Engineer": {"full stack", "fullstack", "full-stack"},
	"Data Scientist":      {"data scientist", "data science", "machine learning"},
}

// PositionMatcher infers which opening an application targets from the
// email subject and body, using keyword patterns derived from active job
// titles.
type PositionMatcher struct {
	jobs domain.JobRepository
}

func NewPositionMatcher(jobs domain.JobRepository) *PositionMatcher {
	return &PositionMatcher{jobs: jobs}
}

// Detect returns the inferred position title, or "" when nothing matches.
// When multiple patterns match, the longest pattern wins; length ties go to
// the first title in sorted order.
func (m *PositionMatcher) Detect(ctx context.Context, subject, body string) string {
	text := strings.ToLower(subject + " " + body)

	titles, err := m.jobs.ActiveTitles(ctx)
	if err != nil {
		logger.Log.Error("Error getting position patterns from job descriptions", "error", err)
	}

	patterns := make(map[string][]string)
	var order []string
	if len(titles) > 0 {
		for _, title := range titles {
			patterns[title] = GeneratePositionPatterns(title)
			order = append(order, title)
		}
	} else {
		for title := range fallbackPatterns {
			order = append(order, title)
		}
		// deterministic iteration to keep the tie-break stable
		sort.Strings(order)
		for _, title := range order {
			patterns[title] = fallbackPatterns[title]
		}
	}

	var (
		best        string
		bestPattern string
	)
	for _, title := range order {
		for _, pattern := range patterns[title] {
			if strings.Contains(text, pattern) && len(pattern) > len(bestPattern) {
				best = title
				bestPattern = pattern
			}
		}
	}
	if best != "" {
		return best
	}

	// weaker fallback: any significant word of a title appearing in the text
	for _, title := range order {
		for _, word := range strings.Fields(strings.ToLower(title)) {
			if len(word) > 2 && strings.Contains(text, word) {
				return title
			}
		}
	}
	return ""
}

// JobFor resolves the job description for a detected position: exact title
// match, then first-word partial match, then the default active opening.
func (m *PositionMatcher) JobFor(ctx context.Context, position string) (*domain.JobDescription, error) {
	if position == "" {
		return m.jobs.GetActive(ctx)
	}

	jd, err := m.jobs.FindByExactTitle(ctx, position)
	if err != nil {
		return nil, err
	}
	if jd != nil {
		return jd, nil
	}

	firstWord := position
	if idx := strings.Index(position, " "); idx > 0 {
		firstWord = position[:idx]
	}
	jd, err = m.jobs.FindByTitleKeyword(ctx, firstWord)
	if err != nil {
		return nil, err
	}
	if jd != nil {
		return jd, nil
	}

	return m.jobs.GetActive(ctx)
}

// GeneratePositionPatterns expands a job title into lowercase search
// patterns, covering common synonyms and a senior variant.
func GeneratePositionPatterns(title string) []string {
	lower := strings.ToLower(title)
	patterns := []string{lower}

	if strings.Contains(lower, "engineer") {
		patterns = append(patterns,
			strings.ReplaceAll(lower, "engineer", "developer"),
			strings.ReplaceAll(lower, "engineer", "dev"),
		)
	}
	if strings.Contains(lower, "ai") {
		patterns = append(patterns, "artificial intelligence", "ai specialist", "ai developer", "ai")
	}
	if strings.Contains(lower, "backend") {
		patterns = append(patterns, "server side", "api developer", "backend dev")
	}
	if strings.Contains(lower, "frontend") {
		patterns = append(patterns, "ui developer", "react developer", "frontend dev")
	}
	if strings.Contains(lower, "full stack") {
		patterns = append(patterns, "fullstack", "full-stack", "full stack developer")
	}
	if strings.Contains(lower, "data scientist") {
		patterns = append(patterns, "data science", "machine learning", "ml engineer", "data analyst")
	}
	if !strings.Contains(lower, "senior") {
		patterns = append(patterns, "senior "+lower)
	}
	return patterns
}
