package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/logger"
)

const parsePromptTemplate = `You are an expert resume parser. Extract structured information from the following resume text.

Resume Text:
%TEXT%

Extract and return ONLY a valid JSON object with this exact structure:
{
  "full_name": "string",
  "contact_email": "string",
  "phone": "string",
  "summary": "brief professional summary",
  "skills": ["skill1", "skill2", "skill3"],
  "work_experience": [
    {
      "role": "string",
      "company": "string",
      "duration": "string",
      "description": "string"
    }
  ],
  "education": [
    {
      "degree": "string",
      "institution": "string",
      "year": "string"
    }
  ],
  "links": {
    "linkedin": "url or null",
    "github": "url or null",
    "portfolio": "url or null"
  }
}

Return ONLY the JSON object, no other text.`

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// ResumeParser turns extracted resume text into a structured profile.
// The AI path is preferred; any failure degrades to a conservative
// line-and-regex fallback so the pipeline never stops on parser errors.
type ResumeParser struct {
	ai    domain.ChatCompleter
	model string
}

func NewResumeParser(ai domain.ChatCompleter, model string) *ResumeParser {
	return &ResumeParser{ai: ai, model: model}
}

func (p *ResumeParser) Parse(ctx context.Context, resumeText string) domain.Profile {
	if p.ai != nil {
		prompt := strings.Replace(parsePromptTemplate, "%TEXT%", resumeText, 1)
		// max_tokens kept low to stay within provider credit limits
		raw, err := p.ai.Complete(ctx, p.model, prompt, 800)
		if err == nil {
			var profile domain.Profile
			if jsonErr := json.Unmarshal(extractJSONObject(raw), &profile); jsonErr == nil {
				normalizeProfile(&profile)
				return profile
			}
			logger.Log.Error("Failed to decode parser response as JSON", "response", truncateForLog(raw))
		} else {
			logger.Log.Error("Error parsing resume", "error", err)
		}
	}
	return fallbackParse(resumeText)
}

// fallbackParse is deliberately conservative: first non-empty line as the
// name, the next two lines as a summary, plus regex email and phone.
func fallbackParse(resumeText string) domain.Profile {
	profile := domain.EmptyProfile()

	var lines []string
	for _, l := range strings.Split(resumeText, "\n") {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) > 0 {
		profile.FullName = lines[0]
	}
	if len(lines) > 1 {
		end := 3
		if end > len(lines) {
			end = len(lines)
		}
		profile.Summary = strings.Join(lines[1:end], " ")
	}
	profile.ContactEmail = emailPattern.FindString(resumeText)
	profile.Phone = phonePattern.FindString(resumeText)
	return profile
}

func normalizeProfile(p *domain.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []domain.WorkExperience{}
	}
	if p.Education == nil {
		p.Education = []domain.Education{}
	}
}

// extractJSONObject tolerates markdown code fences and prose around the
// JSON object some models emit despite instructions.
func extractJSONObject(raw string) []byte {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return []byte(raw)
	}
	return []byte(raw[start : end+1])
}

func truncateForLog(s string) string {
	if len(s) <= 300 {
		return s
	}
	return s[:300] + "..."
}
