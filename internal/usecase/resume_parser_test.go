package usecase_test

import (
	"context"
	"errors"
	"testing"

	"resume-screening-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

const sampleResume = `Jane Doe
Senior Backend Engineer
8 years building distributed systems in Go.

Contact: jane.doe@example.com | +1 (415) 555-0123

Skills: Go, PostgreSQL, Kubernetes`

func TestParseWithAI(t *testing.T) {
	ctx := context.Background()

	t.Run("Decodes a clean JSON response", func(t *testing.T) {
		completer := &fakeCompleter{response: `{
			"full_name": "Jane Doe",
			"contact_email": "jane.doe@example.com",
			"phone": "+1 415 555 0123",
			"summary": "Backend engineer",
			"skills": ["Go", "PostgreSQL"]
		}`}
		parser := usecase.NewResumeParser(completer, "test-model")

		profile := parser.Parse(ctx, sampleResume)

		assert.Equal(t, "Jane Doe", profile.FullName)
		assert.Equal(t, "jane.doe@example.com", profile.ContactEmail)
		assert.Equal(t, []string{"Go", "PostgreSQL"}, profile.Skills)
		// missing collections are defaulted, never nil
		assert.NotNil(t, profile.WorkExperience)
		assert.NotNil(t, profile.Education)
	})

	t.Run("Tolerates markdown fences around the JSON object", func(t *testing.T) {
		completer := &fakeCompleter{response: "```json\n{\"full_name\": \"Jane Doe\", \"skills\": []}\n```"}
		parser := usecase.NewResumeParser(completer, "test-model")

		profile := parser.Parse(ctx, sampleResume)
		assert.Equal(t, "Jane Doe", profile.FullName)
	})

	t.Run("Provider error degrades to the line-based fallback", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("upstream timeout")}
		parser := usecase.NewResumeParser(completer, "test-model")

		profile := parser.Parse(ctx, sampleResume)
		assert.Equal(t, "Jane Doe", profile.FullName)
		assert.Equal(t, "jane.doe@example.com", profile.ContactEmail)
	})

	t.Run("Non-JSON response degrades to the line-based fallback", func(t *testing.T) {
		completer := &fakeCompleter{response: "I am unable to parse this resume."}
		parser := usecase.NewResumeParser(completer, "test-model")

		profile := parser.Parse(ctx, sampleResume)
		assert.Equal(t, "Jane Doe", profile.FullName)
	})
}

func TestFallbackParse(t *testing.T) {
	ctx := context.Background()
	// nil completer always takes the fallback path
	parser := usecase.NewResumeParser(nil, "test-model")

	t.Run("First line is the name, next two the summary", func(t *testing.T) {
		profile := parser.Parse(ctx, sampleResume)

		assert.Equal(t, "Jane Doe", profile.FullName)
		assert.Equal(t, "Senior Backend Engineer 8 years building distributed systems in Go.", profile.Summary)
	})

	t.Run("Email and phone are pulled by pattern", func(t *testing.T) {
		profile := parser.Parse(ctx, sampleResume)

		assert.Equal(t, "jane.doe@example.com", profile.ContactEmail)
		assert.NotEmpty(t, profile.Phone)
	})

	t.Run("Blank leading lines are skipped", func(t *testing.T) {
		profile := parser.Parse(ctx, "\n\n  \nJohn Smith\nDevOps Engineer")
		assert.Equal(t, "John Smith", profile.FullName)
		assert.Equal(t, "DevOps Engineer", profile.Summary)
	})

	t.Run("Empty input yields an empty but well-formed profile", func(t *testing.T) {
		profile := parser.Parse(ctx, "")

		assert.Empty(t, profile.FullName)
		assert.NotNil(t, profile.Skills)
		assert.NotNil(t, profile.WorkExperience)
		assert.NotNil(t, profile.Education)
	})
}
