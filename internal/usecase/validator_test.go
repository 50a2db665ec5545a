package usecase_test

import (
	"testing"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateCandidate(t *testing.T) {
	t.Run("Matching profile produces no flags", func(t *testing.T) {
		profile := domain.Profile{FullName: "Jane Doe", ContactEmail: "jane@example.com"}
		flags := usecase.ValidateCandidate(profile, "jane@example.com", "Jane Doe")
		assert.Empty(t, flags)
	})

	t.Run("Email comparison is case-insensitive", func(t *testing.T) {
		profile := domain.Profile{ContactEmail: "Jane@Example.COM"}
		flags := usecase.ValidateCandidate(profile, "jane@example.com", "")
		assert.Empty(t, flags)
	})

	t.Run("Different resume email raises email_mismatch", func(t *testing.T) {
		profile := domain.Profile{ContactEmail: "other@example.com"}
		flags := usecase.ValidateCandidate(profile, "jane@example.com", "")

		assert.Len(t, flags, 1)
		assert.Equal(t, "email_mismatch", flags[0].Type)
		assert.Contains(t, flags[0].Message, "other@example.com")
	})

	t.Run("Unrelated names raise name_mismatch", func(t *testing.T) {
		profile := domain.Profile{FullName: "Jane Doe"}
		flags := usecase.ValidateCandidate(profile, "", "Bob Smith")

		assert.Len(t, flags, 1)
		assert.Equal(t, "name_mismatch", flags[0].Type)
	})

	t.Run("Partial name containment is accepted", func(t *testing.T) {
		profile := domain.Profile{FullName: "Jane"}
		flags := usecase.ValidateCandidate(profile, "", "Jane Doe")
		assert.Empty(t, flags)
	})

	t.Run("Empty parsed fields never flag", func(t *testing.T) {
		flags := usecase.ValidateCandidate(domain.Profile{}, "jane@example.com", "Jane Doe")
		assert.Empty(t, flags)
	})
}

func TestParseSender(t *testing.T) {
	t.Run("Display name with angle-bracket address", func(t *testing.T) {
		name, email := usecase.ParseSender("Jane Doe <jane@example.com>")
		assert.Equal(t, "Jane Doe", name)
		assert.Equal(t, "jane@example.com", email)
	})

	t.Run("Bare address uses local part as name", func(t *testing.T) {
		name, email := usecase.ParseSender("jane.doe@example.com")
		assert.Equal(t, "jane.doe", name)
		assert.Equal(t, "jane.doe@example.com", email)
	})

	t.Run("Empty display name falls back to local part", func(t *testing.T) {
		name, email := usecase.ParseSender("<jane@example.com>")
		assert.Equal(t, "jane", name)
		assert.Equal(t, "jane@example.com", email)
	})
}
