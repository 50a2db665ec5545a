package usecase

import (
	"fmt"
	"strings"

	"resume-screening-backend/internal/domain"
)

// ValidateCandidate cross-checks the parsed profile against the email
// envelope. Mismatches are advisory flags for reviewers and never block
// processing.
func ValidateCandidate(profile domain.Profile, senderEmail, senderName string) []domain.ValidationFlag {
	flags := []domain.ValidationFlag{}

	resumeEmail := strings.ToLower(strings.TrimSpace(profile.ContactEmail))
	if resumeEmail != "" && resumeEmail != strings.ToLower(senderEmail) {
		flags = append(flags, domain.ValidationFlag{
			Type:    "email_mismatch",
			Message: fmt.Sprintf("Resume email (%s) doesn't match sender (%s)", resumeEmail, senderEmail),
		})
	}

	resumeName := strings.ToLower(strings.TrimSpace(profile.FullName))
	if resumeName != "" && senderName != "" {
		senderClean := strings.ToLower(senderName)
		if idx := strings.Index(senderClean, "<"); idx >= 0 {
			senderClean = senderClean[:idx]
		}
		senderClean = strings.TrimSpace(senderClean)
		if senderClean != "" &&
			!strings.Contains(senderClean, resumeName) && !strings.Contains(resumeName, senderClean) {
			flags = append(flags, domain.ValidationFlag{
				Type:    "name_mismatch",
				Message: fmt.Sprintf("Resume name (%s) may not match sender (%s)", resumeName, senderClean),
			})
		}
	}

	return flags
}

// ParseSender splits a raw From header into display name and address.
// `Jane Doe <jane@x.com>` yields ("Jane Doe", "jane@x.com"); a bare address
// yields its local part as the name.
func ParseSender(raw string) (name, email string) {
	if idx := strings.Index(raw, "<"); idx >= 0 {
		name = strings.TrimSpace(raw[:idx])
		email = strings.Trim(strings.TrimSpace(raw[idx+1:]), "<>")
	} else {
		email = strings.TrimSpace(raw)
	}
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		} else {
			name = email
		}
	}
	return name, email
}
