package validation

import (
	"net/mail"

	"portfolio-catalog/internal/domain"
)

// ValidateEmail validates email format and length.
func ValidateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email address is required")
	}
	// RFC 5321 caps the full address at 254 characters.
	if len(email) > 254 {
		return domain.NewValidationError("email address is too long (max 254 characters)")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.NewValidationError("invalid email address format")
	}
	return nil
}
