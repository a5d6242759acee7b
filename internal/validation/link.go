package validation

import (
	"net/url"
	"strings"

	"portfolio-catalog/internal/domain"
)

const maxURLLength = 2048

// ValidateURL accepts only absolute URLs with a scheme and a host. The URL is
// stored as given, so surrounding whitespace is rejected rather than trimmed.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return domain.NewValidationError("url is required")
	}
	if strings.TrimSpace(raw) != raw {
		return domain.NewValidationError("url must not start or end with whitespace")
	}
	if len(raw) > maxURLLength {
		return domain.NewValidationError("url is too long (max %d characters)", maxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.NewValidationError("invalid url: must be absolute, e.g. https://example.com/video")
	}
	return nil
}

func ValidateLink(in domain.LinkInput) error {
	if !in.Kind.IsValid() {
		return domain.NewValidationError("invalid media kind: %q", in.Kind)
	}
	return ValidateURL(in.URL)
}
