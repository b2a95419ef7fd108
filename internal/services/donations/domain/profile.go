package domain

import (
	"strings"

	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
)

// Supported profile locales.
const (
	LocaleEnglish    = "en"
	LocalePortuguese = "pt-BR"
)

// NormalizeProfile trims and validates a new profile.
func NormalizeProfile(p Profile) (Profile, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.DisplayName == "" {
		return Profile{}, apperrors.New(apperrors.CodeProfileDisplayNameEmpty, "display name is required")
	}
	role, ok := ParseRole(string(p.Role))
	if !ok {
		return Profile{}, apperrors.WithMetadata(apperrors.CodeProfileRoleInvalid, "role is invalid", map[string]string{"role": string(p.Role)})
	}
	p.Role = role

	switch strings.ToLower(strings.TrimSpace(p.Locale)) {
	case "", "en", "en-us":
		p.Locale = LocaleEnglish
	case "pt-br", "pt":
		p.Locale = LocalePortuguese
	default:
		return Profile{}, apperrors.WithMetadata(apperrors.CodeProfileLocaleUnsupported, "locale is unsupported", map[string]string{"locale": p.Locale})
	}
	return p, nil
}
