package auth

import (
	"strings"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// BearerToken extracts the credential from an "Authorization: Bearer <token>"
// value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", NewValidationError(ErrMissingToken, "authorization header not found", nil)
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", NewValidationError(ErrMalformed, "expected 'Bearer <token>'", nil)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", NewValidationError(ErrMissingToken, "token is empty", nil)
	}
	return token, nil
}
