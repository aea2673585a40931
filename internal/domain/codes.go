package domain

import (
	"strings"

	"github.com/google/uuid"
)

const codeLength = 8

// NewCode returns a short upper-case shareable token derived from a random UUID.
func NewCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:codeLength])
}

// NormalizeCode canonicalizes user-typed codes.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
