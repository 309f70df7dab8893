package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxDisplayNameLength = 40
	DefaultDisplayName   = "Anonymous"
)

// ValidateDisplayName checks a trimmed display name.
// Rules: at most 40 characters, printable, no control characters.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return &ValidationError{Field: "displayName", Message: "Display name must be at most 40 characters"}
	}

	for _, r := range name {
		if !unicode.IsPrint(r) {
			return &ValidationError{Field: "displayName", Message: "Display name contains invalid characters"}
		}
	}

	return nil
}

// NormalizeDisplayName trims the name and falls back to "Anonymous".
func NormalizeDisplayName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return DefaultDisplayName
	}
	return name
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
