package utils

import (
	"regexp"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\p{Cc}\p{Cf}\p{Co}\p{Cs}]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// MaxDisplayNameLength bounds the human label stored on a record
const MaxDisplayNameLength = 80

// Truncate truncates a string to the specified length and adds ellipsis if needed
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return "..."
	}

	return string(runes[:maxLength-3]) + "..."
}

// SanitizeString replaces control characters and collapses whitespace
func SanitizeString(s string) string {
	result := controlChars.ReplaceAllString(s, " ")
	result = whitespace.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// SanitizeDisplayName cleans and bounds an agent's display name
func SanitizeDisplayName(name string) string {
	return Truncate(SanitizeString(name), MaxDisplayNameLength)
}

// NormalizeAddress folds an address into a stable cache key form:
// sanitized, lower case, no trailing punctuation
func NormalizeAddress(address string) string {
	return strings.TrimRight(strings.ToLower(SanitizeString(address)), " ,.;")
}
