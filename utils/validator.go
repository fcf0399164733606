// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

// Conservative grammar: dot-separated atoms in the local part (so no
// leading, trailing or consecutive dots) and standard domain labels with an
// alphabetic TLD of at least two characters.
var emailRegex = regexp.MustCompile(
	`^[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(\.[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*` +
		`@([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ValidateEmail checks an address against the conservative email grammar.
// The boundary layer uses it to short-circuit decision-email delivery to a
// FAILED state instead of attempting a send that cannot succeed.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
