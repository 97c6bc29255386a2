// utils/valid.go
package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = html.EscapeString(input)

	// Remove control characters
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	return input
}

// SanitizePhone normalizes a phone number to E.164. Every store lookup keys
// on the normalized form, so formatting variance can't mint duplicate
// identities.
func SanitizePhone(phone string) (string, error) {
	phone = nonPhoneChars.ReplaceAllString(strings.TrimSpace(phone), "")
	if phone == "" {
		return "", errors.New("phone number is required")
	}

	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if len(phone) < 8 || len(phone) > 16 {
		return "", errors.New("invalid phone number length")
	}

	return phone, nil
}
