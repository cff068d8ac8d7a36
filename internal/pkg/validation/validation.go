package validation

import (
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Usernames: letters, digits, dots, underscores, hyphens.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._\-]{3,150}$`)

// Contact numbers: optional +, digits, spaces and dashes.
var contactRe = regexp.MustCompile(`^\+?[0-9][0-9\s\-]{4,20}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidPassword requires at least 8 characters with a letter, a digit and a
// special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// IsValidContactNumber accepts empty (optional field) or a phone-like string.
func IsValidContactNumber(number string) bool {
	return number == "" || contactRe.MatchString(number)
}
