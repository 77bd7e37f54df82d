package validation

import (
	"regexp"
	"unicode"
)

// Same email rule as the legacy frontend: /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Algorand addresses are 58 chars of base32 (A-Z, 2-7).
var algoAddrRe = regexp.MustCompile(`^[A-Z2-7]{58}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidWalletAddress checks the Algorand address format.
func IsValidWalletAddress(addr string) bool {
	return algoAddrRe.MatchString(addr)
}

// IsValidPassword enforces:
// - at least 8 characters
// - contains at least one letter
// - contains at least one number
// - contains at least one special character
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
