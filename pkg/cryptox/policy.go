package cryptox

import (
	"strings"
	"unicode"
)

// Password length bounds. The upper bound exists because bcrypt truncates
// past 72 bytes and absurdly long inputs are a cheap DoS vector.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 100
)

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?~` + "`"

// commonPasswords is a small deny-list of passwords seen at the top of every
// breach corpus. Checked case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"letmein":     {},
	"iloveyou":    {},
	"admin123":    {},
	"welcome1":    {},
}

// Strength rule messages. Field-level detail is fine here: it concerns the
// caller's own input, not security-sensitive state.
const (
	ruleMinLen  = "must be at least 8 characters"
	ruleMaxLen  = "must be at most 100 characters"
	ruleUpper   = "must contain an uppercase letter"
	ruleLower   = "must contain a lowercase letter"
	ruleDigit   = "must contain a digit"
	ruleSpecial = "must contain a special character"
	ruleCommon  = "is too common"
)

// ValidateStrength checks every rule independently and returns all the unmet
// ones. A nil result means the password is acceptable. Partial credit never
// grants validity.
func ValidateStrength(password string) []string {
	var errs []string

	if len(password) < MinPasswordLen {
		errs = append(errs, ruleMinLen)
	}
	if len(password) > MaxPasswordLen {
		errs = append(errs, ruleMaxLen)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !upper {
		errs = append(errs, ruleUpper)
	}
	if !lower {
		errs = append(errs, ruleLower)
	}
	if !digit {
		errs = append(errs, ruleDigit)
	}
	if !special {
		errs = append(errs, ruleSpecial)
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		errs = append(errs, ruleCommon)
	}

	return errs
}

// ScorePassword rates a password 0-5 for UX feedback. It does not gate
// acceptance; ValidateStrength does that.
func ScorePassword(password string) int {
	score := 0
	if len(password) >= MinPasswordLen {
		score++
	}
	if len(password) >= 12 {
		score++
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if upper && lower {
		score++
	}
	if digit {
		score++
	}
	if special {
		score++
	}

	if hasRepeatedRun(password, 3) {
		score--
	}
	if hasNumericSequence(password, 3) {
		score--
	}

	if score < 0 {
		return 0
	}
	if score > 5 {
		return 5
	}
	return score
}

// hasRepeatedRun reports n or more identical characters in a row.
func hasRepeatedRun(s string, n int) bool {
	run := 1
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// hasNumericSequence reports n or more consecutive ascending or descending
// digits ("123", "987").
func hasNumericSequence(s string, n int) bool {
	runes := []rune(s)
	asc, desc := 1, 1
	for i := 1; i < len(runes); i++ {
		if unicode.IsDigit(runes[i]) && unicode.IsDigit(runes[i-1]) {
			switch runes[i] - runes[i-1] {
			case 1:
				asc++
				desc = 1
			case -1:
				desc++
				asc = 1
			default:
				asc, desc = 1, 1
			}
			if asc >= n || desc >= n {
				return true
			}
		} else {
			asc, desc = 1, 1
		}
	}
	return false
}
