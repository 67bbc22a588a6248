package auth

import (
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// MinPasswordLength is the shortest password the strength policy accepts.
const MinPasswordLength = 8

// ValidatePasswordStrength enforces the account password policy: at least
// MinPasswordLength characters with one uppercase letter, one lowercase
// letter, one digit, and one character outside the alphanumeric set.
// Violating any clause rejects the password.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return policyViolation("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return policyViolation("password must contain an uppercase letter")
	case !hasLower:
		return policyViolation("password must contain a lowercase letter")
	case !hasDigit:
		return policyViolation("password must contain a digit")
	case !hasSpecial:
		return policyViolation("password must contain a non-alphanumeric character")
	}

	return nil
}

// IsValidPassword is the boolean probe over ValidatePasswordStrength.
func IsValidPassword(password string) bool {
	return ValidatePasswordStrength(password) == nil
}

// PasswordStrengthRule adapts the policy into an ozzo validation rule for
// request payloads.
func PasswordStrengthRule() validation.RuleFunc {
	return func(value any) error {
		password, _ := value.(string)
		return ValidatePasswordStrength(password)
	}
}

func policyViolation(message string) error {
	return errors.New(message, errors.CategoryValidation).
		WithTextCode("WEAK_PASSWORD")
}
