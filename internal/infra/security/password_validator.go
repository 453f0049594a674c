package security

import (
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
)

// passwordSpecialChars is the set accepted as special characters.
const passwordSpecialChars = "!@#$%^&*()-_=+[]{}|;:,.<>?/"

// PasswordValidationError represents a single password policy violation.
// Code matches a message catalog key so handlers can localize it.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules and reports the
// first violation.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// NewDefaultPasswordValidator returns the validator enforcing the account
// password policy: at least 8 characters with an uppercase letter, a
// lowercase letter, a digit, and a special character.
func NewDefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequireUppercaseRule(),
		RequireLowercaseRule(),
		RequireDigitRule(),
		RequireSpecialRule(),
	)
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "password_do_short",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireUppercaseRule ensures the password contains an uppercase letter.
func RequireUppercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsUpper(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "password_any_uppercase",
			Message: "password must contain at least one uppercase letter",
		}
	})
}

// RequireLowercaseRule ensures the password contains a lowercase letter.
func RequireLowercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsLower(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "password_any_lowercase",
			Message: "password must contain at least one lowercase letter",
		}
	})
}

// RequireDigitRule ensures the password contains at least one digit.
func RequireDigitRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsDigit(r) {
				return nil
			}
		}
		return &PasswordValidationError{
			Code:    "password_any_number",
			Message: "password must contain at least one number",
		}
	})
}

// RequireSpecialRule ensures the password contains a special character
// from the accepted set.
func RequireSpecialRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if strings.ContainsAny(password, passwordSpecialChars) {
			return nil
		}
		return &PasswordValidationError{
			Code:    "password_any_special",
			Message: "password must contain at least one special character",
		}
	})
}

// PasswordStrengthScore computes the zxcvbn score (0-4) for a password,
// considering user-specific inputs such as the account email.
func PasswordStrengthScore(password string, userInputs ...string) int {
	return zxcvbn.PasswordStrength(password, userInputs).Score
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score to reject
// passwords that satisfy the character rules but remain guessable.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		if PasswordStrengthScore(password, userInputs...) >= minScore {
			return nil
		}

		return &PasswordValidationError{
			Code:    "password_do_weak",
			Message: "password is too weak; choose a more complex value",
		}
	})
}

var _ port.PasswordPolicyValidator = (*PasswordValidator)(nil)
