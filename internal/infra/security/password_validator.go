package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	defaultMinPasswordLength = 8
	defaultMinZxcvbnScore    = 2
	defaultCharacterClasses  = 3
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// PasswordValidationError describes the first policy rule a password broke.
type PasswordValidationError struct {
	Code    string
	Message string
}

func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule checks a single aspect of a candidate password.
type PasswordRule func(password string) error

// PasswordValidator applies its rules in order and stops at the first failure.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator builds a validator from the supplied rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: append([]PasswordRule(nil), rules...)}
}

// DefaultPasswordValidator is the registration policy. userInputs (email, name)
// are fed to zxcvbn so passwords derived from them score low.
func DefaultPasswordValidator(userInputs ...string) *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(defaultMinPasswordLength),
		MaxBytesRule(maxPasswordBytes),
		CharacterClassesRule(defaultCharacterClasses),
		StrengthRule(defaultMinZxcvbnScore, userInputs...),
	)
}

// Validate implements port.PasswordPolicyValidator.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule(password); err != nil {
			return err
		}
	}
	return nil
}

func MinLengthRule(min int) PasswordRule {
	return func(password string) error {
		if len([]rune(password)) >= min {
			return nil
		}
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", min),
		}
	}
}

func MaxBytesRule(max int) PasswordRule {
	return func(password string) error {
		if len(password) <= max {
			return nil
		}
		return &PasswordValidationError{
			Code:    "max_length",
			Message: fmt.Sprintf("password must be at most %d bytes long", max),
		}
	}
}

// CharacterClassesRule requires min distinct classes out of upper, lower, digit and symbol.
func CharacterClassesRule(min int) PasswordRule {
	return func(password string) error {
		seen := map[string]bool{}
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				seen["upper"] = true
			case unicode.IsLower(r):
				seen["lower"] = true
			case unicode.IsDigit(r):
				seen["digit"] = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				seen["symbol"] = true
			}
		}
		if len(seen) >= min {
			return nil
		}
		return &PasswordValidationError{
			Code:    "character_classes",
			Message: fmt.Sprintf("password must include at least %d character types", min),
		}
	}
}

// StrengthRule rejects passwords whose zxcvbn score is below minScore.
func StrengthRule(minScore int, userInputs ...string) PasswordRule {
	if minScore > 4 {
		minScore = 4
	}
	return func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if zxcvbn.PasswordStrength(password, userInputs).Score >= minScore {
			return nil
		}
		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "password is too weak; choose a more complex value",
		}
	}
}
