package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RequiredString fails for empty or whitespace-only values.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLenString fails when value has more than max characters.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// OneOf fails when value is not in options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(options, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", options)},
	}
}

// ValidEmail accepts a bare address whose domain has at least two labels.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return strings.Contains(domain, ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// PasswordStrengthConfig describes the accepted password shape.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // of upper, lower, digit, other
}

// DefaultPasswordStrength requires 8 to 72 bytes (the bcrypt limit) and two
// character classes.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{MinLength: 8, MaxLength: 72, MinCharClasses: 2}
}

// StrongPassword checks length and character class variety.
func StrongPassword(field, value string, cfg PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < cfg.MinLength || len(value) > cfg.MaxLength {
				return false
			}
			var upper, lower, digit, other bool
			for _, r := range value {
				switch {
				case unicode.IsUpper(r):
					upper = true
				case unicode.IsLower(r):
					lower = true
				case unicode.IsDigit(r):
					digit = true
				default:
					other = true
				}
			}
			classes := 0
			for _, has := range []bool{upper, lower, digit, other} {
				if has {
					classes++
				}
			}
			return classes >= cfg.MinCharClasses
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be %d-%d characters and mix at least %d character types", cfg.MinLength, cfg.MaxLength, cfg.MinCharClasses),
		},
	}
}

var commonPasswords = []string{
	"password", "password1", "password123", "12345678", "123456789", "qwerty123",
	"iloveyou", "sunshine", "princess", "football", "welcome1", "letmein1",
	"admin123", "passw0rd", "photographer", "photography",
}

// NotCommonPassword rejects well-known weak passwords, ignoring case.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool { return !slices.Contains(commonPasswords, strings.ToLower(value)) },
		Error: ValidationError{Field: field, Message: "password is too common"},
	}
}
