package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

func Required(field, value, msg string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: FieldError{Field: field, Message: msg},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, limit int, msg string) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= limit },
		Error: FieldError{Field: field, Message: msg},
	}
}

// Email accepts a bare address (no display name) whose domain has a dot.
func Email(field, value, msg string) Rule {
	return Rule{
		Check: func() bool {
			value = strings.TrimSpace(value)
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value || addr.Name != "" {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			return strings.Contains(domain, ".") &&
				!strings.HasPrefix(domain, ".") &&
				!strings.HasSuffix(domain, ".")
		},
		Error: FieldError{Field: field, Message: msg},
	}
}

// Positive requires value > 0.
func Positive[T ~int | ~int32 | ~int64 | ~float64](field string, value T, msg string) Rule {
	return Rule{
		Check: func() bool { return value > 0 },
		Error: FieldError{Field: field, Message: msg},
	}
}
