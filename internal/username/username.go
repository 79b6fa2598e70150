package username

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 5
	MaxLength = 30
)

var (
	ErrTooShort = errors.New("username must be at least 5 characters")
	ErrTooLong  = errors.New("username must be at most 30 characters")
	ErrTaken    = errors.New("username is already taken")
)

// Letters that carry no combining mark under NFKD.
var fold = strings.NewReplacer(
	"ß", "ss", "ẞ", "ss",
	"ø", "o", "Ø", "o",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d",
	"ð", "d", "Ð", "d",
	"þ", "th", "Þ", "th",
	"ı", "i",
)

// Normalize transliterates s to ASCII, lowercases it and drops everything
// outside [a-z0-9_]. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	ascii, _, err := transform.String(t, fold.Replace(s))
	if err != nil {
		ascii = s
	}
	ascii = strings.ToLower(ascii)

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks an already normalized candidate locally.
func Validate(normalized string) error {
	switch {
	case len(normalized) < MinLength:
		return ErrTooShort
	case len(normalized) > MaxLength:
		return ErrTooLong
	}
	return nil
}
