package normalize

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// DefaultMaxRunes bounds raw symptom text length when no limit is configured.
const DefaultMaxRunes = 2000

// ErrInvalidInput is the base error for rejected input. ErrTooShort and
// ErrTooLong wrap it, so callers can match either the taxon or the cause.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTooShort     = fmt.Errorf("%w: symptom text too short", ErrInvalidInput)
	ErrTooLong      = fmt.Errorf("%w: symptom text exceeds maximum length", ErrInvalidInput)
)

// Fold applies the shared canonical form: full-width variants narrowed to
// half-width, ASCII case lowered, whitespace trimmed and collapsed. Han
// characters pass through unchanged. Rule terms are folded with the same
// function at catalog load so matching always compares like with like.
func Fold(s string) string {
	s = width.Narrow.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Text normalizes raw symptom text and enforces the input contract:
// the raw text may not exceed maxRunes and the folded text must keep at
// least two runes. maxRunes <= 0 selects DefaultMaxRunes.
func Text(raw string, maxRunes int) (string, error) {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}
	if utf8.RuneCountInString(raw) > maxRunes {
		return "", ErrTooLong
	}
	out := Fold(raw)
	if utf8.RuneCountInString(out) < 2 {
		return "", ErrTooShort
	}
	return out, nil
}
