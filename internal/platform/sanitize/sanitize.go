// Package sanitize rejects free text that looks like an SQL fragment.
//
// Every query in this program binds its arguments, so the check is a second
// line of defense: suspicious input is refused with an error that names the
// field, it is never rewritten.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrSuspiciousInput = errors.New("input contains disallowed SQL tokens")

var denyTokens = []string{
	`;`, `--`, `/\*`,
	`\bOR\b`, `\bAND\b`, `\bUNION\b`,
	`\bSELECT\b`, `\bINSERT\b`, `\bUPDATE\b`, `\bDELETE\b`,
	`\bDROP\b`, `\bEXEC\b`,
}

var denyPattern = regexp.MustCompile(`(?i)` + strings.Join(denyTokens, "|"))

// FieldError reports which field was refused and the token that matched.
type FieldError struct {
	Field string
	Token string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%q)", e.Field, ErrSuspiciousInput.Error(), e.Token)
}

func (e *FieldError) Unwrap() error {
	return ErrSuspiciousInput
}

// Check returns a *FieldError wrapping ErrSuspiciousInput when value contains
// a statement separator, a comment marker or an SQL keyword.
func Check(field, value string) error {
	if m := denyPattern.FindString(value); m != "" {
		return &FieldError{Field: field, Token: m}
	}
	return nil
}

// Fields checks name/value pairs in order and returns the first refusal.
func Fields(pairs ...string) error {
	if len(pairs)%2 != 0 {
		panic("sanitize.Fields: odd number of arguments")
	}
	for i := 0; i < len(pairs); i += 2 {
		if err := Check(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
