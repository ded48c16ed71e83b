// Package normalize canonicalizes applicant full names and checks email-like input.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinFullNameLength is the shortest canonical name (in runes) worth looking up.
const MinFullNameLength = 3

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FullName returns the canonical form of a full name: NFC, lowercase, single spaces, trimmed.
func FullName(raw string) string {
	composed := norm.NFC.String(raw)
	return strings.Join(strings.Fields(strings.ToLower(composed)), " ")
}

// DisplayName capitalizes the first letter of each space-separated token of a canonical name.
func DisplayName(canonical string) string {
	tokens := strings.Split(canonical, " ")
	for i, token := range tokens {
		if token == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(token)
		tokens[i] = string(unicode.ToUpper(r)) + token[size:]
	}
	return strings.Join(tokens, " ")
}

// LooksLikeEmail is a permissive single-@ check; it is not RFC validation.
func LooksLikeEmail(raw string) bool {
	return reEmail.MatchString(strings.TrimSpace(raw))
}

// TooShort reports whether a canonical name is below MinFullNameLength.
func TooShort(canonical string) bool {
	return utf8.RuneCountInString(canonical) < MinFullNameLength
}
