package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify lowercases the input and replaces every run of non-alphanumeric
// characters with a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // leading separators are dropped

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug appends a short random suffix to a slug that is already taken.
func UniqueSlug(base string) string {
	return base + "-" + uuid.New().String()[:8]
}
