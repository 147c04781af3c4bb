package cql2

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// caseFold implements `casei`: ASCII-only lowercasing, per Open
// Question (c)/(d)'s decision that CQL2's CASEI is a simple
// normalization, not full Unicode case folding.
func caseFold(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// accentFold implements `accenti`: decompose to NFD and drop combining
// marks, per Open Question (d).
func accentFold(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
