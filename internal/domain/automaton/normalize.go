package automaton

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/corey/ackeys/internal/ports"
	"golang.org/x/text/cases"
)

// ErrInvalidInput is returned for empty or overlong keywords, for keywords or
// text that are not valid UTF-8, and for unusable instance names. Nothing
// touches the store before this check.
var ErrInvalidInput = ports.ErrInvalidInput

// MaxKeywordLen bounds a normalized keyword in bytes. Every prefix of a
// keyword becomes part of a collection name, and bbolt caps bucket names at
// 32 KiB.
const MaxKeywordLen = 4096

// Normalize trims surrounding whitespace and applies full Unicode case
// folding. The result is the keyword's identity in every collection.
func Normalize(keyword string) (string, error) {
	if !utf8.ValidString(keyword) {
		return "", fmt.Errorf("%w: keyword is not valid UTF-8", ErrInvalidInput)
	}
	k := fold(strings.TrimSpace(keyword))
	if k == "" {
		return "", fmt.Errorf("%w: empty keyword", ErrInvalidInput)
	}
	if len(k) > MaxKeywordLen {
		return "", fmt.Errorf("%w: keyword longer than %d bytes", ErrInvalidInput, MaxKeywordLen)
	}
	return k, nil
}

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// reverse reverses s rune by rune. The suffix index stores node strings this
// way so that "ends with" becomes "starts with".
func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// prefixes returns every non-empty rune prefix of s, shortest first.
func prefixes(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for i := range s {
		if i > 0 {
			out = append(out, s[:i])
		}
	}
	return append(out, s)
}

// parent drops the last rune of s.
func parent(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
