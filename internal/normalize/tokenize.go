package normalize

import (
	"strings"
	"unicode"
)

// Tokenize splits a name into name-part tokens. Letters, digits and
// combining marks form tokens; whitespace, punctuation (including hyphens
// and apostrophes) and symbols separate them; control and format
// characters are deleted.
func Tokenize(name string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range name {
		switch {
		case unicode.In(r, unicode.Cc, unicode.Cf):
			continue
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsMark(r):
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
