// Package normalize derives comparison keys from entity names.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/namepairs/internal/model"
)

// MinNameLength is the shortest name, in characters, kept for training.
const MinNameLength = 4

// Normalize computes the order-sensitive normalized form of a name. The
// second return value is false when the name must be excluded:
//  1. Names shorter than MinNameLength are rejected
//  2. Person names containing "/", "(" or ")" are rejected
//  3. Person names without internal whitespace are rejected
//  4. Honorific prefixes are stripped from person names
//  5. The name is tokenized and each token transliterated to Latin
//  6. Names left without tokens are rejected
func Normalize(name string, category model.Category) (string, bool) {
	if utf8.RuneCountInString(name) < MinNameLength {
		return "", false
	}
	name = Lower(name)
	if category == model.CategoryPerson {
		if strings.ContainsAny(name, "/()") {
			return "", false
		}
		if !strings.ContainsFunc(strings.TrimSpace(name), unicode.IsSpace) {
			return "", false
		}
		name = StripPrefix(name)
	}

	tokens := Tokenize(name)
	if len(tokens) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if latin, ok := Latinize(t); ok {
			parts = append(parts, latin)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
