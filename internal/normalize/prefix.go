package normalize

import (
	"regexp"
	"strings"
)

// honorifics are titles stripped from the start of person names.
var honorifics = []string{
	"mr", "mrs", "ms", "miss", "mx", "mister", "madam", "madame", "mme",
	"mlle", "monsieur", "dr", "doctor", "prof", "professor", "sir", "dame",
	"lady", "lord", "herr", "hr", "frau", "fr", "fräulein", "senor", "señor",
	"senora", "señora", "senorita", "señorita", "sr", "sra", "srta", "sheikh",
	"sheik", "shaikh", "haji", "hajji", "hon", "rev", "the",
}

var prefixRe = regexp.MustCompile(`^\W*(?:(?:` + strings.Join(honorifics, "|") + `)\.?\s+)+`)

// StripPrefix removes honorific prefixes such as "Mr." or "Dr" from a
// lower-cased name. Names consisting only of a prefix are returned as-is.
func StripPrefix(name string) string {
	stripped := prefixRe.ReplaceAllString(name, "")
	if strings.TrimSpace(stripped) == "" {
		return name
	}
	return stripped
}
