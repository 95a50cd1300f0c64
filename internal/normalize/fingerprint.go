package normalize

import (
	"sort"
	"strings"
)

// orgTypes compacts spelled-out organization forms. Longer phrases are
// listed before the phrases they contain.
var orgTypes = []struct{ long, short string }{
	{"limited liability company", "llc"},
	{"limited liability partnership", "llp"},
	{"public limited company", "plc"},
	{"gesellschaft mit beschrankter haftung", "gmbh"},
	{"societe anonyme", "sa"},
	{"sociedad anonima", "sa"},
	{"limited partnership", "lp"},
	{"aktiengesellschaft", "ag"},
	{"incorporated", "inc"},
	{"corporation", "corp"},
	{"limited", "ltd"},
	{"company", "co"},
}

// Fingerprint computes an order-insensitive key for a name: lower-cased,
// transliterated, organization forms compacted, punctuation removed,
// tokens de-duplicated and sorted. Tokens that transliterate to nothing
// are dropped.
func Fingerprint(name string) string {
	var tokens []string
	for _, t := range Tokenize(Lower(name)) {
		if latin, ok := Latinize(t); ok {
			tokens = append(tokens, latin)
		}
	}
	joined := " " + strings.Join(tokens, " ") + " "
	for _, ot := range orgTypes {
		joined = strings.ReplaceAll(joined, " "+ot.long+" ", " "+ot.short+" ")
	}

	seen := make(map[string]struct{})
	var uniq []string
	for _, t := range strings.Fields(joined) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " ")
}
