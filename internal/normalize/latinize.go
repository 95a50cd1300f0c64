package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// latinTable transliterates lower-case letters that do not decompose into
// a Latin base letter plus combining marks.
var latinTable = map[rune]string{
	// Latin letters without a canonical decomposition.
	'ß': "ss", 'æ': "ae", 'œ': "oe", 'ø': "o", 'đ': "d", 'ð': "d",
	'ł': "l", 'þ': "th", 'ı': "i", 'ħ': "h", 'ŧ': "t", 'ŋ': "ng",
	'ĳ': "ij", 'ſ': "s",

	// Cyrillic.
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'і': "i", 'ї': "yi", 'є': "ye", 'ґ': "g", 'ў': "u", 'ј': "j",
	'љ': "lj", 'њ': "nj", 'ћ': "c", 'ђ': "dj", 'џ': "dz", 'ѓ': "gj",
	'ќ': "kj", 'ѕ': "dz", 'ә': "a", 'ғ': "gh", 'қ': "q", 'ң': "ng",
	'ө': "o", 'ұ': "u", 'ү': "u", 'һ': "h",

	// Greek.
	'α': "a", 'β': "v", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z", 'η': "i",
	'θ': "th", 'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m", 'ν': "n", 'ξ': "x",
	'ο': "o", 'π': "p", 'ρ': "r", 'σ': "s", 'ς': "s", 'τ': "t", 'υ': "y",
	'φ': "f", 'χ': "ch", 'ψ': "ps", 'ω': "o",
}

// Lower lower-cases s using Unicode full case mapping.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Latinize transliterates a token to Latin script. Diacritics are removed;
// Cyrillic and Greek letters are mapped through a fixed table and runes of
// any other script fall back to unidecode. The second return value is false
// when nothing is left after transliteration.
func Latinize(token string) (string, bool) {
	var b strings.Builder
	for _, r := range Lower(token) {
		if rep, ok := latinTable[r]; ok {
			b.WriteString(rep)
			continue
		}
		decomposed := norm.NFD.String(string(r))
		if !isLatin(decomposed) {
			b.WriteString(transliterate(r))
			continue
		}
		for _, d := range decomposed {
			if unicode.Is(unicode.Mn, d) {
				continue
			}
			if rep, ok := latinTable[d]; ok {
				b.WriteString(rep)
				continue
			}
			b.WriteRune(d)
		}
	}
	out := norm.NFC.String(b.String())
	return out, out != ""
}

// isLatin reports whether every base rune of a decomposed rune is ASCII,
// Latin script or covered by latinTable.
func isLatin(decomposed string) bool {
	for _, d := range decomposed {
		if d < utf8.RuneSelf || unicode.Is(unicode.Mn, d) || unicode.Is(unicode.Latin, d) {
			continue
		}
		if _, ok := latinTable[d]; !ok {
			return false
		}
	}
	return true
}

// transliterate romanizes a single rune with unidecode, keeping only ASCII
// letters and digits so the result stays one token.
func transliterate(r rune) string {
	var b strings.Builder
	for _, c := range strings.ToLower(unidecode.Unidecode(string(r))) {
		if c < utf8.RuneSelf && (unicode.IsLetter(c) || unicode.IsDigit(c)) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
