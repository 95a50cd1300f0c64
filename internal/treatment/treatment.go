// Package treatment applies deterministic fuzzing functions to names to
// build screening test fixtures.
package treatment

import (
	"strings"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"
)

// Func transforms a name, drawing any randomness from f.
type Func func(f *gofakeit.Faker, s string) string

const vowels = "aeiouy"

var registry = map[string]Func{
	"switch_random_character":              SwitchRandomCharacter,
	"second_name_last_name_first_names":    SecondNameLastNameFirstNames,
	"replace_spaces_with_special_char":     ReplaceSpacesWithSpecialChar,
	"replace_non_ascii_with_special_char":  ReplaceNonASCIIWithSpecialChar,
	"replace_double_character_with_single": ReplaceDoubleCharacterWithSingle,
	"remove_special_characters":            RemoveSpecialCharacters,
	"duplicate_random_character":           DuplicateRandomCharacter,
	"replace_random_vowel":                 ReplaceRandomVowel,
	"noop":                                 Noop,
}

// order lists treatment names in their canonical order.
var order = []string{
	"switch_random_character",
	"second_name_last_name_first_names",
	"replace_spaces_with_special_char",
	"replace_non_ascii_with_special_char",
	"replace_double_character_with_single",
	"remove_special_characters",
	"duplicate_random_character",
	"replace_random_vowel",
	"noop",
}

// Names returns every known treatment name.
func Names() []string {
	return append([]string(nil), order...)
}

// Lookup returns the treatment registered under name.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, eris.Errorf("treatment: unknown treatment %q", name)
	}
	return fn, nil
}

// Variant is one treated form of a name.
type Variant struct {
	Treatment string `json:"treatment" csv:"treatment"`
	Name      string `json:"name" csv:"name"`
}

// Treater applies treatments with a seeded random source, so a fixed seed
// and input order always yield the same variants.
type Treater struct {
	faker *gofakeit.Faker
}

// New creates a Treater seeded with seed.
func New(seed int64) *Treater {
	return &Treater{faker: gofakeit.New(seed)}
}

// Apply returns one variant of name per treatment, in the order given. All
// treatment names are validated before any is applied.
func (t *Treater) Apply(name string, treatments []string) ([]Variant, error) {
	fns := make([]Func, len(treatments))
	for i, tr := range treatments {
		fn, err := Lookup(tr)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}

	out := make([]Variant, len(treatments))
	for i, fn := range fns {
		out[i] = Variant{Treatment: treatments[i], Name: fn(t.faker, name)}
	}
	return out, nil
}

// SwitchRandomCharacter swaps a random character with its predecessor:
// "Joe Biden" may become "Jeo Biden".
func SwitchRandomCharacter(f *gofakeit.Faker, s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return s
	}
	i := f.Number(1, len(r)-1)
	r[i-1], r[i] = r[i], r[i-1]
	return string(r)
}

// SecondNameLastNameFirstNames moves the first name to the end after a
// comma: "Pablo Ruiz Picasso" becomes "Ruiz Picasso, Pablo".
func SecondNameLastNameFirstNames(_ *gofakeit.Faker, s string) string {
	names := strings.Split(s, " ")
	if len(names) < 2 {
		return s
	}
	return strings.Join(names[1:], " ") + ", " + names[0]
}

// ReplaceSpacesWithSpecialChar replaces every space with a no-break space.
func ReplaceSpacesWithSpecialChar(_ *gofakeit.Faker, s string) string {
	return strings.ReplaceAll(s, " ", "\u00a0")
}

// ReplaceNonASCIIWithSpecialChar replaces every non-ASCII character with
// "?": "Schrödinger" becomes "Schr?dinger".
func ReplaceNonASCIIWithSpecialChar(_ *gofakeit.Faker, s string) string {
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return '?'
		}
		return r
	}, s)
}

// ReplaceDoubleCharacterWithSingle collapses runs of a repeated character:
// "Pablo Picasso" becomes "Pablo Picaso".
func ReplaceDoubleCharacterWithSingle(_ *gofakeit.Faker, s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := rune(-1)
	for _, r := range s {
		if r != prev {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// RemoveSpecialCharacters drops every non-ASCII character.
func RemoveSpecialCharacters(_ *gofakeit.Faker, s string) string {
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return -1
		}
		return r
	}, s)
}

// DuplicateRandomCharacter repeats one random character.
func DuplicateRandomCharacter(f *gofakeit.Faker, s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	i := f.Number(0, len(r)-1)
	out := make([]rune, 0, len(r)+1)
	out = append(out, r[:i+1]...)
	out = append(out, r[i:]...)
	return string(out)
}

// ReplaceRandomVowel picks a random position and, if it holds a lower-case
// vowel, replaces it with a random vowel. Other positions leave the name
// unchanged.
func ReplaceRandomVowel(f *gofakeit.Faker, s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	i := f.Number(0, len(r)-1)
	if !strings.ContainsRune(vowels, r[i]) {
		return s
	}
	r[i] = rune(vowels[f.Number(0, len(vowels)-1)])
	return string(r)
}

// Noop returns the name unchanged.
func Noop(_ *gofakeit.Faker, s string) string {
	return s
}
