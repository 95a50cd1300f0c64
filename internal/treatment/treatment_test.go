package treatment

import (
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedRunes(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}

func TestDeterministicTreatments(t *testing.T) {
	tests := []struct {
		fn   Func
		in   string
		want string
	}{
		{SecondNameLastNameFirstNames, "Joe Biden", "Biden, Joe"},
		{SecondNameLastNameFirstNames, "Pablo Ruiz Picasso", "Ruiz Picasso, Pablo"},
		{SecondNameLastNameFirstNames, "Madonna", "Madonna"},
		{ReplaceSpacesWithSpecialChar, "Pablo Picasso", "Pablo\u00a0Picasso"},
		{ReplaceNonASCIIWithSpecialChar, "Schrödinger", "Schr?dinger"},
		{ReplaceDoubleCharacterWithSingle, "Pablo Picasso", "Pablo Picaso"},
		{ReplaceDoubleCharacterWithSingle, "Aaron", "Aaron"},
		{RemoveSpecialCharacters, "Schrödinger", "Schrdinger"},
		{Noop, "Jane Doe", "Jane Doe"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.fn(nil, tt.in), tt.in)
	}
}

func TestSwitchRandomCharacter(t *testing.T) {
	f := gofakeit.New(11)
	for i := 0; i < 50; i++ {
		name := f.Name()
		got := SwitchRandomCharacter(f, name)
		assert.Equal(t, sortedRunes(name), sortedRunes(got))
	}
	assert.Equal(t, "J", SwitchRandomCharacter(f, "J"))
	assert.Equal(t, "", SwitchRandomCharacter(f, ""))
}

func TestDuplicateRandomCharacter(t *testing.T) {
	f := gofakeit.New(5)
	for i := 0; i < 50; i++ {
		name := f.Name()
		got := DuplicateRandomCharacter(f, name)
		assert.Equal(t, utf8.RuneCountInString(name)+1, utf8.RuneCountInString(got))
		assert.Equal(t, ReplaceDoubleCharacterWithSingle(nil, name), ReplaceDoubleCharacterWithSingle(nil, got))
	}
	assert.Equal(t, "ÖÖ", DuplicateRandomCharacter(f, "Ö"))
}

func TestReplaceRandomVowel(t *testing.T) {
	f := gofakeit.New(9)
	for i := 0; i < 50; i++ {
		name := f.Name()
		got := ReplaceRandomVowel(f, name)
		require.Equal(t, utf8.RuneCountInString(name), utf8.RuneCountInString(got))
		diff := 0
		for j, r := range []rune(name) {
			if []rune(got)[j] != r {
				diff++
				assert.True(t, strings.ContainsRune(vowels, []rune(got)[j]))
			}
		}
		assert.LessOrEqual(t, diff, 1)
	}
	assert.Equal(t, "BCD", ReplaceRandomVowel(f, "BCD"))
}

func TestTreater_ApplyReproducible(t *testing.T) {
	names := []string{"Pablo Ruiz Picasso", "Erwin Schrödinger", "Anna Maria Mueller"}

	run := func() [][]Variant {
		tr := New(7)
		var out [][]Variant
		for _, n := range names {
			v, err := tr.Apply(n, Names())
			require.NoError(t, err)
			out = append(out, v)
		}
		return out
	}

	a, b := run(), run()
	assert.Equal(t, a, b)
	require.Len(t, a[0], len(Names()))
	assert.Equal(t, "switch_random_character", a[0][0].Treatment)
	assert.Equal(t, "Ruiz Picasso, Pablo", a[0][1].Name)
	assert.Equal(t, "Pablo Ruiz Picasso", a[0][8].Name)
}

func TestTreater_ApplyUnknown(t *testing.T) {
	_, err := New(1).Apply("Jane Doe", []string{"noop", "shout"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shout")
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		fn, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}
	_, err := Lookup("")
	assert.Error(t, err)
}
