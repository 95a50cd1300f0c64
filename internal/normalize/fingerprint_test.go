package normalize

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_OrderInsensitive(t *testing.T) {
	assert.Equal(t, Fingerprint("John Smith"), Fingerprint("Smith John"))
	assert.Equal(t, "john smith", Fingerprint("Smith, John"))
}

func TestFingerprint_CaseAndDiacritics(t *testing.T) {
	assert.Equal(t, Fingerprint("josé müller"), Fingerprint("MULLER, Jose"))
}

func TestFingerprint_Deduplicates(t *testing.T) {
	assert.Equal(t, "john", Fingerprint("John John"))
}

func TestFingerprint_OrgTypes(t *testing.T) {
	assert.Equal(t, "acme llc", Fingerprint("Acme Limited Liability Company"))
	assert.Equal(t, Fingerprint("Acme Ltd."), Fingerprint("ACME LIMITED"))
	assert.Equal(t, "acme gmbh", Fingerprint("Acme Gesellschaft mit beschränkter Haftung"))
}

func TestFingerprint_TransliteratesOtherScripts(t *testing.T) {
	assert.Equal(t, Fingerprint("محمد علي"), Fingerprint("علي محمد"))
	assert.Equal(t, Fingerprint("Toyota 株式会社"), Fingerprint("株式会社 Toyota"))

	for _, name := range []string{"株式会社 Toyota", "习近平 主席", "김정은 위원장", "אהוד ברק", "Ахмед محمد"} {
		fp := Fingerprint(name)
		assert.Regexp(t, `^[a-z0-9]+( [a-z0-9]+)*$`, fp, name)
		assert.Len(t, strings.Fields(fp), 2, name)
	}
}

func TestFingerprint_Empty(t *testing.T) {
	assert.Equal(t, "", Fingerprint(""))
	assert.Equal(t, "", Fingerprint(" .,- "))
}

func TestFingerprint_RandomNamesOrderInsensitive(t *testing.T) {
	faker := gofakeit.New(11)
	for range 200 {
		first, last := faker.FirstName(), faker.LastName()
		require.Equal(t, Fingerprint(first+" "+last), Fingerprint(last+" "+first), "%s %s", first, last)
	}
}
