package model

// Category classifies a name as belonging to a person or an organization.
type Category string

const (
	CategoryPerson       Category = "PER"
	CategoryOrganization Category = "ORG"
)

// matchableSchemas maps entity schemata whose names take part in pair
// generation to the category of their names.
var matchableSchemas = map[string]Category{
	"Person":       CategoryPerson,
	"Company":      CategoryOrganization,
	"Organization": CategoryOrganization,
	"PublicBody":   CategoryOrganization,
}

// CategoryForSchema returns the name category for a schema. The second
// return value is false when names of the schema are not matchable.
func CategoryForSchema(schema string) (Category, bool) {
	c, ok := matchableSchemas[schema]
	return c, ok
}

// MatchableSchemas returns the schema names accepted by CategoryForSchema.
func MatchableSchemas() []string {
	return []string{"Company", "Organization", "Person", "PublicBody"}
}

// PropTypeName is the statement property type carrying entity names.
const PropTypeName = "name"

// PropWeakAlias is a name property that is never used for matching.
const PropWeakAlias = "weakAlias"

// Statement is a single row of the statements input file.
type Statement struct {
	CanonicalID string `json:"canonical_id"`
	EntityID    string `json:"entity_id,omitempty"`
	Schema      string `json:"schema"`
	Prop        string `json:"prop"`
	PropType    string `json:"prop_type"`
	Value       string `json:"value"`
	Lang        string `json:"lang,omitempty"`
	Dataset     string `json:"dataset"`
}

// IsMatchableName reports whether the statement holds a name usable for
// pair generation.
func (s Statement) IsMatchableName() bool {
	if s.PropType != PropTypeName || s.Prop == PropWeakAlias {
		return false
	}
	_, ok := CategoryForSchema(s.Schema)
	return ok
}

// NameRecord is one (entity, name) row of the names table.
type NameRecord struct {
	ID          int64    `json:"-"`
	EntityID    string   `json:"entity_id"`
	Schema      string   `json:"schema"`
	Name        string   `json:"name"`
	Lang        string   `json:"lang,omitempty"`
	Dataset     string   `json:"dataset"`
	Category    Category `json:"category"`
	Norm        *string  `json:"norm,omitempty"`
	Fingerprint *string  `json:"fp,omitempty"`
}
