// Package pairs builds matching and non-matching name pairs from the
// normalized names table.
package pairs

import (
	"sort"
	"strings"

	"github.com/sells-group/namepairs/internal/model"
)

// GroupByEntity buckets names by entity id. Each bucket is sorted by name so
// that downstream sampling is independent of load order.
func GroupByEntity(names []model.NameRecord) map[string][]model.NameRecord {
	groups := make(map[string][]model.NameRecord)
	for _, n := range names {
		groups[n.EntityID] = append(groups[n.EntityID], n)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Name < g[j].Name })
	}
	return groups
}

func sortedKeys(groups map[string][]model.NameRecord) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Side converts a name row into one half of a pair.
func Side(n model.NameRecord) model.NameSide {
	s := model.NameSide{
		Name:     n.Name,
		Lang:     n.Lang,
		Category: n.Category,
	}
	if n.Norm != nil {
		s.Norm = *n.Norm
	}
	if n.Fingerprint != nil {
		s.FP = *n.Fingerprint
	}
	return s
}

// Positive emits one matching pair for every unordered pair of names of the
// same entity that differ under case folding. The pair source is the entity
// id. Output is sorted by entity, then left and right name.
func Positive(names []model.NameRecord) []model.NamePair {
	groups := GroupByEntity(names)

	var out []model.NamePair
	for _, entityID := range sortedKeys(groups) {
		group := groups[entityID]
		seen := make(map[string]bool)
		var entityPairs []model.NamePair
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if strings.EqualFold(group[i].Name, group[j].Name) {
					continue
				}
				p := model.NewNamePair(Side(group[i]), Side(group[j]), true, entityID)
				key := p.LeftName + "\x00" + p.RightName
				if seen[key] {
					continue
				}
				seen[key] = true
				entityPairs = append(entityPairs, p)
			}
		}
		sort.Slice(entityPairs, func(i, j int) bool {
			if entityPairs[i].LeftName != entityPairs[j].LeftName {
				return model.NameLess(entityPairs[i].LeftName, entityPairs[j].LeftName)
			}
			return model.NameLess(entityPairs[i].RightName, entityPairs[j].RightName)
		})
		out = append(out, entityPairs...)
	}
	return out
}
