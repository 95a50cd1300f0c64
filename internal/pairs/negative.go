package pairs

import (
	"sort"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/sells-group/namepairs/internal/model"
)

// JudgedNonPairs keys every negative or unsure resolver edge by (max_id,
// min_id). When an identifier pair carries several judgements, negative wins
// over unsure. Self edges are ignored.
func JudgedNonPairs(edges []model.ResolverEdge) []model.IDPair {
	var candidates []model.IDPair
	for _, e := range edges {
		if !e.Judgement.IsNonMatch() || e.LeftID == e.RightID || e.LeftID == "" || e.RightID == "" {
			continue
		}
		candidates = append(candidates, model.NewIDPair(e.LeftID, e.RightID, string(e.Judgement)))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MaxID != b.MaxID {
			return a.MaxID < b.MaxID
		}
		if a.MinID != b.MinID {
			return a.MinID < b.MinID
		}
		return a.Source < b.Source
	})
	return Merge(candidates)
}

// SampleNonPairs draws up to size distinct ids with the faker's seeded
// source and returns every pair among them, sourced as "max<>min". The input
// ids are sorted before shuffling, so the result depends only on the id set
// and the seed.
func SampleNonPairs(ids []string, size int, faker *gofakeit.Faker) []model.IDPair {
	if size <= 1 || len(ids) < 2 {
		return nil
	}
	pool := append([]string(nil), ids...)
	sort.Strings(pool)
	pool = dedupSorted(pool)
	faker.ShuffleStrings(pool)
	if len(pool) > size {
		pool = pool[:size]
	}
	sort.Strings(pool)

	out := make([]model.IDPair, 0, len(pool)*(len(pool)-1)/2)
	for i := len(pool) - 1; i >= 0; i-- {
		for j := 0; j < i; j++ {
			out = append(out, model.NewIDPair(pool[i], pool[j], pool[i]+"<>"+pool[j]))
		}
	}
	sortIDPairs(out)
	return out
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i > 0 && v == s[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}

func sortIDPairs(p []model.IDPair) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].MaxID != p[j].MaxID {
			return p[i].MaxID < p[j].MaxID
		}
		return p[i].MinID < p[j].MinID
	})
}

// Merge concatenates identifier pair sets, keeping the first occurrence of
// each (max_id, min_id) key, and returns them sorted by key.
func Merge(sets ...[]model.IDPair) []model.IDPair {
	seen := make(map[[2]string]bool)
	var out []model.IDPair
	for _, set := range sets {
		for _, p := range set {
			key := [2]string{p.MaxID, p.MinID}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, p)
		}
	}
	sortIDPairs(out)
	return out
}

// RemoveContradictions drops identifier pairs whose entities share at least
// one normalized name.
func RemoveContradictions(nonPairs []model.IDPair, names []model.NameRecord) []model.IDPair {
	norms := make(map[string]map[string]bool)
	for _, n := range names {
		if n.Norm == nil {
			continue
		}
		set, ok := norms[n.EntityID]
		if !ok {
			set = make(map[string]bool)
			norms[n.EntityID] = set
		}
		set[*n.Norm] = true
	}

	out := make([]model.IDPair, 0, len(nonPairs))
	for _, p := range nonPairs {
		if sharesName(norms[p.MaxID], norms[p.MinID]) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sharesName(a, b map[string]bool) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// Negative turns surviving identifier pairs into non-matching name pairs by
// drawing one name per side from the faker's seeded source. Pairs where
// either entity has no names are skipped.
func Negative(nonPairs []model.IDPair, names []model.NameRecord, faker *gofakeit.Faker) []model.NamePair {
	groups := GroupByEntity(names)
	ordered := append([]model.IDPair(nil), nonPairs...)
	sortIDPairs(ordered)

	out := make([]model.NamePair, 0, len(ordered))
	for _, p := range ordered {
		left, right := groups[p.MaxID], groups[p.MinID]
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		a := left[faker.Number(0, len(left)-1)]
		b := right[faker.Number(0, len(right)-1)]
		out = append(out, model.NewNamePair(Side(a), Side(b), false, p.Source))
	}
	return out
}
