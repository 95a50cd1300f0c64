// Package resolve collapses resolver judgements into canonical entity ids.
package resolve

import (
	"sort"

	"github.com/sells-group/namepairs/internal/model"
)

// Closure is a disjoint-set forest over entity identifiers joined by
// positive judgements. The canonical id of a cluster is its greatest
// identifier, independent of the order edges were added.
type Closure struct {
	parent map[string]string
	size   map[string]int
	top    map[string]string // root -> greatest id in the set
}

// NewClosure returns an empty closure.
func NewClosure() *Closure {
	return &Closure{
		parent: make(map[string]string),
		size:   make(map[string]int),
		top:    make(map[string]string),
	}
}

// Build returns the closure of all positive edges.
func Build(edges []model.ResolverEdge) *Closure {
	c := NewClosure()
	for _, e := range edges {
		if e.Judgement == model.JudgementPositive {
			c.Union(e.LeftID, e.RightID)
		}
	}
	return c
}

func (c *Closure) add(id string) {
	if _, ok := c.parent[id]; ok {
		return
	}
	c.parent[id] = id
	c.size[id] = 1
	c.top[id] = id
}

func (c *Closure) find(id string) string {
	root := id
	for c.parent[root] != root {
		root = c.parent[root]
	}
	for id != root {
		next := c.parent[id]
		c.parent[id] = root
		id = next
	}
	return root
}

// Union merges the clusters of a and b.
func (c *Closure) Union(a, b string) {
	if a == "" || b == "" {
		return
	}
	c.add(a)
	c.add(b)
	ra, rb := c.find(a), c.find(b)
	if ra == rb {
		return
	}
	if c.size[ra] < c.size[rb] {
		ra, rb = rb, ra
	}
	c.parent[rb] = ra
	c.size[ra] += c.size[rb]
	if c.top[rb] > c.top[ra] {
		c.top[ra] = c.top[rb]
	}
	delete(c.size, rb)
	delete(c.top, rb)
}

// Canonical returns the representative of id. Identifiers never seen in a
// positive judgement are their own representative.
func (c *Closure) Canonical(id string) string {
	if _, ok := c.parent[id]; !ok {
		return id
	}
	return c.top[c.find(id)]
}

// Same reports whether a and b belong to the same cluster.
func (c *Closure) Same(a, b string) bool {
	return c.Canonical(a) == c.Canonical(b)
}

// Mapping returns every identifier whose canonical id differs from itself.
func (c *Closure) Mapping() map[string]string {
	out := make(map[string]string)
	for id := range c.parent {
		if canon := c.Canonical(id); canon != id {
			out[id] = canon
		}
	}
	return out
}

// Clusters returns the number of distinct clusters with more than one id.
func (c *Closure) Clusters() int {
	n := 0
	for root, s := range c.size {
		if c.parent[root] == root && s > 1 {
			n++
		}
	}
	return n
}

// Canonicalize rewrites the endpoints of all non-positive edges to their
// canonical ids. Positive edges are consumed by the closure and dropped, as
// are edges whose endpoints collapse into the same cluster. The result is
// sorted by (left, right, judgement).
func Canonicalize(edges []model.ResolverEdge, c *Closure) []model.ResolverEdge {
	var out []model.ResolverEdge
	for _, e := range edges {
		if e.Judgement == model.JudgementPositive {
			continue
		}
		if c.Same(e.LeftID, e.RightID) {
			continue
		}
		e.LeftID, e.RightID = c.Canonical(e.LeftID), c.Canonical(e.RightID)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LeftID != out[j].LeftID {
			return out[i].LeftID < out[j].LeftID
		}
		if out[i].RightID != out[j].RightID {
			return out[i].RightID < out[j].RightID
		}
		return out[i].Judgement < out[j].Judgement
	})
	return out
}
