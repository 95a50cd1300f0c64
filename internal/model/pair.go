package model

import "strings"

// NamePair is one training example: two names and whether they refer to
// the same canonical entity.
type NamePair struct {
	ID            int64    `json:"-" csv:"-"`
	LeftName      string   `json:"left_name" csv:"left_name"`
	LeftNorm      string   `json:"left_norm" csv:"left_norm"`
	LeftFP        string   `json:"left_fp" csv:"left_fp"`
	LeftLang      string   `json:"left_lang" csv:"left_lang"`
	LeftCategory  Category `json:"left_category" csv:"left_category"`
	RightName     string   `json:"right_name" csv:"right_name"`
	RightNorm     string   `json:"right_norm" csv:"right_norm"`
	RightFP       string   `json:"right_fp" csv:"right_fp"`
	RightLang     string   `json:"right_lang" csv:"right_lang"`
	RightCategory Category `json:"right_category" csv:"right_category"`
	Match         bool     `json:"match" csv:"match"`
	DistNorm      int      `json:"dist_norm" csv:"dist_norm"`
	DistFP        int      `json:"dist_fp" csv:"dist_fp"`
	Score         float64  `json:"score" csv:"score"`
	Source        string   `json:"source" csv:"source"`
}

// PairColumns lists the export columns of a NamePair in order.
var PairColumns = []string{
	"left_name", "left_norm", "left_fp", "left_lang", "left_category",
	"right_name", "right_norm", "right_fp", "right_lang", "right_category",
	"match", "dist_norm", "dist_fp", "score", "source",
}

// NameSide is the per-name half of a NamePair.
type NameSide struct {
	Name     string
	Norm     string
	FP       string
	Lang     string
	Category Category
}

// NewNamePair builds a pair with canonical ordering: the side whose name
// sorts first case-insensitively is placed left, ties broken by the raw
// string.
func NewNamePair(a, b NameSide, match bool, source string) NamePair {
	if NameLess(b.Name, a.Name) {
		a, b = b, a
	}
	return NamePair{
		LeftName:      a.Name,
		LeftNorm:      a.Norm,
		LeftFP:        a.FP,
		LeftLang:      a.Lang,
		LeftCategory:  a.Category,
		RightName:     b.Name,
		RightNorm:     b.Norm,
		RightFP:       b.FP,
		RightLang:     b.Lang,
		RightCategory: b.Category,
		Match:         match,
		Source:        source,
	}
}

// NameLess orders names case-insensitively, falling back to a byte-wise
// comparison when the lower-cased forms are equal.
func NameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// IDPair is an unordered pair of entity identifiers stored as (max, min).
type IDPair struct {
	MaxID  string `json:"max_id"`
	MinID  string `json:"min_id"`
	Source string `json:"source"`
}

// NewIDPair orders two identifiers so that MaxID > MinID.
func NewIDPair(a, b, source string) IDPair {
	if a < b {
		a, b = b, a
	}
	return IDPair{MaxID: a, MinID: b, Source: source}
}
