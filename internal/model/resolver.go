package model

// Judgement is a resolver decision about two entity identifiers.
type Judgement string

const (
	JudgementPositive    Judgement = "positive"
	JudgementNegative    Judgement = "negative"
	JudgementUnsure      Judgement = "unsure"
	JudgementNoJudgement Judgement = "no_judgement"
)

// IsNonMatch reports whether the judgement can seed a negative pair.
func (j Judgement) IsNonMatch() bool {
	return j == JudgementNegative || j == JudgementUnsure
}

// Valid reports whether j is a known judgement value.
func (j Judgement) Valid() bool {
	switch j {
	case JudgementPositive, JudgementNegative, JudgementUnsure, JudgementNoJudgement:
		return true
	}
	return false
}

// ResolverEdge is a judgement between two entity identifiers.
type ResolverEdge struct {
	LeftID    string    `json:"left_id"`
	RightID   string    `json:"right_id"`
	Judgement Judgement `json:"judgement"`
	User      string    `json:"user,omitempty"`
}
