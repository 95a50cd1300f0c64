package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/model"
	"github.com/sells-group/namepairs/internal/pairs"
)

// pairs builds the positive pairs from shared entities and the negative
// pairs from resolver judgements plus a seeded sample of entity ids.
func (p *Pipeline) pairs(ctx context.Context) (*model.PhaseResult, error) {
	names, err := p.store.ListNames(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pairs: list names")
	}
	edges, err := p.store.ListCanonicalEdges(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pairs: list canonical edges")
	}
	ids, err := p.store.ListEntityIDs(ctx, p.cfg.Pairs.SamplePrefix)
	if err != nil {
		return nil, eris.Wrap(err, "pairs: list entity ids")
	}

	positive := pairs.Positive(names)

	judged := pairs.JudgedNonPairs(edges)
	sampled := pairs.SampleNonPairs(ids, p.cfg.Pairs.SampleSize, p.faker)
	merged := pairs.Merge(judged, sampled)
	if err := p.store.ReplaceNonPairs(ctx, pairs.RemoveContradictions(merged, names)); err != nil {
		return nil, eris.Wrap(err, "pairs: replace non-pairs")
	}
	// Negatives are drawn from the persisted set.
	nonPairs, err := p.store.ListNonPairs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pairs: list non-pairs")
	}

	negative := pairs.Negative(nonPairs, names, p.faker)

	all := make([]model.NamePair, 0, len(positive)+len(negative))
	all = append(all, positive...)
	all = append(all, negative...)
	n, err := p.store.ReplacePairs(ctx, all)
	if err != nil {
		return nil, eris.Wrap(err, "pairs: replace pairs")
	}

	p.counters.Positive = int64(len(positive))
	p.counters.Negative = int64(len(negative))

	zap.L().Info("pairs: built",
		zap.Int("positive", len(positive)),
		zap.Int("judged_non_pairs", len(judged)),
		zap.Int("sampled_non_pairs", len(sampled)),
		zap.Int("contradictions", len(merged)-len(nonPairs)),
		zap.Int("negative", len(negative)),
	)

	return &model.PhaseResult{
		Rows: n,
		Metadata: map[string]any{
			"positive":       len(positive),
			"negative":       len(negative),
			"judged":         len(judged),
			"sampled":        len(sampled),
			"contradictions": len(merged) - len(nonPairs),
		},
	}, nil
}
