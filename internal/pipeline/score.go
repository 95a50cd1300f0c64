package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/namepairs/internal/model"
	"github.com/sells-group/namepairs/internal/scorer"
)

// score computes edit distances and similarity scores for every pair and
// writes them back in batches.
func (p *Pipeline) score(ctx context.Context) (*model.PhaseResult, error) {
	all, err := p.store.ListPairs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "score: list pairs")
	}

	workers := p.cfg.Pairs.ScoreWorkers
	if workers < 1 {
		workers = 1
	}
	if err := scorer.ScoreAll(ctx, all, workers, scorer.DefaultChunkSize); err != nil {
		return nil, eris.Wrap(err, "score: compute")
	}

	size := p.batchSize()
	for start := 0; start < len(all); start += size {
		end := min(start+size, len(all))
		if err := p.store.UpdatePairScores(ctx, all[start:end]); err != nil {
			return nil, eris.Wrap(err, "score: update scores")
		}
	}

	return &model.PhaseResult{Rows: int64(len(all))}, nil
}
