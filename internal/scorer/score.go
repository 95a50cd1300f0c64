package scorer

import (
	"context"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/namepairs/internal/model"
)

// DefaultChunkSize is the number of pairs scored per worker task.
const DefaultChunkSize = 10_000

// Distance returns the character-level Levenshtein distance of a and b.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// Ratio converts an edit distance into a similarity in [0,1] relative to
// the longer of the two strings. Two empty strings yield 0.
func Ratio(dist int, a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0
	}
	r := 1 - float64(dist)/float64(maxLen)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// Score fills the distance and score columns of a pair. The score is the
// better of the normalized-form and fingerprint similarities.
func Score(p *model.NamePair) {
	p.DistNorm = Distance(p.LeftNorm, p.RightNorm)
	p.DistFP = Distance(p.LeftFP, p.RightFP)
	p.Score = max(
		Ratio(p.DistNorm, p.LeftNorm, p.RightNorm),
		Ratio(p.DistFP, p.LeftFP, p.RightFP),
	)
}

// ScoreAll scores pairs in place using up to workers goroutines. Each
// worker owns a disjoint slice range, so results do not depend on
// scheduling.
func ScoreAll(ctx context.Context, pairs []model.NamePair, workers, chunkSize int) error {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(pairs); start += chunkSize {
		end := min(start+chunkSize, len(pairs))
		chunk := pairs[start:end]
		g.Go(func() error {
			for i := range chunk {
				if i%1000 == 0 && gCtx.Err() != nil {
					return eris.Wrap(gCtx.Err(), "scorer: context cancelled")
				}
				Score(&chunk[i])
			}
			return nil
		})
	}
	return g.Wait()
}
