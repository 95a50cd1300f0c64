package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/model"
	"github.com/sells-group/namepairs/internal/normalize"
	"github.com/sells-group/namepairs/internal/store"
)

// names projects one row per canonical entity and name string.
func (p *Pipeline) names(ctx context.Context) (*model.PhaseResult, error) {
	n, err := p.store.BuildNames(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "names: build")
	}
	p.counters.Names = n
	zap.L().Info("names: extracted", zap.Int64("names", n))
	return &model.PhaseResult{Rows: n}, nil
}

// NameKeysFor computes the normalized form and fingerprint of a name row.
// Names that normalize to nothing are marked excluded with a nil Norm.
func NameKeysFor(n model.NameRecord) store.NameKeys {
	keys := store.NameKeys{ID: n.ID, Fingerprint: normalize.Fingerprint(n.Name)}
	if norm, ok := normalize.Normalize(n.Name, n.Category); ok && norm != "" {
		keys.Norm = &norm
	}
	return keys
}

// normalize reads every name, computes its keys in memory, writes them back
// in batches and deletes excluded names.
func (p *Pipeline) normalize(ctx context.Context) (*model.PhaseResult, error) {
	rows, err := p.store.ListNames(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "normalize: list names")
	}

	size := p.batchSize()
	batch := make([]store.NameKeys, 0, size)
	for i, n := range rows {
		if i > 0 && i%progressEvery == 0 {
			zap.L().Info("normalize: progress", zap.Int("names", i))
		}
		batch = append(batch, NameKeysFor(n))
		if len(batch) >= size {
			if err := p.store.UpdateNameKeys(ctx, batch); err != nil {
				return nil, eris.Wrap(err, "normalize: update keys")
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := p.store.UpdateNameKeys(ctx, batch); err != nil {
			return nil, eris.Wrap(err, "normalize: update keys")
		}
	}

	excluded, err := p.store.DeleteExcludedNames(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "normalize: delete excluded")
	}
	kept := int64(len(rows)) - excluded
	p.counters.Names = kept
	p.counters.NamesExcluded = excluded

	zap.L().Info("normalize: complete", zap.Int64("kept", kept), zap.Int64("excluded", excluded))
	return &model.PhaseResult{
		Rows:     kept,
		Metadata: map[string]any{"excluded": excluded},
	}, nil
}
