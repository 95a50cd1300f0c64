package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/model"
	"github.com/sells-group/namepairs/internal/resolve"
)

// resolve collapses positive resolver clusters to their canonical ids and
// stores the remaining edges, rewritten onto those ids, in
// resolver_canonical next to the id mapping used by name extraction. The
// ingested resolver table is only read, so the stage can be rerun.
func (p *Pipeline) resolve(ctx context.Context) (*model.PhaseResult, error) {
	edges, err := p.store.ListResolverEdges(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: list edges")
	}

	closure := resolve.Build(edges)
	canonical := resolve.Canonicalize(edges, closure)
	mapping := closure.Mapping()
	clusters := closure.Clusters()

	if err := p.store.ReplaceCanonicalEdges(ctx, canonical); err != nil {
		return nil, eris.Wrap(err, "resolve: replace canonical edges")
	}
	if err := p.store.ReplaceCanonicalIDs(ctx, mapping); err != nil {
		return nil, eris.Wrap(err, "resolve: replace canonical ids")
	}

	zap.L().Info("resolve: closure built",
		zap.Int("edges_in", len(edges)),
		zap.Int("edges_out", len(canonical)),
		zap.Int("clusters", clusters),
		zap.Int("remapped_ids", len(mapping)),
	)

	return &model.PhaseResult{
		Rows: int64(len(canonical)),
		Metadata: map[string]any{
			"clusters":     clusters,
			"remapped_ids": len(mapping),
		},
	}, nil
}
