package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/fetcher"
	"github.com/sells-group/namepairs/internal/model"
)

// ingest loads the statements table and the resolver log into the store,
// replacing any previous inputs.
func (p *Pipeline) ingest(ctx context.Context) (*model.PhaseResult, error) {
	if err := p.store.ResetInputs(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: reset inputs")
	}

	stmts, stmtsSkipped, err := p.loadStatements(ctx)
	if err != nil {
		return nil, err
	}
	edges, edgesSkipped, err := p.loadResolver(ctx)
	if err != nil {
		return nil, err
	}

	p.counters.Statements = stmts
	p.counters.StatementsSkipped = stmtsSkipped
	p.counters.Edges = edges
	p.counters.EdgesSkipped = edgesSkipped

	return &model.PhaseResult{
		Rows: stmts + edges,
		Metadata: map[string]any{
			"statements":         stmts,
			"statements_skipped": stmtsSkipped,
			"edges":              edges,
			"edges_skipped":      edgesSkipped,
		},
	}, nil
}

func (p *Pipeline) batchSize() int {
	if p.cfg.Store.BatchSize > 0 {
		return p.cfg.Store.BatchSize
	}
	return 5000
}

func (p *Pipeline) loadStatements(ctx context.Context) (loaded, skipped int64, err error) {
	path := p.cfg.Input.StatementsPath
	log := zap.L().With(zap.String("path", path))

	delim, err := fetcher.ParseDelimiter(p.cfg.Input.Delimiter)
	if err != nil {
		return 0, 0, eris.Wrap(err, "ingest: statements delimiter")
	}
	rc, err := fetcher.OpenInput(path, p.cfg.Store.TempDir)
	if err != nil {
		return 0, 0, eris.Wrap(err, "ingest: open statements")
	}
	defer rc.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records, errs := fetcher.StreamCSV(ctx, rc, fetcher.CSVOptions{Delimiter: delim, LazyQuotes: true})

	size := p.batchSize()
	batch := make([]model.Statement, 0, size)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := p.store.InsertStatements(ctx, batch)
		if err != nil {
			return eris.Wrap(err, "ingest: insert statements")
		}
		loaded += n
		batch = batch[:0]
		return nil
	}

	var seen int64
	for rec := range records {
		seen++
		if seen%progressEvery == 0 {
			log.Info("ingest: statements progress", zap.Int64("rows", seen))
		}
		st, ok := statementFromRecord(rec)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, st)
		if len(batch) >= size {
			if err := flush(); err != nil {
				return loaded, skipped, err
			}
		}
	}
	if err := <-errs; err != nil {
		return loaded, skipped, eris.Wrap(err, "ingest: read statements")
	}
	if err := flush(); err != nil {
		return loaded, skipped, err
	}

	log.Info("ingest: statements loaded", zap.Int64("rows", loaded))
	log.Debug("ingest: statements skipped", zap.Int64("rows", skipped))
	return loaded, skipped, nil
}

// statementFromRecord maps a CSV row to a Statement. Rows without an entity
// id, schema, property or value are rejected.
func statementFromRecord(rec fetcher.Record) (model.Statement, bool) {
	st := model.Statement{
		CanonicalID: strings.TrimSpace(rec.Get("canonical_id")),
		EntityID:    strings.TrimSpace(rec.Get("entity_id")),
		Schema:      strings.TrimSpace(rec.Get("schema")),
		Prop:        strings.TrimSpace(rec.Get("prop")),
		PropType:    strings.TrimSpace(rec.Get("prop_type")),
		Value:       rec.Get("value"),
		Lang:        strings.TrimSpace(rec.Get("lang")),
		Dataset:     strings.TrimSpace(rec.Get("dataset")),
	}
	if st.CanonicalID == "" {
		st.CanonicalID = st.EntityID
	}
	if st.EntityID == "" {
		st.EntityID = st.CanonicalID
	}
	if st.CanonicalID == "" || st.Schema == "" || st.Prop == "" || st.Value == "" {
		return model.Statement{}, false
	}
	return st, true
}

func (p *Pipeline) loadResolver(ctx context.Context) (loaded, skipped int64, err error) {
	path := p.cfg.Input.ResolverPath
	log := zap.L().With(zap.String("path", path))

	rc, err := fetcher.OpenInput(path, p.cfg.Store.TempDir)
	if err != nil {
		return 0, 0, eris.Wrap(err, "ingest: open resolver")
	}
	defer rc.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, errs := fetcher.StreamLines(ctx, rc)

	size := p.batchSize()
	batch := make([]model.ResolverEdge, 0, size)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := p.store.InsertResolverEdges(ctx, batch)
		if err != nil {
			return eris.Wrap(err, "ingest: insert resolver edges")
		}
		loaded += n
		batch = batch[:0]
		return nil
	}

	for line := range lines {
		edge, ok := ParseResolverLine(line)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, edge)
		if len(batch) >= size {
			if err := flush(); err != nil {
				return loaded, skipped, err
			}
		}
	}
	if err := <-errs; err != nil {
		return loaded, skipped, eris.Wrap(err, "ingest: read resolver")
	}
	if err := flush(); err != nil {
		return loaded, skipped, err
	}

	log.Info("ingest: resolver loaded", zap.Int64("edges", loaded))
	log.Debug("ingest: resolver lines skipped", zap.Int64("lines", skipped))
	return loaded, skipped, nil
}

// ParseResolverLine decodes one resolver log line of the form
// [left_id, right_id, judgement, score, user]. Lines that are not arrays,
// lack an identifier or carry an unknown judgement are rejected.
func ParseResolverLine(line []byte) (model.ResolverEdge, bool) {
	if !gjson.ValidBytes(line) {
		return model.ResolverEdge{}, false
	}
	res := gjson.ParseBytes(line)
	if !res.IsArray() {
		return model.ResolverEdge{}, false
	}
	fields := res.Array()
	if len(fields) < 3 {
		return model.ResolverEdge{}, false
	}

	edge := model.ResolverEdge{
		LeftID:    fields[0].String(),
		RightID:   fields[1].String(),
		Judgement: model.Judgement(fields[2].String()),
	}
	if len(fields) > 4 {
		edge.User = fields[4].String()
	}
	if edge.LeftID == "" || edge.RightID == "" || !edge.Judgement.Valid() {
		return model.ResolverEdge{}, false
	}
	return edge, true
}
