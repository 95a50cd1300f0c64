// Package pipeline runs the name-pair generation stages against the working
// store: ingest, resolve, names, normalize, pairs, score and export.
package pipeline

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/config"
	"github.com/sells-group/namepairs/internal/model"
	"github.com/sells-group/namepairs/internal/store"
)

// progressEvery is the row interval at which long stages log progress.
const progressEvery = 100_000

// Counters accumulates row counts across the stages of one pipeline.
type Counters struct {
	Statements        int64 `json:"statements"`
	StatementsSkipped int64 `json:"statements_skipped"`
	Edges             int64 `json:"edges"`
	EdgesSkipped      int64 `json:"edges_skipped"`
	Names             int64 `json:"names"`
	NamesExcluded     int64 `json:"names_excluded"`
	Positive          int64 `json:"positive"`
	Negative          int64 `json:"negative"`
	Exported          int64 `json:"exported"`
}

// Pipeline holds the store handle, configuration, seeded random source and
// counters shared by the stages of a run.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	faker    *gofakeit.Faker
	counters Counters
}

// New creates a Pipeline. All sampling draws from a Faker seeded with
// cfg.Pairs.Seed.
func New(cfg *config.Config, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		store: st,
		faker: gofakeit.New(cfg.Pairs.Seed),
	}
}

// Counters returns a snapshot of the row counters.
func (p *Pipeline) Counters() Counters {
	return p.counters
}

// Result summarizes a finished run.
type Result struct {
	RunID    string              `json:"run_id"`
	Status   model.RunStatus     `json:"status"`
	Phases   []model.PhaseResult `json:"phases"`
	Counters Counters            `json:"counters"`
}

type stageFunc func(ctx context.Context) (*model.PhaseResult, error)

func (p *Pipeline) stageFor(s Stage) stageFunc {
	switch s {
	case StageIngest:
		return p.ingest
	case StageResolve:
		return p.resolve
	case StageNames:
		return p.names
	case StageNormalize:
		return p.normalize
	case StagePairs:
		return p.pairs
	case StageScore:
		return p.score
	case StageExport:
		return p.export
	}
	return nil
}

// Run executes the given stages in order, recording a run and one phase per
// stage in the store. The first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, stages []Stage) (*Result, error) {
	log := zap.L().With(zap.Strings("stages", stageNames(stages)))
	log.Info("pipeline: starting run")

	run, err := p.store.CreateRun(ctx, stageNames(stages))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log = log.With(zap.String("run_id", run.ID))
	result := &Result{RunID: run.ID}

	setStatus := func(status model.RunStatus) {
		result.Status = status
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	trackPhase := func(name string, fn stageFunc) error {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		phaseResult, fnErr := fn(ctx)
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("rows", phaseResult.Rows),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			// Use a fresh context so a cancelled run still records the failure.
			if err := p.store.CompletePhase(context.WithoutCancel(ctx), phase.ID, phaseResult); err != nil {
				log.Warn("pipeline: failed to complete phase", zap.String("phase", name), zap.Error(err))
			}
		}
		result.Phases = append(result.Phases, *phaseResult)
		return fnErr
	}

	setStatus(model.RunStatusRunning)
	for _, s := range stages {
		fn := p.stageFor(s)
		if fn == nil {
			setStatus(model.RunStatusFailed)
			return result, eris.Errorf("pipeline: unknown stage %q", s)
		}
		if err := trackPhase(string(s), fn); err != nil {
			result.Status = model.RunStatusFailed
			if statusErr := p.store.UpdateRunStatus(context.WithoutCancel(ctx), run.ID, model.RunStatusFailed); statusErr != nil {
				log.Warn("pipeline: failed to update status", zap.Error(statusErr))
			}
			result.Counters = p.counters
			return result, eris.Wrapf(err, "pipeline: stage %s", s)
		}
	}

	setStatus(model.RunStatusComplete)
	result.Counters = p.counters
	log.Info("pipeline: run complete",
		zap.Int64("positive", p.counters.Positive),
		zap.Int64("negative", p.counters.Negative),
		zap.Int64("exported", p.counters.Exported),
	)
	return result, nil
}
