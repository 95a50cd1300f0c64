package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/namepairs/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func strPtr(s string) *string { return &s }

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"ingest", "resolve"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, []string{"ingest", "resolve"}, got.Stages)
	assert.Equal(t, model.RunStatusQueued, got.Status)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"score"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete))
	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)

	assert.Error(t, st.UpdateRunStatus(ctx, "missing", model.RunStatusFailed))
}

func TestSQLite_ListRuns_Filter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, []string{"ingest"})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, []string{"ingest"})
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Phases(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, []string{"ingest", "resolve"})
	require.NoError(t, err)

	p1, err := st.CreatePhase(ctx, run.ID, "ingest")
	require.NoError(t, err)
	p2, err := st.CreatePhase(ctx, run.ID, "resolve")
	require.NoError(t, err)

	require.NoError(t, st.CompletePhase(ctx, p1.ID, &model.PhaseResult{
		Name:     "ingest",
		Status:   model.PhaseStatusComplete,
		Duration: 12,
		Rows:     3,
		Metadata: map[string]any{"statements": float64(3)},
	}))
	require.NoError(t, st.CompletePhase(ctx, p2.ID, &model.PhaseResult{
		Name:   "resolve",
		Status: model.PhaseStatusFailed,
		Error:  "boom",
	}))

	phases, err := st.ListPhases(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, phases, 2)

	assert.Equal(t, "ingest", phases[0].Name)
	assert.Equal(t, model.PhaseStatusComplete, phases[0].Status)
	require.NotNil(t, phases[0].Result)
	assert.Equal(t, int64(3), phases[0].Result.Rows)

	assert.Equal(t, model.PhaseStatusFailed, phases[1].Status)
	assert.Equal(t, "boom", phases[1].Result.Error)

	assert.Error(t, st.CompletePhase(ctx, "missing", &model.PhaseResult{}))
}

// --- Working tables ---

func TestSQLite_InsertStatementsAndBuildNames(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.InsertStatements(ctx, []model.Statement{
		{CanonicalID: "Q1", Schema: "Person", Prop: "name", PropType: "name", Value: "John Smith", Dataset: "a"},
		{CanonicalID: "Q1", Schema: "Person", Prop: "alias", PropType: "name", Value: "John Smith", Lang: "eng", Dataset: "b"},
		{CanonicalID: "Q1", Schema: "Person", Prop: "weakAlias", PropType: "name", Value: "Johnny", Dataset: "a"},
		{CanonicalID: "Q1", Schema: "Person", Prop: "birthDate", PropType: "date", Value: "1970", Dataset: "a"},
		{CanonicalID: "NK-2", Schema: "Company", Prop: "name", PropType: "name", Value: "Acme Ltd", Dataset: "a"},
		{CanonicalID: "V-3", Schema: "Vessel", Prop: "name", PropType: "name", Value: "Sea Star", Dataset: "a"},
		{CanonicalID: "NK-4", Schema: "Company", Prop: "name", PropType: "name", Value: "", Dataset: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	built, err := st.BuildNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), built)

	names, err := st.ListNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)

	byEntity := map[string]model.NameRecord{}
	for _, n := range names {
		byEntity[n.EntityID] = n
	}
	assert.Equal(t, "Acme Ltd", byEntity["NK-2"].Name)
	assert.Equal(t, model.CategoryOrganization, byEntity["NK-2"].Category)
	assert.Equal(t, "John Smith", byEntity["Q1"].Name)
	assert.Equal(t, "eng", byEntity["Q1"].Lang, "row with a language tag wins the dedup")
	assert.Equal(t, model.CategoryPerson, byEntity["Q1"].Category)
	assert.Nil(t, byEntity["Q1"].Norm)
}

func TestSQLite_BuildNames_UsesCanonicalMapping(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertStatements(ctx, []model.Statement{
		{CanonicalID: "A", Schema: "Person", Prop: "name", PropType: "name", Value: "Ann Lee", Dataset: "a"},
		{CanonicalID: "B", Schema: "Person", Prop: "name", PropType: "name", Value: "Ann Lee", Dataset: "b"},
		{CanonicalID: "B", Schema: "Person", Prop: "alias", PropType: "name", Value: "Anne Lee", Dataset: "b"},
	})
	require.NoError(t, err)
	require.NoError(t, st.ReplaceCanonicalIDs(ctx, map[string]string{"A": "B"}))

	_, err = st.BuildNames(ctx)
	require.NoError(t, err)

	names, err := st.ListNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)
	for _, n := range names {
		assert.Equal(t, "B", n.EntityID)
	}
}

func TestSQLite_NameKeysAndExclusion(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertStatements(ctx, []model.Statement{
		{CanonicalID: "Q1", Schema: "Person", Prop: "name", PropType: "name", Value: "John Smith", Dataset: "a"},
		{CanonicalID: "Q2", Schema: "Person", Prop: "name", PropType: "name", Value: "Al", Dataset: "a"},
	})
	require.NoError(t, err)
	_, err = st.BuildNames(ctx)
	require.NoError(t, err)

	names, err := st.ListNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)

	var keys []NameKeys
	for _, n := range names {
		if n.Name == "John Smith" {
			keys = append(keys, NameKeys{ID: n.ID, Norm: strPtr("john smith"), Fingerprint: "john smith"})
		} else {
			keys = append(keys, NameKeys{ID: n.ID, Fingerprint: "al"})
		}
	}
	require.NoError(t, st.UpdateNameKeys(ctx, keys))

	deleted, err := st.DeleteExcludedNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	names, err = st.ListNames(ctx)
	require.NoError(t, err)
	require.Len(t, names, 1)
	require.NotNil(t, names[0].Norm)
	assert.Equal(t, "john smith", *names[0].Norm)
	require.NotNil(t, names[0].Fingerprint)
	assert.Equal(t, "john smith", *names[0].Fingerprint)
}

func TestSQLite_ListEntityIDs_Prefix(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertStatements(ctx, []model.Statement{
		{CanonicalID: "Q2", Schema: "Person", Prop: "name", PropType: "name", Value: "Bob Jones", Dataset: "a"},
		{CanonicalID: "Q1", Schema: "Person", Prop: "name", PropType: "name", Value: "John Smith", Dataset: "a"},
		{CanonicalID: "Q1", Schema: "Person", Prop: "alias", PropType: "name", Value: "Johnny Smith", Dataset: "a"},
		{CanonicalID: "NK-1", Schema: "Company", Prop: "name", PropType: "name", Value: "Acme Ltd", Dataset: "a"},
		{CanonicalID: "q3", Schema: "Person", Prop: "name", PropType: "name", Value: "Carl Lower", Dataset: "a"},
	})
	require.NoError(t, err)
	_, err = st.BuildNames(ctx)
	require.NoError(t, err)

	ids, err := st.ListEntityIDs(ctx, "Q")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, ids)

	all, err := st.ListEntityIDs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSQLite_ResolverEdges(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.InsertResolverEdges(ctx, []model.ResolverEdge{
		{LeftID: "A", RightID: "B", Judgement: model.JudgementPositive, User: "u1"},
		{LeftID: "A", RightID: "C", Judgement: model.JudgementNegative},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	edges, err := st.ListResolverEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, model.JudgementPositive, edges[0].Judgement)
	assert.Equal(t, "u1", edges[0].User)

	require.NoError(t, st.ReplaceCanonicalEdges(ctx, []model.ResolverEdge{
		{LeftID: "B", RightID: "C", Judgement: model.JudgementUnsure},
	}))
	canonical, err := st.ListCanonicalEdges(ctx)
	require.NoError(t, err)
	require.Len(t, canonical, 1)
	assert.Equal(t, model.JudgementUnsure, canonical[0].Judgement)

	// The ingested edges are untouched by canonical rewrites.
	edges, err = st.ListResolverEdges(ctx)
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestSQLite_ReplaceCanonicalEdges_Truncates(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.ReplaceCanonicalEdges(ctx, []model.ResolverEdge{
		{LeftID: "A", RightID: "B", Judgement: model.JudgementNegative},
		{LeftID: "A", RightID: "C", Judgement: model.JudgementNegative},
	}))
	require.NoError(t, st.ReplaceCanonicalEdges(ctx, nil))

	n, err := st.CountRows(ctx, "resolver_canonical")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLite_NonPairs_DedupOnKey(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.ReplaceNonPairs(ctx, []model.IDPair{
		model.NewIDPair("A", "B", "negative"),
		model.NewIDPair("B", "A", "unsure"),
		model.NewIDPair("C", "A", "Q1<>Q2"),
	}))

	got, err := st.ListNonPairs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.IDPair{MaxID: "B", MinID: "A", Source: "negative"}, got[0])
	assert.Equal(t, model.IDPair{MaxID: "C", MinID: "A", Source: "Q1<>Q2"}, got[1])
}

func TestSQLite_PairsRoundTripAndScores(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := model.NewNamePair(
		model.NameSide{Name: "John Smith", Norm: "john smith", FP: "john smith", Category: model.CategoryPerson},
		model.NameSide{Name: "Jon Smith", Norm: "jon smith", FP: "jon smith", Lang: "eng", Category: model.CategoryPerson},
		true, "Q1",
	)
	n, err := st.ReplacePairs(ctx, []model.NamePair{p})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pairs, err := st.ListPairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	got := pairs[0]
	assert.NotZero(t, got.ID)
	assert.True(t, got.Match)
	assert.Equal(t, "John Smith", got.LeftName)
	assert.Equal(t, "eng", got.RightLang)
	assert.Equal(t, model.CategoryPerson, got.RightCategory)

	got.DistNorm, got.DistFP, got.Score = 1, 1, 0.9
	require.NoError(t, st.UpdatePairScores(ctx, []model.NamePair{got}))

	pairs, err = st.ListPairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pairs[0].DistNorm)
	assert.InDelta(t, 0.9, pairs[0].Score, 1e-9)

	count, err := st.CountRows(ctx, "pairs")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLite_ResetInputs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertStatements(ctx, []model.Statement{
		{CanonicalID: "Q1", Schema: "Person", Prop: "name", PropType: "name", Value: "John Smith", Dataset: "a"},
	})
	require.NoError(t, err)
	_, err = st.InsertResolverEdges(ctx, []model.ResolverEdge{{LeftID: "A", RightID: "B", Judgement: model.JudgementNegative}})
	require.NoError(t, err)
	require.NoError(t, st.ReplaceCanonicalEdges(ctx, []model.ResolverEdge{{LeftID: "A", RightID: "B", Judgement: model.JudgementNegative}}))

	require.NoError(t, st.ResetInputs(ctx))

	for _, table := range WorkTables {
		n, err := st.CountRows(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}
}

func TestSQLite_CountRows_UnknownTable(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.CountRows(context.Background(), "sqlite_master; DROP TABLE pairs")
	assert.Error(t, err)
}
