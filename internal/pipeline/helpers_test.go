package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/namepairs/internal/config"
	"github.com/sells-group/namepairs/internal/store"
)

const testStatements = `canonical_id,entity_id,prop,prop_type,schema,value,dataset,lang
E1,E1,name,name,Person,John Smith,test,eng
E1,E1,alias,name,Person,J. Smith,test,eng
Q2,Q2,name,name,Person,Maria Garcia,test,
Q3,Q3,name,name,Person,Peter Parker,test,
NK-9,NK-9,name,name,Person,Pete Parker,test,
Q3,Q3,birthDate,date,Person,1970,test,
,,name,name,Person,Orphan Name,test,
`

const testResolver = `["Q3","NK-9","positive",0.9,"alice"]
not json
["Q2","E1","negative",null,"bob"]

["Q2"]
`

type testEnv struct {
	cfg   *config.Config
	store *store.SQLiteStore
	dir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	stmtPath := filepath.Join(dir, "statements.csv")
	require.NoError(t, os.WriteFile(stmtPath, []byte(testStatements), 0o644))
	resolverPath := filepath.Join(dir, "resolve.ijson")
	require.NoError(t, os.WriteFile(resolverPath, []byte(testResolver), 0o644))

	st, err := store.NewSQLite(filepath.Join(dir, "work.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	cfg := &config.Config{
		Store: config.StoreConfig{
			Path:      filepath.Join(dir, "work.db"),
			TempDir:   filepath.Join(dir, "tmp"),
			BatchSize: 2,
		},
		Input: config.InputConfig{
			StatementsPath: stmtPath,
			ResolverPath:   resolverPath,
			Delimiter:      ",",
		},
		Pairs: config.PairsConfig{
			Seed:         42,
			SampleSize:   10,
			SamplePrefix: "Q",
			ScoreWorkers: 2,
		},
		Output: config.OutputConfig{
			Path:      filepath.Join(dir, "out", "pairs.csv"),
			Format:    FormatCSV,
			Delimiter: ",",
		},
	}
	return &testEnv{cfg: cfg, store: st, dir: dir}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
