package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/namepairs/internal/store"
)

// initStore opens and migrates the SQLite working store at cfg.Store.Path.
func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	path := cfg.Store.Path
	if path == "" {
		path = "work.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "create store dir")
		}
	}

	st, err := store.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
