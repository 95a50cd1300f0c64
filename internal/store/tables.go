package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/namepairs/internal/model"
)

// WorkTables lists the working tables in pipeline order.
var WorkTables = []string{"statements", "resolver", "resolver_canonical", "canonical", "names", "non_pairs", "pairs"}

// workTables lists the tables CountRows may inspect.
var workTables = map[string]bool{
	"statements": true,
	"resolver":           true,
	"resolver_canonical": true,
	"canonical":          true,
	"names":              true,
	"non_pairs":          true,
	"pairs":              true,
	"runs":               true,
	"run_phases":         true,
}

var pairColumns = []string{
	"left_name", "left_norm", "left_fp", "left_lang", "left_category",
	"right_name", "right_norm", "right_fp", "right_lang", "right_category",
	`"match"`, "dist_norm", "dist_fp", "score", "source",
}

// writeRows inserts rows into table inside one transaction, optionally
// emptying the table first.
func (s *SQLiteStore) writeRows(ctx context.Context, truncate bool, verb, table string, columns []string, rows [][]any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: begin write %s", table)
	}
	defer tx.Rollback() //nolint:errcheck

	if truncate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return 0, eris.Wrapf(err, "sqlite: truncate %s", table)
		}
	}

	var n int64
	if len(rows) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
		query := verb + ` INTO ` + table + ` (` + strings.Join(columns, ", ") + `) VALUES (` + placeholders + `)`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: prepare insert %s", table)
		}
		defer stmt.Close() //nolint:errcheck

		for _, row := range rows {
			res, err := stmt.ExecContext(ctx, row...)
			if err != nil {
				return 0, eris.Wrapf(err, "sqlite: insert %s", table)
			}
			affected, _ := res.RowsAffected()
			n += affected
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: commit write %s", table)
	}
	return n, nil
}

// execBatch runs one statement per argument row inside a transaction.
func (s *SQLiteStore) execBatch(ctx context.Context, query string, args [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare batch")
	}
	defer stmt.Close() //nolint:errcheck

	for _, a := range args {
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return eris.Wrap(err, "sqlite: exec batch")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit batch")
}

// ResetInputs empties the input tables and every table derived from them.
func (s *SQLiteStore) ResetInputs(ctx context.Context) error {
	for _, table := range WorkTables {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return eris.Wrapf(err, "sqlite: reset %s", table)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertStatements(ctx context.Context, stmts []model.Statement) (int64, error) {
	rows := make([][]any, len(stmts))
	for i, st := range stmts {
		rows[i] = []any{st.CanonicalID, st.EntityID, st.Schema, st.Prop, st.PropType, st.Value, st.Lang, st.Dataset}
	}
	return s.writeRows(ctx, false, "INSERT", "statements",
		[]string{"canonical_id", "entity_id", "schema", "prop", "prop_type", "value", "lang", "dataset"}, rows)
}

func (s *SQLiteStore) InsertResolverEdges(ctx context.Context, edges []model.ResolverEdge) (int64, error) {
	return s.writeRows(ctx, false, "INSERT", "resolver", resolverColumns, resolverRows(edges))
}

var resolverColumns = []string{"left_id", "right_id", "judgement", `"user"`}

func resolverRows(edges []model.ResolverEdge) [][]any {
	rows := make([][]any, len(edges))
	for i, e := range edges {
		rows[i] = []any{e.LeftID, e.RightID, string(e.Judgement), e.User}
	}
	return rows
}

// ListResolverEdges returns the ingested resolver edges in input order.
func (s *SQLiteStore) ListResolverEdges(ctx context.Context) ([]model.ResolverEdge, error) {
	return s.listEdges(ctx, "resolver")
}

// ListCanonicalEdges returns the judged edges rewritten to canonical ids.
func (s *SQLiteStore) ListCanonicalEdges(ctx context.Context) ([]model.ResolverEdge, error) {
	return s.listEdges(ctx, "resolver_canonical")
}

func (s *SQLiteStore) listEdges(ctx context.Context, table string) ([]model.ResolverEdge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT left_id, right_id, judgement, "user" FROM `+table+` ORDER BY rowid`)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s edges", table)
	}
	defer rows.Close() //nolint:errcheck

	var edges []model.ResolverEdge
	for rows.Next() {
		var e model.ResolverEdge
		if err := rows.Scan(&e.LeftID, &e.RightID, &e.Judgement, &e.User); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s edge", table)
		}
		edges = append(edges, e)
	}
	return edges, eris.Wrapf(rows.Err(), "sqlite: list %s edges iterate", table)
}

// ReplaceCanonicalEdges rewrites resolver_canonical. The ingested resolver
// table is never modified.
func (s *SQLiteStore) ReplaceCanonicalEdges(ctx context.Context, edges []model.ResolverEdge) error {
	_, err := s.writeRows(ctx, true, "INSERT", "resolver_canonical", resolverColumns, resolverRows(edges))
	return err
}

func (s *SQLiteStore) ReplaceCanonicalIDs(ctx context.Context, mapping map[string]string) error {
	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]any, len(ids))
	for i, id := range ids {
		rows[i] = []any{id, mapping[id]}
	}
	_, err := s.writeRows(ctx, true, "INSERT", "canonical", []string{"entity_id", "canonical_id"}, rows)
	return err
}

const buildNamesSQL = `
INSERT INTO names (entity_id, schema, name, lang, dataset, category)
SELECT entity_id, schema, name, lang, dataset, category FROM (
	SELECT
		COALESCE(c.canonical_id, s.canonical_id) AS entity_id,
		s.schema AS schema,
		s.value AS name,
		s.lang AS lang,
		s.dataset AS dataset,
		CASE WHEN s.schema = ? THEN ? ELSE ? END AS category,
		ROW_NUMBER() OVER (
			PARTITION BY COALESCE(c.canonical_id, s.canonical_id), s.value
			ORDER BY s.lang DESC, s.rowid
		) AS rn
	FROM statements s
	LEFT JOIN canonical c ON c.entity_id = s.canonical_id
	WHERE s.prop_type = ?
	  AND s.prop <> ?
	  AND s.value <> ''
	  AND s.schema IN (%s)
)
WHERE rn = 1
ORDER BY entity_id, name`

// BuildNames rebuilds the names table from the statements: one row per
// canonical entity and name string, restricted to matchable schemata and
// name properties, preferring rows that carry a language tag.
func (s *SQLiteStore) BuildNames(ctx context.Context) (int64, error) {
	schemas := model.MatchableSchemas()
	args := []any{"Person", string(model.CategoryPerson), string(model.CategoryOrganization), model.PropTypeName, model.PropWeakAlias}
	for _, sc := range schemas {
		args = append(args, sc)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(schemas)), ", ")
	query := strings.Replace(buildNamesSQL, "%s", placeholders, 1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin build names")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM names`); err != nil {
		return 0, eris.Wrap(err, "sqlite: truncate names")
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: build names")
	}
	n, _ := res.RowsAffected()
	return n, eris.Wrap(tx.Commit(), "sqlite: commit build names")
}

func (s *SQLiteStore) ListNames(ctx context.Context) ([]model.NameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_id, schema, name, lang, dataset, category, norm, fp FROM names ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list names")
	}
	defer rows.Close() //nolint:errcheck

	var names []model.NameRecord
	for rows.Next() {
		var n model.NameRecord
		var norm, fp sql.NullString
		if err := rows.Scan(&n.ID, &n.EntityID, &n.Schema, &n.Name, &n.Lang, &n.Dataset, &n.Category, &norm, &fp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan name")
		}
		if norm.Valid {
			n.Norm = &norm.String
		}
		if fp.Valid {
			n.Fingerprint = &fp.String
		}
		names = append(names, n)
	}
	return names, eris.Wrap(rows.Err(), "sqlite: list names iterate")
}

func (s *SQLiteStore) UpdateNameKeys(ctx context.Context, keys []NameKeys) error {
	args := make([][]any, len(keys))
	for i, k := range keys {
		var norm any
		if k.Norm != nil {
			norm = *k.Norm
		}
		args[i] = []any{norm, k.Fingerprint, k.ID}
	}
	return eris.Wrap(s.execBatch(ctx, `UPDATE names SET norm = ?, fp = ? WHERE id = ?`, args), "sqlite: update name keys")
}

func (s *SQLiteStore) DeleteExcludedNames(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM names WHERE norm IS NULL`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete excluded names")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLiteStore) ListEntityIDs(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT entity_id FROM names WHERE substr(entity_id, 1, length(?)) = ? ORDER BY entity_id`,
		prefix, prefix,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entity ids")
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entity id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: list entity ids iterate")
}

func (s *SQLiteStore) ReplaceNonPairs(ctx context.Context, pairs []model.IDPair) error {
	rows := make([][]any, len(pairs))
	for i, p := range pairs {
		rows[i] = []any{p.MaxID, p.MinID, p.Source}
	}
	_, err := s.writeRows(ctx, true, "INSERT OR IGNORE", "non_pairs", []string{"max_id", "min_id", "source"}, rows)
	return err
}

func (s *SQLiteStore) ListNonPairs(ctx context.Context) ([]model.IDPair, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT max_id, min_id, source FROM non_pairs ORDER BY max_id, min_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list non-pairs")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.IDPair
	for rows.Next() {
		var p model.IDPair
		if err := rows.Scan(&p.MaxID, &p.MinID, &p.Source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan non-pair")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list non-pairs iterate")
}

func (s *SQLiteStore) ReplacePairs(ctx context.Context, pairs []model.NamePair) (int64, error) {
	rows := make([][]any, len(pairs))
	for i, p := range pairs {
		rows[i] = []any{
			p.LeftName, p.LeftNorm, p.LeftFP, p.LeftLang, string(p.LeftCategory),
			p.RightName, p.RightNorm, p.RightFP, p.RightLang, string(p.RightCategory),
			p.Match, p.DistNorm, p.DistFP, p.Score, p.Source,
		}
	}
	return s.writeRows(ctx, true, "INSERT", "pairs", pairColumns, rows)
}

func (s *SQLiteStore) ListPairs(ctx context.Context) ([]model.NamePair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, `+strings.Join(pairColumns, ", ")+` FROM pairs ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pairs")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.NamePair
	for rows.Next() {
		var p model.NamePair
		if err := rows.Scan(&p.ID,
			&p.LeftName, &p.LeftNorm, &p.LeftFP, &p.LeftLang, &p.LeftCategory,
			&p.RightName, &p.RightNorm, &p.RightFP, &p.RightLang, &p.RightCategory,
			&p.Match, &p.DistNorm, &p.DistFP, &p.Score, &p.Source,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pair")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list pairs iterate")
}

func (s *SQLiteStore) UpdatePairScores(ctx context.Context, pairs []model.NamePair) error {
	args := make([][]any, len(pairs))
	for i, p := range pairs {
		args[i] = []any{p.DistNorm, p.DistFP, p.Score, p.ID}
	}
	return eris.Wrap(s.execBatch(ctx, `UPDATE pairs SET dist_norm = ?, dist_fp = ?, score = ? WHERE id = ?`, args), "sqlite: update pair scores")
}

func (s *SQLiteStore) CountRows(ctx context.Context, table string) (int64, error) {
	if !workTables[table] {
		return 0, eris.Errorf("sqlite: unknown table %q", table)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "sqlite: count %s", table)
	}
	return n, nil
}
