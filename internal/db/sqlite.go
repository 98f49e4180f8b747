package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mithrel/medic/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

const exchangeColumns = `id, kind, title, prompt, reply, hash, model, created_ns`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (api.Exchange, error) {
	var e api.Exchange
	var kind string
	var ns int64
	if err := row.Scan(&e.ID, &kind, &e.Title, &e.Prompt, &e.Reply, &e.Hash, &e.Model, &ns); err != nil {
		return api.Exchange{}, err
	}
	e.Kind = api.Kind(kind)
	e.CreatedAt = fromUnixNano(ns)
	return e, nil
}

func (s *sqliteStore) Record(ctx context.Context, e api.Exchange) error {
	if e.ID == "" {
		return ErrConflict
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO exchanges(`+exchangeColumns+`) VALUES(?,?,?,?,?,?,?,?)`,
		e.ID, string(e.Kind), e.Title, e.Prompt, e.Reply, e.Hash, e.Model, e.CreatedAt.UnixNano())
	if isPrimaryKeyConflict(err) {
		return ErrConflict
	}
	return err
}

func isPrimaryKeyConflict(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func (s *sqliteStore) Get(ctx context.Context, id string) (api.Exchange, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exchangeColumns+` FROM exchanges WHERE id=?`, id)
	e, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Exchange{}, ErrNotFound
	}
	return e, err
}

func (s *sqliteStore) FindByHash(ctx context.Context, kind api.Kind, hash string) (api.Exchange, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exchangeColumns+` FROM exchanges
WHERE kind=? AND hash=?
ORDER BY created_ns DESC, id DESC
LIMIT 1`, string(kind), hash)
	e, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Exchange{}, ErrNotFound
	}
	return e, err
}

func (s *sqliteStore) List(ctx context.Context, q api.ListQuery) ([]api.Exchange, api.Page, error) {
	limit := listLimit(q.Limit)
	conds := []string{}
	args := []any{}
	if q.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(q.Kind))
	}
	if !q.Since.IsZero() {
		conds = append(conds, "created_ns >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		conds = append(conds, "created_ns < ?")
		args = append(args, q.Until.UnixNano())
	}
	if c, ok := parseCursorToken(q.Cursor); ok {
		conds = append(conds, "(created_ns < ? OR (created_ns = ? AND id < ?))")
		args = append(args, c.ts, c.ts, c.id)
	}
	sqlq := `SELECT ` + exchangeColumns + ` FROM exchanges`
	if len(conds) > 0 {
		sqlq += "\nWHERE " + strings.Join(conds, " AND ")
	}
	sqlq += "\nORDER BY created_ns DESC, id DESC\nLIMIT ?"
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, api.Page{}, err
	}
	defer rows.Close()
	var out []api.Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, api.Page{}, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, api.Page{}, err
	}
	var page api.Page
	if len(out) > limit {
		out = out[:limit]
		page.Next = encodeCursorToken(out[len(out)-1])
	}
	return out, page, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (*sqliteStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// pragmas in the DSN apply to every pooled connection
	dbh, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if err := dbh.PingContext(ctx); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS exchanges (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  prompt TEXT NOT NULL,
  reply TEXT NOT NULL,
  hash TEXT NOT NULL,
  model TEXT NOT NULL DEFAULT '',
  created_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchanges_kind_created ON exchanges(kind, created_ns DESC, id);
CREATE INDEX IF NOT EXISTS idx_exchanges_hash ON exchanges(kind, hash);
`)
	return err
}
