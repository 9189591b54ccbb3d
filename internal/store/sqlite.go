package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/quote-sync/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id               TEXT PRIMARY KEY,
	source_file_id   TEXT,
	source_file_name TEXT NOT NULL DEFAULT '',
	event_date       TEXT,
	event_type       TEXT NOT NULL DEFAULT '',
	contact_name     TEXT NOT NULL DEFAULT '',
	total_amount     REAL NOT NULL DEFAULT 0,
	record           TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_analyses_file_id ON analyses(source_file_id) WHERE source_file_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_analyses_file_name ON analyses(source_file_name);
CREATE INDEX IF NOT EXISTS idx_analyses_updated_at ON analyses(updated_at);
`

const analysisColumns = `id, record, created_at, updated_at`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindByFileID(ctx context.Context, fileID string) (*model.PersistedAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE source_file_id = ?`, fileID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, eris.Wrapf(err, "sqlite: find by file id %s", fileID)
}

func (s *SQLiteStore) FindByFileName(ctx context.Context, name string) (*model.PersistedAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE source_file_name = ? ORDER BY updated_at DESC LIMIT 1`, name)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, eris.Wrapf(err, "sqlite: find by file name %q", name)
}

func (s *SQLiteStore) Insert(ctx context.Context, a *model.PersistedAnalysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	recJSON, err := json.Marshal(a.ExtractedRecord)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}
	c := columnsOf(a.ExtractedRecord)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, source_file_id, source_file_name, event_date, event_type, contact_name, total_amount, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, c.fileID, c.fileName, c.eventDate, c.eventType, c.contact, c.total, string(recJSON), a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert analysis %s", a.ID)
}

func (s *SQLiteStore) Update(ctx context.Context, a *model.PersistedAnalysis) error {
	recJSON, err := json.Marshal(a.ExtractedRecord)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}
	c := columnsOf(a.ExtractedRecord)
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET source_file_id = ?, source_file_name = ?, event_date = ?, event_type = ?,
		 contact_name = ?, total_amount = ?, record = ?, updated_at = ? WHERE id = ?`,
		c.fileID, c.fileName, c.eventDate, c.eventType, c.contact, c.total, string(recJSON), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update analysis %s", a.ID)
	}
	return checkRowsAffected(res, a.ID)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.PersistedAnalysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get analysis %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}
	return a, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]model.PersistedAnalysis, int, error) {
	f, err := filter.Normalize()
	if err != nil {
		return nil, 0, err
	}

	where := ` WHERE 1=1`
	var args []any
	if f.Query != "" {
		where += ` AND (source_file_name LIKE ? ESCAPE '\' OR event_type LIKE ? ESCAPE '\' OR contact_name LIKE ? ESCAPE '\')`
		p := likePattern(f.Query)
		args = append(args, p, p, p)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`+where, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count analyses")
	}

	query := `SELECT ` + analysisColumns + ` FROM analyses` + where + f.orderClause() + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.PersistedAnalysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan analysis")
		}
		out = append(out, *a)
	}
	return out, total, eris.Wrap(rows.Err(), "sqlite: iterate analyses")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*model.PersistedAnalysis, error) {
	var a model.PersistedAnalysis
	var recJSON string
	if err := row.Scan(&a.ID, &recJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recJSON), &a.ExtractedRecord); err != nil {
		return nil, eris.Wrap(err, "unmarshal record")
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}
