package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-sync/internal/db"
	"github.com/sells-group/quote-sync/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id               TEXT PRIMARY KEY,
	source_file_id   TEXT,
	source_file_name TEXT NOT NULL DEFAULT '',
	event_date       DATE,
	event_type       TEXT NOT NULL DEFAULT '',
	contact_name     TEXT NOT NULL DEFAULT '',
	total_amount     DOUBLE PRECISION NOT NULL DEFAULT 0,
	record           JSONB NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_analyses_file_id ON analyses(source_file_id) WHERE source_file_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_analyses_file_name ON analyses(source_file_name);
CREATE INDEX IF NOT EXISTS idx_analyses_updated_at ON analyses(updated_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FindByFileID(ctx context.Context, fileID string) (*model.PersistedAnalysis, error) {
	a, err := scanPgAnalysis(s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE source_file_id = $1`, fileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, eris.Wrapf(err, "postgres: find by file id %s", fileID)
}

func (s *PostgresStore) FindByFileName(ctx context.Context, name string) (*model.PersistedAnalysis, error) {
	a, err := scanPgAnalysis(s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE source_file_name = $1 ORDER BY updated_at DESC LIMIT 1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, eris.Wrapf(err, "postgres: find by file name %q", name)
}

func (s *PostgresStore) Insert(ctx context.Context, a *model.PersistedAnalysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	recJSON, err := json.Marshal(a.ExtractedRecord)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}
	c := columnsOf(a.ExtractedRecord)
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, source_file_id, source_file_name, event_date, event_type, contact_name, total_amount, record, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, c.fileID, c.fileName, c.eventDate, c.eventType, c.contact, c.total, recJSON, a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert analysis %s", a.ID)
}

func (s *PostgresStore) Update(ctx context.Context, a *model.PersistedAnalysis) error {
	recJSON, err := json.Marshal(a.ExtractedRecord)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}
	c := columnsOf(a.ExtractedRecord)
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET source_file_id = $1, source_file_name = $2, event_date = $3, event_type = $4,
		 contact_name = $5, total_amount = $6, record = $7, updated_at = $8 WHERE id = $9`,
		c.fileID, c.fileName, c.eventDate, c.eventType, c.contact, c.total, recJSON, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update analysis %s", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: update analysis %s", a.ID)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.PersistedAnalysis, error) {
	a, err := scanPgAnalysis(s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get analysis %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	return a, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]model.PersistedAnalysis, int, error) {
	f, err := filter.Normalize()
	if err != nil {
		return nil, 0, err
	}

	where := ` WHERE true`
	args := []any{}
	argIdx := 1
	if f.Query != "" {
		where += fmt.Sprintf(` AND (source_file_name ILIKE $%d OR event_type ILIKE $%d OR contact_name ILIKE $%d)`, argIdx, argIdx, argIdx)
		args = append(args, likePattern(f.Query))
		argIdx++
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analyses`+where, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "postgres: count analyses")
	}

	query := `SELECT ` + analysisColumns + ` FROM analyses` + where + f.orderClause() +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	rows, err := s.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	out := []model.PersistedAnalysis{}
	for rows.Next() {
		a, err := scanPgAnalysis(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "postgres: scan analysis")
		}
		out = append(out, *a)
	}
	return out, total, eris.Wrap(rows.Err(), "postgres: iterate analyses")
}

func scanPgAnalysis(row pgx.Row) (*model.PersistedAnalysis, error) {
	var a model.PersistedAnalysis
	var recJSON []byte
	if err := row.Scan(&a.ID, &recJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recJSON, &a.ExtractedRecord); err != nil {
		return nil, eris.Wrap(err, "unmarshal record")
	}
	return &a, nil
}
