package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lender-qualify/internal/db"
	"github.com/sells-group/lender-qualify/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
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

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
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
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS evaluations (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	client_name       TEXT NOT NULL,
	company           TEXT NOT NULL,
	profile           JSONB NOT NULL,
	results           JSONB NOT NULL,
	funding_potential JSONB NOT NULL,
	qualified_count   INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_evaluations_company ON evaluations(company);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at DESC);

CREATE TABLE IF NOT EXISTS catalog_snapshots (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source       TEXT NOT NULL,
	row_count    INTEGER NOT NULL,
	skipped_rows INTEGER NOT NULL,
	loaded_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_catalog_snapshots_loaded_at ON catalog_snapshots(loaded_at DESC);

CREATE TABLE IF NOT EXISTS catalog_lenders (
	snapshot_id TEXT NOT NULL REFERENCES catalog_snapshots(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	lender_name TEXT NOT NULL,
	criteria    JSONB NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_catalog_lenders_name ON catalog_lenders(lender_name);
`

var catalogLenderColumns = []string{"snapshot_id", "position", "lender_name", "criteria"}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveEvaluation(ctx context.Context, e *model.Evaluation) error {
	prepareEvaluation(e)

	profileJSON, resultsJSON, potentialJSON, err := marshalEvaluation(e)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal evaluation")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO evaluations (id, client_name, company, profile, results, funding_potential, qualified_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.ClientName, e.Company, profileJSON, resultsJSON, potentialJSON, e.QualifiedCount, e.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert evaluation %s", e.ID)
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, client_name, company, profile, results, funding_potential, qualified_count, created_at
		 FROM evaluations WHERE id = $1`,
		id,
	)
	e, err := scanPgEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "evaluation %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get evaluation %s", id)
	}
	return e, nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error) {
	query := `SELECT id, client_name, company, profile, results, funding_potential, qualified_count, created_at
		FROM evaluations WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Company != "" {
		query += fmt.Sprintf(` AND company = $%d`, argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list evaluations")
	}
	defer rows.Close()

	evals := []model.Evaluation{}
	for rows.Next() {
		e, err := scanPgEvaluation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		evals = append(evals, *e)
	}
	return evals, eris.Wrap(rows.Err(), "postgres: list evaluations iterate")
}

// SaveCatalogSnapshot writes the snapshot header and copies one row per
// lender in a single transaction.
func (s *PostgresStore) SaveCatalogSnapshot(ctx context.Context, snap *model.CatalogSnapshot) error {
	prepareSnapshot(snap)

	rows := make([][]any, 0, len(snap.Lenders))
	for i, l := range snap.Lenders {
		criteriaJSON, err := json.Marshal(l)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal lender %s", l.LenderName)
		}
		rows = append(rows, []any{snap.ID, i, l.LenderName, criteriaJSON})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin snapshot tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO catalog_snapshots (id, source, row_count, skipped_rows, loaded_at) VALUES ($1, $2, $3, $4, $5)`,
		snap.ID, snap.Source, snap.RowCount, snap.SkippedRows, snap.LoadedAt,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert catalog snapshot %s", snap.ID)
	}
	if _, err := db.CopyFrom(ctx, tx, "catalog_lenders", catalogLenderColumns, rows); err != nil {
		return eris.Wrap(err, "postgres: copy catalog lenders")
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit snapshot tx")
}

func (s *PostgresStore) LatestCatalogSnapshot(ctx context.Context) (*model.CatalogSnapshot, error) {
	var snap model.CatalogSnapshot
	err := s.pool.QueryRow(ctx,
		`SELECT id, source, row_count, skipped_rows, loaded_at
		 FROM catalog_snapshots ORDER BY loaded_at DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.Source, &snap.RowCount, &snap.SkippedRows, &snap.LoadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "catalog snapshot")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest catalog snapshot")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT criteria FROM catalog_lenders WHERE snapshot_id = $1 ORDER BY position`,
		snap.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load lenders for snapshot %s", snap.ID)
	}
	defer rows.Close()

	snap.Lenders = []model.LenderCriteria{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lender")
		}
		var l model.LenderCriteria
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lender")
		}
		snap.Lenders = append(snap.Lenders, l)
	}
	return &snap, eris.Wrap(rows.Err(), "postgres: iterate lenders")
}

func scanPgEvaluation(row pgx.Row) (*model.Evaluation, error) {
	var e model.Evaluation
	var profileJSON, resultsJSON, potentialJSON []byte

	if err := row.Scan(&e.ID, &e.ClientName, &e.Company, &profileJSON, &resultsJSON, &potentialJSON, &e.QualifiedCount, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalEvaluation(&e, profileJSON, resultsJSON, potentialJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal evaluation")
	}
	return &e, nil
}
