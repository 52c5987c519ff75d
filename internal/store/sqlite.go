package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lender-qualify/internal/model"
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
CREATE TABLE IF NOT EXISTS evaluations (
	id                TEXT PRIMARY KEY,
	client_name       TEXT NOT NULL,
	company           TEXT NOT NULL,
	profile           TEXT NOT NULL,
	results           TEXT NOT NULL,
	funding_potential TEXT NOT NULL,
	qualified_count   INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS catalog_snapshots (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	row_count    INTEGER NOT NULL,
	skipped_rows INTEGER NOT NULL,
	lenders      TEXT NOT NULL,
	loaded_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_evaluations_company ON evaluations(company);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
CREATE INDEX IF NOT EXISTS idx_catalog_snapshots_loaded_at ON catalog_snapshots(loaded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveEvaluation(ctx context.Context, e *model.Evaluation) error {
	prepareEvaluation(e)

	profileJSON, resultsJSON, potentialJSON, err := marshalEvaluation(e)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal evaluation")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, client_name, company, profile, results, funding_potential, qualified_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ClientName, e.Company, string(profileJSON), string(resultsJSON), string(potentialJSON), e.QualifiedCount, e.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert evaluation %s", e.ID)
}

func (s *SQLiteStore) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, client_name, company, profile, results, funding_potential, qualified_count, created_at
		 FROM evaluations WHERE id = ?`,
		id,
	)
	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "evaluation %s", id)
	}
	return e, err
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error) {
	query := `SELECT id, client_name, company, profile, results, funding_potential, qualified_count, created_at
		FROM evaluations WHERE 1=1`
	var args []any

	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evaluations")
	}
	defer rows.Close() //nolint:errcheck

	evals := []model.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, *e)
	}
	return evals, eris.Wrap(rows.Err(), "sqlite: list evaluations iterate")
}

func (s *SQLiteStore) SaveCatalogSnapshot(ctx context.Context, snap *model.CatalogSnapshot) error {
	prepareSnapshot(snap)

	lendersJSON, err := json.Marshal(snap.Lenders)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lenders")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog_snapshots (id, source, row_count, skipped_rows, lenders, loaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.RowCount, snap.SkippedRows, string(lendersJSON), snap.LoadedAt,
	)
	return eris.Wrapf(err, "sqlite: insert catalog snapshot %s", snap.ID)
}

func (s *SQLiteStore) LatestCatalogSnapshot(ctx context.Context) (*model.CatalogSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, row_count, skipped_rows, lenders, loaded_at
		 FROM catalog_snapshots ORDER BY loaded_at DESC LIMIT 1`,
	)

	var snap model.CatalogSnapshot
	var lendersJSON string
	err := row.Scan(&snap.ID, &snap.Source, &snap.RowCount, &snap.SkippedRows, &lendersJSON, &snap.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "catalog snapshot")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan catalog snapshot")
	}
	if err := json.Unmarshal([]byte(lendersJSON), &snap.Lenders); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal lenders")
	}
	return &snap, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scannable) (*model.Evaluation, error) {
	var e model.Evaluation
	var profileJSON, resultsJSON, potentialJSON string

	err := row.Scan(&e.ID, &e.ClientName, &e.Company, &profileJSON, &resultsJSON, &potentialJSON, &e.QualifiedCount, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan evaluation")
	}
	if err := unmarshalEvaluation(&e, []byte(profileJSON), []byte(resultsJSON), []byte(potentialJSON)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal evaluation")
	}
	return &e, nil
}

func marshalEvaluation(e *model.Evaluation) (profile, results, potential []byte, err error) {
	if profile, err = json.Marshal(e.Profile); err != nil {
		return nil, nil, nil, err
	}
	if results, err = json.Marshal(e.Results); err != nil {
		return nil, nil, nil, err
	}
	if potential, err = json.Marshal(e.Potential); err != nil {
		return nil, nil, nil, err
	}
	return profile, results, potential, nil
}

func unmarshalEvaluation(e *model.Evaluation, profile, results, potential []byte) error {
	if err := json.Unmarshal(profile, &e.Profile); err != nil {
		return err
	}
	if err := json.Unmarshal(results, &e.Results); err != nil {
		return err
	}
	return json.Unmarshal(potential, &e.Potential)
}
