package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lender-qualify/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

var evaluationColumns = []string{"id", "client_name", "company", "profile", "results", "funding_potential", "qualified_count", "created_at"}

func evaluationRow(t *testing.T, e *model.Evaluation) []any {
	t.Helper()
	profile, results, potential, err := marshalEvaluation(e)
	require.NoError(t, err)
	return []any{e.ID, e.ClientName, e.Company, profile, results, potential, e.QualifiedCount, e.CreatedAt}
}

func TestPostgresStore_SaveEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO evaluations`).
		WithArgs(pgxmock.AnyArg(), "Dana Ortiz", "Ortiz Landscaping", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	e := sampleEvaluation("Ortiz Landscaping", time.Time{})
	require.NoError(t, s.SaveEvaluation(context.Background(), e))
	assert.NotEmpty(t, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	want := sampleEvaluation("Ortiz Landscaping", time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	prepareEvaluation(want)

	mock.ExpectQuery(`SELECT id, client_name, company, profile, results, funding_potential, qualified_count, created_at\s+FROM evaluations WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnRows(pgxmock.NewRows(evaluationColumns).AddRow(evaluationRow(t, want)...))

	got, err := s.GetEvaluation(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Profile, got.Profile)
	assert.Equal(t, want.Results, got.Results)
	assert.Equal(t, want.Potential, got.Potential)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvaluation_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM evaluations WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetEvaluation(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEvaluations_CompanyFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	e := sampleEvaluation("Alpha LLC", time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	prepareEvaluation(e)

	mock.ExpectQuery(`AND company = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("Alpha LLC", 10, 20).
		WillReturnRows(pgxmock.NewRows(evaluationColumns).AddRow(evaluationRow(t, e)...))

	evals, err := s.ListEvaluations(context.Background(), EvaluationFilter{Company: "Alpha LLC", Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, "Alpha LLC", evals[0].Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEvaluations_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows(evaluationColumns))

	evals, err := s.ListEvaluations(context.Background(), EvaluationFilter{})
	require.NoError(t, err)
	assert.Empty(t, evals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCatalogSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	snap := &model.CatalogSnapshot{
		Source:   "https://example.com/lenders.xlsx",
		RowCount: 2,
		Lenders: []model.LenderCriteria{
			{LenderName: "Acme Capital"},
			{LenderName: "Beta Funding"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO catalog_snapshots`).
		WithArgs(pgxmock.AnyArg(), snap.Source, 2, 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"catalog_lenders"}, catalogLenderColumns).WillReturnResult(2)
	mock.ExpectCommit()

	require.NoError(t, s.SaveCatalogSnapshot(context.Background(), snap))
	assert.NotEmpty(t, snap.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCatalogSnapshot_InsertFails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO catalog_snapshots`).
		WithArgs(pgxmock.AnyArg(), "x", 0, 0, pgxmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := s.SaveCatalogSnapshot(context.Background(), &model.CatalogSnapshot{Source: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert catalog snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestCatalogSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	loaded := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	acme := model.LenderCriteria{LenderName: "Acme Capital", MinFICO: ptr(550.0)}
	acmeJSON, err := json.Marshal(acme)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM catalog_snapshots ORDER BY loaded_at DESC LIMIT 1`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "row_count", "skipped_rows", "loaded_at"}).
			AddRow("snap-1", "lenders.xlsx", 2, 1, loaded))
	mock.ExpectQuery(`SELECT criteria FROM catalog_lenders WHERE snapshot_id = \$1 ORDER BY position`).
		WithArgs("snap-1").
		WillReturnRows(pgxmock.NewRows([]string{"criteria"}).AddRow(acmeJSON))

	snap, err := s.LatestCatalogSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, 1, snap.SkippedRows)
	assert.Equal(t, []model.LenderCriteria{acme}, snap.Lenders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestCatalogSnapshot_None(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM catalog_snapshots`).WillReturnError(pgx.ErrNoRows)

	_, err := s.LatestCatalogSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS evaluations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
