package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lenderColumns = []string{"snapshot_id", "position", "lender_name", "criteria"}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "catalog_lenders", lenderColumns, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"catalog_lenders"}, lenderColumns).WillReturnResult(2)

	rows := [][]any{
		{"snap-1", 0, "Acme Capital", []byte(`{}`)},
		{"snap-1", 1, "Beta Funding", []byte(`{}`)},
	}
	n, err := CopyFrom(context.Background(), mock, "catalog_lenders", lenderColumns, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_InTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"catalog_lenders"}, lenderColumns).WillReturnResult(1)
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)
	n, err := CopyFrom(ctx, tx, "catalog_lenders", lenderColumns, [][]any{{"snap-1", 0, "Acme Capital", []byte(`{}`)}})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"catalog_lenders"}, lenderColumns).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "catalog_lenders", lenderColumns, [][]any{{"snap-1", 0, "Acme", nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO catalog_lenders")
	assert.NoError(t, mock.ExpectationsWereMet())
}
