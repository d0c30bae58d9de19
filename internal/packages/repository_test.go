package packages

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pkgCols = []string{"id", "name", "description", "price", "credit", "valid_for", "class_type_id", "is_active", "one_time_only", "loyalty_points", "created_at", "updated_at", "deleted_at"}

func setupMock(t *testing.T) (*sqlx.DB, Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, NewRepository(db), mock
}

func TestRepository_FindByIDIncludesDeleted(t *testing.T) {
	_, repo, mock := setupMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM packages WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(pkgCols).
			AddRow(3, "10x Reformer", "", "750000.00", 10, 60, 2, true, false, 25, now, now, now))

	p, err := repo.FindByID(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(750000)))
	assert.NotNil(t, p.DeletedAt)
}

func TestRepository_FindAllActiveOnly(t *testing.T) {
	_, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE deleted_at IS NULL AND (NOT $1 OR is_active)")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(pkgCols))

	pkgs, err := repo.FindAll(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, pkgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateUnknownClassType(t *testing.T) {
	_, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO packages")).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.Create(context.Background(), PackageRequest{Name: "x", Price: decimal.NewFromInt(1), Credit: 1, ValidFor: 1, ClassTypeID: 99})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestRepository_InsertTransactionCodeCollision(t *testing.T) {
	db, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO package_transactions")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.InsertTransaction(context.Background(), db, &Transaction{UserID: 1, PackageID: 3, UniqueCode: "ABCD1234"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestRepository_SetProofNotPending(t *testing.T) {
	_, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND user_id = $2 AND status = 'pending'")).
		WithArgs(40, 1, "https://cdn/x.png").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.SetProof(context.Background(), 40, 1, "https://cdn/x.png")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
