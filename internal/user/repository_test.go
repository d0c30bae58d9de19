package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "name", "email", "phone", "address", "password_hash", "role", "verified_at", "location_id", "created_at", "updated_at", "deleted_at"}

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo, mock := setupUserMock(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, phone, password_hash, role, verified_at, location_id)")).
		WithArgs("Ana", "ana@example.com", "0812", "hash", "member", nil, nil).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Ana", "ana@example.com", "0812", "", "hash", "member", nil, nil, now, now, nil))

	u, err := repo.Create(ctx, &User{Name: "Ana", Email: "ana@example.com", Phone: "0812", PasswordHash: "hash", Role: "member"})
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.False(t, u.IsVerified())

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 AND deleted_at IS NULL")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Ana", "ana@example.com", "0812", "", "hash", "member", nil, nil, now, now, nil))

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", found.Name)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateDuplicateEmail(t *testing.T) {
	repo, mock := setupUserMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := setupUserMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_FindByIDReturnsDeleted(t *testing.T) {
	repo, mock := setupUserMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "Old", "old@example.com", "0812", "", "hash", "member", nil, nil, now, now, now))

	u, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, u.IsDeleted())
}

func TestRepository_List(t *testing.T) {
	repo, mock := setupUserMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("coach", "", 20, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "Coach A", "a@example.com", "0812", "", "h", "coach", now, nil, now, now, nil).
			AddRow(4, "Coach B", "b@example.com", "0813", "", "h", "coach", now, nil, now, now, nil))

	users, err := repo.List(context.Background(), ListFilter{Role: "coach", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRepository_SoftDelete(t *testing.T) {
	repo, mock := setupUserMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET deleted_at = NOW()")).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.SoftDelete(context.Background(), 5))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 6), ErrUserNotFound)
}
