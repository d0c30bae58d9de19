package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestInTx_Commit(t *testing.T) {
	dbx, mock := newMock(t)
	tm := NewTransactor(dbx)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tm.InTx(context.Background(), func(q sqlx.ExtContext) error {
		_, err := q.ExecContext(context.Background(), "UPDATE users SET name = $1", "a")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollbackOnError(t *testing.T) {
	dbx, mock := newMock(t)
	tm := NewTransactor(dbx)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tm.InTx(context.Background(), func(q sqlx.ExtContext) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginFails(t *testing.T) {
	dbx, mock := newMock(t)
	tm := NewTransactor(dbx)

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	called := false
	err := tm.InTx(context.Background(), func(q sqlx.ExtContext) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestExists(t *testing.T) {
	dbx, mock := newMock(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := Exists(context.Background(), dbx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", "a@b.c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}
