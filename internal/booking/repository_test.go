package booking

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

var bookingCols = []string{"id", "agenda_id", "user_id", "status", "created_at", "updated_at"}

func setupMock(t *testing.T) (*sqlx.DB, Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, NewRepository(db), mock
}

func TestRepository_LockSeat(t *testing.T) {
	db, repo, mock := setupMock(t)
	at := time.Now().Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF a")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"agenda_id", "time", "slot", "class_type_id", "deleted_at"}).
			AddRow(7, at, 8, 2, nil))

	seat, err := repo.LockSeat(context.Background(), db, 7)
	require.NoError(t, err)
	assert.Equal(t, 8, seat.Slot)
	assert.Equal(t, 2, seat.ClassTypeID)
	assert.Nil(t, seat.DeletedAt)
}

func TestRepository_LockSeatMissing(t *testing.T) {
	db, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF a")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"agenda_id"}))

	_, err := repo.LockSeat(context.Background(), db, 7)
	assert.ErrorIs(t, err, ErrAgendaNotFound)
}

func TestRepository_CountActiveIgnoresCancelled(t *testing.T) {
	_, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE agenda_id = $1 AND status <> 'cancelled'")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountActive(context.Background(), nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRepository_InsertDuplicate(t *testing.T) {
	db, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO agenda_bookings")).
		WithArgs(7, 1).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Insert(context.Background(), db, 1, 7)
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestRepository_SetStatus(t *testing.T) {
	db, repo, mock := setupMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE agenda_bookings SET status = $2")).
		WithArgs(30, StatusCancelled).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(30, 7, 1, StatusCancelled, now, now))

	b, err := repo.SetStatus(context.Background(), db, 30, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockMissing(t *testing.T) {
	db, repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF b")).
		WithArgs(30).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err := repo.Lock(context.Background(), db, 30)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
