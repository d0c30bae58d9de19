package location

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	locationCols = []string{"id", "name", "address", "phone_number", "email", "link_maps", "created_at", "updated_at", "deleted_at"}
	facilityCols = []string{"id", "location_id", "name", "capacity", "level", "image_url", "created_at", "updated_at", "deleted_at"}
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations (name, address, phone_number, email, link_maps)")).
		WithArgs("Kemang", "Jl. Kemang 10", "021", "k@example.com", "").
		WillReturnRows(sqlmock.NewRows(locationCols).AddRow(1, "Kemang", "Jl. Kemang 10", "021", "k@example.com", "", now, now, nil))

	l, err := repo.Create(context.Background(), LocationRequest{Name: "Kemang", Address: "Jl. Kemang 10", PhoneNumber: "021", Email: "k@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, l.ID)
	assert.Nil(t, l.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDeletedHiddenFromListButFoundByID(t *testing.T) {
	repo, mock := setupMock(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE locations SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(ctx, 1))

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE deleted_at IS NULL")).
		WillReturnRows(sqlmock.NewRows(locationCols).AddRow(2, "Senopati", "Jl. Senopati", "", "", "", now, now, nil))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(locationCols).AddRow(1, "Kemang", "Jl. Kemang", "", "", "", now, now, now))

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, found.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDeleteTwice(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE location_facilities SET deleted_at = NOW()")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SoftDeleteFacility(context.Background(), 3), ErrFacilityNotFound)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE locations")).
		WillReturnRows(sqlmock.NewRows(locationCols))

	_, err := repo.Update(context.Background(), 9, LocationRequest{Name: "x", Address: "y"})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestRepository_FacilitiesByLocation(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM location_facilities WHERE location_id = $1 AND deleted_at IS NULL")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(facilityCols).
			AddRow(1, 1, "Reformer", 8, 1, "", now, now, nil).
			AddRow(2, 1, "Mat", 12, 2, "", now, now, nil))

	facilities, err := repo.FacilitiesByLocation(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, facilities, 2)
	assert.Equal(t, 12, facilities[1].Capacity)
}
