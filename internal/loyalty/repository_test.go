package loyalty

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

var rewardCols = []string{"id", "name", "reward", "description", "created_at", "updated_at", "deleted_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepository_SumByReference(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("AND reference_type = $2 AND reference_id = $3")).
		WithArgs(1, RefBooking, 9).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))

	sum, err := repo.SumByReference(context.Background(), nil, 1, RefBooking, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasReversal(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("AND reference_id = $3 AND type = 'reversal'")).
		WithArgs(1, RefBooking, 9).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasReversal(context.Background(), nil, 1, RefBooking, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindRewardByNameMissing(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM loyalty_rewards WHERE name = $1")).
		WithArgs("booking").
		WillReturnRows(sqlmock.NewRows(rewardCols))

	_, err := repo.FindRewardByName(context.Background(), nil, "booking")
	assert.ErrorIs(t, err, ErrRewardNotFound)
}

func TestRepository_CreateRewardDuplicateName(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO loyalty_rewards")).
		WithArgs("booking", 1, "").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateReward(context.Background(), RewardRequest{Name: "booking", Reward: 1})
	assert.ErrorIs(t, err, ErrRewardExists)
}

func TestRepository_UpdateReward(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE loyalty_rewards SET name = $2")).
		WithArgs(1, "booking", 3, "per class").
		WillReturnRows(sqlmock.NewRows(rewardCols).AddRow(1, "booking", 3, "per class", now, now, nil))

	rw, err := repo.UpdateReward(context.Background(), 1, RewardRequest{Name: "booking", Reward: 3, Description: "per class"})
	require.NoError(t, err)
	assert.Equal(t, 3, rw.Reward)
}

func TestRepository_SoftDeleteShopItemMissing(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE loyalty_shops SET deleted_at = NOW()")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SoftDeleteShopItem(context.Background(), 4), ErrShopItemNotFound)
}
