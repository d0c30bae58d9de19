package user

import (
	"context"
	"regexp"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisVerificationStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedisVerificationStore(rdb)
	ctx := context.Background()

	mock.ExpectSet("verify:5", "123456", VerificationCodeTTL).SetVal("OK")
	mock.ExpectGet("verify:5").SetVal("123456")
	mock.ExpectGet("verify:6").RedisNil()
	mock.ExpectDel("verify:5").SetVal(1)

	require.NoError(t, store.Save(ctx, 5, "123456", VerificationCodeTTL))

	code, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = store.Get(ctx, 6)
	assert.ErrorIs(t, err, errCodeNotFound)

	require.NoError(t, store.Delete(ctx, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateCode(t *testing.T) {
	six := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, six, code)
	}
}
