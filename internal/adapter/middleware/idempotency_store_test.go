package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_loadEntry_WithRedisMock(t *testing.T) {
	key := buildKey("POST", "/v1/analyses", strings.Repeat("c", 32), strings.Repeat("a", 32))

	t.Run("decodes stored entry", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(`{"in_progress":false,"code":201,"body":"e30=","body_sha256":"abc"}`)

		got, err := loadEntry(context.Background(), db, key)
		require.NoError(t, err)
		assert.False(t, got.InProgress)
		assert.Equal(t, 201, got.Code)
		assert.Equal(t, "{}", string(got.Body))
		assert.Equal(t, "abc", got.BodySHA256)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()

		_, err := loadEntry(context.Background(), db, key)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt value", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(`not json`)

		_, err := loadEntry(context.Background(), db, key)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_release_WithRedisMock(t *testing.T) {
	key := buildKey("POST", "/v1/analyses", strings.Repeat("c", 32), strings.Repeat("a", 32))

	db, mock := redismock.NewClientMock()
	mock.ExpectDel(key).SetVal(1)
	require.NoError(t, release(context.Background(), db, key))

	mock.ExpectDel(key).SetErr(errors.New("connection reset"))
	assert.EqualError(t, release(context.Background(), db, key), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
