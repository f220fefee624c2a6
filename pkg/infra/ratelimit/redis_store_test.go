package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
	infraratelimit "github.com/AgroMunicipal/CitizenAssistant/pkg/infra/ratelimit"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedUUID = uuid.MustParse("7d3c1f0e-8a4b-4c2d-9e6f-0a1b2c3d4e5f")

func newRedisStore() (*infraratelimit.RedisStore, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	store := infraratelimit.NewRedisStore(client, &infraratelimit.RedisStoreOpts{
		UuidProvider: func() uuid.UUID { return fixedUUID },
	})
	return store, mock
}

func expectScript(mock redismock.ClientMock, policy ratelimit.Policy) *redismock.ExpectedCmd {
	nowMs := base.UnixMilli()
	return mock.ExpectEval(
		infraratelimit.SlidingWindowScript,
		[]string{"assistant:ratelimit:actor:window", "assistant:ratelimit:actor:blocked"},
		nowMs,
		policy.Window.Milliseconds(),
		policy.MaxPerWindow,
		policy.BlockDuration.Milliseconds(),
		fmt.Sprintf("%d:%s", nowMs, fixedUUID.String()),
	)
}

func TestRedisStore_RecordAndCheck_Allowed(t *testing.T) {
	store, mock := newRedisStore()
	policy := ratelimit.DefaultPolicy()

	expectScript(mock, policy).SetVal([]interface{}{int64(1), int64(0), int64(9)})

	d, err := store.RecordAndCheck(context.Background(), "actor", base, policy)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 9, d.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_RecordAndCheck_Rejected(t *testing.T) {
	store, mock := newRedisStore()
	policy := ratelimit.DefaultPolicy()

	expectScript(mock, policy).SetVal([]interface{}{int64(0), int64(60000), int64(0)})

	d, err := store.RecordAndCheck(context.Background(), "actor", base, policy)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_RecordAndCheck_Error(t *testing.T) {
	store, mock := newRedisStore()
	policy := ratelimit.DefaultPolicy()

	expectScript(mock, policy).SetErr(errors.New("connection refused"))

	_, err := store.RecordAndCheck(context.Background(), "actor", base, policy)
	assert.Error(t, err)
}

func TestRedisStore_Get(t *testing.T) {
	store, mock := newRedisStore()
	window := time.Minute
	min := base.Add(-window).UnixMilli()

	mock.ExpectZRangeByScoreWithScores("assistant:ratelimit:actor:window", &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(min, 10),
		Max: "+inf",
	}).SetVal([]redis.Z{{Score: float64(base.Add(-time.Second).UnixMilli()), Member: "m1"}})
	mock.ExpectGet("assistant:ratelimit:actor:blocked").RedisNil()

	record, err := store.Get(context.Background(), "actor", base, window)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Len(t, record.Timestamps, 1)
	assert.True(t, record.BlockedUntil.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Get_Empty(t *testing.T) {
	store, mock := newRedisStore()
	window := time.Minute
	min := base.Add(-window).UnixMilli()

	mock.ExpectZRangeByScoreWithScores("assistant:ratelimit:actor:window", &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(min, 10),
		Max: "+inf",
	}).SetVal([]redis.Z{})
	mock.ExpectGet("assistant:ratelimit:actor:blocked").RedisNil()

	record, err := store.Get(context.Background(), "actor", base, window)
	require.NoError(t, err)
	assert.Nil(t, record)
}
