package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "assistant:ratelimit"

// slidingWindowScript runs check-then-increment server side so concurrent
// instances share one limit. Scores are unix milliseconds.
//
// KEYS[1] window zset, KEYS[2] block marker
// ARGV: now, window, limit, block, member
// Returns {allowed, retry_after_ms, remaining}.
const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local block = tonumber(ARGV[4])

local blocked_until = tonumber(redis.call('GET', KEYS[2]) or '0')
if blocked_until > now then
  return {0, blocked_until - now, 0}
end

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
if count >= limit then
  local retry = block
  if block > 0 then
    redis.call('SET', KEYS[2], now + block, 'PX', block)
  else
    local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
    retry = tonumber(oldest[2]) + window - now
  end
  if retry < 1 then retry = 1 end
  return {0, retry, 0}
end

redis.call('ZADD', KEYS[1], now, ARGV[5])
redis.call('PEXPIRE', KEYS[1], window)
return {1, 0, limit - count - 1}
`

type RedisStore struct {
	client       *redis.Client
	uuidProvider func() uuid.UUID
}

type RedisStoreOpts struct {
	UuidProvider func() uuid.UUID
}

func NewRedisStore(client *redis.Client, opts *RedisStoreOpts) *RedisStore {
	uuidProvider := uuid.New
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &RedisStore{client: client, uuidProvider: uuidProvider}
}

func windowKey(actorID string) string {
	return fmt.Sprintf("%s:%s:window", keyPrefix, actorID)
}

func blockKey(actorID string) string {
	return fmt.Sprintf("%s:%s:blocked", keyPrefix, actorID)
}

func (s *RedisStore) RecordAndCheck(
	ctx context.Context,
	actorID string,
	now time.Time,
	policy ratelimit.Policy,
) (ratelimit.Decision, error) {
	if policy.MaxPerWindow <= 0 {
		return ratelimit.Decision{Allowed: true}, nil
	}
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d:%s", nowMs, s.uuidProvider().String())
	res, err := s.client.Eval(ctx, slidingWindowScript,
		[]string{windowKey(actorID), blockKey(actorID)},
		nowMs,
		policy.Window.Milliseconds(),
		policy.MaxPerWindow,
		policy.BlockDuration.Milliseconds(),
		member,
	).Result()
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	values, ok := res.([]interface{})
	if !ok || len(values) != 3 {
		return ratelimit.Decision{}, fmt.Errorf("unexpected rate limit script result %T", res)
	}
	allowed, _ := values[0].(int64)
	retryMs, _ := values[1].(int64)
	remaining, _ := values[2].(int64)
	return ratelimit.Decision{
		Allowed:    allowed == 1,
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
		Remaining:  int(remaining),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, actorID string, now time.Time, window time.Duration) (*ratelimit.Record, error) {
	min := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)
	entries, err := s.client.ZRangeByScoreWithScores(ctx, windowKey(actorID), &redis.ZRangeBy{
		Min: "(" + min,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read rate limit window: %w", err)
	}

	var blockedUntil time.Time
	raw, err := s.client.Get(ctx, blockKey(actorID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("read rate limit block: %w", err)
	default:
		ms, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return nil, fmt.Errorf("parse rate limit block: %w", parseErr)
		}
		blockedUntil = time.UnixMilli(ms)
	}

	if len(entries) == 0 && blockedUntil.IsZero() {
		return nil, nil
	}
	record := &ratelimit.Record{ActorID: actorID, BlockedUntil: blockedUntil}
	for _, e := range entries {
		record.Timestamps = append(record.Timestamps, time.UnixMilli(int64(e.Score)))
	}
	return record, nil
}

// Prune is a no-op: window keys carry a PEXPIRE of one window and block markers
// expire with the block.
func (s *RedisStore) Prune(context.Context, time.Time, time.Duration) (int, error) {
	return 0, nil
}
