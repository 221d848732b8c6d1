// Package ratelimit реализует ограничение частоты запросов
// скользящим окном поверх Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "school:rl:"

// Result — решение лимитера по одному запросу.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Окно хранится в sorted set: score — время запроса в мс.
// Устаревшие элементы удаляются, затем запрос либо добавляется,
// либо отклоняется со временем до освобождения самого старого слота.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local counter_key = KEYS[2]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
if count < limit then
	local seq = redis.call('INCR', counter_key)
	redis.call('ZADD', key, now, now .. ':' .. seq)
	redis.call('PEXPIRE', key, window)
	redis.call('PEXPIRE', counter_key, window)
	return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = 0
if #oldest >= 2 then
	retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)

// Limiter — лимитер со скользящим окном фиксированной длины.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение.
func New(redisURL string, limit int, window time.Duration) (*Limiter, error) {
	const op = "ratelimit.New"

	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("%s: limit and window must be positive", op)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Limiter{
		rdb:    rdb,
		prefix: defaultPrefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// Limit возвращает число запросов, разрешённых в окне.
func (l *Limiter) Limit() int { return l.limit }

// Allow учитывает запрос по ключу и сообщает, разрешён ли он.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	const op = "ratelimit.Allow"

	redisKey := l.prefix + key
	nowMs := l.now().UnixMilli()

	vals, err := slidingWindow.Run(ctx, l.rdb,
		[]string{redisKey, redisKey + ":seq"},
		nowMs, l.window.Milliseconds(), l.limit,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(vals) != 3 {
		return nil, fmt.Errorf("%s: %w", op, errors.New("unexpected script reply"))
	}

	res := &Result{
		Allowed:   vals[0] == 1,
		Limit:     l.limit,
		Remaining: int(vals[1]),
	}
	if !res.Allowed && vals[2] > 0 {
		res.RetryAfter = time.Duration(vals[2]) * time.Millisecond
	}

	return res, nil
}

// Close закрывает клиент Redis.
func (l *Limiter) Close() error { return l.rdb.Close() }
