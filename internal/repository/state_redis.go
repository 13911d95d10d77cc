package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	"RiskPulse/pkg/util"

	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix = "riskpulse:state"
	distKeyPrefix  = "riskpulse:dist"
	scoreKeyPrefix = "riskpulse:score"
	lockKeyPrefix  = "riskpulse:advance"

	// dailyLockTTL bounds how long a crashed run can hold a (symbol, date) lock.
	dailyLockTTL = 48 * time.Hour
)

// RedisStateStore keeps per-symbol mutable state as JSON values in Redis.
type RedisStateStore struct {
	client   *redis.Client
	scoreTTL time.Duration
}

func NewRedisStateStore(client *redis.Client, scoreTTL time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, scoreTTL: scoreTTL}
}

func (s *RedisStateStore) GetState(ctx context.Context, symbol string) (*models.CurrentRiskState, error) {
	var st models.CurrentRiskState
	ok, err := s.getJSON(ctx, fmt.Sprintf("%s:%s", stateKeyPrefix, symbol), &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func (s *RedisStateStore) PutState(ctx context.Context, st *models.CurrentRiskState) error {
	return s.putJSON(ctx, fmt.Sprintf("%s:%s", stateKeyPrefix, st.Symbol), st, 0)
}

func (s *RedisStateStore) GetDistribution(ctx context.Context, symbol string) (*models.BandTimeDistribution, error) {
	var d models.BandTimeDistribution
	ok, err := s.getJSON(ctx, fmt.Sprintf("%s:%s", distKeyPrefix, symbol), &d)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

func (s *RedisStateStore) PutDistribution(ctx context.Context, d *models.BandTimeDistribution) error {
	return s.putJSON(ctx, fmt.Sprintf("%s:%s", distKeyPrefix, d.Symbol), d, 0)
}

func (s *RedisStateStore) GetScore(ctx context.Context, symbol string) (*models.ScoreResult, error) {
	var sc models.ScoreResult
	ok, err := s.getJSON(ctx, fmt.Sprintf("%s:%s", scoreKeyPrefix, symbol), &sc)
	if err != nil || !ok {
		return nil, err
	}
	return &sc, nil
}

func (s *RedisStateStore) PutScore(ctx context.Context, sc *models.ScoreResult) error {
	return s.putJSON(ctx, fmt.Sprintf("%s:%s", scoreKeyPrefix, sc.Symbol), sc, s.scoreTTL)
}

func (s *RedisStateStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

func (s *RedisStateStore) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStateStore) putJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// RedisLocker hands out (symbol, date) advisory locks via SET NX.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) AcquireDaily(ctx context.Context, symbol string, date time.Time) (bool, error) {
	key := fmt.Sprintf("%s:%s:%s", lockKeyPrefix, symbol, util.DayKey(date))
	ok, err := l.client.SetNX(ctx, key, "locked", dailyLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire daily lock %s: %w", key, err)
	}
	return ok, nil
}

func (l *RedisLocker) ReleaseDaily(ctx context.Context, symbol string, date time.Time) error {
	key := fmt.Sprintf("%s:%s:%s", lockKeyPrefix, symbol, util.DayKey(date))
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release daily lock %s: %w", key, err)
	}
	return nil
}
