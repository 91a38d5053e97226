// Package cache is the Redis-backed store for the service's small
// durable surface: the external score snapshot (with a stale fallback
// copy), the untouchable list, and the most recent run report.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Config contains connection settings for the store.
type Config struct {
	RedisURL     string        `json:"redis_url"`
	Database     int           `json:"database"`
	ScoreTTL     time.Duration `json:"score_ttl"`
	KeyPrefix    string        `json:"key_prefix"`
	MaxRetries   int           `json:"max_retries"`
	PoolSize     int           `json:"pool_size"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// Store wraps the Redis client with domain-shaped accessors.
type Store struct {
	client    *redis.Client
	scoreTTL  time.Duration
	keyPrefix string
	logger    *logrus.Entry
}

// NewStore connects to Redis and verifies the connection before
// returning.
func NewStore(config Config) (*Store, error) {
	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.DB = config.Database
	opt.MaxRetries = config.MaxRetries
	if config.PoolSize > 0 {
		opt.PoolSize = config.PoolSize
	}
	opt.ReadTimeout = config.ReadTimeout
	opt.WriteTimeout = config.WriteTimeout

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &Store{
		client:    client,
		scoreTTL:  config.ScoreTTL,
		keyPrefix: config.KeyPrefix,
		logger:    logger.WithComponent("cache"),
	}

	store.logger.WithFields(logrus.Fields{
		"database":   config.Database,
		"score_ttl":  config.ScoreTTL,
		"key_prefix": config.KeyPrefix,
	}).Info("Cache store initialized")

	return store, nil
}

// GetScores retrieves the cached score snapshot. A nil map with nil
// error is a cache miss.
func (s *Store) GetScores(ctx context.Context) (map[string]*types.ScoreRecord, error) {
	return s.getScoreKey(ctx, s.key("scores:fresh"))
}

// GetStaleScores retrieves the last good score snapshot regardless of
// age. It backs the degraded path when the upstream source is down.
func (s *Store) GetStaleScores(ctx context.Context) (map[string]*types.ScoreRecord, error) {
	return s.getScoreKey(ctx, s.key("scores:last_good"))
}

func (s *Store) getScoreKey(ctx context.Context, key string) (map[string]*types.ScoreRecord, error) {
	result, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			s.logger.WithField("key", key).Debug("Cache miss for score snapshot")
			return nil, nil
		}
		s.logger.WithError(err).WithField("key", key).Error("Failed to get score snapshot from cache")
		return nil, err
	}

	var records map[string]*types.ScoreRecord
	if err := json.Unmarshal([]byte(result), &records); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to unmarshal score snapshot")
		return nil, err
	}
	return records, nil
}

// SetScores caches a freshly fetched score snapshot. The fresh copy
// expires after the configured TTL; the last-good copy never expires so
// a degraded run always has something to fall back to.
func (s *Store) SetScores(ctx context.Context, records map[string]*types.ScoreRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("score snapshot cannot be empty")
	}

	data, err := json.Marshal(records)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal score snapshot")
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key("scores:fresh"), data, s.scoreTTL)
	pipe.Set(ctx, s.key("scores:last_good"), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to set score snapshot in cache")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"players":    len(records),
		"ttl":        s.scoreTTL,
		"size_bytes": len(data),
	}).Debug("Cached score snapshot")

	return nil
}

// GetUntouchables retrieves the protected-player list keyed by
// normalized name. A missing key yields an empty map.
func (s *Store) GetUntouchables(ctx context.Context) (map[string]float64, error) {
	result, err := s.client.Get(ctx, s.key("untouchables")).Result()
	if err != nil {
		if err == redis.Nil {
			return map[string]float64{}, nil
		}
		s.logger.WithError(err).Error("Failed to get untouchables from cache")
		return nil, err
	}

	var untouchables map[string]float64
	if err := json.Unmarshal([]byte(result), &untouchables); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal untouchables")
		return nil, err
	}
	return untouchables, nil
}

// SetUntouchables replaces the protected-player list. It carries no TTL;
// only the weekly refresh rewrites it.
func (s *Store) SetUntouchables(ctx context.Context, untouchables map[string]float64) error {
	data, err := json.Marshal(untouchables)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal untouchables")
		return err
	}
	if err := s.client.Set(ctx, s.key("untouchables"), data, 0).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to set untouchables in cache")
		return err
	}

	s.logger.WithField("players", len(untouchables)).Info("Untouchable list updated")
	return nil
}

// SetLatestReport stores the most recent run report for the HTTP
// surface.
func (s *Store) SetLatestReport(ctx context.Context, report *types.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal report")
		return err
	}
	if err := s.client.Set(ctx, s.key("report:latest"), data, 0).Err(); err != nil {
		s.logger.WithError(err).WithField("run_id", report.RunID).Error("Failed to set latest report in cache")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":     report.RunID,
		"size_bytes": len(data),
	}).Debug("Cached latest report")
	return nil
}

// GetLatestReport retrieves the most recent run report. A nil report
// with nil error means no run has completed yet.
func (s *Store) GetLatestReport(ctx context.Context) (*types.Report, error) {
	result, err := s.client.Get(ctx, s.key("report:latest")).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		s.logger.WithError(err).Error("Failed to get latest report from cache")
		return nil, err
	}

	var report types.Report
	if err := json.Unmarshal([]byte(result), &report); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal latest report")
		return nil, err
	}
	return &report, nil
}

// HealthCheck pings Redis with a short deadline.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(suffix string) string {
	return s.keyPrefix + suffix
}
