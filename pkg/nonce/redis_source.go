package nonce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
)

const (
	// keyPrefix is the Redis key prefix for cached rounds
	keyPrefix = "nonce:latest"
)

// RedisSource implements Source with a Redis cache in front of the oracle.
// Concurrent misses share one oracle read. Cache failures fall through to the oracle.
type RedisSource struct {
	client *redis.Client
	reader chainlink.RoundReader
	key    string
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// Compile-time interface compliance check
var _ Source = (*RedisSource)(nil)

// NewRedisSource creates a cached source with default TTL
func NewRedisSource(client *redis.Client, reader chainlink.RoundReader, feed string, logger *zap.Logger) *RedisSource {
	return NewRedisSourceWithTTL(client, reader, feed, DefaultTTL, logger)
}

// NewRedisSourceWithTTL creates a cached source with custom TTL
func NewRedisSourceWithTTL(client *redis.Client, reader chainlink.RoundReader, feed string, ttl time.Duration, logger *zap.Logger) *RedisSource {
	return &RedisSource{
		client: client,
		reader: reader,
		key:    buildKey(feed),
		ttl:    ttl,
		logger: logger,
	}
}

// buildKey creates a Redis key for a feed
// Format: nonce:latest:{lowercase_feed}
func buildKey(feed string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, strings.ToLower(feed))
}

// Latest returns the cached sample or reads the oracle
func (s *RedisSource) Latest(ctx context.Context) (*chainlink.Sample, error) {
	if sample, ok := s.cached(ctx); ok {
		return sample, nil
	}

	v, err, shared := s.group.Do(s.key, func() (interface{}, error) {
		sample, err := s.reader.ReadLatestRound(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, sample)
		return sample, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("read latest round",
		zap.String("round_id", v.(*chainlink.Sample).RoundID),
		zap.Bool("shared", shared),
	)

	// callers may mutate their copy
	sample := *v.(*chainlink.Sample)
	return &sample, nil
}

func (s *RedisSource) cached(ctx context.Context) (*chainlink.Sample, bool) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("nonce cache read failed", zap.String("key", s.key), zap.Error(err))
		}
		return nil, false
	}

	var sample chainlink.Sample
	if err := json.Unmarshal(data, &sample); err != nil {
		s.logger.Warn("nonce cache entry is corrupt", zap.String("key", s.key), zap.Error(err))
		return nil, false
	}
	return &sample, true
}

func (s *RedisSource) store(ctx context.Context, sample *chainlink.Sample) {
	data, err := json.Marshal(sample)
	if err != nil {
		s.logger.Warn("failed to encode sample", zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("nonce cache write failed", zap.String("key", s.key), zap.Error(err))
	}
}
