package players

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const indexKey = "players:index"

func recordKey(id string) string {
	return fmt.Sprintf("player:%s", id)
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient

	// TimeProvider is optional; the wall clock is used when nil
	TimeProvider TimeProvider
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// NewRedisRepository creates a new Redis-backed repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("RedisRepoConfig and Client are required")
	}

	repo := &redisRepository{
		client:       cfg.Client,
		timeProvider: cfg.TimeProvider,
	}
	if repo.timeProvider == nil {
		repo.timeProvider = realClock{}
	}

	return repo
}

// Get retrieves a record by id
func (r *redisRepository) Get(ctx context.Context, id string) (*player.Record, error) {
	data, err := r.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player from Redis: %w", err)
	}

	var record player.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player record: %w", err)
	}

	return &record, nil
}

// Save upserts a record
func (r *redisRepository) Save(ctx context.Context, record *player.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}

	record.UpdatedAt = r.timeProvider.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal player record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, recordKey(record.ID), string(data), 0)
	pipe.SAdd(ctx, indexKey, record.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save player to Redis: %w", err)
	}

	return nil
}

// Delete removes a record
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, recordKey(id))
	pipe.SRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete player from Redis: %w", err)
	}

	return nil
}

// GetAll retrieves every record, hydrating members of the index set in parallel
func (r *redisRepository) GetAll(ctx context.Context) (map[string]*player.Record, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list player index: %w", err)
	}

	records := make(map[string]*player.Record, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			record, err := r.Get(gctx, id)
			if err != nil {
				return err
			}
			if record == nil {
				// Stale index entry; skip rather than fail the whole load
				return nil
			}

			mu.Lock()
			records[id] = record
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of stored records
func (r *redisRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.client.SCard(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}
