// Package redis provides a store.RunStore backed by Redis, with optional
// TTL-based expiry of run documents.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adenhq/hive-go/store"
)

// RedisRunStore implements store.RunStore using Redis
type RedisRunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "hive:"
	TTL      time.Duration // Expiration for runs, default 0 (no expiration)
}

var _ store.RunStore = (*RedisRunStore)(nil)

// NewRedisRunStore creates a new Redis run store
func NewRedisRunStore(opts RedisOptions) *RedisRunStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "hive:"
	}

	return &RedisRunStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the Redis client.
func (s *RedisRunStore) Close() error {
	return s.client.Close()
}

func (s *RedisRunStore) runKey(agent, runID string) string {
	return fmt.Sprintf("%srun:%s:%s", s.prefix, agent, runID)
}

func (s *RedisRunStore) agentKey(agent string) string {
	return fmt.Sprintf("%sagent:%s:runs", s.prefix, agent)
}

// Save stores a run, overwriting any existing run with the same ID
func (s *RedisRunStore) Save(ctx context.Context, run *store.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.runKey(run.Agent, run.ID), data, s.ttl)

	agentKey := s.agentKey(run.Agent)
	pipe.SAdd(ctx, agentKey, run.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, agentKey, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}

	return nil
}

// Load retrieves a run by ID
func (s *RedisRunStore) Load(ctx context.Context, agent, runID string) (*store.Run, error) {
	data, err := s.client.Get(ctx, s.runKey(agent, runID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load run from redis: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}

	return &run, nil
}

// List returns all runs for an agent, most recent first
func (s *RedisRunStore) List(ctx context.Context, agent string) ([]*store.Run, error) {
	runIDs, err := s.client.SMembers(ctx, s.agentKey(agent)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for agent %s: %w", agent, err)
	}

	if len(runIDs) == 0 {
		return []*store.Run{}, nil
	}

	keys := make([]string, 0, len(runIDs))
	for _, id := range runIDs {
		keys = append(keys, s.runKey(agent, id))
	}

	// MGet returns nil for expired documents; the index entry is left behind
	// and skipped here.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	var runs []*store.Run
	for _, result := range results {
		strData, ok := result.(string)
		if !ok {
			continue
		}

		var run store.Run
		if err := json.Unmarshal([]byte(strData), &run); err != nil {
			continue
		}
		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}

// Latest returns the most recent run for an agent
func (s *RedisRunStore) Latest(ctx context.Context, agent string) (*store.Run, error) {
	runs, err := s.List(ctx, agent)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, store.ErrRunNotFound
	}
	return runs[0], nil
}

// Delete removes a run
func (s *RedisRunStore) Delete(ctx context.Context, agent, runID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.runKey(agent, runID))
	pipe.SRem(ctx, s.agentKey(agent), runID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return nil
}

// Clear removes all runs for an agent
func (s *RedisRunStore) Clear(ctx context.Context, agent string) error {
	agentKey := s.agentKey(agent)
	runIDs, err := s.client.SMembers(ctx, agentKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get runs for clearing: %w", err)
	}

	if len(runIDs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range runIDs {
		pipe.Del(ctx, s.runKey(agent, id))
	}
	pipe.Del(ctx, agentKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}

	return nil
}
