package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/redis/go-redis/v9"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
)

const redisPrefix = "shopsearch:"

type RedisStoreConfig struct {
	Addr     string
	Password string
	DB       int
	Logger   *slog.Logger
}

// RedisStore keeps each entry in a hash and each collection's ids in a set.
// Queries rank every entry of the collection.
type RedisStore struct {
	config RedisStoreConfig
	client *redis.Client
}

func NewRedisStore(ctx context.Context, config RedisStoreConfig) (*RedisStore, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{config: config, client: client}, nil
}

func idsKey(name string) string      { return redisPrefix + name + ":ids" }
func itemKey(name, id string) string { return redisPrefix + name + ":item:" + id }
func collectionsKey() string         { return redisPrefix + "collections" }

func (s *RedisStore) DeleteCollection(ctx context.Context, name string) error {
	ids, err := s.client.SMembers(ctx, idsKey(name)).Result()
	if err != nil {
		return fmt.Errorf("failed to list collection %s: %w", name, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, itemKey(name, id))
	}
	keys = append(keys, idsKey(name))

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, collectionsKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	s.config.Logger.Debug("dropped collection", "collection", name, "entries", len(ids))
	return nil
}

func (s *RedisStore) GetOrCreateCollection(ctx context.Context, name string) (types.Collection, error) {
	if err := s.client.SAdd(ctx, collectionsKey(), name).Err(); err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return &redisCollection{client: s.client, name: name}, nil
}

func (s *RedisStore) Close() {
	s.client.Close()
}

type redisCollection struct {
	client *redis.Client
	name   string
}

func (c *redisCollection) Name() string { return c.name }

func (c *redisCollection) Add(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			meta, err := json.Marshal(e.Metadata)
			if err != nil {
				return fmt.Errorf("failed to encode metadata for %s: %w", e.ID, err)
			}
			pipe.HSet(ctx, itemKey(c.name, e.ID), map[string]interface{}{
				"document":  e.Document,
				"metadata":  meta,
				"embedding": encodeVector(e.Embedding),
			})
			pipe.SAdd(ctx, idsKey(c.name), e.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add to collection %s: %w", c.name, err)
	}
	return nil
}

func (c *redisCollection) Query(ctx context.Context, embedding []float32, topK int) ([]models.Match, error) {
	ids, err := c.client.SMembers(ctx, idsKey(c.name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", c.name, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, itemKey(c.name, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", c.name, err)
	}

	entries := make([]models.Entry, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		e := models.Entry{
			ID:        ids[i],
			Document:  fields["document"],
			Embedding: decodeVector([]byte(fields["embedding"])),
		}
		if raw := fields["metadata"]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}

	return rank(entries, embedding, topK), nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
