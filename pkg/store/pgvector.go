package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
)

type VectorStoreConfig struct {
	ConnString string
	VectorDim  int
	// IndexLists is the ivfflat list count. Queries probe every list so
	// large result sets are exact.
	IndexLists int
	Logger     *slog.Logger
}

// VectorStore keeps one pgvector table per collection.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // Default for OpenAI embeddings
	}
	if config.IndexLists == 0 {
		config.IndexLists = 100
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	return nil
}

func (vs *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	table := pgx.Identifier{name}.Sanitize()
	if _, err := vs.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", name, err)
	}
	vs.config.Logger.Debug("dropped collection", "collection", name)
	return nil
}

func (vs *VectorStore) GetOrCreateCollection(ctx context.Context, name string) (types.Collection, error) {
	table := pgx.Identifier{name}.Sanitize()

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB
		)`, table, vs.config.VectorDim)

	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = %d)`,
		pgx.Identifier{name + "_embedding_idx"}.Sanitize(), table, vs.config.IndexLists)

	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &pgCollection{store: vs, name: name, table: table}, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

type pgCollection struct {
	store *VectorStore
	name  string
	table string
}

func (c *pgCollection) Name() string { return c.name }

func (c *pgCollection) Add(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, document, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		c.table)

	for _, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", e.ID, err)
		}
		_, err = tx.Exec(ctx, stmt,
			e.ID,
			sanitizeUTF8(e.Document),
			pgvector.NewVector(e.Embedding),
			meta,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (c *pgCollection) Query(ctx context.Context, embedding []float32, topK int) ([]models.Match, error) {
	tx, err := c.store.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	probes := fmt.Sprintf("SET LOCAL ivfflat.probes = %d", c.store.config.IndexLists)
	if _, err := tx.Exec(ctx, probes); err != nil {
		return nil, fmt.Errorf("failed to set probes: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, document, metadata, embedding <=> $1 AS distance
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		c.table)

	rows, err := tx.Query(ctx, query, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", c.name, err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var (
			m    models.Match
			meta []byte
		)
		if err := rows.Scan(&m.ID, &m.Document, &meta, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", m.ID, err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return matches, nil
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
