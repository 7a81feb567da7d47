package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"rag/types"
)

// PostgresStore implements VectorStorer on top of Postgres with the
// pgvector extension. One table per collection; cosine distance via the
// <=> operator.
type PostgresStore struct {
	pool        *pgxpool.Pool
	collection  string
	dimension   int
	initialized atomic.Bool
}

func NewPostgresStore(ctx context.Context, connStr, collection string, dimension int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:       pool,
		collection: collection,
		dimension:  dimension,
	}, nil
}

func (p *PostgresStore) table() string {
	return pgx.Identifier{p.collection}.Sanitize()
}

func (p *PostgresStore) Init(ctx context.Context) error {
	if p.initialized.Load() {
		return nil
	}

	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector(%[2]d) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS %[4]s ON %[1]s ((metadata->>'document_id'));
	`,
		p.table(),
		p.dimension,
		pgx.Identifier{"idx_" + p.collection + "_embedding"}.Sanitize(),
		pgx.Identifier{"idx_" + p.collection + "_document_id"}.Sanitize(),
	)

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create collection %s: %w", p.collection, err)
	}

	p.initialized.Store(true)
	return nil
}

func (p *PostgresStore) AddChunks(ctx context.Context, records []types.ChunkRecord) error {
	if !p.initialized.Load() {
		return ErrNotInitialized
	}
	if len(records) == 0 {
		return nil
	}

	// Plain INSERT, no ON CONFLICT: an id collision must fail the batch
	// rather than overwrite an existing record.
	query := fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding) VALUES ($1, $2, $3, $4)`, p.table())

	batch := &pgx.Batch{}
	for _, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}
		batch.Queue(query, r.ID, r.Content, meta, pgvector.NewVector(r.Embedding))
	}

	br := p.pool.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("add chunks: %w", err)
		}
	}
	return br.Close()
}

func (p *PostgresStore) Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]types.SearchResult, error) {
	if !p.initialized.Load() {
		return nil, ErrNotInitialized
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, embedding <=> $1 AS distance
		FROM %s
		WHERE $3::jsonb IS NULL OR metadata @> $3::jsonb
		ORDER BY embedding <=> $1
		LIMIT $2
	`, p.table())

	var filterArg any
	if len(filter) > 0 {
		b, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
		filterArg = b
	}

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), topK, filterArg)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var (
			res  types.SearchResult
			meta []byte
		)
		if err := rows.Scan(&res.Chunk.ID, &res.Chunk.Content, &meta, &res.Distance); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &res.Chunk.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", res.Chunk.ID, err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (p *PostgresStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if !p.initialized.Load() {
		return ErrNotInitialized
	}
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, p.table())
	if _, err := p.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

func (p *PostgresStore) IDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	if !p.initialized.Load() {
		return nil, ErrNotInitialized
	}
	query := fmt.Sprintf(`SELECT id FROM %s WHERE metadata->>'document_id' = $1`, p.table())
	rows, err := p.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	if !p.initialized.Load() {
		return 0, ErrNotInitialized
	}
	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, p.table())
	if err := p.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *PostgresStore) Describe(ctx context.Context) (*types.CollectionInfo, error) {
	count, err := p.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &types.CollectionInfo{Name: p.collection, Count: count}, nil
}

// Close closes the underlying connection pool.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		slog.Info("postgres connection pool closed")
	}
	return nil
}
