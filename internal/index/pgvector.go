package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"ragflow/pkg/pipeline"
)

// Postgres stores embeddings in a pgvector-enabled Postgres table so the
// corpus survives restarts and can be shared between processes.
type Postgres struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string, dimension int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrIndexUnavailable, err)
	}
	p := &Postgres{pool: pool, dimension: dimension}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL
		)`, p.dimension),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", ErrIndexUnavailable, err)
		}
	}
	return nil
}

// Upsert writes documents and embeddings, replacing rows with the same ID.
func (p *Postgres) Upsert(ctx context.Context, docs []pipeline.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("index: %d documents but %d vectors", len(docs), len(vectors))
	}
	for i, d := range docs {
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", d.ID, err)
		}
		_, err = p.pool.Exec(ctx,
			`INSERT INTO documents (id, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET
			   content = EXCLUDED.content,
			   metadata = EXCLUDED.metadata,
			   embedding = EXCLUDED.embedding`,
			d.ID, d.Content, meta, pgvector.NewVector(vectors[i]))
		if err != nil {
			return fmt.Errorf("%w: upsert %s: %v", ErrIndexUnavailable, d.ID, err)
		}
	}
	return nil
}

// Query returns the topK nearest documents by cosine distance. Scores are
// reported as similarity (1 - distance) so higher is better, matching the
// in-memory index.
func (p *Postgres) Query(ctx context.Context, vector []float32, topK int) ([]pipeline.Document, error) {
	if topK <= 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM documents
		 ORDER BY embedding <=> $1, id
		 LIMIT $2`,
		pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var out []pipeline.Document
	for rows.Next() {
		var (
			doc   pipeline.Document
			meta  []byte
			score float64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &meta, &score); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrIndexUnavailable, err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s: %w", doc.ID, err)
			}
		}
		out = append(out, doc.WithScore(score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrIndexUnavailable, err)
	}
	return out, nil
}
