package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"book-recs/internal/embeddings"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 424242001 // arbitrary number for this application's migration lock

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	// Ensure lock is released when done
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	// Enable pgvector extension
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	// The embedding column has no fixed dimension: providers differ (the
	// deterministic fallback produces shorter vectors than OpenAI models) and
	// similarity is computed in-process over a small candidate set, so no
	// vector index is created either.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT,
			notes TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS item_embeddings (
			item_id TEXT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
			summary TEXT,
			tags TEXT[],
			embedding vector,
			updated_at TIMESTAMPTZ DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Item, error) {
	var it Item
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, COALESCE(author, ''), COALESCE(notes, ''), created_at FROM items WHERE id=$1`, id)
	if err := row.Scan(&it.ID, &it.Title, &it.Author, &it.Notes, &it.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return it, nil
}

func (s *PostgresStore) GetItems(ctx context.Context, ids []string) (map[string]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(author, ''), COALESCE(notes, ''), created_at FROM items WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Item, len(ids))
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Author, &it.Notes, &it.CreatedAt); err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListAllTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (s *PostgresStore) GetEmbeddingMeta(ctx context.Context, itemID string) (EmbeddingMeta, error) {
	var (
		meta   EmbeddingMeta
		tags   []string
		vecTxt sql.NullString
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(summary, ''), COALESCE(tags, ARRAY[]::TEXT[]), embedding::text, updated_at
		FROM item_embeddings WHERE item_id=$1`, itemID)
	if err := row.Scan(&meta.Summary, pq.Array(&tags), &vecTxt, &meta.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EmbeddingMeta{}, ErrEmbeddingNotFound
		}
		return EmbeddingMeta{}, fmt.Errorf("failed to get embedding for item %s: %w", itemID, err)
	}
	meta.ItemID = itemID
	meta.Tags = tags
	if vecTxt.Valid {
		vec, err := parseVector(vecTxt.String)
		if err != nil {
			return EmbeddingMeta{}, fmt.Errorf("item %s: %w", itemID, err)
		}
		meta.Embedding = vec
	}
	return meta, nil
}

func (s *PostgresStore) ListEmbeddingMetas(ctx context.Context) ([]EmbeddingMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, COALESCE(summary, ''), COALESCE(tags, ARRAY[]::TEXT[]), embedding::text, updated_at
		FROM item_embeddings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmbeddingMeta
	for rows.Next() {
		var (
			meta   EmbeddingMeta
			tags   []string
			vecTxt sql.NullString
		)
		if err := rows.Scan(&meta.ItemID, &meta.Summary, pq.Array(&tags), &vecTxt, &meta.UpdatedAt); err != nil {
			return nil, err
		}
		meta.Tags = tags
		if vecTxt.Valid {
			vec, err := parseVector(vecTxt.String)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", meta.ItemID, err)
			}
			meta.Embedding = vec
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertEmbeddingMeta(ctx context.Context, meta EmbeddingMeta) error {
	// Convert []float32 to pgvector array format: "[0.1,0.2,0.3,...]"
	vecStr := vectorToString(meta.Embedding)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_embeddings(item_id, summary, tags, embedding, updated_at)
		VALUES($1,$2,$3,$4::vector,now())
		ON CONFLICT (item_id) DO UPDATE SET
			summary=excluded.summary, tags=excluded.tags,
			embedding=excluded.embedding, updated_at=now()`,
		meta.ItemID, meta.Summary, pqStringArray(meta.Tags), vecStr)
	return err
}

func pqStringArray(items []string) any {
	if len(items) == 0 {
		return pq.Array([]string{})
	}
	return pq.Array(items)
}

// vectorToString converts a Vector ([]float32) to pgvector array format.
// Format: "[0.1,0.2,0.3,...]"
func vectorToString(v embeddings.Vector) string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector is the inverse of vectorToString.
func parseVector(s string) (embeddings.Vector, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return embeddings.Vector{}, nil
	}
	parts := strings.Split(inner, ",")
	vec := make(embeddings.Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %q: %w", p, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
