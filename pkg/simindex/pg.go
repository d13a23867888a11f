package simindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// PGStore keeps embeddings in a pgvector column, one row per username.
type PGStore struct {
	db   *bun.DB
	dims int
}

var _ Index = (*PGStore)(nil)

// NewPGStore creates a postgres (pgvector) implementation of the index.
// The face_embeddings table must exist; see pkg/migrations/indexdb.
func NewPGStore(db *bun.DB, dims int) *PGStore {
	return &PGStore{db: db, dims: dims}
}

func (s *PGStore) Put(ctx context.Context, username string, embedding identity.Embedding) error {
	if err := checkDimensions(s.dims, embedding); err != nil {
		return err
	}
	// created_at is stored with microsecond precision; truncating here keeps
	// the value callers read back equal to the one written.
	dao := toEmbeddingDao(username, embedding, time.Now().UTC().Truncate(time.Microsecond))

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (username) DO UPDATE").
		Set("embedding = EXCLUDED.embedding").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, username string) (*identity.Record, error) {
	dao := new(EmbeddingDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return fromEmbeddingDao(dao), nil
}

func (s *PGStore) Delete(ctx context.Context, username string) error {
	_, err := s.db.NewDelete().
		Model((*EmbeddingDao)(nil)).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteIfCreatedAt(ctx context.Context, username string, createdAt time.Time) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*EmbeddingDao)(nil)).
		Where("username = ?", username).
		Where("created_at = ?", createdAt).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deleted rows: %w", err)
	}
	return n > 0, nil
}

func (s *PGStore) Usernames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.NewSelect().
		Model((*EmbeddingDao)(nil)).
		Column("username").
		Order("username ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	return names, nil
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().
		Model((*EmbeddingDao)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

// Healthy pings the database.
func (s *PGStore) Healthy(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
