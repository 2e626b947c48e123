// Package store persists transcript records in Postgres. Updates are
// guarded by a per-record version token: the full-record overwrite only
// lands if the writer read the latest version, so concurrent writers fail
// loudly instead of silently discarding each other's fields.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agilehq/storyforge/internal/transcript"
)

var (
	// ErrNotFound means no record exists under the given id. Distinct from
	// a record with empty fields.
	ErrNotFound = errors.New("transcript not found")

	// ErrVersionConflict means the record changed since it was read. The
	// caller must re-read and reapply its update.
	ErrVersionConflict = errors.New("transcript version conflict")
)

// Schema is the DDL for the transcripts table.
const Schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id                UUID PRIMARY KEY,
	transcript        TEXT NOT NULL,
	status            TEXT NOT NULL,
	stories           JSONB NOT NULL DEFAULT '[]',
	published_results JSONB,
	version           INT NOT NULL DEFAULT 1,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the transcripts table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save inserts a new record at version 1.
func (s *Store) Save(ctx context.Context, rec *transcript.Record) error {
	stories, err := json.Marshal(storiesOrEmpty(rec.Stories))
	if err != nil {
		return fmt.Errorf("marshal stories: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO transcripts (id, transcript, status, stories, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, now(), now())`,
		rec.ID, rec.Transcript, string(rec.Status), stories,
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	rec.Version = 1
	return nil
}

// Get fetches a record by id.
func (s *Store) Get(ctx context.Context, id string) (*transcript.Record, error) {
	var (
		rec       transcript.Record
		status    string
		stories   []byte
		published []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, transcript, status, stories, published_results, version, created_at, updated_at
		FROM transcripts WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Transcript, &status, &stories, &published, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select transcript: %w", err)
	}
	rec.Status = transcript.Status(status)

	if err := json.Unmarshal(stories, &rec.Stories); err != nil {
		return nil, fmt.Errorf("unmarshal stories: %w", err)
	}
	if published != nil {
		if err := json.Unmarshal(published, &rec.PublishedResults); err != nil {
			return nil, fmt.Errorf("unmarshal published results: %w", err)
		}
	}
	return &rec, nil
}

// Update overwrites the mutable fields of a record, compare-and-swapped on
// the version the caller read. On success the record's version is bumped in
// place.
func (s *Store) Update(ctx context.Context, rec *transcript.Record) error {
	stories, err := json.Marshal(storiesOrEmpty(rec.Stories))
	if err != nil {
		return fmt.Errorf("marshal stories: %w", err)
	}

	var published []byte
	if rec.PublishedResults != nil {
		published, err = json.Marshal(rec.PublishedResults)
		if err != nil {
			return fmt.Errorf("marshal published results: %w", err)
		}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE transcripts
		SET status = $1, stories = $2, published_results = $3, version = version + 1, updated_at = now()
		WHERE id = $4 AND version = $5`,
		string(rec.Status), stories, published, rec.ID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the id is unknown or another writer got there first.
		if _, getErr := s.Get(ctx, rec.ID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	rec.Version++
	return nil
}

func storiesOrEmpty(stories []transcript.Story) []transcript.Story {
	if stories == nil {
		return []transcript.Story{}
	}
	return stories
}
