package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MimeLyc/caption-transcript/internal/transcript"
	_ "modernc.org/sqlite"
)

// SQLiteStore caches successful transcripts by video reference.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ transcript.Cache = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	return migrate(ctx, s.db, migrationFiles, "migrations")
}

// GetTranscript returns the cached transcript for ref if it has not expired at now.
func (s *SQLiteStore) GetTranscript(ctx context.Context, ref string, now time.Time) (*transcript.Transcript, bool, error) {
	var payload string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT payload FROM transcripts WHERE video_ref = ? AND expires_at > ?`,
		ref, now.UnixMilli(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var t transcript.Transcript
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, false, fmt.Errorf("decode cached transcript: %w", err)
	}
	return &t, true, nil
}

// PutTranscript upserts t for ref until expiresAt.
func (s *SQLiteStore) PutTranscript(ctx context.Context, ref string, t transcript.Transcript, expiresAt time.Time) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (video_ref, payload, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(video_ref) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		ref, string(payload), s.now().UnixMilli(), expiresAt.UnixMilli(),
	)
	return err
}

// PurgeExpired deletes entries that expired at or before now and returns how many were removed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
