package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists recordings.
type Repository interface {
	Upsert(ctx context.Context, rec *Recording) error
	GetByPath(ctx context.Context, path string) (*Recording, error)
	List(ctx context.Context) ([]*Recording, error)
	Count(ctx context.Context) (int, error)
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository returns a Repository backed by the sqlite catalog.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) Upsert(ctx context.Context, rec *Recording) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recordings (id, path, session_id, frame_rate, frame_count, duration_s, width, height, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			session_id = excluded.session_id,
			frame_rate = excluded.frame_rate,
			frame_count = excluded.frame_count,
			duration_s = excluded.duration_s,
			width = excluded.width,
			height = excluded.height,
			scanned_at = excluded.scanned_at`,
		rec.ID, rec.Path, rec.SessionID, rec.FrameRate, rec.FrameCount,
		rec.Duration, rec.Width, rec.Height, rec.ScannedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert recording %s: %w", rec.Path, err)
	}
	return nil
}

func (r *sqlRepository) GetByPath(ctx context.Context, path string) (*Recording, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, session_id, frame_rate, frame_count, duration_s, width, height, scanned_at
		FROM recordings WHERE path = ?`, path)

	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *sqlRepository) List(ctx context.Context) ([]*Recording, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, path, session_id, frame_rate, frame_count, duration_s, width, height, scanned_at
		FROM recordings ORDER BY session_id, path`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var recs []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *sqlRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recordings").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*Recording, error) {
	var rec Recording
	var scannedAt string
	err := row.Scan(&rec.ID, &rec.Path, &rec.SessionID, &rec.FrameRate,
		&rec.FrameCount, &rec.Duration, &rec.Width, &rec.Height, &scannedAt)
	if err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, scannedAt); err == nil {
		rec.ScannedAt = t
	}
	return &rec, nil
}
