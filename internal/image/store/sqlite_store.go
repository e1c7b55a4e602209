package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/sebastianm/inventar/internal/image"
)

const timeFormat = "2006-01-02T15:04:05.000Z"

// SQLiteStore implements image.Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) InsertImage(ctx context.Context, artifactID int64, filename string) (image.Image, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO artifact_images (artifact_id, image_path, uploaded_at) VALUES (?, ?, ?)",
		artifactID, filename, now.Format(timeFormat),
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return image.Image{}, apperr.NotFound("artifact", artifactID)
		}
		return image.Image{}, fmt.Errorf("inserting image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return image.Image{}, fmt.Errorf("reading inserted id: %w", err)
	}
	return image.Image{
		ID:         id,
		ArtifactID: artifactID,
		Filename:   filename,
		UploadedAt: now.Truncate(time.Millisecond),
	}, nil
}

func (s *SQLiteStore) ListImages(ctx context.Context, artifactID int64) ([]image.Image, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, artifact_id, image_path, uploaded_at FROM artifact_images WHERE artifact_id = ? ORDER BY id",
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing images for artifact %d: %w", artifactID, err)
	}
	defer rows.Close()

	imgs := []image.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}
	return imgs, nil
}

func (s *SQLiteStore) CountImages(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifact_images").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) GetImage(ctx context.Context, id int64) (image.Image, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, artifact_id, image_path, uploaded_at FROM artifact_images WHERE id = ?", id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return image.Image{}, apperr.NotFound("image", id)
	}
	return img, err
}

func (s *SQLiteStore) DeleteImage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artifact_images WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting image %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("image", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(sc scanner) (image.Image, error) {
	var (
		img      image.Image
		uploaded string
	)
	if err := sc.Scan(&img.ID, &img.ArtifactID, &img.Filename, &uploaded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return image.Image{}, err
		}
		return image.Image{}, fmt.Errorf("scanning image row: %w", err)
	}
	img.UploadedAt, _ = time.Parse(timeFormat, uploaded)
	return img, nil
}
