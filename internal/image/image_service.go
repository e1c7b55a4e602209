package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
)

// Image is a file attached to an artifact. Filename is relative to the
// images directory.
type Image struct {
	ID         int64
	ArtifactID int64
	Filename   string
	UploadedAt time.Time
}

// Store persists image associations.
type Store interface {
	InsertImage(ctx context.Context, artifactID int64, filename string) (Image, error)
	ListImages(ctx context.Context, artifactID int64) ([]Image, error)
	CountImages(ctx context.Context) (int, error)
	GetImage(ctx context.Context, id int64) (Image, error)
	DeleteImage(ctx context.Context, id int64) error
}

// ImageService places image files in the images directory and records
// them against artifacts.
type ImageService struct {
	store Store
	dir   string
	log   *slog.Logger
}

// NewImageService creates an ImageService storing files under dir.
func NewImageService(store Store, dir string, log *slog.Logger) *ImageService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ImageService{store: store, dir: dir, log: log}
}

// Dir returns the images directory.
func (s *ImageService) Dir() string {
	return s.dir
}

// Path returns the on-disk location of img.
func (s *ImageService) Path(img Image) string {
	return filepath.Join(s.dir, img.Filename)
}

// Attach copies every file in paths into the images directory and records
// each one that was placed. Files that cannot be copied are skipped and
// reported as *apperr.StorageIOError warnings; err is only set when the
// store itself fails, e.g. because the artifact does not exist.
func (s *ImageService) Attach(ctx context.Context, artifactID int64, inventoryNumber string, paths []string) (attached []Image, warnings []error, err error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, nil, &apperr.StorageIOError{Op: "mkdir", Path: s.dir, Err: err}
	}

	for _, src := range paths {
		name, err := place(s.dir, FileName(artifactID, inventoryNumber, src), src)
		if err != nil {
			warnings = append(warnings, s.warn(&apperr.StorageIOError{Op: "copy", Path: src, Err: err}))
			continue
		}
		dst := filepath.Join(s.dir, name)

		img, err := s.store.InsertImage(ctx, artifactID, name)
		if err != nil {
			os.Remove(dst)
			return attached, warnings, fmt.Errorf("recording image %s: %w", name, err)
		}
		s.log.Info("image attached", "artifact_id", artifactID, "image_id", img.ID, "file", name)
		attached = append(attached, img)
	}
	return attached, warnings, nil
}

// List returns the images of an artifact in insertion order.
func (s *ImageService) List(ctx context.Context, artifactID int64) ([]Image, error) {
	imgs, err := s.store.ListImages(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	return imgs, nil
}

// Count returns the number of recorded images across all artifacts.
func (s *ImageService) Count(ctx context.Context) (int, error) {
	return s.store.CountImages(ctx)
}

// Delete removes one image record and then its file. A file that cannot be
// removed is returned as a warning.
func (s *ImageService) Delete(ctx context.Context, imageID int64) (warnings []error, err error) {
	img, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("deleting image: %w", err)
	}
	if err := s.store.DeleteImage(ctx, imageID); err != nil {
		return nil, fmt.Errorf("deleting image: %w", err)
	}
	s.log.Info("image deleted", "artifact_id", img.ArtifactID, "image_id", img.ID)
	return s.RemoveFiles([]Image{img}), nil
}

// RemoveFiles deletes the files behind imgs, which must already be gone
// from the store. Missing files are not an error.
func (s *ImageService) RemoveFiles(imgs []Image) []error {
	var warnings []error
	for _, img := range imgs {
		p := s.Path(img)
		if err := withinDir(p, s.dir); err != nil {
			warnings = append(warnings, s.warn(&apperr.StorageIOError{Op: "remove", Path: p, Err: err}))
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, s.warn(&apperr.StorageIOError{Op: "remove", Path: p, Err: err}))
		}
	}
	return warnings
}

func (s *ImageService) warn(err *apperr.StorageIOError) error {
	s.log.Warn("image file operation failed", "op", err.Op, "path", err.Path, "error", err.Err)
	return err
}
