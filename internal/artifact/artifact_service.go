package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/image"
)

// Store persists artifacts. CreateArtifact allocates the artifact code in
// the same transaction as the insert.
type Store interface {
	CreateArtifact(ctx context.Context, f Fields) (Artifact, error)
	UpdateArtifact(ctx context.Context, id int64, f Fields) (Artifact, error)
	GetArtifact(ctx context.Context, id int64) (Artifact, error)
	GetArtifactView(ctx context.Context, id int64) (View, error)
	SearchArtifacts(ctx context.Context, text string) ([]Summary, error)
	ListArtifactViews(ctx context.Context) ([]View, error)
	CountArtifacts(ctx context.Context) (int, error)
	DeleteArtifact(ctx context.Context, id int64) error
}

// ImageManager places and removes the image files of an artifact.
type ImageManager interface {
	Attach(ctx context.Context, artifactID int64, inventoryNumber string, paths []string) ([]image.Image, []error, error)
	List(ctx context.Context, artifactID int64) ([]image.Image, error)
	Delete(ctx context.Context, imageID int64) ([]error, error)
	RemoveFiles(imgs []image.Image) []error
}

// ArtifactService implements the business logic for artifact records.
type ArtifactService struct {
	store  Store
	images ImageManager
	log    *slog.Logger
}

// NewArtifactService creates an ArtifactService.
func NewArtifactService(store Store, images ImageManager, log *slog.Logger) *ArtifactService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ArtifactService{store: store, images: images, log: log}
}

// CreateArtifact validates in, stores a new artifact with the next code and
// attaches in.ImagePaths. If only the image bookkeeping fails, the returned
// Result still carries the saved artifact alongside the error.
func (s *ArtifactService) CreateArtifact(ctx context.Context, in Input) (Result, error) {
	f, err := normalize(in.Fields)
	if err != nil {
		return Result{}, err
	}

	a, err := s.store.CreateArtifact(ctx, f)
	if err != nil {
		return Result{}, fmt.Errorf("creating artifact: %w", err)
	}
	s.log.Info("artifact created", "id", a.ID, "code", a.Code, "inventory_number", a.InventoryNumber)

	res := Result{Artifact: a}
	res.Images, res.Warnings, err = s.images.Attach(ctx, a.ID, a.InventoryNumber, in.ImagePaths)
	if err != nil {
		return res, fmt.Errorf("attaching images: %w", err)
	}
	return res, nil
}

// UpdateArtifact validates in and overwrites every editable field of the
// artifact. Images listed in in.RemoveImageIDs are dropped before
// in.ImagePaths are attached.
func (s *ArtifactService) UpdateArtifact(ctx context.Context, id int64, in Input) (Result, error) {
	f, err := normalize(in.Fields)
	if err != nil {
		return Result{}, err
	}

	if len(in.RemoveImageIDs) > 0 {
		if err := s.checkOwnedImages(ctx, id, in.RemoveImageIDs); err != nil {
			return Result{}, err
		}
	}

	a, err := s.store.UpdateArtifact(ctx, id, f)
	if err != nil {
		return Result{}, fmt.Errorf("updating artifact: %w", err)
	}
	s.log.Info("artifact updated", "id", a.ID, "code", a.Code)

	res := Result{Artifact: a}
	for _, imgID := range in.RemoveImageIDs {
		warnings, err := s.images.Delete(ctx, imgID)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			return res, fmt.Errorf("removing image %d: %w", imgID, err)
		}
	}

	attached, warnings, err := s.images.Attach(ctx, a.ID, a.InventoryNumber, in.ImagePaths)
	res.Images = attached
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return res, fmt.Errorf("attaching images: %w", err)
	}
	return res, nil
}

// GetArtifact returns the artifact with lookup names resolved and its
// images.
func (s *ArtifactService) GetArtifact(ctx context.Context, id int64) (View, error) {
	v, err := s.store.GetArtifactView(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("getting artifact: %w", err)
	}
	v.Images, err = s.images.List(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("getting artifact: %w", err)
	}
	return v, nil
}

// GetArtifactForEdit returns the raw row with lookup ids, as an edit form
// needs it.
func (s *ArtifactService) GetArtifactForEdit(ctx context.Context, id int64) (Artifact, error) {
	a, err := s.store.GetArtifact(ctx, id)
	if err != nil {
		return Artifact{}, fmt.Errorf("getting artifact: %w", err)
	}
	return a, nil
}

// SearchArtifacts returns artifacts whose name, code or inventory number
// contains text, newest first. Blank text lists everything.
func (s *ArtifactService) SearchArtifacts(ctx context.Context, text string) ([]Summary, error) {
	out, err := s.store.SearchArtifacts(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("searching artifacts: %w", err)
	}
	return out, nil
}

// ListArtifactViews returns every artifact, oldest first, with images.
func (s *ArtifactService) ListArtifactViews(ctx context.Context) ([]View, error) {
	views, err := s.store.ListArtifactViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	for i := range views {
		views[i].Images, err = s.images.List(ctx, views[i].ID)
		if err != nil {
			return nil, fmt.Errorf("listing artifacts: %w", err)
		}
	}
	return views, nil
}

// CountArtifacts returns the number of stored artifacts.
func (s *ArtifactService) CountArtifacts(ctx context.Context) (int, error) {
	return s.store.CountArtifacts(ctx)
}

// DeleteArtifact removes the artifact; its image rows go with it. Image
// files that cannot be removed are returned as warnings.
func (s *ArtifactService) DeleteArtifact(ctx context.Context, id int64) (warnings []error, err error) {
	imgs, err := s.images.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deleting artifact: %w", err)
	}
	if err := s.store.DeleteArtifact(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting artifact: %w", err)
	}
	s.log.Info("artifact deleted", "id", id, "images", len(imgs))
	return s.images.RemoveFiles(imgs), nil
}

func (s *ArtifactService) checkOwnedImages(ctx context.Context, artifactID int64, ids []int64) error {
	imgs, err := s.images.List(ctx, artifactID)
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}
	owned := make(map[int64]bool, len(imgs))
	for _, img := range imgs {
		owned[img.ID] = true
	}
	for _, id := range ids {
		if !owned[id] {
			return apperr.Invalid("remove_image_ids", fmt.Sprintf("image %d does not belong to artifact %d", id, artifactID))
		}
	}
	return nil
}

// normalize trims and defaults f and rejects it if required fields are
// missing or values are out of range.
func normalize(f Fields) (Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.InventoryNumber = strings.TrimSpace(f.InventoryNumber)
	f.Source = strings.TrimSpace(f.Source)
	f.StorageRow = strings.TrimSpace(f.StorageRow)
	f.StorageColumn = strings.TrimSpace(f.StorageColumn)
	f.CardEditor = strings.TrimSpace(f.CardEditor)
	f.RestorationDate = strings.TrimSpace(f.RestorationDate)
	f.EditingDate = strings.TrimSpace(f.EditingDate)
	f.WeightUnit = strings.TrimSpace(f.WeightUnit)

	if f.Name == "" {
		return Fields{}, apperr.Invalid("name", "is required")
	}
	if f.InventoryNumber == "" {
		return Fields{}, apperr.Invalid("inventory_number", "is required")
	}

	switch {
	case f.Quantity < 0:
		return Fields{}, apperr.Invalid("quantity", "must not be negative")
	case f.Quantity == 0:
		f.Quantity = 1
	}

	for _, m := range []struct {
		field string
		v     float64
	}{
		{"dim_length", f.Dimensions.Length},
		{"dim_width", f.Dimensions.Width},
		{"dim_diameter", f.Dimensions.Diameter},
		{"dim_thickness", f.Dimensions.Thickness},
		{"weight", f.Weight},
	} {
		switch {
		case math.IsNaN(m.v) || math.IsInf(m.v, 0):
			return Fields{}, apperr.Invalid(m.field, "must be a finite number")
		case m.v < 0:
			return Fields{}, apperr.Invalid(m.field, "must not be negative")
		}
	}
	if f.WeightUnit == "" {
		f.WeightUnit = DefaultWeightUnit
	}

	for _, d := range []struct {
		field, v string
	}{
		{"restoration_date", f.RestorationDate},
		{"editing_date", f.EditingDate},
	} {
		if d.v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d.v); err != nil {
			return Fields{}, apperr.Invalid(d.field, fmt.Sprintf("must be a %s date", DateLayout))
		}
	}
	return f, nil
}
