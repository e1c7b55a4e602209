package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sebastianm/inventar/internal/apperr"
)

// Table names one of the lookup tables artifacts reference.
type Table string

const (
	Types              Table = "artifact_types"
	Materials          Table = "materials"
	Periods            Table = "historical_periods"
	PreservationStates Table = "preservation_states"
	RestorationMethods Table = "restoration_methods"
	StorageLocations   Table = "storage_locations"
)

// Tables lists every lookup table in display order.
var Tables = []Table{Types, Materials, Periods, PreservationStates, RestorationMethods, StorageLocations}

var aliases = map[string]Table{
	"type":     Types,
	"types":    Types,
	"material": Materials,
	"period":   Periods,
	"periods":  Periods,
	"state":    PreservationStates,
	"states":   PreservationStates,
	"method":   RestorationMethods,
	"methods":  RestorationMethods,
	"location": StorageLocations,
	"storage":  StorageLocations,
}

// ParseTable accepts a table name or one of its short aliases.
func ParseTable(s string) (Table, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	if t, ok := aliases[s]; ok {
		return t, nil
	}
	return "", apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", s))
}

// Valid reports whether t is one of the known tables.
func (t Table) Valid() bool {
	for _, k := range Tables {
		if k == t {
			return true
		}
	}
	return false
}

// Item is one row of a lookup table.
type Item struct {
	ID   int64
	Name string
}

// Store persists lookup rows. Implementations may assume t is Valid.
type Store interface {
	ListItems(ctx context.Context, t Table) ([]Item, error)
	GetItem(ctx context.Context, t Table, id int64) (Item, error)
	FindItem(ctx context.Context, t Table, name string) (Item, error)
	InsertItem(ctx context.Context, t Table, name string) (Item, error)
	RenameItem(ctx context.Context, t Table, id int64, name string) (Item, error)
	DeleteItem(ctx context.Context, t Table, id int64) error
}

// LookupService implements the business logic for lookup maintenance.
type LookupService struct {
	store Store
	log   *slog.Logger
}

// NewLookupService creates a LookupService.
func NewLookupService(store Store, log *slog.Logger) *LookupService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &LookupService{store: store, log: log}
}

// List returns every row of t ordered by name.
func (s *LookupService) List(ctx context.Context, t Table) ([]Item, error) {
	if !t.Valid() {
		return nil, apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", t))
	}
	return s.store.ListItems(ctx, t)
}

// Get returns one row of t.
func (s *LookupService) Get(ctx context.Context, t Table, id int64) (Item, error) {
	if !t.Valid() {
		return Item{}, apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", t))
	}
	return s.store.GetItem(ctx, t, id)
}

// FindByName returns the first row of t whose name matches exactly.
func (s *LookupService) FindByName(ctx context.Context, t Table, name string) (Item, error) {
	if !t.Valid() {
		return Item{}, apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", t))
	}
	return s.store.FindItem(ctx, t, strings.TrimSpace(name))
}

// Add validates and inserts a new row.
func (s *LookupService) Add(ctx context.Context, t Table, name string) (Item, error) {
	if !t.Valid() {
		return Item{}, apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", t))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, apperr.Invalid("name", "is required")
	}

	it, err := s.store.InsertItem(ctx, t, name)
	if err != nil {
		return Item{}, fmt.Errorf("adding %s item: %w", t, err)
	}
	s.log.Debug("lookup item added", "table", t, "id", it.ID, "name", it.Name)
	return it, nil
}

// Rename changes the display name of a row. Artifacts follow automatically
// since they reference the id.
func (s *LookupService) Rename(ctx context.Context, t Table, id int64, name string) (Item, error) {
	if !t.Valid() {
		return Item{}, apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", t))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, apperr.Invalid("name", "is required")
	}

	it, err := s.store.RenameItem(ctx, t, id, name)
	if err != nil {
		return Item{}, fmt.Errorf("renaming %s item: %w", t, err)
	}
	return it, nil
}

// Delete removes a row. Rows still referenced by artifacts are rejected
// with an apperr.ConstraintError.
func (s *LookupService) Delete(ctx context.Context, t Table, id int64) error {
	if !t.Valid() {
		return apperr.Invalid("table", fmt.Sprintf("unknown lookup table %q", t))
	}
	if err := s.store.DeleteItem(ctx, t, id); err != nil {
		return fmt.Errorf("deleting %s item: %w", t, err)
	}
	s.log.Debug("lookup item deleted", "table", t, "id", id)
	return nil
}
