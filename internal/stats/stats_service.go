package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// RecentLimit is how many artifacts the dashboard lists as recent.
const RecentLimit = 5

// DefaultMaintenanceKeywords flag preservation states that need attention:
// restoration, damaged, poor. Both the Arabic names used by the collection
// and English ones are matched.
var DefaultMaintenanceKeywords = []string{"ترميم", "تالف", "سيئ", "restoration", "damaged", "poor"}

// Totals are row counts of the main tables.
type Totals struct {
	Artifacts        int
	Images           int
	Users            int
	StorageLocations int
	Periods          int
	Materials        int
}

// Bucket is one group of a grouped count.
type Bucket struct {
	Name  string
	Count int
}

// RecentArtifact is a short reference to a recently added artifact.
type RecentArtifact struct {
	ID   int64
	Code string
	Name string
}

// Dashboard is the read model behind the statistics page.
type Dashboard struct {
	Totals
	ByType              []Bucket
	ByPreservationState []Bucket
	// MaintenanceAlerts counts artifacts whose preservation state matches
	// a maintenance keyword.
	MaintenanceAlerts int
	Recent            []RecentArtifact
}

// Store answers the aggregate queries of the dashboard.
type Store interface {
	Totals(ctx context.Context) (Totals, error)
	CountByType(ctx context.Context) ([]Bucket, error)
	CountByPreservationState(ctx context.Context) ([]Bucket, error)
	CountStateMatches(ctx context.Context, keywords []string) (int, error)
	RecentArtifacts(ctx context.Context, limit int) ([]RecentArtifact, error)
}

// StatsService assembles the dashboard.
type StatsService struct {
	store    Store
	keywords []string
	log      *slog.Logger
}

// NewStatsService creates a StatsService. Blank keywords are ignored; an
// empty list falls back to DefaultMaintenanceKeywords.
func NewStatsService(store Store, keywords []string, log *slog.Logger) *StatsService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	var kw []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) == 0 {
		kw = DefaultMaintenanceKeywords
	}
	return &StatsService{store: store, keywords: kw, log: log}
}

// Keywords returns the maintenance keywords in effect.
func (s *StatsService) Keywords() []string {
	return s.keywords
}

// Dashboard computes every figure of the statistics page.
func (s *StatsService) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Totals, err = s.store.Totals(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("computing totals: %w", err)
	}
	if d.ByType, err = s.store.CountByType(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("grouping by type: %w", err)
	}
	if d.ByPreservationState, err = s.store.CountByPreservationState(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("grouping by preservation state: %w", err)
	}
	if d.MaintenanceAlerts, err = s.store.CountStateMatches(ctx, s.keywords); err != nil {
		return Dashboard{}, fmt.Errorf("counting maintenance alerts: %w", err)
	}
	if d.Recent, err = s.store.RecentArtifacts(ctx, RecentLimit); err != nil {
		return Dashboard{}, fmt.Errorf("listing recent artifacts: %w", err)
	}
	s.log.Debug("dashboard computed", "artifacts", d.Artifacts, "alerts", d.MaintenanceAlerts)
	return d, nil
}
