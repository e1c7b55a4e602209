// Package demodata fills an empty inventory with plausible sample records.
package demodata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/sebastianm/inventar/internal/lookup"
)

// DefaultCount is the number of artifacts Seed creates when asked for none.
const DefaultCount = 50

// Lookups is the part of the lookup service Seed needs.
type Lookups interface {
	FindByName(ctx context.Context, t lookup.Table, name string) (lookup.Item, error)
	Add(ctx context.Context, t lookup.Table, name string) (lookup.Item, error)
}

// Artifacts is the part of the artifact service Seed needs.
type Artifacts interface {
	CountArtifacts(ctx context.Context) (int, error)
	CreateArtifact(ctx context.Context, in artifact.Input) (artifact.Result, error)
}

// Deps are the services Seed writes through.
type Deps struct {
	Log       *slog.Logger
	Lookups   Lookups
	Artifacts Artifacts
}

// Report summarises what Seed created.
type Report struct {
	LookupsAdded int
	Artifacts    int
	FirstCode    string
	LastCode     string
}

var catalog = map[lookup.Table][]string{
	lookup.Types:              {"مخطوطة", "سلاح", "آنية فخارية", "عملة نقدية", "تمثال", "مجوهرات", "أدوات زراعية", "نسيج"},
	lookup.Materials:          {"ذهب", "فضة", "برونز", "حديد", "خشب", "فخار", "ورق بردي", "جلد", "حجر جيري"},
	lookup.Periods:            {"العصر الإسلامي", "العصر العثماني", "العصر الروماني", "العصر البيزنطي", "العصر الحديث", "ما قبل التاريخ"},
	lookup.PreservationStates: {"ممتازة", "جيدة", "متوسطة", "تحتاج ترميم", "تالفة جزئياً"},
	lookup.StorageLocations:   {"المستودع الرئيسي A", "المستودع الفرعي B", "قاعة العرض 1", "الخزنة الحديدية", "غرفة الأرشيف"},
	lookup.RestorationMethods: {"تنظيف كيميائي", "تنظيف ميكانيكي", "تثبيت أجزاء", "عزل حراري"},
}

var (
	prefixes = []string{"سيف", "درع", "إناء", "جرة", "عملة", "تمثال نصفي", "مخطوطة", "عقد", "خاتم", "فأس"}
	suffixes = []string{"أثري", "قديم", "نادر", "ملكي", "مزخرف", "صغير", "كبير", "مذهب"}
	series   = []string{"أ", "ب", "ج", "د"}
	sources  = []string{"تنقيب 2023", "إهداء خاص", "شراء مزاد", "مصادرة", "موقع القلعة"}
)

// Seed adds the sample lookup values that are missing and creates n
// artifacts through the artifact service, so their codes continue the
// existing sequence. It refuses to run when any artifact exists. rng may be
// nil.
func Seed(ctx context.Context, d Deps, n int, rng *rand.Rand) (Report, error) {
	log := d.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if n <= 0 {
		n = DefaultCount
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	existing, err := d.Artifacts.CountArtifacts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("counting artifacts: %w", err)
	}
	if existing > 0 {
		return Report{}, &apperr.ConstraintError{Kind: "artifacts", Reason: fmt.Sprintf("store already holds %d artifacts", existing)}
	}

	var rep Report
	ids := make(map[lookup.Table][]int64, len(catalog))
	for _, t := range lookup.Tables {
		for _, name := range catalog[t] {
			it, added, err := ensure(ctx, d.Lookups, t, name)
			if err != nil {
				return rep, err
			}
			if added {
				rep.LookupsAdded++
			}
			ids[t] = append(ids[t], it.ID)
		}
	}

	today := time.Now()
	for i := 0; i < n; i++ {
		f := artifact.Fields{
			Name:                fmt.Sprintf("%s %s", pick(rng, prefixes), pick(rng, suffixes)),
			InventoryNumber:     fmt.Sprintf("%d/%s", 100+rng.IntN(900), pick(rng, series)),
			Source:              pick(rng, sources),
			Quantity:            1 + rng.IntN(10),
			TypeID:              pickID(rng, ids[lookup.Types]),
			MaterialID:          pickID(rng, ids[lookup.Materials]),
			PeriodID:            pickID(rng, ids[lookup.Periods]),
			PreservationStateID: pickID(rng, ids[lookup.PreservationStates]),
			StorageLocationID:   pickID(rng, ids[lookup.StorageLocations]),
			RestorationDate:     today.AddDate(0, 0, -rng.IntN(5*365)).Format(artifact.DateLayout),
			StorageRow:          fmt.Sprintf("R-%d", 1+rng.IntN(10)),
			StorageColumn:       fmt.Sprintf("C-%d", 1+rng.IntN(20)),
			Dimensions: artifact.Dimensions{
				Length: round2(5 + rng.Float64()*145),
				Width:  round2(2 + rng.Float64()*48),
			},
			Weight:      round2(0.1 + rng.Float64()*19.9),
			WeightUnit:  "kg",
			Description: "قطعة أثرية ذات قيمة تاريخية عالية.",
			Notes:       "تم الفحص الأولي.",
		}
		if rng.IntN(4) == 0 {
			f.RestorationMethodID = pickID(rng, ids[lookup.RestorationMethods])
		}

		res, err := d.Artifacts.CreateArtifact(ctx, artifact.Input{Fields: f})
		if err != nil {
			return rep, fmt.Errorf("creating sample artifact %d: %w", i+1, err)
		}
		if rep.FirstCode == "" {
			rep.FirstCode = res.Artifact.Code
		}
		rep.LastCode = res.Artifact.Code
		rep.Artifacts++
	}

	log.Info("demo data seeded", "lookups_added", rep.LookupsAdded, "artifacts", rep.Artifacts)
	return rep, nil
}

func ensure(ctx context.Context, l Lookups, t lookup.Table, name string) (lookup.Item, bool, error) {
	it, err := l.FindByName(ctx, t, name)
	if err == nil {
		return it, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return lookup.Item{}, false, fmt.Errorf("finding %s %q: %w", t, name, err)
	}
	it, err = l.Add(ctx, t, name)
	if err != nil {
		return lookup.Item{}, false, fmt.Errorf("adding %s %q: %w", t, name, err)
	}
	return it, true, nil
}

func pick(rng *rand.Rand, xs []string) string {
	return xs[rng.IntN(len(xs))]
}

func pickID(rng *rand.Rand, ids []int64) *int64 {
	if len(ids) == 0 {
		return nil
	}
	id := ids[rng.IntN(len(ids))]
	return &id
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
