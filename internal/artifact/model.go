package artifact

import (
	"time"

	"github.com/sebastianm/inventar/internal/image"
)

// DateLayout is the layout of the restoration and editing dates.
const DateLayout = "2006-01-02"

// DefaultWeightUnit is applied when no unit is given.
const DefaultWeightUnit = "g"

// Dimensions are in centimetres; zero means not measured.
type Dimensions struct {
	Length    float64
	Width     float64
	Diameter  float64
	Thickness float64
}

// Fields are the user-editable attributes of an artifact. Lookup references
// are nil when nothing is selected.
type Fields struct {
	InventoryNumber string
	Name            string
	Source          string
	Quantity        int
	Description     string
	Notes           string

	TypeID              *int64
	MaterialID          *int64
	PeriodID            *int64
	PreservationStateID *int64
	RestorationMethodID *int64
	StorageLocationID   *int64

	RestorationDate string
	StorageRow      string
	StorageColumn   string

	Dimensions Dimensions
	Weight     float64
	WeightUnit string

	CardEditor  string
	EditingDate string
}

// Artifact is a stored artifact row.
type Artifact struct {
	ID   int64
	Code string
	Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Input is what a data-entry form submits. ImagePaths are files to copy
// into the images folder; RemoveImageIDs are existing images to drop
// (update only).
type Input struct {
	Fields
	ImagePaths     []string
	RemoveImageIDs []int64
}

// View is an artifact with its lookup names resolved and its images. Names
// are empty when the reference is unset.
type View struct {
	Artifact
	TypeName              string
	MaterialName          string
	PeriodName            string
	PreservationStateName string
	RestorationMethodName string
	StorageLocationName   string
	Images                []image.Image
}

// Summary is one row of the searchable artifact list.
type Summary struct {
	ID                  int64
	Code                string
	InventoryNumber     string
	Name                string
	TypeName            string
	MaterialName        string
	PeriodName          string
	StorageLocationName string
	CreatedAt           time.Time
}

// Result is returned by create and update. Warnings hold image files that
// could not be placed or removed; the artifact itself was saved.
type Result struct {
	Artifact Artifact
	Images   []image.Image
	Warnings []error
}
