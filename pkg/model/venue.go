package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// GlutenFreeStatus classifies a venue's gluten-free beer offering. The set is
// closed; older database rows carrying legacy literals are normalized through
// NormalizeGlutenFreeStatus before use.
type GlutenFreeStatus string

const (
	StatusAlwaysTapCask   GlutenFreeStatus = "always_tap_cask"
	StatusAlwaysBottleCan GlutenFreeStatus = "always_bottle_can"
	StatusCurrently       GlutenFreeStatus = "currently"
	StatusNotCurrently    GlutenFreeStatus = "not_currently"
	StatusUnknown         GlutenFreeStatus = "unknown"
)

// NormalizeGlutenFreeStatus maps legacy status literals from earlier schema
// revisions onto the closed set.
func NormalizeGlutenFreeStatus(raw string) GlutenFreeStatus {
	switch GlutenFreeStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAlwaysTapCask, "always":
		return StatusAlwaysTapCask
	case StatusAlwaysBottleCan, "always_bottled":
		return StatusAlwaysBottleCan
	case StatusCurrently, "current":
		return StatusCurrently
	case StatusNotCurrently, "not_current":
		return StatusNotCurrently
	default:
		return StatusUnknown
	}
}

// ServingFormat is the format a beer was reported in.
type ServingFormat string

const (
	FormatBottle ServingFormat = "bottle"
	FormatTap    ServingFormat = "tap"
	FormatCask   ServingFormat = "cask"
	FormatCan    ServingFormat = "can"
)

func (f ServingFormat) Valid() bool {
	switch f {
	case FormatBottle, FormatTap, FormatCask, FormatCan:
		return true
	}

	return false
}

type Venue struct {
	gorm.Model
	Name     string `gorm:"index"`
	Address  string
	Postcode string `gorm:"index"`
	Area     string `gorm:"index"`

	Latitude  *float64
	Longitude *float64

	// Per-format availability flags, maintained together with VenueBeer rows
	// inside a single transaction.
	Bottle bool
	Tap    bool
	Cask   bool
	Can    bool

	Statuses []VenueStatus
}

// ServesGlutenFree reports whether any format flag is set.
func (v Venue) ServesGlutenFree() bool {
	return v.Bottle || v.Tap || v.Cask || v.Can
}

// VenueStatus is a timestamped, attributed status record. At most one row per
// venue has Current set; the repository maintains the invariant.
type VenueStatus struct {
	gorm.Model
	VenueID    uint `gorm:"index"`
	Status     GlutenFreeStatus
	Current    bool
	ReportedBy string
	ReportedAt time.Time
}
