package model

import (
	"time"

	"gorm.io/gorm"
)

// GlutenStatus classifies a beer itself, as opposed to a venue's offering.
type GlutenStatus string

const (
	GlutenFree    GlutenStatus = "gluten_free"
	GlutenRemoved GlutenStatus = "gluten_removed"
	GlutenUnknown GlutenStatus = "unknown"
)

type Beer struct {
	gorm.Model
	Name         string `gorm:"uniqueIndex:idx_beer_brewery_name"`
	BreweryID    uint   `gorm:"uniqueIndex:idx_beer_brewery_name"`
	Style        string
	ABV          *float64
	GlutenStatus GlutenStatus `gorm:"default:unknown"`

	Brewery Brewery `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

// VenueBeer is an availability report: a beer seen at a venue in a given
// format. One row per (venue, beer, format); re-reports refresh LastSeen and
// bump ReportCount instead of duplicating.
type VenueBeer struct {
	gorm.Model
	VenueID     uint          `gorm:"uniqueIndex:idx_venue_beer_format"`
	BeerID      uint          `gorm:"uniqueIndex:idx_venue_beer_format"`
	Format      ServingFormat `gorm:"uniqueIndex:idx_venue_beer_format"`
	LastSeen    time.Time
	ReportCount uint
	ReportedBy  string

	Venue Venue `gorm:"foreignKey:VenueID"`
	Beer  Beer  `gorm:"foreignKey:BeerID"`
}
