package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
)

var ErrVenueNotFound = errors.New("venue not found")

// SearchType selects which venue fields a directory search matches against.
type SearchType string

const (
	SearchAll      SearchType = "all"
	SearchName     SearchType = "name"
	SearchPostcode SearchType = "postcode"
	SearchArea     SearchType = "area"
)

func (r *Repository) GetVenueByID(ctx context.Context, id uint) (*model.Venue, error) {
	var venue model.Venue

	result := r.DB.WithContext(ctx).First(&venue, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}

		return nil, result.Error
	}

	return &venue, nil
}

func (r *Repository) FindVenueByNameAndPostcode(ctx context.Context, name string, postcode string) (*model.Venue, error) {
	var venue model.Venue

	result := r.DB.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND postcode = ?", name, postcode).
		First(&venue)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}

		return nil, result.Error
	}

	return &venue, nil
}

// FindVenuesByPostcodePrefix returns the fuzzy-matching candidate pool. The
// limit bounds the comparison set for the matcher.
func (r *Repository) FindVenuesByPostcodePrefix(ctx context.Context, prefix string, limit int) ([]*model.Venue, error) {
	var venues []*model.Venue

	result := r.DB.WithContext(ctx).
		Where("postcode LIKE ?", prefix+"%").
		Limit(limit).
		Find(&venues)
	if result.Error != nil {
		return nil, result.Error
	}

	return venues, nil
}

func searchCondition(db *gorm.DB, searchType SearchType, query string) *gorm.DB {
	like := "%" + query + "%"

	switch searchType {
	case SearchName:
		return db.Where("name ILIKE ?", like)
	case SearchPostcode:
		return db.Where("postcode ILIKE ?", like)
	case SearchArea:
		return db.Where("area ILIKE ?", like)
	default:
		return db.Where("name ILIKE ? OR postcode ILIKE ? OR area ILIKE ? OR address ILIKE ?", like, like, like, like)
	}
}

func glutenFreeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("bottle OR tap OR cask OR can")
}

// SearchVenues returns one page of results plus the total match count for
// pagination.
func (r *Repository) SearchVenues(ctx context.Context, query string, searchType SearchType, gfOnly bool, page int, perPage int) ([]*model.Venue, int64, error) {
	base := searchCondition(r.DB.WithContext(ctx).Model(&model.Venue{}), searchType, query)
	if gfOnly {
		base = glutenFreeOnly(base)
	}

	var total int64
	if result := base.Count(&total); result.Error != nil {
		return nil, 0, result.Error
	}

	var venues []*model.Venue

	result := base.
		Order("name").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&venues)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return venues, total, nil
}

// AutocompleteVenues is the lightweight suggestion variant of SearchVenues.
func (r *Repository) AutocompleteVenues(ctx context.Context, query string, searchType SearchType, gfOnly bool, limit int) ([]*model.Venue, error) {
	base := searchCondition(r.DB.WithContext(ctx).Model(&model.Venue{}), searchType, query)
	if gfOnly {
		base = glutenFreeOnly(base)
	}

	var venues []*model.Venue

	result := base.Order("name").Limit(limit).Find(&venues)
	if result.Error != nil {
		return nil, result.Error
	}

	return venues, nil
}

// VenueDistance is a venue row with its haversine distance from a query
// point, in kilometres.
type VenueDistance struct {
	model.Venue
	Distance float64
}

const earthRadiusKm = 6371

// FindVenuesNear runs the haversine distance query over venues that have
// coordinates.
func (r *Repository) FindVenuesNear(ctx context.Context, lat float64, lng float64, radiusKm float64, gfOnly bool, limit int) ([]*VenueDistance, error) {
	gfFilter := ""
	if gfOnly {
		gfFilter = " AND (bottle OR tap OR cask OR can)"
	}

	var venues []*VenueDistance

	result := r.DB.WithContext(ctx).Raw(`
		SELECT * FROM (
			SELECT venues.*,
				(? * acos(cos(radians(?)) * cos(radians(latitude)) *
				cos(radians(longitude) - radians(?)) +
				sin(radians(?)) * sin(radians(latitude)))) AS distance
			FROM venues
			WHERE deleted_at IS NULL
			  AND latitude IS NOT NULL AND longitude IS NOT NULL`+gfFilter+`
		) AS nearby
		WHERE distance <= ?
		ORDER BY distance
		LIMIT ?`,
		earthRadiusKm, lat, lng, lat, radiusKm, limit).
		Scan(&venues)
	if result.Error != nil {
		return nil, result.Error
	}

	return venues, nil
}

// VenueBeers returns the availability reports for a set of venues with beer
// and brewery detail preloaded, for rendering search results.
func (r *Repository) VenueBeers(ctx context.Context, venueIDs []uint) ([]*model.VenueBeer, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}

	var reports []*model.VenueBeer

	result := r.DB.WithContext(ctx).
		Where("venue_id IN (?)", venueIDs).
		Preload("Beer").
		Preload("Beer.Brewery").
		Find(&reports)
	if result.Error != nil {
		return nil, result.Error
	}

	return reports, nil
}

type VenueStats struct {
	TotalVenues      int64 `json:"total_pubs"`
	GlutenFreeVenues int64 `json:"gf_pubs"`
}

func (r *Repository) GetVenueStats(ctx context.Context) (*VenueStats, error) {
	var stats VenueStats

	if result := r.DB.WithContext(ctx).Model(&model.Venue{}).Count(&stats.TotalVenues); result.Error != nil {
		return nil, result.Error
	}

	result := glutenFreeOnly(r.DB.WithContext(ctx).Model(&model.Venue{})).Count(&stats.GlutenFreeVenues)
	if result.Error != nil {
		return nil, result.Error
	}

	return &stats, nil
}

// SetVenueStatus records a new attributed status for a venue and retires the
// previous current one, keeping at most one current row per venue.
func (r *Repository) SetVenueStatus(ctx context.Context, venueID uint, status model.GlutenFreeStatus, reportedBy string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.VenueStatus{}).
			Where("venue_id = ? AND current", venueID).
			Update("current", false)
		if result.Error != nil {
			return result.Error
		}

		record := model.VenueStatus{
			VenueID:    venueID,
			Status:     status,
			Current:    true,
			ReportedBy: reportedBy,
			ReportedAt: time.Now(),
		}

		if result := tx.Create(&record); result.Error != nil {
			r.Logger.Error("error recording venue status", zap.Uint("venue_id", venueID), zap.Error(result.Error))

			return result.Error
		}

		return nil
	})
}
