package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
)

var (
	ErrBreweryNotFound = errors.New("brewery not found")
	ErrBeerNotFound    = errors.New("beer not found")
)

func (r *Repository) FindBreweryByName(ctx context.Context, name string) (*model.Brewery, error) {
	var brewery model.Brewery

	result := r.DB.WithContext(ctx).
		Where("LOWER(TRIM(name)) = LOWER(TRIM(?))", name).
		First(&brewery)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBreweryNotFound
		}

		return nil, result.Error
	}

	return &brewery, nil
}

// FindBeerByBreweryAndName is the exact case-insensitive (brewery, beer name)
// pair lookup, with the owning brewery attached.
func (r *Repository) FindBeerByBreweryAndName(ctx context.Context, brewery string, name string) (*model.Beer, error) {
	owner, err := r.FindBreweryByName(ctx, brewery)
	if err != nil {
		if errors.Is(err, ErrBreweryNotFound) {
			return nil, ErrBeerNotFound
		}

		return nil, err
	}

	var beer model.Beer

	result := r.DB.WithContext(ctx).
		Where("brewery_id = ? AND LOWER(TRIM(name)) = LOWER(TRIM(?))", owner.ID, name).
		First(&beer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBeerNotFound
		}

		return nil, result.Error
	}

	beer.Brewery = *owner

	return &beer, nil
}

// EnsureBrewery creates the brewery if it does not exist. Two concurrent
// submissions naming the same new brewery can both pass the existence check;
// the conflict clause plus re-lookup makes the loser land on the winner's
// row.
func (r *Repository) EnsureBrewery(ctx context.Context, name string) (*model.Brewery, error) {
	brewery := model.Brewery{Name: name}
	if result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&brewery); result.Error != nil {
		return nil, result.Error
	}

	if brewery.ID == 0 {
		return r.FindBreweryByName(ctx, name)
	}

	return &brewery, nil
}

// EnsureBeer creates the beer under the given brewery if the (brewery, name)
// pair is not already known.
func (r *Repository) EnsureBeer(ctx context.Context, breweryID uint, name string, style string, abv *float64) (*model.Beer, error) {
	beer := model.Beer{
		Name:         name,
		BreweryID:    breweryID,
		Style:        style,
		ABV:          abv,
		GlutenStatus: model.GlutenUnknown,
	}

	if result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&beer); result.Error != nil {
		return nil, result.Error
	}

	if beer.ID == 0 {
		result := r.DB.WithContext(ctx).
			Where("brewery_id = ? AND LOWER(TRIM(name)) = LOWER(TRIM(?))", breweryID, name).
			First(&beer)
		if result.Error != nil {
			return nil, result.Error
		}
	}

	return &beer, nil
}

// ListBreweries feeds the submission form's brewery autocomplete.
func (r *Repository) ListBreweries(ctx context.Context, query string, limit int) ([]*model.Brewery, error) {
	db := r.DB.WithContext(ctx).Model(&model.Brewery{})
	if query != "" {
		db = db.Where("name ILIKE ?", "%"+query+"%")
	}

	var breweries []*model.Brewery

	if result := db.Order("name").Limit(limit).Find(&breweries); result.Error != nil {
		return nil, result.Error
	}

	return breweries, nil
}

// ListBeersForBrewery feeds the submission form's beer autocomplete.
func (r *Repository) ListBeersForBrewery(ctx context.Context, brewery string, query string, limit int) ([]*model.Beer, error) {
	owner, err := r.FindBreweryByName(ctx, brewery)
	if err != nil {
		return nil, err
	}

	db := r.DB.WithContext(ctx).Where("brewery_id = ?", owner.ID)
	if query != "" {
		db = db.Where("name ILIKE ?", "%"+query+"%")
	}

	var beers []*model.Beer

	if result := db.Order("name").Limit(limit).Find(&beers); result.Error != nil {
		return nil, result.Error
	}

	return beers, nil
}
