package validation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

// BeerLookup is the read-only beer access the beer matcher needs. Both
// lookups are exact case-insensitive; beers and breweries deliberately get no
// fuzzy matching, unlike pubs.
type BeerLookup interface {
	FindBeerByBreweryAndName(ctx context.Context, brewery string, name string) (*model.Beer, error)
	FindBreweryByName(ctx context.Context, name string) (*model.Brewery, error)
}

type BeerMatchStatus string

const (
	BeerExisting           BeerMatchStatus = "existing"
	BeerNewForKnownBrewery BeerMatchStatus = "new_beer_existing_brewery"
	BeerNewBrewery         BeerMatchStatus = "new_brewery"
	BeerIncomplete         BeerMatchStatus = "incomplete"
)

const knownBreweryConfidence = 0.7

// BeerMatch is the beer matcher's verdict. An existing match carries the
// stored beer's identity and attributes; a known-brewery match carries the
// brewery's canonical stored name.
type BeerMatch struct {
	Status         BeerMatchStatus `json:"status"`
	BeerID         *uint           `json:"beer_id,omitempty"`
	Style          string          `json:"style,omitempty"`
	ABV            *float64        `json:"abv,omitempty"`
	MatchedBrewery string          `json:"matched_brewery,omitempty"`
	Confidence     float64         `json:"confidence"`
}

type BeerMatcher struct {
	beers  BeerLookup
	logger *zap.Logger
}

func NewBeerMatcher(beers BeerLookup, logger *zap.Logger) *BeerMatcher {
	return &BeerMatcher{beers: beers, logger: logger}
}

func (m *BeerMatcher) Match(ctx context.Context, beer BeerDescriptor) (BeerMatch, error) {
	if beer.Brewery == "" || beer.BeerName == "" {
		return BeerMatch{Status: BeerIncomplete}, nil
	}

	found, err := m.beers.FindBeerByBreweryAndName(ctx, beer.Brewery, beer.BeerName)
	if err != nil && !errors.Is(err, repository.ErrBeerNotFound) {
		return BeerMatch{}, err
	}

	if found != nil {
		return BeerMatch{
			Status:         BeerExisting,
			BeerID:         &found.ID,
			Style:          found.Style,
			ABV:            found.ABV,
			MatchedBrewery: found.Brewery.Name,
			Confidence:     1.0,
		}, nil
	}

	brewery, err := m.beers.FindBreweryByName(ctx, beer.Brewery)
	if err != nil && !errors.Is(err, repository.ErrBreweryNotFound) {
		return BeerMatch{}, err
	}

	if brewery != nil {
		m.logger.Debug("known brewery for unknown beer",
			zap.String("submitted", beer.Brewery), zap.String("matched", brewery.Name))

		return BeerMatch{Status: BeerNewForKnownBrewery, MatchedBrewery: brewery.Name, Confidence: knownBreweryConfidence}, nil
	}

	return BeerMatch{Status: BeerNewBrewery, Confidence: 0.0}, nil
}
