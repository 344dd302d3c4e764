package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

// ErrVenueUnresolved means an approved submission could not be pinned to an
// existing venue; the venue has to be created through the normal venue-add
// flow before the submission can be applied.
var ErrVenueUnresolved = errors.New("submission venue could not be resolved")

// EntityStore creates brewery and beer rows on demand when an approved
// submission references entities not yet in the catalogue. Both treat an
// already-exists conflict as a successful match.
type EntityStore interface {
	EnsureBrewery(ctx context.Context, name string) (*model.Brewery, error)
	EnsureBeer(ctx context.Context, breweryID uint, name string, style string, abv *float64) (*model.Beer, error)
}

// Applier turns an approved submission into database facts. It is the same
// logic the tier-1 path runs immediately, packaged for the soft-validation
// sweep and manual-review approval to reuse.
type Applier struct {
	venues   VenueLookup
	beers    BeerLookup
	entities EntityStore
	store    SubmissionStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplier(venues VenueLookup, beers BeerLookup, entities EntityStore, store SubmissionStore, logger *zap.Logger) *Applier {
	return &Applier{venues: venues, beers: beers, entities: entities, store: store, logger: logger, now: time.Now}
}

// Apply resolves the submission's venue and beer against current state and
// writes the availability fact. The beer row is created on demand, so a
// tier-2 entry whose beer was unknown at submission time gets its row here.
func (a *Applier) Apply(ctx context.Context, submission *model.Submission) error {
	venueID, err := a.resolveVenue(ctx, submission)
	if err != nil {
		return err
	}

	beerID, err := a.resolveBeer(ctx, submission)
	if err != nil {
		return err
	}

	format := model.ServingFormat(submission.BeerFormat)
	reporter := submission.SubmitterName

	if reporter == "" {
		reporter = firstNonEmpty(submission.SubmitterEmail, "anonymous")
	}

	return a.store.ApplyAvailability(ctx, venueID, beerID, format, reporter, a.now())
}

func (a *Applier) resolveVenue(ctx context.Context, submission *model.Submission) (uint, error) {
	if submission.VenueID != nil {
		venue, err := a.venues.GetVenueByID(ctx, *submission.VenueID)
		if err != nil {
			if errors.Is(err, repository.ErrVenueNotFound) {
				return 0, ErrVenueUnresolved
			}

			return 0, err
		}

		return venue.ID, nil
	}

	if submission.PubName == "" || submission.Postcode == "" {
		return 0, ErrVenueUnresolved
	}

	venue, err := a.venues.FindVenueByNameAndPostcode(ctx, submission.PubName, submission.Postcode)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return 0, ErrVenueUnresolved
		}

		return 0, err
	}

	return venue.ID, nil
}

// resolveBeer returns nil when the submission carries no usable beer detail;
// the availability apply then only flags the venue's format.
func (a *Applier) resolveBeer(ctx context.Context, submission *model.Submission) (*uint, error) {
	if submission.Brewery == "" || submission.BeerName == "" {
		return nil, nil
	}

	beer, err := a.beers.FindBeerByBreweryAndName(ctx, submission.Brewery, submission.BeerName)
	if err != nil && !errors.Is(err, repository.ErrBeerNotFound) {
		return nil, err
	}

	if beer != nil {
		return &beer.ID, nil
	}

	brewery, err := a.entities.EnsureBrewery(ctx, submission.Brewery)
	if err != nil {
		return nil, fmt.Errorf("creating brewery %q: %w", submission.Brewery, err)
	}

	created, err := a.entities.EnsureBeer(ctx, brewery.ID, submission.BeerName, submission.BeerStyle, submission.BeerABV)
	if err != nil {
		return nil, fmt.Errorf("creating beer %q: %w", submission.BeerName, err)
	}

	return &created.ID, nil
}
