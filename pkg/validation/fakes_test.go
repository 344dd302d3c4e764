package validation_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

// In-memory stand-ins for the repository, keyed the same way the real
// queries are: case-insensitive names, exact postcodes.

type fakeVenueLookup struct {
	venues []*model.Venue
	err    error
}

func (f *fakeVenueLookup) GetVenueByID(_ context.Context, id uint) (*model.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}

	for _, venue := range f.venues {
		if venue.ID == id {
			return venue, nil
		}
	}

	return nil, repository.ErrVenueNotFound
}

func (f *fakeVenueLookup) FindVenueByNameAndPostcode(_ context.Context, name string, postcode string) (*model.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}

	for _, venue := range f.venues {
		if strings.EqualFold(venue.Name, name) && venue.Postcode == postcode {
			return venue, nil
		}
	}

	return nil, repository.ErrVenueNotFound
}

func (f *fakeVenueLookup) FindVenuesByPostcodePrefix(_ context.Context, prefix string, limit int) ([]*model.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}

	var pool []*model.Venue

	for _, venue := range f.venues {
		if strings.HasPrefix(venue.Postcode, prefix) && len(pool) < limit {
			pool = append(pool, venue)
		}
	}

	return pool, nil
}

type fakeBeerLookup struct {
	beers     []*model.Beer
	breweries []*model.Brewery
	err       error
}

func (f *fakeBeerLookup) FindBreweryByName(_ context.Context, name string) (*model.Brewery, error) {
	if f.err != nil {
		return nil, f.err
	}

	for _, brewery := range f.breweries {
		if strings.EqualFold(brewery.Name, strings.TrimSpace(name)) {
			return brewery, nil
		}
	}

	return nil, repository.ErrBreweryNotFound
}

func (f *fakeBeerLookup) FindBeerByBreweryAndName(ctx context.Context, brewery string, name string) (*model.Beer, error) {
	owner, err := f.FindBreweryByName(ctx, brewery)
	if err != nil {
		if errors.Is(err, repository.ErrBreweryNotFound) {
			return nil, repository.ErrBeerNotFound
		}

		return nil, err
	}

	for _, beer := range f.beers {
		if beer.BreweryID == owner.ID && strings.EqualFold(beer.Name, strings.TrimSpace(name)) {
			found := *beer
			found.Brewery = *owner

			return &found, nil
		}
	}

	return nil, repository.ErrBeerNotFound
}

type appliedReport struct {
	venueID    uint
	beerID     *uint
	format     model.ServingFormat
	reportedBy string
	seenAt     time.Time
}

type fakeSubmissionStore struct {
	submissions []*model.Submission
	entries     []*model.ValidationQueueEntry
	applied     []appliedReport

	addSubmissionErr error
	addQueueErr      error
	applyErr         error
}

func (f *fakeSubmissionStore) AddSubmission(_ context.Context, submission *model.Submission) error {
	if f.addSubmissionErr != nil {
		return f.addSubmissionErr
	}

	submission.ID = uint(len(f.submissions) + 1)
	f.submissions = append(f.submissions, submission)

	return nil
}

func (f *fakeSubmissionStore) AddQueueEntry(_ context.Context, entry *model.ValidationQueueEntry) error {
	if f.addQueueErr != nil {
		return f.addQueueErr
	}

	entry.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, entry)

	return nil
}

func (f *fakeSubmissionStore) ApplyAvailability(_ context.Context, venueID uint, beerID *uint, format model.ServingFormat, reportedBy string, seenAt time.Time) error {
	if f.applyErr != nil {
		return f.applyErr
	}

	f.applied = append(f.applied, appliedReport{venueID: venueID, beerID: beerID, format: format, reportedBy: reportedBy, seenAt: seenAt})

	return nil
}

type fakeEntityStore struct {
	breweries []*model.Brewery
	beers     []*model.Beer

	breweryErr error
	beerErr    error
}

func (f *fakeEntityStore) EnsureBrewery(_ context.Context, name string) (*model.Brewery, error) {
	if f.breweryErr != nil {
		return nil, f.breweryErr
	}

	for _, brewery := range f.breweries {
		if strings.EqualFold(brewery.Name, name) {
			return brewery, nil
		}
	}

	brewery := &model.Brewery{Name: name}
	brewery.ID = uint(len(f.breweries) + 100)
	f.breweries = append(f.breweries, brewery)

	return brewery, nil
}

func (f *fakeEntityStore) EnsureBeer(_ context.Context, breweryID uint, name string, style string, abv *float64) (*model.Beer, error) {
	if f.beerErr != nil {
		return nil, f.beerErr
	}

	for _, beer := range f.beers {
		if beer.BreweryID == breweryID && strings.EqualFold(beer.Name, name) {
			return beer, nil
		}
	}

	beer := &model.Beer{Name: name, BreweryID: breweryID, Style: style, ABV: abv}
	beer.ID = uint(len(f.beers) + 200)
	f.beers = append(f.beers, beer)

	return beer, nil
}

type resolution struct {
	entryID  uint
	status   model.QueueStatus
	reviewer string
	notes    string
}

type fakeQueueStore struct {
	due      []*model.ValidationQueueEntry
	resolved []resolution

	dueErr     error
	resolveErr error
}

func (f *fakeQueueStore) DueSoftValidations(_ context.Context, _ time.Time) ([]*model.ValidationQueueEntry, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}

	return f.due, nil
}

func (f *fakeQueueStore) ResolveQueueEntry(_ context.Context, entryID uint, status model.QueueStatus, reviewer string, notes string) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}

	f.resolved = append(f.resolved, resolution{entryID: entryID, status: status, reviewer: reviewer, notes: notes})

	return nil
}
