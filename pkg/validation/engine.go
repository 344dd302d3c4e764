package validation

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yoshiben/coeliacs-like-beer-too/configs"
)

// Engine runs the full validation pipeline for one submission: normalize,
// match pub and beer, decide the tier. The two matchers have no ordering
// dependency and run concurrently.
type Engine struct {
	pubs       *PubMatcher
	beers      *BeerMatcher
	delayHours int
	logger     *zap.Logger
}

func NewEngine(venues VenueLookup, beers BeerLookup, conf configs.Validation, logger *zap.Logger) *Engine {
	return &Engine{
		pubs:       NewPubMatcher(venues, conf, logger),
		beers:      NewBeerMatcher(beers, logger),
		delayHours: conf.SoftValidationDelayHours,
		logger:     logger,
	}
}

// Validate never fails: any error inside the matching step is coerced to the
// fail-closed tier-3 error decision so a submission is still recorded and a
// human gets to resolve it.
func (e *Engine) Validate(ctx context.Context, raw RawSubmission) Decision {
	pub := NormalizePub(raw)
	beer := NormalizeBeer(raw)

	var (
		pubMatch  PubMatch
		beerMatch BeerMatch
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		pubMatch, err = e.pubs.Match(groupCtx, pub)

		return err
	})

	group.Go(func() error {
		var err error
		beerMatch, err = e.beers.Match(groupCtx, beer)

		return err
	})

	if err := group.Wait(); err != nil {
		e.logger.Error("validation failed, defaulting to manual review", zap.Error(err))

		return ErrorDecision()
	}

	return Decide(pubMatch, beerMatch, e.delayHours)
}
