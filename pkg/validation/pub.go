package validation

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/configs"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

// VenueLookup is the read-only venue access the pub matcher needs.
type VenueLookup interface {
	GetVenueByID(ctx context.Context, id uint) (*model.Venue, error)
	FindVenueByNameAndPostcode(ctx context.Context, name string, postcode string) (*model.Venue, error)
	FindVenuesByPostcodePrefix(ctx context.Context, prefix string, limit int) ([]*model.Venue, error)
}

type PubMatchStatus string

const (
	PubExisting PubMatchStatus = "existing"
	PubSimilar  PubMatchStatus = "similar"
	PubNew      PubMatchStatus = "new"
)

// PubCandidate is one scored fuzzy match.
type PubCandidate struct {
	VenueID            uint    `json:"venue_id"`
	Name               string  `json:"name"`
	Address            string  `json:"address"`
	Postcode           string  `json:"postcode"`
	Confidence         float64 `json:"confidence"`
	NameSimilarity     float64 `json:"name_similarity"`
	PostcodeSimilarity float64 `json:"postcode_similarity"`
}

// PubMatch is the pub matcher's verdict. For an existing match Confidence is
// 1.0 and VenueID is set; for a similar match Confidence carries the best
// candidate's score.
type PubMatch struct {
	Status      PubMatchStatus `json:"status"`
	VenueID     *uint          `json:"venue_id,omitempty"`
	MatchedName string         `json:"matched_name,omitempty"`
	Confidence  float64        `json:"confidence"`
	Candidates  []PubCandidate `json:"candidates,omitempty"`
}

const (
	nameWeight     = 0.7
	postcodeWeight = 0.3
	// Candidates are restricted to venues sharing the leading postcode
	// characters. A venue differing in this prefix is never considered
	// similar, even on an exact name match; this is a deliberate
	// approximation that bounds the comparison set.
	postcodePrefixLen = 3
)

type PubMatcher struct {
	venues     VenueLookup
	threshold  float64
	poolSize   int
	maxMatches int
	logger     *zap.Logger
}

func NewPubMatcher(venues VenueLookup, conf configs.Validation, logger *zap.Logger) *PubMatcher {
	return &PubMatcher{
		venues:     venues,
		threshold:  conf.SimilarityThreshold,
		poolSize:   conf.CandidatePoolSize,
		maxMatches: conf.MaxFuzzyMatches,
		logger:     logger,
	}
}

// Match resolves a pub descriptor against known venues, in strict priority
// order: identity, exact name+postcode, fuzzy similarity, new.
func (m *PubMatcher) Match(ctx context.Context, pub PubDescriptor) (PubMatch, error) {
	if pub.PubID != nil {
		venue, err := m.venues.GetVenueByID(ctx, *pub.PubID)
		if err != nil && !errors.Is(err, repository.ErrVenueNotFound) {
			return PubMatch{}, err
		}

		if venue != nil {
			return PubMatch{Status: PubExisting, VenueID: &venue.ID, MatchedName: venue.Name, Confidence: 1.0}, nil
		}
	}

	if pub.Name != "" && pub.Postcode != "" {
		venue, err := m.venues.FindVenueByNameAndPostcode(ctx, pub.Name, pub.Postcode)
		if err != nil && !errors.Is(err, repository.ErrVenueNotFound) {
			return PubMatch{}, err
		}

		if venue != nil {
			return PubMatch{Status: PubExisting, VenueID: &venue.ID, MatchedName: venue.Name, Confidence: 1.0}, nil
		}
	}

	candidates, err := m.findSimilar(ctx, pub)
	if err != nil {
		return PubMatch{}, err
	}

	if len(candidates) > 0 {
		return PubMatch{Status: PubSimilar, Confidence: candidates[0].Confidence, Candidates: candidates}, nil
	}

	return PubMatch{Status: PubNew, Confidence: 0.0}, nil
}

func (m *PubMatcher) findSimilar(ctx context.Context, pub PubDescriptor) ([]PubCandidate, error) {
	prefix := pub.Postcode
	if len(prefix) > postcodePrefixLen {
		prefix = prefix[:postcodePrefixLen]
	}

	pool, err := m.venues.FindVenuesByPostcodePrefix(ctx, prefix, m.poolSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]PubCandidate, 0, len(pool))

	for _, venue := range pool {
		nameSimilarity := similarityRatio(strings.ToLower(pub.Name), strings.ToLower(venue.Name))
		postcodeSimilarity := similarityRatio(pub.Postcode, venue.Postcode)
		confidence := nameWeight*nameSimilarity + postcodeWeight*postcodeSimilarity

		// strict: a score exactly at the threshold is excluded
		if confidence > m.threshold {
			candidates = append(candidates, PubCandidate{
				VenueID:            venue.ID,
				Name:               venue.Name,
				Address:            venue.Address,
				Postcode:           venue.Postcode,
				Confidence:         confidence,
				NameSimilarity:     nameSimilarity,
				PostcodeSimilarity: postcodeSimilarity,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) > m.maxMatches {
		candidates = candidates[:m.maxMatches]
	}

	return candidates, nil
}
