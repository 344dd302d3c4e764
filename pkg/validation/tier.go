package validation

import (
	"fmt"
	"strings"
)

type Action string

const (
	ActionUpdateDatabase      Action = "update_database"
	ActionQueueSoftValidation Action = "queue_soft_validation"
	ActionQueueManualReview   Action = "queue_manual_review"
)

const (
	StatusAutoApproved   = "auto_approved"
	StatusSoftValidation = "soft_validation"
	StatusManualReview   = "manual_review_required"
	StatusError          = "error"
)

const (
	TierAutoApprove  = 1
	TierSoftValidate = 2
	TierManualReview = 3
)

// Decision is the tiering verdict for one submission.
type Decision struct {
	Tier       int      `json:"tier"`
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Action     Action   `json:"action"`
	DelayHours int      `json:"delay_hours,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`

	Pub  PubMatch  `json:"pub"`
	Beer BeerMatch `json:"beer"`
}

// Decide combines the two match results into a tier. It is total: every
// combination of pub and beer statuses maps to exactly one tier, and tier 1
// is returned only for existing pub + existing beer.
func Decide(pub PubMatch, beer BeerMatch, delayHours int) Decision {
	if pub.Status == PubExisting && beer.Status == BeerExisting {
		return Decision{
			Tier:    TierAutoApprove,
			Status:  StatusAutoApproved,
			Message: "Approved instantly - we know this pub and beer combination",
			Action:  ActionUpdateDatabase,
			Pub:     pub,
			Beer:    beer,
		}
	}

	if pub.Status == PubExisting && beer.Status == BeerNewForKnownBrewery {
		return Decision{
			Tier:       TierSoftValidate,
			Status:     StatusSoftValidation,
			Message:    fmt.Sprintf("New beer from known brewery - will be approved in %d hours unless flagged", delayHours),
			Action:     ActionQueueSoftValidation,
			DelayHours: delayHours,
			Pub:        pub,
			Beer:       beer,
		}
	}

	var reasons []string

	switch pub.Status {
	case PubNew:
		reasons = append(reasons, "new pub")
	case PubSimilar:
		reasons = append(reasons, "similar pub found - possible duplicate")
	case PubExisting:
	}

	switch beer.Status {
	case BeerNewBrewery:
		reasons = append(reasons, "new brewery")
	case BeerIncomplete:
		reasons = append(reasons, "incomplete beer information")
	case BeerExisting, BeerNewForKnownBrewery:
	}

	return Decision{
		Tier:    TierManualReview,
		Status:  StatusManualReview,
		Message: fmt.Sprintf("Manual review needed: %s", strings.Join(reasons, ", ")),
		Action:  ActionQueueManualReview,
		Reasons: reasons,
		Pub:     pub,
		Beer:    beer,
	}
}

// ErrorDecision is the fail-closed verdict used when the matching pipeline
// itself fails: never auto-approve, route to a human.
func ErrorDecision() Decision {
	return Decision{
		Tier:    TierManualReview,
		Status:  StatusError,
		Message: "Validation error occurred - defaulting to manual review",
		Action:  ActionQueueManualReview,
		Reasons: []string{"validation error"},
	}
}
