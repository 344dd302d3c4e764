package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
)

// SubmissionStore is the persistence the processor needs: the audit insert,
// queue inserts, and the transactional availability apply shared with the
// approval paths.
type SubmissionStore interface {
	AddSubmission(ctx context.Context, submission *model.Submission) error
	AddQueueEntry(ctx context.Context, entry *model.ValidationQueueEntry) error
	ApplyAvailability(ctx context.Context, venueID uint, beerID *uint, format model.ServingFormat, reportedBy string, seenAt time.Time) error
}

// UserMetadata is request-level submitter attribution captured by the HTTP
// layer.
type UserMetadata struct {
	IP        string
	UserAgent string
}

// Result is what the caller renders into tier-specific user messaging.
type Result struct {
	SubmissionID uint      `json:"submission_id"`
	Reference    uuid.UUID `json:"reference"`
	Decision     Decision  `json:"validation_result"`
}

// Processor validates a submission, records it, and executes the decided
// tier action.
type Processor struct {
	engine *Engine
	store  SubmissionStore
	logger *zap.Logger
	now    func() time.Time
}

func NewProcessor(engine *Engine, store SubmissionStore, logger *zap.Logger) *Processor {
	return &Processor{engine: engine, store: store, logger: logger, now: time.Now}
}

// Process runs the pipeline for one report. The audit record is written for
// every submission that validates, whatever tier it lands in; if that insert
// fails nothing else is attempted. A failure in the tier action after the
// audit insert is reported as an error too - the submission is never silently
// treated as approved.
func (p *Processor) Process(ctx context.Context, raw RawSubmission, meta UserMetadata) (*Result, error) {
	decision := p.engine.Validate(ctx, raw)

	submission := p.auditRecord(raw, decision, meta)
	if err := p.store.AddSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("recording submission: %w", err)
	}

	if err := p.act(ctx, submission, raw, decision); err != nil {
		p.logger.Error("tier action failed",
			zap.Uint("submission_id", submission.ID),
			zap.Int("tier", decision.Tier),
			zap.Error(err))

		return nil, fmt.Errorf("processing submission %d: %w", submission.ID, err)
	}

	return &Result{SubmissionID: submission.ID, Reference: submission.UUID, Decision: decision}, nil
}

func (p *Processor) act(ctx context.Context, submission *model.Submission, raw RawSubmission, decision Decision) error {
	switch decision.Action {
	case ActionUpdateDatabase:
		format := model.ServingFormat(NormalizeBeer(raw).Format)

		return p.store.ApplyAvailability(ctx, *decision.Pub.VenueID, decision.Beer.BeerID, format, submitterName(raw), p.now())

	case ActionQueueSoftValidation:
		scheduled := p.now().Add(time.Duration(decision.DelayHours) * time.Hour)

		return p.store.AddQueueEntry(ctx, &model.ValidationQueueEntry{
			SubmissionID:          submission.ID,
			Type:                  model.QueueSoftValidation,
			Status:                model.QueuePending,
			ScheduledApprovalTime: &scheduled,
		})

	case ActionQueueManualReview:
		return p.store.AddQueueEntry(ctx, &model.ValidationQueueEntry{
			SubmissionID: submission.ID,
			Type:         model.QueueManualReview,
			Status:       model.QueuePending,
			Reasons:      strings.Join(decision.Reasons, ","),
		})
	}

	return fmt.Errorf("unknown validation action %q", decision.Action)
}

func (p *Processor) auditRecord(raw RawSubmission, decision Decision, meta UserMetadata) *model.Submission {
	pub := NormalizePub(raw)
	beer := NormalizeBeer(raw)

	return &model.Submission{
		UUID:           uuid.New(),
		VenueID:        raw.PubID,
		PubName:        pub.Name,
		Address:        pub.Address,
		Postcode:       pub.Postcode,
		Brewery:        beer.Brewery,
		BeerName:       beer.BeerName,
		BeerStyle:      beer.Style,
		BeerABV:        beer.ABV,
		BeerFormat:     beer.Format,
		Tier:           decision.Tier,
		Status:         decision.Status,
		SubmitterName:  raw.SubmitterName,
		SubmitterEmail: raw.SubmitterEmail,
		Notes:          raw.Notes,
		UserIP:         meta.IP,
		UserAgent:      meta.UserAgent,
	}
}

func submitterName(raw RawSubmission) string {
	name := firstNonEmpty(raw.SubmitterName, raw.SubmitterEmail)
	if name == "" {
		return "anonymous"
	}

	return name
}
