package validation

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
)

// QueueStore is the queue access the soft-validation sweep needs.
type QueueStore interface {
	DueSoftValidations(ctx context.Context, now time.Time) ([]*model.ValidationQueueEntry, error)
	ResolveQueueEntry(ctx context.Context, entryID uint, status model.QueueStatus, reviewer string, notes string) error
}

const sweepReviewer = "auto_sweep"

// Sweeper approves soft-validation queue entries whose scheduled time has
// passed, applying each one through the same path as a tier-1 submission.
type Sweeper struct {
	queue   QueueStore
	applier *Applier
	logger  *zap.Logger
	now     func() time.Time
}

func NewSweeper(queue QueueStore, applier *Applier, logger *zap.Logger) *Sweeper {
	return &Sweeper{queue: queue, applier: applier, logger: logger, now: time.Now}
}

// Run processes all due entries and returns how many were approved. One bad
// entry does not stop the sweep; its error is collected and the entry stays
// pending for the next pass.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	due, err := s.queue.DueSoftValidations(ctx, s.now())
	if err != nil {
		return 0, err
	}

	var (
		approved int
		errs     error
	)

	for _, entry := range due {
		if err := s.applier.Apply(ctx, &entry.Submission); err != nil {
			s.logger.Warn("sweep could not apply entry",
				zap.Uint("entry_id", entry.ID),
				zap.Uint("submission_id", entry.SubmissionID),
				zap.Error(err))
			multierr.AppendInto(&errs, err)

			continue
		}

		if err := s.queue.ResolveQueueEntry(ctx, entry.ID, model.QueueApproved, sweepReviewer, ""); err != nil {
			multierr.AppendInto(&errs, err)

			continue
		}

		approved++
	}

	s.logger.Info("soft validation sweep complete", zap.Int("due", len(due)), zap.Int("approved", approved))

	return approved, errs
}
