package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
)

var (
	ErrQueueEntryNotFound = errors.New("validation queue entry not found")
	ErrInvalidFormat      = errors.New("invalid serving format")
)

func (r *Repository) AddSubmission(ctx context.Context, submission *model.Submission) error {
	if result := r.DB.WithContext(ctx).Create(submission); result.Error != nil {
		r.Logger.Error("error recording submission", zap.Error(result.Error))

		return result.Error
	}

	return nil
}

func (r *Repository) GetSubmissionByID(ctx context.Context, id uint) (*model.Submission, error) {
	var submission model.Submission

	if result := r.DB.WithContext(ctx).First(&submission, id); result.Error != nil {
		return nil, result.Error
	}

	return &submission, nil
}

func (r *Repository) AddQueueEntry(ctx context.Context, entry *model.ValidationQueueEntry) error {
	if result := r.DB.WithContext(ctx).Create(entry); result.Error != nil {
		r.Logger.Error("error queueing submission",
			zap.Uint("submission_id", entry.SubmissionID),
			zap.String("type", string(entry.Type)),
			zap.Error(result.Error))

		return result.Error
	}

	return nil
}

// ApplyAvailability writes a venue-beer availability fact: the venue's format
// flag and, when the beer is known, the (venue, beer, format) report row.
// Both writes happen in one transaction so readers never see the flag without
// the report or vice versa. Re-reporting the same triple refreshes recency
// and bumps the repeat counter instead of creating a second row.
func (r *Repository) ApplyAvailability(ctx context.Context, venueID uint, beerID *uint, format model.ServingFormat, reportedBy string, seenAt time.Time) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Venue{}).
			Where("id = ?", venueID).
			Update(string(format), true)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrVenueNotFound
		}

		if beerID == nil {
			return nil
		}

		report := model.VenueBeer{
			VenueID:     venueID,
			BeerID:      *beerID,
			Format:      format,
			LastSeen:    seenAt,
			ReportCount: 1,
			ReportedBy:  reportedBy,
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "venue_id"}, {Name: "beer_id"}, {Name: "format"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_seen":    seenAt,
				"report_count": gorm.Expr("venue_beers.report_count + 1"),
				"reported_by":  reportedBy,
				"updated_at":   seenAt,
			}),
		}).Create(&report).Error
	})
}

// DueSoftValidations returns pending soft-validation entries whose scheduled
// approval time has passed, submissions attached, oldest first.
func (r *Repository) DueSoftValidations(ctx context.Context, now time.Time) ([]*model.ValidationQueueEntry, error) {
	var entries []*model.ValidationQueueEntry

	result := r.DB.WithContext(ctx).
		Where("type = ? AND status = ? AND scheduled_approval_time <= ?",
			model.QueueSoftValidation, model.QueuePending, now).
		Preload("Submission").
		Order("scheduled_approval_time").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// PendingQueueEntries lists pending entries of one queue type for the admin
// dashboard, submissions attached.
func (r *Repository) PendingQueueEntries(ctx context.Context, queueType model.QueueType, limit int) ([]*model.ValidationQueueEntry, error) {
	var entries []*model.ValidationQueueEntry

	result := r.DB.WithContext(ctx).
		Where("type = ? AND status = ?", queueType, model.QueuePending).
		Preload("Submission").
		Order("created_at").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (r *Repository) GetQueueEntryByID(ctx context.Context, id uint) (*model.ValidationQueueEntry, error) {
	var entry model.ValidationQueueEntry

	result := r.DB.WithContext(ctx).Preload("Submission").First(&entry, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrQueueEntryNotFound
		}

		return nil, result.Error
	}

	return &entry, nil
}

// ResolveQueueEntry transitions a queue entry out of pending and stamps the
// linked submission's processed fields, in one transaction. The submission
// row is otherwise immutable.
func (r *Repository) ResolveQueueEntry(ctx context.Context, entryID uint, status model.QueueStatus, reviewer string, notes string) error {
	now := time.Now()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry model.ValidationQueueEntry

		if result := tx.First(&entry, entryID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrQueueEntryNotFound
			}

			return result.Error
		}

		updates := map[string]interface{}{
			"status":       status,
			"reviewed_by":  reviewer,
			"review_notes": notes,
		}

		if result := tx.Model(&entry).Updates(updates); result.Error != nil {
			return result.Error
		}

		return tx.Model(&model.Submission{}).
			Where("id = ?", entry.SubmissionID).
			Updates(map[string]interface{}{"processed_at": now, "processed_by": reviewer}).Error
	})
}
