package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is the immutable audit record of what a user originally
// submitted, written exactly once per incoming report regardless of the tier
// it was assigned. Only the Processed stamps are ever updated, when a queued
// item is later resolved.
type Submission struct {
	gorm.Model
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	VenueID  *uint
	PubName  string
	Address  string
	Postcode string

	Brewery    string
	BeerName   string
	BeerStyle  string
	BeerABV    *float64
	BeerFormat string

	Tier   int
	Status string

	SubmitterName  string
	SubmitterEmail string
	Notes          string
	UserIP         string
	UserAgent      string

	ProcessedAt *time.Time
	ProcessedBy *string
}

type QueueType string

const (
	QueueSoftValidation QueueType = "soft_validation"
	QueueManualReview   QueueType = "manual_review"
)

type QueueStatus string

const (
	QueuePending  QueueStatus = "pending"
	QueueApproved QueueStatus = "approved"
	QueueRejected QueueStatus = "rejected"
)

// ValidationQueueEntry links a submission to one of the two review queues.
// Soft-validation entries carry a scheduled approval time and are applied by
// the sweep once it passes; manual-review entries wait for an admin.
type ValidationQueueEntry struct {
	gorm.Model
	SubmissionID uint        `gorm:"index"`
	Type         QueueType   `gorm:"index:idx_queue_type_status"`
	Status       QueueStatus `gorm:"index:idx_queue_type_status"`

	ScheduledApprovalTime *time.Time
	Reasons               string

	ReviewedBy  *string
	ReviewNotes string

	Submission Submission `gorm:"foreignKey:SubmissionID"`
}
