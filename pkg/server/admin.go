package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/auth"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/integrations"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

const queueListLimit = 100

// AdminServer exposes the review queue to authenticated reviewers.
type AdminServer struct {
	repo         *repository.Repository
	applier      *validation.Applier
	integrations []string
	logger       *zap.Logger
}

func NewAdminServer(repo *repository.Repository, applier *validation.Applier, breweryIntegrations []string, logger *zap.Logger) *AdminServer {
	return &AdminServer{repo: repo, applier: applier, integrations: breweryIntegrations, logger: logger}
}

type queueEntryResponse struct {
	EntryID   uint              `json:"entry_id"`
	Type      model.QueueType   `json:"type"`
	Status    model.QueueStatus `json:"status"`
	Reasons   []string          `json:"reasons,omitempty"`
	Scheduled *string           `json:"scheduled_approval_time,omitempty"`

	Submission submissionDetail `json:"submission"`
}

type submissionDetail struct {
	SubmissionID uint     `json:"submission_id"`
	PubName      string   `json:"pub_name"`
	Address      string   `json:"address"`
	Postcode     string   `json:"postcode"`
	Brewery      string   `json:"brewery"`
	BeerName     string   `json:"beer_name"`
	BeerStyle    string   `json:"beer_style"`
	BeerABV      *float64 `json:"beer_abv,omitempty"`
	BeerFormat   string   `json:"beer_format"`
	Tier         int      `json:"tier"`
	Notes        string   `json:"notes,omitempty"`
	SubmittedAt  string   `json:"submitted_at"`
}

func entryToResponse(entry *model.ValidationQueueEntry) queueEntryResponse {
	response := queueEntryResponse{
		EntryID: entry.ID,
		Type:    entry.Type,
		Status:  entry.Status,
		Submission: submissionDetail{
			SubmissionID: entry.Submission.ID,
			PubName:      entry.Submission.PubName,
			Address:      entry.Submission.Address,
			Postcode:     entry.Submission.Postcode,
			Brewery:      entry.Submission.Brewery,
			BeerName:     entry.Submission.BeerName,
			BeerStyle:    entry.Submission.BeerStyle,
			BeerABV:      entry.Submission.BeerABV,
			BeerFormat:   entry.Submission.BeerFormat,
			Tier:         entry.Submission.Tier,
			Notes:        entry.Submission.Notes,
			SubmittedAt:  entry.Submission.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		},
	}

	if entry.Reasons != "" {
		response.Reasons = strings.Split(entry.Reasons, ",")
	}

	if entry.ScheduledApprovalTime != nil {
		scheduled := entry.ScheduledApprovalTime.UTC().Format("2006-01-02T15:04:05Z")
		response.Scheduled = &scheduled
	}

	return response
}

// Queue handles GET /api/admin/queue.
func (s *AdminServer) Queue(c *gin.Context) {
	queueType := model.QueueType(c.DefaultQuery("type", string(model.QueueManualReview)))
	if queueType != model.QueueManualReview && queueType != model.QueueSoftValidation {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid queue type"})

		return
	}

	entries, err := s.repo.PendingQueueEntries(c.Request.Context(), queueType, queueListLimit)
	if err != nil {
		s.logger.Error("error listing queue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error occurred"})

		return
	}

	results := make([]queueEntryResponse, 0, len(entries))
	for _, entry := range entries {
		results = append(results, entryToResponse(entry))
	}

	c.JSON(http.StatusOK, gin.H{"entries": results})
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// Approve handles POST /api/admin/queue/:id/approve: applies the submission
// through the same path as a tier-1 auto-approval, then resolves the entry.
func (s *AdminServer) Approve(c *gin.Context) {
	entry, ok := s.loadPendingEntry(c)
	if !ok {
		return
	}

	var request reviewRequest
	_ = c.ShouldBindJSON(&request)

	if err := s.applier.Apply(c.Request.Context(), &entry.Submission); err != nil {
		if errors.Is(err, validation.ErrVenueUnresolved) {
			c.JSON(http.StatusConflict, gin.H{"error": "Venue must be created before this submission can be approved"})

			return
		}

		s.logger.Error("error applying approved submission", zap.Uint("entry_id", entry.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply submission"})

		return
	}

	reviewer := auth.Reviewer(c)
	if err := s.repo.ResolveQueueEntry(c.Request.Context(), entry.ID, model.QueueApproved, reviewer, request.Notes); err != nil {
		s.logger.Error("error resolving queue entry", zap.Uint("entry_id", entry.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve queue entry"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"entry_id": entry.ID, "status": model.QueueApproved})
}

// Reject handles POST /api/admin/queue/:id/reject.
func (s *AdminServer) Reject(c *gin.Context) {
	entry, ok := s.loadPendingEntry(c)
	if !ok {
		return
	}

	var request reviewRequest
	_ = c.ShouldBindJSON(&request)

	reviewer := auth.Reviewer(c)
	if err := s.repo.ResolveQueueEntry(c.Request.Context(), entry.ID, model.QueueRejected, reviewer, request.Notes); err != nil {
		s.logger.Error("error resolving queue entry", zap.Uint("entry_id", entry.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve queue entry"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"entry_id": entry.ID, "status": model.QueueRejected})
}

func (s *AdminServer) loadPendingEntry(c *gin.Context) (*model.ValidationQueueEntry, bool) {
	var entryID uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &entryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid queue entry id"})

		return nil, false
	}

	entry, err := s.repo.GetQueueEntryByID(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Queue entry not found"})
		} else {
			s.logger.Error("error loading queue entry", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error occurred"})
		}

		return nil, false
	}

	if entry.Status != model.QueuePending {
		c.JSON(http.StatusConflict, gin.H{"error": "Queue entry already resolved"})

		return nil, false
	}

	return entry, true
}

// BreweryLookup handles GET /api/admin/breweries/lookup: cross-checks a
// claimed new brewery against external sources.
func (s *AdminServer) BreweryLookup(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})

		return
	}

	var results []integrations.BreweryInfo

	for _, name := range s.integrations {
		finder := integrations.GetBreweryFinder(name, s.logger)
		if finder == nil {
			continue
		}

		found, err := finder.FindBrewery(query)
		if err != nil {
			s.logger.Warn("brewery lookup failed", zap.String("integration", name), zap.Error(err))

			continue
		}

		results = append(results, found...)
	}

	c.JSON(http.StatusOK, gin.H{"breweries": results})
}
