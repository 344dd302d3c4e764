package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

// SubmissionServer accepts crowd-sourced beer reports and hands them to the
// validation processor.
type SubmissionServer struct {
	processor *validation.Processor
	logger    *zap.Logger
}

func NewSubmissionServer(processor *validation.Processor, logger *zap.Logger) *SubmissionServer {
	return &SubmissionServer{processor: processor, logger: logger}
}

// Submit handles POST /api/submissions. The submitter gets tier-specific
// messaging on success and a generic failure otherwise; internal detail
// never leaves the server.
func (s *SubmissionServer) Submit(c *gin.Context) {
	var raw validation.RawSubmission
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission payload"})

		return
	}

	format := model.ServingFormat(validation.NormalizeBeer(raw).Format)
	if !format.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid required field: beer_format"})

		return
	}

	meta := validation.UserMetadata{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	result, err := s.processor.Process(c.Request.Context(), raw, meta)
	if err != nil {
		s.logger.Error("submission processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission, please try again"})

		return
	}

	RecordSubmission(result.Decision.Tier, result.Decision.Status)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"submission_id":     result.SubmissionID,
		"reference":         result.Reference,
		"validation_result": result.Decision,
	})
}
