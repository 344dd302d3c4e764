package validation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.openly.dev/pointy"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

type ProcessorTestSuite struct {
	suite.Suite
	venues    *fakeVenueLookup
	beers     *fakeBeerLookup
	store     *fakeSubmissionStore
	processor *validation.Processor
}

func TestProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (suite *ProcessorTestSuite) SetupTest() {
	suite.venues = &fakeVenueLookup{venues: []*model.Venue{venue(1, "The Raven", "BS1 4NU")}}
	suite.beers = &fakeBeerLookup{
		breweries: []*model.Brewery{{Model: gorm.Model{ID: 5}, Name: "First Chop"}},
		beers:     []*model.Beer{{Model: gorm.Model{ID: 9}, Name: "POD", BreweryID: 5}},
	}
	suite.store = &fakeSubmissionStore{}

	engine := validation.NewEngine(suite.venues, suite.beers, testValidationConfig(), zap.NewNop())
	suite.processor = validation.NewProcessor(engine, suite.store, zap.NewNop())
}

func (suite *ProcessorTestSuite) tierOneSubmission() validation.RawSubmission {
	return validation.RawSubmission{
		PubID:         pointy.Uint(1),
		Brewery:       "First Chop",
		BeerName:      "POD",
		BeerFormat:    "Tap",
		SubmitterName: "Beth",
	}
}

func (suite *ProcessorTestSuite) TestProcess_TierOneAppliesImmediately() {
	result, err := suite.processor.Process(context.Background(), suite.tierOneSubmission(), validation.UserMetadata{})
	suite.Require().NoError(err)
	suite.Equal(validation.TierAutoApprove, result.Decision.Tier)
	suite.NotEqual(uuid.Nil, result.Reference)

	suite.Require().Len(suite.store.applied, 1)
	applied := suite.store.applied[0]
	suite.Equal(uint(1), applied.venueID)
	suite.Equal(uint(9), *applied.beerID)
	suite.Equal(model.FormatTap, applied.format)
	suite.Equal("Beth", applied.reportedBy)
	suite.Empty(suite.store.entries)
}

func (suite *ProcessorTestSuite) TestProcess_TierTwoSchedulesApproval() {
	raw := validation.RawSubmission{
		PubID:    pointy.Uint(1),
		Brewery:  "First Chop",
		BeerName: "Brand New Thing",
	}

	result, err := suite.processor.Process(context.Background(), raw, validation.UserMetadata{})
	suite.Require().NoError(err)
	suite.Equal(validation.TierSoftValidate, result.Decision.Tier)

	suite.Require().Len(suite.store.entries, 1)
	entry := suite.store.entries[0]
	suite.Equal(model.QueueSoftValidation, entry.Type)
	suite.Equal(model.QueuePending, entry.Status)
	suite.Require().NotNil(entry.ScheduledApprovalTime)
	suite.WithinDuration(time.Now().Add(24*time.Hour), *entry.ScheduledApprovalTime, time.Minute)
	suite.Empty(suite.store.applied)
}

func (suite *ProcessorTestSuite) TestProcess_TierThreeQueuesWithReasons() {
	raw := validation.RawSubmission{
		PubName:  "The Gryphon",
		Postcode: "EH1 1QR",
		Brewery:  "Nonesuch",
		BeerName: "Ghost Ale",
	}

	result, err := suite.processor.Process(context.Background(), raw, validation.UserMetadata{})
	suite.Require().NoError(err)
	suite.Equal(validation.TierManualReview, result.Decision.Tier)

	suite.Require().Len(suite.store.entries, 1)
	entry := suite.store.entries[0]
	suite.Equal(model.QueueManualReview, entry.Type)
	suite.Equal("new pub,new brewery", entry.Reasons)
	suite.Nil(entry.ScheduledApprovalTime)
}

// The audit record is written for every tier, not just the queued ones.
func (suite *ProcessorTestSuite) TestProcess_AlwaysRecordsSubmission() {
	for _, raw := range []validation.RawSubmission{
		suite.tierOneSubmission(),
		{PubID: pointy.Uint(1), Brewery: "First Chop", BeerName: "Brand New Thing"},
		{PubName: "The Gryphon", Postcode: "EH1 1QR"},
	} {
		suite.SetupTest()

		result, err := suite.processor.Process(context.Background(), raw, validation.UserMetadata{IP: "10.0.0.1", UserAgent: "test"})
		suite.Require().NoError(err)
		suite.Require().Len(suite.store.submissions, 1)

		submission := suite.store.submissions[0]
		suite.Equal(result.SubmissionID, submission.ID)
		suite.Equal(result.Decision.Tier, submission.Tier)
		suite.Equal(result.Decision.Status, submission.Status)
		suite.Equal("10.0.0.1", submission.UserIP)
		suite.Equal("test", submission.UserAgent)
		suite.NotEqual(uuid.Nil, submission.UUID)
	}
}

func (suite *ProcessorTestSuite) TestProcess_MatcherFailureStillRecordsAndQueues() {
	suite.venues.err = errors.New("connection refused")

	result, err := suite.processor.Process(context.Background(), validation.RawSubmission{
		PubName:  "The Raven",
		Postcode: "BS1 4NU",
	}, validation.UserMetadata{})
	suite.Require().NoError(err)
	suite.Equal(validation.StatusError, result.Decision.Status)
	suite.Equal(validation.TierManualReview, result.Decision.Tier)

	suite.Require().Len(suite.store.submissions, 1)
	suite.Require().Len(suite.store.entries, 1)
	suite.Equal(model.QueueManualReview, suite.store.entries[0].Type)
	suite.Equal("validation error", suite.store.entries[0].Reasons)
}

func (suite *ProcessorTestSuite) TestProcess_AuditFailureStopsEverything() {
	suite.store.addSubmissionErr = errors.New("disk full")

	result, err := suite.processor.Process(context.Background(), suite.tierOneSubmission(), validation.UserMetadata{})
	suite.Require().Error(err)
	suite.Nil(result)
	suite.Empty(suite.store.applied)
	suite.Empty(suite.store.entries)
}

func (suite *ProcessorTestSuite) TestProcess_ActionFailureIsReported() {
	suite.store.applyErr = errors.New("deadlock")

	result, err := suite.processor.Process(context.Background(), suite.tierOneSubmission(), validation.UserMetadata{})
	suite.Require().Error(err)
	suite.Nil(result)
	suite.Len(suite.store.submissions, 1)
}

func (suite *ProcessorTestSuite) TestProcess_AnonymousReporterFallback() {
	raw := suite.tierOneSubmission()
	raw.SubmitterName = ""
	raw.SubmitterEmail = ""

	_, err := suite.processor.Process(context.Background(), raw, validation.UserMetadata{})
	suite.Require().NoError(err)
	suite.Require().Len(suite.store.applied, 1)
	suite.Equal("anonymous", suite.store.applied[0].reportedBy)
}
