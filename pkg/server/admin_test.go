package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/server"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

type AdminServerTestSuite struct {
	ServerSuite
	router *gin.Engine
}

func TestAdminServerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServerTestSuite))
}

func (suite *AdminServerTestSuite) SetupTest() {
	suite.ServerSuite.SetupTest()

	applier := validation.NewApplier(suite.repo, suite.repo, suite.repo, suite.repo, suite.logger)
	admin := server.NewAdminServer(suite.repo, applier, nil, suite.logger)

	suite.router = gin.New()
	suite.router.GET("/api/admin/queue", admin.Queue)
	suite.router.POST("/api/admin/queue/:id/approve", admin.Approve)
	suite.router.POST("/api/admin/queue/:id/reject", admin.Reject)
	suite.router.GET("/api/admin/breweries/lookup", admin.BreweryLookup)
}

func (suite *AdminServerTestSuite) post(target string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"notes":"checked"}`))
	request.Header.Set("Content-Type", "application/json")

	return suite.serve(suite.router, request)
}

func (suite *AdminServerTestSuite) TestQueue_RejectsUnknownType() {
	request := httptest.NewRequest(http.MethodGet, "/api/admin/queue?type=backlog", nil)

	recorder := suite.serve(suite.router, request)
	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Contains(recorder.Body.String(), "Invalid queue type")
}

func (suite *AdminServerTestSuite) TestQueue_ListsPendingEntries() {
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "validation_queue_entries" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "type", "status", "reasons"}).
			AddRow(uint(7), uint(2), "manual_review", "pending", "new pub,new brewery"))
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "submissions" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pub_name", "tier"}).AddRow(uint(2), "The Gryphon", 3))

	request := httptest.NewRequest(http.MethodGet, "/api/admin/queue", nil)

	recorder := suite.serve(suite.router, request)
	suite.Equal(http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	suite.Contains(body, `"The Gryphon"`)
	suite.Contains(body, `"reasons":["new pub","new brewery"]`)
}

func (suite *AdminServerTestSuite) TestApprove_RejectsBadEntryID() {
	recorder := suite.post("/api/admin/queue/abc/approve")
	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Contains(recorder.Body.String(), "Invalid queue entry id")
}

func (suite *AdminServerTestSuite) TestApprove_UnknownEntryIs404() {
	suite.mock.ExpectQuery("^SELECT (.+)").WillReturnError(gorm.ErrRecordNotFound)

	recorder := suite.post("/api/admin/queue/99/approve")
	suite.Equal(http.StatusNotFound, recorder.Code)
	suite.Contains(recorder.Body.String(), "Queue entry not found")
}

func (suite *AdminServerTestSuite) TestApprove_AlreadyResolvedIs409() {
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "validation_queue_entries" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "type", "status"}).
			AddRow(uint(4), uint(1), "manual_review", "approved"))
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "submissions" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint(1)))

	recorder := suite.post("/api/admin/queue/4/approve")
	suite.Equal(http.StatusConflict, recorder.Code)
	suite.Contains(recorder.Body.String(), "already resolved")
}

// A submission for a pub that still does not exist cannot be applied; the
// reviewer has to create the venue first.
func (suite *AdminServerTestSuite) TestApprove_UnresolvableVenueIs409() {
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "validation_queue_entries" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "type", "status"}).
			AddRow(uint(4), uint(1), "manual_review", "pending"))
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "submissions" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pub_name", "postcode"}).AddRow(uint(1), "", ""))

	recorder := suite.post("/api/admin/queue/4/approve")
	suite.Equal(http.StatusConflict, recorder.Code)
	suite.Contains(recorder.Body.String(), "Venue must be created")
}

func (suite *AdminServerTestSuite) TestReject_ResolvesEntry() {
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "validation_queue_entries" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "type", "status"}).
			AddRow(uint(4), uint(1), "manual_review", "pending"))
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "submissions" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint(1)))

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`^SELECT (.+) FROM "validation_queue_entries" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "status"}).
			AddRow(uint(4), uint(1), "pending"))
	suite.mock.ExpectExec(`^UPDATE "validation_queue_entries" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(`^UPDATE "submissions" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	recorder := suite.post("/api/admin/queue/4/reject")
	suite.Equal(http.StatusOK, recorder.Code)
	suite.Contains(recorder.Body.String(), `"rejected"`)
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *AdminServerTestSuite) TestBreweryLookup_RequiresQuery() {
	request := httptest.NewRequest(http.MethodGet, "/api/admin/breweries/lookup", nil)

	recorder := suite.serve(suite.router, request)
	suite.Equal(http.StatusBadRequest, recorder.Code)
	suite.Contains(recorder.Body.String(), "q is required")
}
