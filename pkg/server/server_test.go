package server_test

import (
	"database/sql"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

// ServerSuite backs the handler tests with a sqlmock repository, the same
// way the repository tests run.
type ServerSuite struct {
	suite.Suite
	mock         sqlmock.Sqlmock
	observedLogs *observer.ObservedLogs
	logger       *zap.Logger
	repo         *repository.Repository
}

func (suite *ServerSuite) SetupTest() {
	var (
		db              *sql.DB
		err             error
		observedZapCore zapcore.Core
	)

	gin.SetMode(gin.TestMode)

	observedZapCore, suite.observedLogs = observer.New(zap.InfoLevel)
	suite.logger = zap.New(observedZapCore)

	db, suite.mock, err = sqlmock.New()
	suite.Require().NoError(err)

	gormLogger := zapgorm2.New(suite.logger)
	gormLogger.SetAsDefault()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{Logger: gormLogger})
	suite.NoError(err)

	suite.repo = &repository.Repository{DB: gormDB, Logger: suite.logger}
}

func (suite *ServerSuite) serve(router *gin.Engine, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}
