package configs

import (
	"errors"
	"os"
	"strings"

	"github.com/kkyr/fig"
	"go.uber.org/zap"
)

type DB struct {
	Host               string `validate:"required"`
	Port               int    `default:"5432"`
	User               string `default:"postgres"`
	Password           string `validate:"required"`
	Database           string `default:"postgres"`
	MaxIdleConnections int    `default:"10"`
	MaxOpenConnections int    `default:"10"`
}

type Server struct {
	Port int `default:"8080"`
}

type Redis struct {
	URL      string `default:"redis://localhost:6379"`
	CacheTTL int    `default:"300"` // seconds
}

type Auth struct {
	SecretKey string
	Audience  string
}

// Validation holds the tuning knobs for the submission validation engine. The
// similarity threshold is strict: a candidate scoring exactly at it is
// excluded.
type Validation struct {
	SoftValidationDelayHours int     `default:"24"`
	SimilarityThreshold      float64 `default:"0.8"`
	CandidatePoolSize        int     `default:"20"`
	MaxFuzzyMatches          int     `default:"3"`
}

type Integrations struct {
	Brewery []string `default:"untappd_web"`
}

type Config struct {
	DB           DB
	Server       Server
	Redis        Redis
	Auth         Auth
	Validation   Validation
	Integrations Integrations
}

const envPrefix = "CLBT" // env prefix for env vars

var ErrConfiguration = errors.New("configuration error")

func GetConfig(configFileName string, logger *zap.Logger) (*Config, error) {
	config := Config{}
	homeDir, _ := os.UserHomeDir()

	logger.Info("Loading config", zap.String("file", configFileName))

	err := fig.Load(&config, fig.File(configFileName), fig.Dirs(".", homeDir), fig.UseEnv(envPrefix))
	if err != nil {
		if strings.Contains(err.Error(), "file not found") {
			logger.Warn("Could not find config file", zap.String("file", configFileName))

			err = fig.Load(&config, fig.IgnoreFile(), fig.UseEnv(envPrefix))
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	return &config, nil
}
