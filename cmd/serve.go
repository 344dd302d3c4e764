package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/configs"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/cache"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/server"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

const timeout = 5 * time.Second

type ServeCmd struct {
	ConfigFile string `default:".coeliacs-like-beer-too.toml" help:"Path to config file" short:"c"`
}

func (s *ServeCmd) Run(_ *Context) error {
	logConfig := zap.NewProductionConfig()

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close()

	redisCache, err := cache.New(conf.Redis.URL, time.Duration(conf.Redis.CacheTTL)*time.Second, logger)
	if err != nil {
		// fail-open: the directory works without a cache
		logger.Warn("error connecting to redis, continuing without cache", zap.Error(err))

		redisCache = nil
	} else {
		defer redisCache.Close() //nolint:errcheck // close on shutdown only
	}

	engine := validation.NewEngine(repo, repo, conf.Validation, logger)
	processor := validation.NewProcessor(engine, repo, logger)
	applier := validation.NewApplier(repo, repo, repo, repo, logger)

	router := server.NewRouter(conf, repo, redisCache, processor, applier, logger)

	corsHandler := configureCORS(router)

	address := fmt.Sprintf(":%d", conf.Server.Port)
	svr := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: timeout,
		Handler:           corsHandler,
	}

	logger.Info("starting server", zap.String("address", address))

	err = svr.ListenAndServe()
	if err != nil {
		logger.Error("failed to start server", zap.Error(err))

		return err
	}

	return nil
}

func configureCORS(handler http.Handler) http.Handler {
	corsOpts := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"accept",
			"accept-encoding",
			"accept-language",
			"authorization",
			"cache-control",
			"content-length",
			"content-type",
			"origin",
			"referer",
			"user-agent",
		},
		MaxAge: 86400, // 24 hours
	})

	return corsOpts.Handler(handler)
}
