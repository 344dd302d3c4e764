package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/configs"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/server"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

// SweepCmd approves soft-validation entries whose 24-hour window has passed.
// With no interval it runs one pass and exits, which suits a cron job; with
// an interval it loops.
type SweepCmd struct {
	ConfigFile string        `default:".coeliacs-like-beer-too.toml" help:"Path to config file" short:"c"`
	Interval   time.Duration `default:"0"                            help:"Run continuously at this interval (0 runs once)"`
}

func (s *SweepCmd) Run(_ *Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

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

	applier := validation.NewApplier(repo, repo, repo, repo, logger)
	sweeper := validation.NewSweeper(repo, applier, logger)

	ctx := context.Background()

	for {
		approved, err := sweeper.Run(ctx)
		if err != nil {
			logger.Warn("sweep finished with errors", zap.Int("approved", approved), zap.Error(err))
		}

		server.RecordSweepApprovals(approved)

		if s.Interval == 0 {
			return err
		}

		time.Sleep(s.Interval)
	}
}
