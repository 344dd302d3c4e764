package integrations

import (
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/integrations/untappd-web"
)

// BreweryInfo is an external source's view of a brewery, used by reviewers to
// cross-check a claimed new brewery before approving a submission.
type BreweryInfo = untappdweb.BreweryInfo

type BreweryFinder interface {
	FindBrewery(name string) ([]BreweryInfo, error)
}

func GetBreweryFinder(name string, logger *zap.Logger) BreweryFinder {
	if name == untappdweb.IntegrationName {
		return untappdweb.NewUntappdWebIntegration(logger)
	}

	return nil
}
