package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/cache"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

const (
	breweryQueryLimit = 20
	breweryListLimit  = 50
	breweriesCacheKey = "breweries"
)

// BeerServer serves the brewery/beer autocomplete feeds behind the
// submission form.
type BeerServer struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewBeerServer(repo *repository.Repository, cache *cache.Cache, logger *zap.Logger) *BeerServer {
	return &BeerServer{repo: repo, cache: cache, logger: logger}
}

// Breweries handles GET /api/breweries.
func (s *BeerServer) Breweries(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	limit := breweryQueryLimit
	if query == "" {
		limit = breweryListLimit

		if cached, found := s.cache.Get(c.Request.Context(), breweriesCacheKey); found {
			c.Data(http.StatusOK, "application/json", []byte(cached))

			return
		}
	}

	breweries, err := s.repo.ListBreweries(c.Request.Context(), query, limit)
	if err != nil {
		s.logger.Error("error fetching breweries", zap.Error(err))
		c.JSON(http.StatusOK, []string{})

		return
	}

	names := make([]string, 0, len(breweries))
	for _, brewery := range breweries {
		names = append(names, brewery.Name)
	}

	if query == "" {
		if encoded, err := json.Marshal(names); err == nil {
			s.cache.Set(c.Request.Context(), breweriesCacheKey, string(encoded))
		}
	}

	c.JSON(http.StatusOK, names)
}

type beerResponse struct {
	BeerID       uint     `json:"beer_id"`
	Name         string   `json:"name"`
	Style        string   `json:"style"`
	ABV          *float64 `json:"abv,omitempty"`
	GlutenStatus string   `json:"gluten_status"`
}

// BreweryBeers handles GET /api/breweries/:brewery/beers.
func (s *BeerServer) BreweryBeers(c *gin.Context) {
	brewery := c.Param("brewery")
	query := strings.TrimSpace(c.Query("q"))

	beers, err := s.repo.ListBeersForBrewery(c.Request.Context(), brewery, query, breweryListLimit)
	if err != nil {
		if !errors.Is(err, repository.ErrBreweryNotFound) {
			s.logger.Error("error fetching brewery beers", zap.String("brewery", brewery), zap.Error(err))
		}

		c.JSON(http.StatusOK, []beerResponse{})

		return
	}

	results := make([]beerResponse, 0, len(beers))
	for _, beer := range beers {
		results = append(results, beerResponse{
			BeerID:       beer.ID,
			Name:         beer.Name,
			Style:        beer.Style,
			ABV:          beer.ABV,
			GlutenStatus: string(beer.GlutenStatus),
		})
	}

	c.JSON(http.StatusOK, results)
}
