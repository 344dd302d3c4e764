package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/cache"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/model"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
)

const (
	searchPerPage     = 20
	maxSearchPage     = 1000
	maxQueryLength    = 100
	autocompleteLimit = 100
	nearbyLimit       = 50
	minRadiusKm       = 1
	maxRadiusKm       = 50

	statsCacheKey = "stats"
)

type VenueServer struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewVenueServer(repo *repository.Repository, cache *cache.Cache, logger *zap.Logger) *VenueServer {
	return &VenueServer{repo: repo, cache: cache, logger: logger}
}

type venueResponse struct {
	VenueID     uint     `json:"venue_id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Postcode    string   `json:"postcode"`
	Area        string   `json:"area"`
	Bottle      bool     `json:"bottle"`
	Tap         bool     `json:"tap"`
	Cask        bool     `json:"cask"`
	Can         bool     `json:"can"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
	BeerDetails []string `json:"beer_details,omitempty"`
}

func venueToResponse(venue *model.Venue, beers []string) venueResponse {
	return venueResponse{
		VenueID:     venue.ID,
		Name:        venue.Name,
		Address:     venue.Address,
		Postcode:    venue.Postcode,
		Area:        venue.Area,
		Bottle:      venue.Bottle,
		Tap:         venue.Tap,
		Cask:        venue.Cask,
		Can:         venue.Can,
		Latitude:    venue.Latitude,
		Longitude:   venue.Longitude,
		BeerDetails: beers,
	}
}

// beerDetails renders availability reports as display strings, grouped per
// venue.
func (s *VenueServer) beerDetails(c *gin.Context, venues []*model.Venue) map[uint][]string {
	ids := make([]uint, 0, len(venues))
	for _, venue := range venues {
		ids = append(ids, venue.ID)
	}

	reports, err := s.repo.VenueBeers(c.Request.Context(), ids)
	if err != nil {
		s.logger.Error("error loading beer details", zap.Error(err))

		return nil
	}

	details := make(map[uint][]string, len(venues))

	for _, report := range reports {
		style := report.Beer.Style
		if style == "" {
			style = "Unknown"
		}

		detail := fmt.Sprintf("%s - %s %s (%s)", report.Format, report.Beer.Brewery.Name, report.Beer.Name, style)
		details[report.VenueID] = append(details[report.VenueID], detail)
	}

	return details
}

// Search handles GET /search: directory search by name, postcode, or area
// with pagination.
func (s *VenueServer) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	searchType := repository.SearchType(c.DefaultQuery("search_type", string(repository.SearchAll)))
	gfOnly := strings.EqualFold(c.DefaultQuery("gf_only", "false"), "true")

	var page int
	if _, err := fmt.Sscanf(c.DefaultQuery("page", "1"), "%d", &page); err != nil || page < 1 || page > maxSearchPage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page number"})

		return
	}

	if query == "" || len(query) > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query length"})

		return
	}

	venues, total, err := s.repo.SearchVenues(c.Request.Context(), query, searchType, gfOnly, page, searchPerPage)
	if err != nil {
		s.logger.Error("error searching venues", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error occurred"})

		return
	}

	details := s.beerDetails(c, venues)
	results := make([]venueResponse, 0, len(venues))

	for _, venue := range venues {
		results = append(results, venueToResponse(venue, details[venue.ID]))
	}

	totalPages := (total + searchPerPage - 1) / searchPerPage

	c.JSON(http.StatusOK, gin.H{
		"pubs": results,
		"pagination": gin.H{
			"page":     page,
			"pages":    totalPages,
			"total":    total,
			"has_prev": page > 1,
			"has_next": int64(page) < totalPages,
		},
	})
}

// Autocomplete handles GET /autocomplete: lightweight suggestions for the
// search box.
func (s *VenueServer) Autocomplete(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	searchType := repository.SearchType(c.DefaultQuery("search_type", string(repository.SearchAll)))
	gfOnly := strings.EqualFold(c.DefaultQuery("gf_only", "false"), "true")

	if len(query) < 2 || len(query) > maxQueryLength {
		c.JSON(http.StatusOK, []venueResponse{})

		return
	}

	venues, err := s.repo.AutocompleteVenues(c.Request.Context(), query, searchType, gfOnly, autocompleteLimit)
	if err != nil {
		s.logger.Error("error in autocomplete", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusOK, []venueResponse{})

		return
	}

	results := make([]venueResponse, 0, len(venues))
	for _, venue := range venues {
		results = append(results, venueToResponse(venue, nil))
	}

	c.JSON(http.StatusOK, results)
}

type nearbyQuery struct {
	Lat    *float64 `form:"lat"`
	Lng    *float64 `form:"lng"`
	Radius float64  `form:"radius,default=5"`
	GFOnly bool     `form:"gf_only"`
}

// Nearby handles GET /nearby: haversine distance search around a point.
func (s *VenueServer) Nearby(c *gin.Context) {
	var query nearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil || query.Lat == nil || query.Lng == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Latitude and longitude required"})

		return
	}

	if *query.Lat < -90 || *query.Lat > 90 || *query.Lng < -180 || *query.Lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})

		return
	}

	if query.Radius < minRadiusKm || query.Radius > maxRadiusKm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})

		return
	}

	venues, err := s.repo.FindVenuesNear(c.Request.Context(), *query.Lat, *query.Lng, query.Radius, query.GFOnly, nearbyLimit)
	if err != nil {
		s.logger.Error("error in nearby search", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error occurred"})

		return
	}

	plain := make([]*model.Venue, 0, len(venues))
	for index := range venues {
		plain = append(plain, &venues[index].Venue)
	}

	details := s.beerDetails(c, plain)
	results := make([]venueResponse, 0, len(venues))

	for index := range venues {
		response := venueToResponse(&venues[index].Venue, details[venues[index].ID])
		distance := venues[index].Distance
		response.Distance = &distance
		results = append(results, response)
	}

	c.JSON(http.StatusOK, results)
}

// Stats handles GET /api/stats, cached in redis when available.
func (s *VenueServer) Stats(c *gin.Context) {
	if cached, found := s.cache.Get(c.Request.Context(), statsCacheKey); found {
		c.Data(http.StatusOK, "application/json", []byte(cached))

		return
	}

	stats, err := s.repo.GetVenueStats(c.Request.Context())
	if err != nil {
		s.logger.Error("error loading stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error occurred"})

		return
	}

	if encoded, err := json.Marshal(stats); err == nil {
		s.cache.Set(c.Request.Context(), statsCacheKey, string(encoded))
	}

	c.JSON(http.StatusOK, stats)
}

type statusUpdateRequest struct {
	Status     string `json:"status" binding:"required"`
	ReportedBy string `json:"reported_by"`
}

// UpdateStatus handles POST /api/venues/:id/status: records an attributed
// gluten-free status for a venue.
func (s *VenueServer) UpdateStatus(c *gin.Context) {
	var venueID uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &venueID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue id"})

		return
	}

	var request statusUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})

		return
	}

	if _, err := s.repo.GetVenueByID(c.Request.Context(), venueID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})

		return
	}

	status := model.NormalizeGlutenFreeStatus(request.Status)

	reporter := request.ReportedBy
	if reporter == "" {
		reporter = "anonymous"
	}

	if err := s.repo.SetVenueStatus(c.Request.Context(), venueID, status, reporter); err != nil {
		s.logger.Error("error updating venue status", zap.Uint("venue_id", venueID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error occurred"})

		return
	}

	s.cache.Invalidate(c.Request.Context(), statsCacheKey)

	c.JSON(http.StatusOK, gin.H{"venue_id": venueID, "status": status})
}
