package untappdweb

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gocolly/colly/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const IntegrationName = "untappd_web"

// BreweryInfo is the scraped summary a reviewer sees next to a "new brewery"
// submission.
type BreweryInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	URL         string  `json:"url"`
}

type UntappdWebIntegration struct {
	logger *zap.Logger
}

func NewUntappdWebIntegration(logger *zap.Logger) *UntappdWebIntegration {
	return &UntappdWebIntegration{logger: logger}
}

type breweryJSON struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	AggregateRating struct {
		RatingValue float64 `json:"ratingValue"`
	} `json:"aggregateRating"`
	Address struct {
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
	} `json:"address"`
}

// FindBrewery searches untappd's public brewery pages for the given name and
// returns the rated matches.
func (u *UntappdWebIntegration) FindBrewery(name string) ([]BreweryInfo, error) {
	collector := colly.NewCollector(
		colly.AllowedDomains("untappd.com"),
	)

	var (
		errs    error
		results []BreweryInfo
	)

	collector.OnHTML(".beer-item", func(element *colly.HTMLElement) {
		ratingString := element.ChildAttr(".rating > div.caps", "data-rating")
		rating, _ := strconv.ParseFloat(ratingString, 64)

		if rating > 0.0 {
			breweryURI := element.ChildAttr(".name > a", "href")

			brewery, err := u.getBreweryFromURI(breweryURI, collector)
			if multierr.AppendInto(&errs, err) {
				return
			}

			results = append(results, brewery)
		}
	})

	multierr.AppendInto(&errs, collector.Visit("https://untappd.com/search?q=/"+name+"&type=brewery"))

	return results, errs
}

func (u *UntappdWebIntegration) getBreweryFromURI(uri string, collector *colly.Collector) (BreweryInfo, error) {
	var (
		errs    error
		brewery BreweryInfo
	)

	collector.OnHTML("head script[type='application/ld+json']", func(element *colly.HTMLElement) {
		var parsed breweryJSON
		if err := json.Unmarshal([]byte(element.Text), &parsed); err != nil {
			u.logger.Warn("failed to parse brewery metadata", zap.String("uri", uri), zap.Error(err))

			return
		}

		location := parsed.Address.AddressLocality
		if parsed.Address.AddressRegion != "" {
			location = strings.TrimPrefix(location+", "+parsed.Address.AddressRegion, ", ")
		}

		brewery = BreweryInfo{
			Name:        parsed.Name,
			Description: parsed.Description,
			Location:    location,
			Rating:      parsed.AggregateRating.RatingValue,
		}
	})

	collector.OnHTML("head meta[property='og:url']", func(element *colly.HTMLElement) {
		brewery.URL = element.Attr("content")
	})

	multierr.AppendInto(&errs, collector.Visit("https://untappd.com/"+uri))

	return brewery, errs
}
