package validation

import "strings"

// RawSubmission is the JSON-shaped payload the HTTP layer hands to the
// processor. Absent fields decode to empty strings and are treated the same as
// empty ones throughout; the normalizer makes that explicit.
type RawSubmission struct {
	PubID       *uint    `json:"pub_id"`
	PubName     string   `json:"pub_name"`
	NewPubName  string   `json:"new_pub_name"`
	Address     string   `json:"address"`
	Postcode    string   `json:"postcode"`
	Brewery     string   `json:"brewery"`
	NewBrewery  string   `json:"new_brewery"`
	BeerName    string   `json:"beer_name"`
	NewBeerName string   `json:"new_beer_name"`
	BeerStyle   string   `json:"beer_style"`
	BeerABV     *float64 `json:"beer_abv"`
	BeerFormat  string   `json:"beer_format"`

	SubmitterName  string `json:"name"`
	SubmitterEmail string `json:"email"`
	Notes          string `json:"notes"`
}

// PubDescriptor is the canonical form of the venue half of a submission.
type PubDescriptor struct {
	PubID    *uint
	Name     string
	Address  string
	Postcode string
}

// BeerDescriptor is the canonical form of the beer half of a submission. ABV
// passes through unmodified.
type BeerDescriptor struct {
	Brewery  string
	BeerName string
	Style    string
	ABV      *float64
	Format   string
}

// NormalizePub trims the raw pub fields and uppercases the postcode. The
// new_pub_name field is a fallback for forms that split "select existing" from
// "add new".
func NormalizePub(raw RawSubmission) PubDescriptor {
	return PubDescriptor{
		PubID:    raw.PubID,
		Name:     strings.TrimSpace(firstNonEmpty(raw.PubName, raw.NewPubName)),
		Address:  strings.TrimSpace(raw.Address),
		Postcode: strings.ToUpper(strings.TrimSpace(raw.Postcode)),
	}
}

// NormalizeBeer trims the raw beer fields and lowercases the serving format.
func NormalizeBeer(raw RawSubmission) BeerDescriptor {
	return BeerDescriptor{
		Brewery:  strings.TrimSpace(firstNonEmpty(raw.Brewery, raw.NewBrewery)),
		BeerName: strings.TrimSpace(firstNonEmpty(raw.BeerName, raw.NewBeerName)),
		Style:    strings.TrimSpace(raw.BeerStyle),
		ABV:      raw.BeerABV,
		Format:   strings.ToLower(strings.TrimSpace(raw.BeerFormat)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}

	return ""
}
