package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"job-alert-bot/internal/models"
)

const (
	DefaultResultsLimit = 25

	UnknownCompany      = "Unknown"
	UnspecifiedLocation = "Unspecified"
)

// RawListing is the provider-neutral shape each variant decodes into
// before normalization.
type RawListing struct {
	ID       string
	Title    string
	Company  string
	Location string
	URL      string
	Source   string // overrides the provider label when set
	PostedAt string
}

// Normalize converts raw provider records to listings. Only the first limit
// records are considered. Records without a native id are dropped because
// their uid would not be stable across calls.
func Normalize(tag Tag, label string, raws []RawListing, limit int, fallbackLocation string) []models.Listing {
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}

	listings := make([]models.Listing, 0, len(raws))
	for _, raw := range raws {
		id := strings.TrimSpace(raw.ID)
		if id == "" {
			continue
		}

		source := strings.TrimSpace(raw.Source)
		if source == "" {
			source = label
		}

		listings = append(listings, models.Listing{
			UID:      UID(tag, id),
			Title:    strings.TrimSpace(raw.Title),
			Company:  orDefault(raw.Company, UnknownCompany),
			Location: orDefault(raw.Location, orDefault(fallbackLocation, UnspecifiedLocation)),
			URL:      strings.TrimSpace(raw.URL),
			Source:   source,
			PostedAt: strings.TrimSpace(raw.PostedAt),
		})
	}

	return listings
}

// UID builds the provider-qualified listing id.
func UID(tag Tag, nativeID string) string {
	return string(tag) + ":" + nativeID
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// nativeID accepts ids encoded either as JSON strings or numbers.
type nativeID string

func (id *nativeID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = nativeID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", string(b), err)
	}
	*id = nativeID(n.String())
	return nil
}
