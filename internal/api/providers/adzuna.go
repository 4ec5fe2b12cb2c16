package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

const (
	AdzunaBaseURL = "https://api.adzuna.com"

	adzunaLabel = "Adzuna"
)

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID          nativeID   `json:"id"`
	Title       string     `json:"title"`
	Company     adzunaName `json:"company"`
	Location    adzunaName `json:"location"`
	RedirectURL string     `json:"redirect_url"`
	Created     string     `json:"created"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

// Adzuna searches the Adzuna jobs API for one country. It is available only
// when both app id and key are configured.
type Adzuna struct {
	baseURL string
	appID   string
	appKey  string
	country string
	client  *client
	limit   int
}

func NewAdzuna(baseURL, appID, appKey, country string, opts Options, logger *zap.Logger) *Adzuna {
	opts = opts.withDefaults()
	if baseURL == "" {
		baseURL = AdzunaBaseURL
	}
	if country == "" {
		country = "in"
	}
	return &Adzuna{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   strings.TrimSpace(appID),
		appKey:  strings.TrimSpace(appKey),
		country: strings.ToLower(strings.TrimSpace(country)),
		client:  newClient(TagAdzuna, opts, logger),
		limit:   opts.ResultsLimit,
	}
}

func (a *Adzuna) Tag() Tag { return TagAdzuna }

func (a *Adzuna) Available() bool {
	return a.appID != "" && a.appKey != ""
}

func (a *Adzuna) Search(ctx context.Context, keyword, location string) ([]models.Listing, error) {
	if !a.Available() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(a.limit))
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")
	if kw := strings.TrimSpace(keyword); kw != "" {
		params.Set("what", kw)
	}
	where := strings.TrimSpace(location)
	if where != "" {
		params.Set("where", where)
	}

	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/1", a.baseURL, a.country)
	data, err := a.client.get(ctx, endpoint, params)
	if err != nil {
		return nil, wrapErr(TagAdzuna, keyword, err)
	}

	var resp adzunaResponse
	if err := parseResponse(data, &resp); err != nil {
		return nil, wrapErr(TagAdzuna, keyword, err)
	}

	raws := make([]RawListing, 0, len(resp.Results))
	for _, r := range resp.Results {
		raws = append(raws, RawListing{
			ID:       string(r.ID),
			Title:    r.Title,
			Company:  r.Company.DisplayName,
			Location: r.Location.DisplayName,
			URL:      r.RedirectURL,
			PostedAt: r.Created,
		})
	}

	listings := Normalize(TagAdzuna, adzunaLabel, raws, a.limit, where)

	a.client.logger.Debug("listings found",
		zap.String("keyword", keyword),
		zap.String("location", where),
		zap.Int("found", resp.Count),
		zap.Int("kept", len(listings)),
	)

	return listings, nil
}
