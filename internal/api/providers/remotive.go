package providers

import (
	"context"
	"net/url"
	"strings"

	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

const (
	RemotiveBaseURL = "https://remotive.com"

	remotiveLabel    = "Remotive"
	remotiveLocation = "Remote/Unspecified"
)

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID                        nativeID `json:"id"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	URL                       string   `json:"url"`
	PublicationDate           string   `json:"publication_date"`
}

// Remotive searches the public remote-jobs API. It needs no credentials and
// ignores the location filter.
type Remotive struct {
	baseURL string
	client  *client
	limit   int
}

func NewRemotive(baseURL string, opts Options, logger *zap.Logger) *Remotive {
	opts = opts.withDefaults()
	if baseURL == "" {
		baseURL = RemotiveBaseURL
	}
	return &Remotive{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newClient(TagRemotive, opts, logger),
		limit:   opts.ResultsLimit,
	}
}

func (r *Remotive) Tag() Tag { return TagRemotive }

func (r *Remotive) Available() bool { return true }

func (r *Remotive) Search(ctx context.Context, keyword, _ string) ([]models.Listing, error) {
	params := url.Values{}
	if kw := strings.TrimSpace(keyword); kw != "" {
		params.Set("search", kw)
	}

	data, err := r.client.get(ctx, r.baseURL+"/api/remote-jobs", params)
	if err != nil {
		return nil, wrapErr(TagRemotive, keyword, err)
	}

	var resp remotiveResponse
	if err := parseResponse(data, &resp); err != nil {
		return nil, wrapErr(TagRemotive, keyword, err)
	}

	raws := make([]RawListing, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		raws = append(raws, RawListing{
			ID:       string(j.ID),
			Title:    j.Title,
			Company:  j.CompanyName,
			Location: j.CandidateRequiredLocation,
			URL:      j.URL,
			PostedAt: j.PublicationDate,
		})
	}

	listings := Normalize(TagRemotive, remotiveLabel, raws, r.limit, remotiveLocation)

	r.client.logger.Debug("listings found",
		zap.String("keyword", keyword),
		zap.Int("returned", len(resp.Jobs)),
		zap.Int("kept", len(listings)),
	)

	return listings, nil
}
