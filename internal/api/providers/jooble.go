package providers

import (
	"context"
	"strings"

	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

const (
	JoobleBaseURL = "https://jooble.org"

	joobleLabel = "Jooble"
)

type joobleRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Page     string `json:"page"`
}

type joobleResponse struct {
	TotalCount int         `json:"totalCount"`
	Jobs       []joobleJob `json:"jobs"`
}

type joobleJob struct {
	ID       nativeID `json:"id"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Link     string   `json:"link"`
	Source   string   `json:"source"`
	Updated  string   `json:"updated"`
}

// Jooble searches the Jooble aggregator. It is available only when an API
// key is configured.
type Jooble struct {
	baseURL string
	apiKey  string
	client  *client
	limit   int
}

func NewJooble(baseURL, apiKey string, opts Options, logger *zap.Logger) *Jooble {
	opts = opts.withDefaults()
	if baseURL == "" {
		baseURL = JoobleBaseURL
	}
	return &Jooble{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  newClient(TagJooble, opts, logger),
		limit:   opts.ResultsLimit,
	}
}

func (j *Jooble) Tag() Tag { return TagJooble }

func (j *Jooble) Available() bool { return j.apiKey != "" }

func (j *Jooble) Search(ctx context.Context, keyword, location string) ([]models.Listing, error) {
	if !j.Available() {
		return nil, nil
	}

	req := joobleRequest{
		Keywords: strings.TrimSpace(keyword),
		Location: strings.TrimSpace(location),
		Page:     "1",
	}

	data, err := j.client.post(ctx, j.baseURL+"/api/"+j.apiKey, req)
	if err != nil {
		return nil, wrapErr(TagJooble, keyword, err)
	}

	var resp joobleResponse
	if err := parseResponse(data, &resp); err != nil {
		return nil, wrapErr(TagJooble, keyword, err)
	}

	raws := make([]RawListing, 0, len(resp.Jobs))
	for _, job := range resp.Jobs {
		raw := RawListing{
			ID:       string(job.ID),
			Title:    job.Title,
			Company:  job.Company,
			Location: job.Location,
			URL:      job.Link,
			PostedAt: job.Updated,
		}
		if src := strings.TrimSpace(job.Source); src != "" {
			raw.Source = joobleLabel + " (" + src + ")"
		}
		raws = append(raws, raw)
	}

	listings := Normalize(TagJooble, joobleLabel, raws, j.limit, "")

	j.client.logger.Debug("listings found",
		zap.String("keyword", keyword),
		zap.Int("found", resp.TotalCount),
		zap.Int("kept", len(listings)),
	)

	return listings, nil
}
