// Package providers implements the job-listing provider gateways.
//
// Each provider is one variant of Gateway, identified by a Tag. Variants that
// are not configured report Available() == false and return no listings.
package providers

import (
	"context"
	"fmt"

	"job-alert-bot/internal/models"
)

// Tag identifies a provider. It prefixes every listing uid.
type Tag string

const (
	TagRemotive Tag = "remotive"
	TagAdzuna   Tag = "adzuna"
	TagJooble   Tag = "jooble"
)

// Gateway searches one provider.
type Gateway interface {
	Tag() Tag
	Available() bool
	Search(ctx context.Context, keyword, location string) ([]models.Listing, error)
}

// ProviderError wraps any failure of a single provider call.
type ProviderError struct {
	Tag     Tag
	Keyword string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s search %q: %v", e.Tag, e.Keyword, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func wrapErr(tag Tag, keyword string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Tag: tag, Keyword: keyword, Err: err}
}
