package providers

import (
	"strings"

	"job-alert-bot/internal/models"
)

// Registry is the fixed set of provider variants known to the process.
type Registry struct {
	order    []Tag
	gateways map[Tag]Gateway
}

// NewRegistry keeps gateways in the given order. A later gateway with the
// same tag replaces an earlier one.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[Tag]Gateway, len(gateways))}
	for _, gw := range gateways {
		if _, ok := r.gateways[gw.Tag()]; !ok {
			r.order = append(r.order, gw.Tag())
		}
		r.gateways[gw.Tag()] = gw
	}
	return r
}

// Get returns the gateway for tag if it exists and is available.
func (r *Registry) Get(tag string) (Gateway, bool) {
	gw, ok := r.gateways[Tag(strings.ToLower(strings.TrimSpace(tag)))]
	if !ok || !gw.Available() {
		return nil, false
	}
	return gw, true
}

// AvailableTags lists the configured providers in registration order.
func (r *Registry) AvailableTags() []string {
	tags := make([]string, 0, len(r.order))
	for _, tag := range r.order {
		if r.gateways[tag].Available() {
			tags = append(tags, string(tag))
		}
	}
	return tags
}

// NormalizeSources keeps the requested tags that are available, in request
// order and without duplicates. When nothing survives it falls back to the
// default sources, then to remotive.
func (r *Registry) NormalizeSources(requested []string) []string {
	if out := r.filterAvailable(requested); len(out) > 0 {
		return out
	}
	if out := r.filterAvailable(models.SplitCSV(models.DefaultSources)); len(out) > 0 {
		return out
	}
	return []string{string(TagRemotive)}
}

func (r *Registry) filterAvailable(requested []string) []string {
	var out []string
	seen := make(map[string]bool, len(requested))
	for _, s := range requested {
		s = strings.ToLower(strings.TrimSpace(s))
		if seen[s] {
			continue
		}
		if _, ok := r.Get(s); ok {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
