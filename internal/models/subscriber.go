package models

import (
	"strings"
	"time"
)

const (
	MinIntervalMin = 5
	MaxIntervalMin = 720

	DefaultKeywords    = "python"
	DefaultLocation    = ""
	DefaultSources     = "remotive,adzuna"
	DefaultIntervalMin = 30
)

// Subscriber is a chat with stored search preferences.
type Subscriber struct {
	ID          int64 // telegram chat id
	Preferences Preferences
}

// Preferences describe what a subscriber searches for and how often.
type Preferences struct {
	Keywords    []string
	Location    string
	Sources     []string
	IntervalMin int
	LastRun     int64 // unix seconds, 0 means never
}

// DefaultPreferences returns the preferences a new subscriber starts with.
// Sources are not yet checked against the available providers.
func DefaultPreferences() Preferences {
	return Preferences{
		Keywords:    ParseKeywords(DefaultKeywords),
		Location:    DefaultLocation,
		Sources:     SplitCSV(DefaultSources),
		IntervalMin: DefaultIntervalMin,
	}
}

// ParseKeywords splits a comma separated keyword list, dropping blanks.
func ParseKeywords(csv string) []string {
	return SplitCSV(csv)
}

// SplitCSV splits s on commas and trims every part. Empty parts are dropped.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Unfiltered reports whether the keyword list means "everything":
// no keywords at all or a single "all" / "*".
func (p Preferences) Unfiltered() bool {
	if len(p.Keywords) == 0 {
		return true
	}
	if len(p.Keywords) == 1 {
		kw := strings.ToLower(strings.TrimSpace(p.Keywords[0]))
		return kw == "all" || kw == "*"
	}
	return false
}

// SearchTerms returns the keywords to query providers with. The unfiltered
// sentinel collapses to a single empty (broad) search.
func (p Preferences) SearchTerms(max int) []string {
	if p.Unfiltered() {
		return []string{""}
	}
	terms := p.Keywords
	if max > 0 && len(terms) > max {
		terms = terms[:max]
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}

// Matches reports whether any preference keyword occurs in the listing's
// title, company or location, ignoring case.
func (p Preferences) Matches(l Listing) bool {
	if p.Unfiltered() {
		return true
	}
	hay := strings.ToLower(l.Title + " " + l.Company + " " + l.Location)
	for _, kw := range p.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(hay, kw) {
			return true
		}
	}
	return false
}

// IsDue reports whether a scheduled cycle should run at now.
func (p Preferences) IsDue(now time.Time) bool {
	return now.Unix()-p.LastRun >= int64(p.IntervalMin)*60
}

// ClampInterval bounds minutes to [MinIntervalMin, MaxIntervalMin].
func ClampInterval(minutes int) int {
	if minutes < MinIntervalMin {
		return MinIntervalMin
	}
	if minutes > MaxIntervalMin {
		return MaxIntervalMin
	}
	return minutes
}

func (p Preferences) KeywordsCSV() string {
	return strings.Join(p.Keywords, ",")
}

func (p Preferences) SourcesCSV() string {
	return strings.Join(p.Sources, ",")
}
