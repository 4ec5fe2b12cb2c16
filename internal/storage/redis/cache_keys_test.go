package redis

import "testing"

func TestSearchResultsKey(t *testing.T) {
	t.Parallel()
	a := SearchResultsKey("adzuna", " Python ", "New Delhi")
	b := SearchResultsKey("adzuna", "python", " new delhi ")
	if a != b {
		t.Fatalf("equivalent searches differ: %q vs %q", a, b)
	}
	if a != "search:adzuna:python:new delhi" {
		t.Fatalf("key = %q", a)
	}
	if SearchResultsKey("jooble", "python", "new delhi") == a {
		t.Fatal("provider must be part of the key")
	}
}

func TestRateLimitKey(t *testing.T) {
	t.Parallel()
	if got := RateLimitKey(42); got != "ratelimit:user:42" {
		t.Fatalf("RateLimitKey = %q", got)
	}
}
