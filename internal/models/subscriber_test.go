package models

import (
	"reflect"
	"testing"
	"time"
)

func TestParseKeywords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{in: "python, java ,react", want: []string{"python", "java", "react"}},
		{in: " , ,", want: nil},
		{in: "", want: nil},
		{in: "all", want: []string{"all"}},
	}
	for _, tt := range tests {
		if got := ParseKeywords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseKeywords(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestUnfiltered(t *testing.T) {
	t.Parallel()
	tests := []struct {
		keywords []string
		want     bool
	}{
		{keywords: nil, want: true},
		{keywords: []string{"all"}, want: true},
		{keywords: []string{"ALL"}, want: true},
		{keywords: []string{"*"}, want: true},
		{keywords: []string{"all", "go"}, want: false},
		{keywords: []string{"python"}, want: false},
	}
	for _, tt := range tests {
		p := Preferences{Keywords: tt.keywords}
		if got := p.Unfiltered(); got != tt.want {
			t.Errorf("Unfiltered(%v) = %v, want %v", tt.keywords, got, tt.want)
		}
	}
}

func TestSearchTerms(t *testing.T) {
	t.Parallel()

	p := Preferences{Keywords: []string{"all"}}
	if got := p.SearchTerms(10); !reflect.DeepEqual(got, []string{""}) {
		t.Fatalf("sentinel terms = %#v", got)
	}

	many := make([]string, 15)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	p = Preferences{Keywords: many}
	got := p.SearchTerms(10)
	if len(got) != 10 {
		t.Fatalf("len(SearchTerms) = %d, want 10", len(got))
	}
	got[0] = "changed"
	if p.Keywords[0] != "a" {
		t.Fatal("SearchTerms must not alias the preference slice")
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()
	p := Preferences{Keywords: []string{"Python", "java"}}

	if !p.Matches(Listing{Title: "Senior PYTHON Dev"}) {
		t.Error("title match expected")
	}
	if !p.Matches(Listing{Title: "Engineer", Company: "Javaland"}) {
		t.Error("company match expected")
	}
	if p.Matches(Listing{Title: "Sales Rep", Company: "Acme", Location: "Pune"}) {
		t.Error("no match expected")
	}
	if !(Preferences{Keywords: []string{"all"}}).Matches(Listing{Title: "Sales Rep"}) {
		t.Error("sentinel must match everything")
	}
}

func TestIsDue(t *testing.T) {
	t.Parallel()
	const lastRun = int64(1_700_000_000)
	p := Preferences{IntervalMin: 30, LastRun: lastRun}

	if p.IsDue(time.Unix(lastRun+30*60-1, 0)) {
		t.Error("cycle must not be due one second early")
	}
	if !p.IsDue(time.Unix(lastRun+30*60, 0)) {
		t.Error("cycle must be due exactly at the interval")
	}
	if !(Preferences{IntervalMin: 720}).IsDue(time.Unix(lastRun, 0)) {
		t.Error("never-run subscriber must be due")
	}
}

func TestClampInterval(t *testing.T) {
	t.Parallel()
	for in, want := range map[int]int{-1: 5, 0: 5, 5: 5, 30: 30, 720: 720, 10000: 720} {
		if got := ClampInterval(in); got != want {
			t.Errorf("ClampInterval(%d) = %d, want %d", in, got, want)
		}
	}
}
