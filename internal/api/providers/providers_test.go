package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testOptions() Options {
	return Options{Timeout: 5 * time.Second, RatePerSec: 100, ResultsLimit: 25}
}

func TestRemotiveSearch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/remote-jobs" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "golang" {
			t.Errorf("search = %q", got)
		}
		_, _ = w.Write([]byte(`{"jobs":[
			{"id": 101, "title": " Go Engineer ", "company_name": "Acme", "candidate_required_location": "", "url": "https://remotive.com/101", "publication_date": "2024-05-01"},
			{"id": 102, "title": "Gopher", "company_name": "", "candidate_required_location": "EU", "url": "", "publication_date": ""}
		]}`))
	}))
	defer srv.Close()

	r := NewRemotive(srv.URL, testOptions(), zap.NewNop())
	got, err := r.Search(context.Background(), " golang ", "ignored")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].UID != "remotive:101" || got[0].Title != "Go Engineer" || got[0].Location != "Remote/Unspecified" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Company != UnknownCompany || got[1].Location != "EU" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestRemotiveBroadSearchOmitsParam(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want empty", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	}))
	defer srv.Close()

	got, err := NewRemotive(srv.URL, testOptions(), zap.NewNop()).Search(context.Background(), "", "")
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestAdzunaSearch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/api/jobs/gb/search/1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("app_id") != "id" || q.Get("app_key") != "key" || q.Get("what") != "java" || q.Get("where") != "London" {
			t.Errorf("query = %v", q)
		}
		if q.Get("results_per_page") != "25" || q.Get("sort_by") != "date" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"count": 2, "results":[
			{"id": "5001", "title": "Java Dev", "company": {"display_name": "Big Co"}, "location": {"display_name": ""}, "redirect_url": "https://adzuna/5001", "created": "2024-05-02T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	a := NewAdzuna(srv.URL, "id", "key", "GB", testOptions(), zap.NewNop())
	got, err := a.Search(context.Background(), "java", "London")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].UID != "adzuna:5001" || got[0].Company != "Big Co" || got[0].Location != "London" {
		t.Errorf("listing = %+v", got[0])
	}
}

func TestAdzunaWithoutCredentialsIsUnavailable(t *testing.T) {
	t.Parallel()
	a := NewAdzuna("http://127.0.0.1:1", "", "", "", testOptions(), zap.NewNop())
	if a.Available() {
		t.Fatal("Available() = true without credentials")
	}
	got, err := a.Search(context.Background(), "go", "")
	if err != nil || got != nil {
		t.Fatalf("Search = %v, %v; want nil, nil", got, err)
	}
}

func TestJoobleSearch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/secret" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body joobleRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Keywords != "react" || body.Location != "Delhi" || body.Page != "1" {
			t.Errorf("body = %+v", body)
		}
		_, _ = w.Write([]byte(`{"totalCount": 1, "jobs":[
			{"id": -8800123456789, "title": "React Dev", "company": "Web Co", "location": "Delhi", "link": "https://jooble/1", "source": "naukri.com", "updated": "2024-05-03"}
		]}`))
	}))
	defer srv.Close()

	j := NewJooble(srv.URL, "secret", testOptions(), zap.NewNop())
	got, err := j.Search(context.Background(), "react", "Delhi")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].UID != "jooble:-8800123456789" || got[0].Source != "Jooble (naukri.com)" {
		t.Fatalf("got %+v", got)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"jobs":[{"id": 1, "url": "https://x"}]}`))
	}))
	defer srv.Close()

	got, err := NewRemotive(srv.URL, testOptions(), zap.NewNop()).Search(context.Background(), "go", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || calls.Load() != 2 {
		t.Fatalf("listings = %d, calls = %d", len(got), calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewRemotive(srv.URL, testOptions(), zap.NewNop()).Search(context.Background(), "go", "")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if perr.Tag != TagRemotive || perr.Keyword != "go" {
		t.Errorf("ProviderError = %+v", perr)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientMalformedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs": [`))
	}))
	defer srv.Close()

	_, err := NewRemotive(srv.URL, testOptions(), zap.NewNop()).Search(context.Background(), "go", "")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
}

func TestClientTimeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := NewRemotive(srv.URL, opts, zap.NewNop()).Search(context.Background(), "go", "")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}
