package providers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

type stubGateway struct {
	tag       Tag
	available bool
	listings  []models.Listing
	calls     int
}

func (s *stubGateway) Tag() Tag        { return s.tag }
func (s *stubGateway) Available() bool { return s.available }
func (s *stubGateway) Search(ctx context.Context, keyword, location string) ([]models.Listing, error) {
	s.calls++
	return s.listings, nil
}

func TestRegistryAvailability(t *testing.T) {
	t.Parallel()
	r := NewRegistry(
		&stubGateway{tag: TagRemotive, available: true},
		&stubGateway{tag: TagAdzuna, available: false},
		&stubGateway{tag: TagJooble, available: true},
	)

	if got := r.AvailableTags(); !reflect.DeepEqual(got, []string{"remotive", "jooble"}) {
		t.Fatalf("AvailableTags = %v", got)
	}
	if _, ok := r.Get("adzuna"); ok {
		t.Error("unavailable gateway returned by Get")
	}
	if _, ok := r.Get(" Jooble "); !ok {
		t.Error("Get should normalize the tag")
	}
}

func TestNormalizeSources(t *testing.T) {
	t.Parallel()
	r := NewRegistry(
		&stubGateway{tag: TagRemotive, available: true},
		&stubGateway{tag: TagAdzuna, available: false},
		&stubGateway{tag: TagJooble, available: true},
	)

	tests := []struct {
		in   []string
		want []string
	}{
		{in: []string{"JOOBLE", "remotive", "jooble"}, want: []string{"jooble", "remotive"}},
		{in: []string{"adzuna"}, want: []string{"remotive"}},
		{in: []string{"linkedin"}, want: []string{"remotive"}},
		{in: nil, want: []string{"remotive"}},
	}
	for _, tt := range tests {
		if got := r.NormalizeSources(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeSources(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	onlyJooble := NewRegistry(&stubGateway{tag: TagJooble, available: true})
	if got := onlyJooble.NormalizeSources([]string{"adzuna"}); !reflect.DeepEqual(got, []string{"remotive"}) {
		t.Errorf("last-resort fallback = %v", got)
	}
}

type memCache struct {
	data map[string][]models.Listing
}

func (m *memCache) GetSearchResults(ctx context.Context, provider, keyword, location string) ([]models.Listing, bool, error) {
	l, ok := m.data[provider+"|"+keyword+"|"+location]
	return l, ok, nil
}

func (m *memCache) SetSearchResults(ctx context.Context, provider, keyword, location string, listings []models.Listing, ttl time.Duration) error {
	m.data[provider+"|"+keyword+"|"+location] = listings
	return nil
}

func TestCachedGateway(t *testing.T) {
	t.Parallel()
	stub := &stubGateway{tag: TagRemotive, available: true, listings: []models.Listing{{UID: "remotive:1", URL: "u"}}}
	gw := Cached(stub, &memCache{data: map[string][]models.Listing{}}, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := gw.Search(context.Background(), "go", "")
		if err != nil || len(got) != 1 {
			t.Fatalf("Search = %v, %v", got, err)
		}
	}
	if stub.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", stub.calls)
	}
	if gw.Tag() != TagRemotive {
		t.Fatalf("Tag = %s", gw.Tag())
	}

	if Cached(stub, nil, time.Minute, zap.NewNop()) != Gateway(stub) {
		t.Fatal("nil cache should return the gateway unchanged")
	}
}
