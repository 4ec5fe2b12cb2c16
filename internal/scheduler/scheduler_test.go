package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"job-alert-bot/internal/engine"
	"job-alert-bot/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type fakeStore struct {
	subs    []models.Subscriber
	listErr error

	mu      sync.Mutex
	cutoffs []int64
}

func (s *fakeStore) ListAll(ctx context.Context) ([]models.Subscriber, error) {
	return s.subs, s.listErr
}

func (s *fakeStore) PurgeOlderThan(ctx context.Context, ts int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, ts)
	return 0, nil
}

type fakeRunner struct {
	run func(ctx context.Context, sub models.Subscriber) (engine.Result, error)

	mu     sync.Mutex
	seen   []int64
	forced bool
}

func (r *fakeRunner) RunCycle(ctx context.Context, sub models.Subscriber, forced bool) (engine.Result, error) {
	r.mu.Lock()
	r.seen = append(r.seen, sub.ID)
	r.forced = r.forced || forced
	r.mu.Unlock()
	if r.run == nil {
		return engine.Result{}, nil
	}
	return r.run(ctx, sub)
}

func (r *fakeRunner) ids() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]int64(nil), r.seen...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func subscribers(n int) []models.Subscriber {
	subs := make([]models.Subscriber, n)
	for i := range subs {
		subs[i] = models.Subscriber{ID: int64(i + 1), Preferences: models.DefaultPreferences()}
	}
	return subs
}

func TestTickRunsEverySubscriber(t *testing.T) {
	store := &fakeStore{subs: subscribers(3)}
	runner := &fakeRunner{
		run: func(ctx context.Context, sub models.Subscriber) (engine.Result, error) {
			switch sub.ID {
			case 1:
				return engine.Result{}, &engine.StoreError{Op: "set last run", Err: errors.New("locked")}
			case 2:
				panic("provider exploded")
			}
			return engine.Result{Delivered: 1}, nil
		},
	}
	s := New(store, runner, Config{}, zap.NewNop())

	s.Tick(context.Background())

	if got := runner.ids(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("ran subscribers %v, want [1 2 3]", got)
	}
	if runner.forced {
		t.Fatal("scheduled cycles must not be forced")
	}
	if s.State() != StateIdle {
		t.Fatalf("state after tick = %s", s.State())
	}
}

func TestTickPurgesExpiredDeliveries(t *testing.T) {
	store := &fakeStore{}
	s := New(store, &fakeRunner{}, Config{Retention: 24 * time.Hour}, zap.NewNop())
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	s.Tick(context.Background())

	if len(store.cutoffs) != 1 || store.cutoffs[0] != now.Add(-24*time.Hour).Unix() {
		t.Fatalf("cutoffs = %v", store.cutoffs)
	}
}

func TestTickListError(t *testing.T) {
	store := &fakeStore{subs: subscribers(2), listErr: errors.New("no such table: users")}
	runner := &fakeRunner{}
	s := New(store, runner, Config{}, zap.NewNop())

	s.Tick(context.Background())

	if len(runner.ids()) != 0 {
		t.Fatal("cycles ran after list failure")
	}
}

func TestTickBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	runner := &fakeRunner{
		run: func(ctx context.Context, sub models.Subscriber) (engine.Result, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return engine.Result{}, nil
		},
	}
	s := New(&fakeStore{subs: subscribers(10)}, runner, Config{Concurrency: 2}, zap.NewNop())

	s.Tick(context.Background())

	if len(runner.ids()) != 10 {
		t.Fatalf("ran %d cycles, want 10", len(runner.ids()))
	}
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds limit", peak.Load())
	}
}

func TestTickCycleTimeout(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, sub models.Subscriber) (engine.Result, error) {
			<-ctx.Done()
			return engine.Result{}, ctx.Err()
		},
	}
	s := New(&fakeStore{subs: subscribers(1)}, runner, Config{CycleTimeout: 20 * time.Millisecond}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Tick(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick did not honor cycle timeout")
	}
}

func TestTickSkipsWhenBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	runner := &fakeRunner{
		run: func(ctx context.Context, sub models.Subscriber) (engine.Result, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return engine.Result{}, nil
		},
	}
	s := New(&fakeStore{subs: subscribers(1)}, runner, Config{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Tick(context.Background())
		close(done)
	}()
	<-started

	if s.State() != StateTicking {
		t.Fatalf("state during tick = %s", s.State())
	}
	s.Tick(context.Background())
	close(release)
	<-done

	if calls.Load() != 1 {
		t.Fatalf("overlapping tick ran %d cycles", calls.Load())
	}
}

func TestStartRunsFirstTickAfterDelay(t *testing.T) {
	ran := make(chan struct{}, 1)
	runner := &fakeRunner{
		run: func(ctx context.Context, sub models.Subscriber) (engine.Result, error) {
			select {
			case ran <- struct{}{}:
			default:
			}
			return engine.Result{}, nil
		},
	}
	s := New(&fakeStore{subs: subscribers(1)}, runner, Config{
		TickInterval: time.Hour,
		StartDelay:   10 * time.Millisecond,
	}, zap.NewNop())

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("first tick did not run")
	}
}

func TestFirstRunSchedule(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &firstRunSchedule{base: cron.Every(time.Minute), first: now.Add(5 * time.Second)}

	if got := s.Next(now); !got.Equal(now.Add(5 * time.Second)) {
		t.Fatalf("first Next = %v", got)
	}
	after := now.Add(5 * time.Second)
	if got := s.Next(after); !got.Equal(after.Add(time.Minute)) {
		t.Fatalf("second Next = %v", got)
	}
}

func TestStateString(t *testing.T) {
	if StateIdle.String() != "idle" || StateTicking.String() != "ticking" {
		t.Fatal("unexpected state names")
	}
}
