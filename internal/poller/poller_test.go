package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, 0, f.err
	}
	return 1, 3, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPoller_StartStop(t *testing.T) {
	refresher := &fakeRefresher{}
	p := New(refresher, 10*time.Millisecond)

	if p.IsPolling() {
		t.Error("Poller should not be polling before Start")
	}

	p.Start()
	if !p.IsPolling() {
		t.Error("Poller should be polling after Start")
	}

	// Let at least one tick fire.
	time.Sleep(50 * time.Millisecond)

	p.Stop()
	if p.IsPolling() {
		t.Error("Poller should not be polling after Stop")
	}

	if refresher.callCount() == 0 {
		t.Error("Expected at least one refresh cycle")
	}

	calls := refresher.callCount()
	time.Sleep(30 * time.Millisecond)
	if refresher.callCount() != calls {
		t.Error("Expected no refresh cycles after Stop")
	}
}

func TestPoller_StartIsIdempotent(t *testing.T) {
	p := New(&fakeRefresher{}, time.Hour)

	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}

func TestPoller_ForceRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	p := New(refresher, time.Hour)

	if !p.LastRefresh().IsZero() {
		t.Error("Expected zero last-refresh time before any cycle")
	}

	feeds, articles, err := p.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("Force refresh failed: %v", err)
	}
	if feeds != 1 || articles != 3 {
		t.Errorf("Expected (1, 3), got (%d, %d)", feeds, articles)
	}
	if refresher.callCount() != 1 {
		t.Errorf("Expected 1 refresh call, got %d", refresher.callCount())
	}
	if p.LastRefresh().IsZero() {
		t.Error("Expected last-refresh time to be recorded")
	}
}

func TestPoller_ForceRefreshError(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("feeds unavailable")}
	p := New(refresher, time.Hour)

	if _, _, err := p.ForceRefresh(context.Background()); err == nil {
		t.Fatal("Expected refresh error to propagate")
	}
	if !p.LastRefresh().IsZero() {
		t.Error("Failed refresh should not update last-refresh time")
	}
}
