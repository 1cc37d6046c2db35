package poller

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher runs one ingestion cycle over the subscribed feeds.
type Refresher interface {
	RefreshAll(ctx context.Context) (feeds int, articles int, err error)
}

// Poller runs the ingestion pipeline on a fixed interval until stopped.
type Poller struct {
	refresher    Refresher
	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	lastRefresh  time.Time
	isPolling    bool
}

func New(refresher Refresher, pollInterval time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		refresher:    refresher,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = true
	p.mu.Unlock()

	log.Printf("Starting feed poller with interval: %v", p.pollInterval)

	p.wg.Add(1)
	go p.pollLoop()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = false
	p.mu.Unlock()

	log.Println("Stopping feed poller...")
	p.cancel()
	p.wg.Wait()
	log.Println("Feed poller stopped")
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Poller) refresh() {
	log.Println("Starting background feed refresh...")

	feeds, articles, err := p.refresher.RefreshAll(p.ctx)
	if err != nil {
		log.Printf("Background refresh failed: %v", err)
		return
	}

	p.mu.Lock()
	p.lastRefresh = time.Now()
	p.mu.Unlock()

	log.Printf("Background refresh completed: %d feeds, %d articles", feeds, articles)
}

// ForceRefresh runs a cycle immediately, outside the ticker schedule.
func (p *Poller) ForceRefresh(ctx context.Context) (int, int, error) {
	feeds, articles, err := p.refresher.RefreshAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	p.mu.Lock()
	p.lastRefresh = time.Now()
	p.mu.Unlock()

	return feeds, articles, nil
}

func (p *Poller) LastRefresh() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

func (p *Poller) IsPolling() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPolling
}
