package scraper

import (
	"context"
	"sync"
	"time"

	"jobscout/internal/domain/job"
)

// FetchTask produces zero or more postings for one unit of scraping work
// (one detail page, one repository, one board).
type FetchTask func(ctx context.Context) ([]job.Posting, error)

type FetchResult struct {
	Postings []job.Posting
	Err      error
}

// WorkerPool runs fetch tasks on a fixed set of workers with an optional
// requests-per-second cap shared by all of them.
type WorkerPool struct {
	workers int
	tasks   chan FetchTask
	wg      sync.WaitGroup

	mu     sync.RWMutex
	rate   <-chan time.Time
	ticker *time.Ticker
}

func NewWorkerPool(workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool{
		workers: workers,
		tasks:   make(chan FetchTask, buffer),
	}
}

func (p *WorkerPool) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	p.mu.Unlock()
	if rps <= 0 {
		return
	}
	t := time.NewTicker(time.Second / time.Duration(rps))
	p.mu.Lock()
	p.ticker = t
	p.rate = t.C
	p.mu.Unlock()
}

func (p *WorkerPool) Submit(t FetchTask) {
	if p == nil || t == nil {
		return
	}
	p.tasks <- t
}

// Close signals workers that no more tasks are coming. Call after the last
// Submit. The rate ticker keeps running until the queue drains.
func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	close(p.tasks)
}

// Run starts the workers and returns the channel their results arrive on.
// The channel closes once every submitted task finished or ctx is done.
func (p *WorkerPool) Run(ctx context.Context) <-chan FetchResult {
	out := make(chan FetchResult, p.workers*4)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					if t == nil {
						continue
					}

					p.mu.RLock()
					rate := p.rate
					p.mu.RUnlock()
					if rate != nil {
						select {
						case <-ctx.Done():
							return
						case <-rate:
						}
					}

					postings, err := t(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- FetchResult{Postings: postings, Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		p.mu.Lock()
		if p.ticker != nil {
			p.ticker.Stop()
			p.ticker = nil
			p.rate = nil
		}
		p.mu.Unlock()
		close(out)
	}()

	return out
}
