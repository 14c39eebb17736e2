package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Gate is consulted before every external fetch. It owns politeness delays
// and robots.txt compliance; adapters treat it as opaque.
type Gate interface {
	Allow(ctx context.Context, rawURL string) error
}

var ErrDisallowedByRobots = fmt.Errorf("fetch disallowed by robots.txt")

// PoliteGate waits a bounded random interval between successive requests to
// the same host and refuses URLs a host's robots.txt disallows. Robots
// fetch failures fail open: politeness is best effort, not a correctness
// requirement.
type PoliteGate struct {
	client    *http.Client
	userAgent string
	delayMin  time.Duration
	delayMax  time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time
	robots   map[string]*robotstxt.RobotsData
}

func NewPoliteGate(client *http.Client, userAgent string, delayMin, delayMax time.Duration) *PoliteGate {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &PoliteGate{
		client:    client,
		userAgent: userAgent,
		delayMin:  delayMin,
		delayMax:  delayMax,
		lastSeen:  make(map[string]time.Time),
		robots:    make(map[string]*robotstxt.RobotsData),
	}
}

func (g *PoliteGate) Allow(ctx context.Context, rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return fmt.Errorf("gate: unparseable url %q", rawURL)
	}
	host := hostOnly(u.Host)

	if !g.robotsAllowed(ctx, u, host) {
		return ErrDisallowedByRobots
	}

	wait := g.reserve(host)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reserve computes how long the caller must wait for host and records the
// slot under the lock, so concurrent callers stay spaced apart.
func (g *PoliteGate) reserve(host string) time.Duration {
	delay := g.delayMin
	if jitter := g.delayMax - g.delayMin; jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter)))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	next := now
	if last, ok := g.lastSeen[host]; ok {
		next = last.Add(delay)
		if next.Before(now) {
			next = now
		}
	}
	g.lastSeen[host] = next
	return next.Sub(now)
}

func (g *PoliteGate) robotsAllowed(ctx context.Context, u *url.URL, host string) bool {
	g.mu.Lock()
	data, cached := g.robots[host]
	g.mu.Unlock()

	if !cached {
		data = g.fetchRobots(ctx, u)
		g.mu.Lock()
		g.robots[host] = data
		g.mu.Unlock()
	}

	if data == nil {
		return true
	}
	group := data.FindGroup(g.userAgent)
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (g *PoliteGate) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}

// BypassGate skips delays and robots checks. Test and local configurations
// only.
type BypassGate struct{}

func (BypassGate) Allow(ctx context.Context, rawURL string) error {
	return ctx.Err()
}

func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
