// Package pacer enforces a minimum delay between requests issued to
// the same host, independent of how many workers target other hosts.
package pacer

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is a process-wide, per-host rate limiter. Workers targeting
// different hosts never block each other; workers targeting the same
// host are serialized to one request per delay.
type Pacer struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New returns a pacer enforcing delay between requests to any one
// host.
func New(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until it is this caller's turn to fetch rawURL's host,
// then returns. It never performs I/O while holding the pacer's lock.
func (p *Pacer) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	return p.limiterFor(u.Host).Wait(ctx)
}

func (p *Pacer) limiterFor(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[host]
	if !ok {
		// One token per delay interval, burst of 1: the first request
		// to a new host proceeds immediately, subsequent ones wait.
		l = rate.NewLimiter(rate.Every(p.delay), 1)
		p.limiters[host] = l
	}

	return l
}
