// Package ratelimit spaces out requests to the same destination host.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostSpacer enforces a minimum gap between requests to one host. Each host
// gets its own limiter with a burst of one, so concurrent callers for the
// same host are admitted one spacing apart.
type HostSpacer struct {
	spacing time.Duration
	mu      sync.Mutex
	hosts   map[string]*rate.Limiter
}

// NewHostSpacer builds a spacer; its lifetime is expected to be one pipeline run.
func NewHostSpacer(spacing time.Duration) *HostSpacer {
	return &HostSpacer{
		spacing: spacing,
		hosts:   map[string]*rate.Limiter{},
	}
}

// Wait blocks until a request to host may be issued.
func (h *HostSpacer) Wait(ctx context.Context, host string) error {
	return h.limiter(strings.ToLower(host)).Wait(ctx)
}

// WaitURL is Wait keyed on the host of rawURL.
func (h *HostSpacer) WaitURL(ctx context.Context, rawURL string) error {
	return h.Wait(ctx, HostOf(rawURL))
}

func (h *HostSpacer) limiter(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.hosts[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(h.spacing), 1)
		h.hosts[host] = l
	}
	return l
}

// HostOf extracts the lower-cased hostname, or the raw input if it does not parse.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(parsed.Hostname())
}
