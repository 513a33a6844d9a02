// Package transport implements the reactive transport layer: outbound
// clients for the agent dispatch and notification collaborators, and the
// inbound control API (component G).
package transport

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/marketintel/decisiond/pkg/types"
)

// rateLimitedTransport wraps a RoundTripper with a client-side token-bucket
// limiter so outbound calls to a given collaborator never saturate it,
// independent of the connection pool's own back-pressure.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the bounded-pool, rate-limited client used for every
// outbound collaborator call. The connection pool is the primary
// back-pressure mechanism: invocations beyond MaxConnsPerHost wait for a
// free connection rather than opening new ones.
func NewHTTPClient(cfg types.TransportConfig, timeout time.Duration) *http.Client {
	base := &http.Transport{
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		IdleConnTimeout: cfg.IdleConnTimeout,
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.OutboundRatePerSec), cfg.OutboundBurst)
	return &http.Client{
		Transport: rateLimitedTransport{base: base, limiter: limiter},
		Timeout:   timeout,
	}
}
