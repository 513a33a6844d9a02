// Package marketdata fetches quotes from the external market-data provider
// over REST, with a small regime-aware TTL cache so a symbol whose regime is
// CALM is polled far less aggressively than one flagged VOLATILE.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// HTTPClient is the subset of *http.Client the provider call needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements pipeline.MarketDataClient against a REST quote endpoint.
type Client struct {
	logger     *zap.Logger
	httpClient HTTPClient
	baseURL    string
	maxRetries int

	cacheMu sync.RWMutex
	cache   map[string]cacheEntry
	ttl     types.CacheTTLConfig
}

type cacheEntry struct {
	quote     types.Quote
	regime    types.MarketRegime
	expiresAt time.Time
}

// Config wires the provider base URL, client, and TTL policy.
type Config struct {
	Logger     *zap.Logger
	HTTPClient HTTPClient
	BaseURL    string
	MaxRetries int
	CacheTTL   types.CacheTTLConfig
}

// New builds a Client.
func New(cfg Config) *Client {
	return &Client{
		logger:     cfg.Logger.Named("marketdata"),
		httpClient: cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		cache:      make(map[string]cacheEntry),
		ttl:        cfg.CacheTTL,
	}
}

// Quote returns the latest quote for symbol, serving from cache when a
// prior fetch hasn't yet expired under that symbol's last-known regime TTL.
func (c *Client) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	if entry, ok := c.cached(symbol); ok {
		return entry, nil
	}

	quote, err := c.fetchWithRetry(ctx, symbol)
	if err != nil {
		return types.Quote{}, err
	}

	c.store(symbol, quote)
	return quote, nil
}

// NoteRegime updates the TTL regime used for symbol's next cache lookup.
// Called by the orchestrator after classification so the cache tightens or
// loosens before the next scheduled fetch, not a full cycle later.
func (c *Client) NoteRegime(symbol string, regime types.MarketRegime) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	entry, ok := c.cache[symbol]
	if !ok {
		return
	}
	entry.regime = regime
	entry.expiresAt = time.Now().Add(c.ttlFor(regime))
	c.cache[symbol] = entry
}

func (c *Client) cached(symbol string) (types.Quote, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	entry, ok := c.cache[symbol]
	if !ok || time.Now().After(entry.expiresAt) {
		return types.Quote{}, false
	}
	return entry.quote, true
}

func (c *Client) store(symbol string, quote types.Quote) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	existing := c.cache[symbol]
	regime := existing.regime
	if regime == "" {
		regime = types.RegimeUnknown
	}
	c.cache[symbol] = cacheEntry{
		quote:     quote,
		regime:    regime,
		expiresAt: time.Now().Add(c.ttlFor(regime)),
	}
}

func (c *Client) ttlFor(regime types.MarketRegime) time.Duration {
	switch regime {
	case types.RegimeVolatile:
		return c.ttl.VolatileTTL
	case types.RegimeTrending:
		return c.ttl.TrendingTTL
	case types.RegimeRanging:
		return c.ttl.RangingTTL
	case types.RegimeCalm:
		return c.ttl.CalmTTL
	default:
		return c.ttl.CalmTTL
	}
}

// nonRetryableError wraps a market data failure that a retry cannot fix,
// such as a 4xx response.
type nonRetryableError struct{ err error }

func (e nonRetryableError) Error() string { return e.err.Error() }
func (e nonRetryableError) Unwrap() error { return e.err }

func (c *Client) fetchWithRetry(ctx context.Context, symbol string) (types.Quote, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		quote, err := c.fetch(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		lastErr = err
		if _, ok := err.(nonRetryableError); ok {
			break
		}
		c.logger.Warn("market data fetch failed, retrying",
			zap.String("symbol", symbol), zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return types.Quote{}, ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
	return types.Quote{}, fmt.Errorf("market data fetch for %s failed: %w", symbol, lastErr)
}

func (c *Client) fetch(ctx context.Context, symbol string) (types.Quote, error) {
	url := fmt.Sprintf("%s/quotes/%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.Quote{}, fmt.Errorf("building market data request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Quote{}, fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return types.Quote{}, fmt.Errorf("market data provider returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return types.Quote{}, nonRetryableError{fmt.Errorf("market data provider returned status %d", resp.StatusCode)}
	}

	var quote types.Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return types.Quote{}, fmt.Errorf("decoding market data response: %w", err)
	}
	if len(quote.RecentClosingPrices) > 50 {
		quote.RecentClosingPrices = quote.RecentClosingPrices[:50]
	}
	return quote, nil
}

func backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
	if d > 2*time.Second {
		return 2 * time.Second
	}
	return d
}
