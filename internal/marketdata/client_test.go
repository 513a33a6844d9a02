package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestQuote_FetchesAndCaches(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"symbol":"AAPL","latestClose":"150.25","recentClosingPrices":[150.25,150.0]}`)
	}))
	defer server.Close()

	c := New(Config{
		Logger: zap.NewNop(), HTTPClient: server.Client(), BaseURL: server.URL,
		MaxRetries: 2, CacheTTL: types.DefaultCacheTTLConfig(),
	})

	q1, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q1.Symbol)
	assert.Equal(t, 1, calls)

	q2, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, q1, q2)
	assert.Equal(t, 1, calls, "second call within TTL should be served from cache")
}

func TestQuote_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"symbol":"AAPL","latestClose":"150.25"}`)
	}))
	defer server.Close()

	c := New(Config{
		Logger: zap.NewNop(), HTTPClient: server.Client(), BaseURL: server.URL,
		MaxRetries: 3, CacheTTL: types.DefaultCacheTTLConfig(),
	})

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 3, calls)
}

func TestQuote_DoesNotRetryOn4xx(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(Config{
		Logger: zap.NewNop(), HTTPClient: server.Client(), BaseURL: server.URL,
		MaxRetries: 3, CacheTTL: types.DefaultCacheTTLConfig(),
	})

	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNoteRegime_TightensCacheForVolatile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"symbol":"AAPL","latestClose":"150.25"}`)
	}))
	defer server.Close()

	ttl := types.DefaultCacheTTLConfig()
	c := New(Config{Logger: zap.NewNop(), HTTPClient: server.Client(), BaseURL: server.URL, CacheTTL: ttl})

	_, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	c.NoteRegime("AAPL", types.RegimeVolatile)

	c.cacheMu.RLock()
	entry := c.cache["AAPL"]
	c.cacheMu.RUnlock()
	assert.Equal(t, types.RegimeVolatile, entry.regime)
}
