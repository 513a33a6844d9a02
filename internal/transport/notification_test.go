package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
	"go.uber.org/zap"
)

func TestNotificationClient_PostsDecision(t *testing.T) {
	var received atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Store(true)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewNotificationClient(zap.NewNop(), srv.Client(), srv.URL)
	client.Notify(context.Background(), types.FinalDecision{TraceID: "trace-1"})

	assert.True(t, received.Load())
}

func TestNotificationClient_EmptyBaseURLIsNoOp(t *testing.T) {
	client := NewNotificationClient(zap.NewNop(), http.DefaultClient, "")
	// Must not panic or block even though there is nowhere to send it.
	client.Notify(context.Background(), types.FinalDecision{TraceID: "trace-2"})
}
