package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// NotificationClient implements pipeline.NotificationSink by POSTing the
// full FinalDecision to a configured sink. Failures are logged, never
// surfaced: the interface has no error return because the pipeline already
// treats this as fire-and-forget.
type NotificationClient struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

// NewNotificationClient constructs a notification client against baseURL.
// An empty baseURL disables delivery entirely (Notify becomes a no-op),
// since the sink is an optional collaborator.
func NewNotificationClient(logger *zap.Logger, client *http.Client, baseURL string) *NotificationClient {
	return &NotificationClient{logger: logger.Named("notification"), client: client, baseURL: baseURL}
}

// Notify implements pipeline.NotificationSink.
func (c *NotificationClient) Notify(ctx context.Context, decision types.FinalDecision) {
	if c.baseURL == "" {
		return
	}

	body, err := json.Marshal(decision)
	if err != nil {
		c.logger.Warn("marshal notification payload failed", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("build notification request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("notification request failed", zap.String("traceId", decision.TraceID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("notification sink returned non-2xx", zap.String("traceId", decision.TraceID), zap.Int("status", resp.StatusCode))
	}
}
