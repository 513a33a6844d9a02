package transport

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// handleSSEStream streams every snapshot projection as it's produced:
// GET /decisions/stream. One subscription per connection, torn down when
// the client disconnects or the store closes the feed.
func (s *Server) handleSSEStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, unsubscribe := s.store.SubscribeSnapshots()
	defer unsubscribe()

	log := s.logger.With(zap.String("remote", r.RemoteAddr))
	log.Debug("sse client connected")

	for {
		select {
		case snapshot, open := <-updates:
			if !open {
				return
			}
			payload, err := jsonify(snapshot)
			if err != nil {
				log.Warn("marshal snapshot for sse failed", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: decision\ndata: %s\n\n", payload); err != nil {
				log.Debug("sse write failed, client likely gone", zap.Error(err))
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			log.Debug("sse client disconnected")
			return
		}
	}
}
