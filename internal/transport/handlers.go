package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/internal/classify"
	"github.com/marketintel/decisiond/pkg/types"
)

func jsonify(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.logger.Warn("encode response failed", zap.Error(err))
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

type orchestrateRequest struct {
	Symbol      string    `json:"symbol"`
	TraceID     string    `json:"traceId"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

// handleOrchestrate is the manual trigger entry point: POST /orchestrate.
// The X-Replay-Mode header selects the consensus-only, strategist-skipping
// path the scheduler never takes on its own.
func (s *Server) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	var req orchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if req.TraceID == "" {
		req.TraceID = uuid.NewString()
	}
	if req.TriggeredAt.IsZero() {
		req.TriggeredAt = time.Now()
	}

	decision, err := s.pipeline.Orchestrate(r.Context(), types.Trigger{
		Symbol: req.Symbol, TraceID: req.TraceID, TriggeredAt: req.TriggeredAt,
	}, s.isReplayMode(r))
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "upstream_unavailable", "trace_id": req.TraceID,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, decision)
}

type saveDecisionRequest struct {
	Decision     types.FinalDecision `json:"decision"`
	DecisionMode types.DecisionMode  `json:"decisionMode"`
}

// handleSaveDecision lets an external caller persist a decision it produced
// out-of-band: POST /decisions.
func (s *Server) handleSaveDecision(w http.ResponseWriter, r *http.Request) {
	var req saveDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid decision payload")
		return
	}
	if req.DecisionMode == "" {
		req.DecisionMode = types.ModeLive
	}

	record, err := s.store.Save(r.Context(), req.Decision, req.DecisionMode)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, record)
}

// handleSnapshot serves the latest decision per symbol: GET /decisions/snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.store.FindLatestPerSymbol(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snapshots)
}

// handleLatestRegime resolves the most recently observed regime for a
// symbol: GET /decisions/latest-regime?symbol=.
func (s *Server) handleLatestRegime(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}
	regime, err := s.store.GetLatestRegime(r.Context(), symbol)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "marketRegime": string(regime)})
}

const defaultRecentLimit = 10

// handleRecentDecisions: GET /decisions/recent/{symbol}?limit=.
func (s *Server) handleRecentDecisions(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	entries, err := s.store.GetRecentDecisions(r.Context(), symbol, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

const defaultUnresolvedWindowMins = 60

// handleUnresolvedDecisions: GET /decisions/unresolved/{symbol}?sinceMins=.
func (s *Server) handleUnresolvedDecisions(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	sinceMins := defaultUnresolvedWindowMins
	if raw := r.URL.Query().Get("sinceMins"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			sinceMins = parsed
		}
	}
	records, err := s.store.GetUnresolvedDecisions(r.Context(), symbol, sinceMins)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

type recordOutcomeRequest struct {
	OutcomePercent float64 `json:"outcomePercent"`
	HoldMinutes    int     `json:"holdMinutes"`
}

// handleRecordOutcome: POST /decisions/outcome/{traceId}.
func (s *Server) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	traceID := mux.Vars(r)["traceId"]
	var req recordOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid outcome payload")
		return
	}
	if err := s.store.RecordOutcome(r.Context(), traceID, req.OutcomePercent, req.HoldMinutes); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"traceId": traceID, "status": "recorded"})
}

// handleResolveOutcomes: POST /decisions/resolve-outcomes/{symbol}?currentPrice=.
func (s *Server) handleResolveOutcomes(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	raw := r.URL.Query().Get("currentPrice")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "currentPrice query parameter must be numeric")
		return
	}
	if err := s.store.ResolveOutcomes(r.Context(), symbol, price); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "status": "resolved"})
}

// handleDecisionMetrics: GET /decisions/metrics/{symbol}.
func (s *Server) handleDecisionMetrics(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	metrics, err := s.store.GetDecisionMetrics(r.Context(), symbol)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, metrics)
}

// handleAgentPerformance: GET /agents/performance.
func (s *Server) handleAgentPerformance(w http.ResponseWriter, r *http.Request) {
	performance, err := s.store.GetAgentPerformance(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, performance)
}

// handleAgentFeedback: GET /agents/feedback.
func (s *Server) handleAgentFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := s.store.GetAgentFeedback(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, feedback)
}

// handleFeedbackLoopStatus summarizes whether each agent's feedback is still
// running on defaults or has graduated to real outcome data: GET /feedback-loop/status.
func (s *Server) handleFeedbackLoopStatus(w http.ResponseWriter, r *http.Request) {
	feedback, err := s.store.GetAgentFeedback(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := make(map[string]map[string]any, len(feedback))
	for agent, f := range feedback {
		status[agent] = map[string]any{
			"sampleSize":   f.SampleSize,
			"usedFallback": f.UsedFallback,
			"winRate":      f.WinRate,
		}
	}
	s.writeJSON(w, http.StatusOK, status)
}

const momentumWindow = 8

// handleMarketState derives the four-state momentum classification from the
// symbol's recent decision window: GET /market-state/{symbol}.
func (s *Server) handleMarketState(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	entries, err := s.store.GetRecentDecisions(r.Context(), symbol, momentumWindow)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	samples := make([]classify.DecisionSample, len(entries))
	for i, e := range entries {
		samples[i] = classify.DecisionSample{
			Signal:         e.FinalSignal,
			Confidence:     e.Confidence,
			DivergenceFlag: e.DivergenceFlag,
			Regime:         e.Regime,
		}
	}
	state := classify.MomentumStateCalculator{}.Calculate(samples)
	s.writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "marketState": state, "sampleCount": len(samples)})
}

// handleHealthz: GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if err := s.health.HealthCheck(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
