// Package scheduler runs one independent per-symbol loop (component F) that
// emits triggers into the orchestration pipeline at an interval derived from
// the last observed market regime and the current trading session.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/internal/classify"
	"github.com/marketintel/decisiond/pkg/types"
)

const defaultDispatchTimeout = 2 * time.Minute

// Scheduler owns no shared mutable state across symbol loops beyond the
// running flag and stop channel; each loop owns its own timer and trace
// generation.
type Scheduler struct {
	logger *zap.Logger

	pipeline     PipelineRunner
	regimeReader RegimeReader
	replay       ReplayGate
	intervals    IntervalRecorder

	sessionClassifier classify.TradingSessionClassifier
	tempo             types.TempoConfig
	dispatchTimeout   time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Config bundles a Scheduler's collaborators and tunables.
type Config struct {
	Logger            *zap.Logger
	Pipeline          PipelineRunner
	RegimeReader      RegimeReader
	Replay            ReplayGate
	Intervals         IntervalRecorder
	SessionClassifier classify.TradingSessionClassifier
	Tempo             types.TempoConfig
	DispatchTimeout   time.Duration
}

type noopIntervals struct{}

func (noopIntervals) SetSchedulerInterval(string, time.Duration) {}

// New constructs a Scheduler from its collaborators. Replay defaults to a
// fresh, never-running ReplayState when unset.
func New(cfg Config) *Scheduler {
	tempo := cfg.Tempo
	if tempo == (types.TempoConfig{}) {
		tempo = types.DefaultTempoConfig()
	}
	dispatchTimeout := cfg.DispatchTimeout
	if dispatchTimeout <= 0 {
		dispatchTimeout = defaultDispatchTimeout
	}
	replay := cfg.Replay
	if replay == nil {
		replay = NewReplayState()
	}
	intervals := cfg.Intervals
	if intervals == nil {
		intervals = noopIntervals{}
	}
	return &Scheduler{
		logger:            cfg.Logger.Named("scheduler"),
		pipeline:          cfg.Pipeline,
		regimeReader:      cfg.RegimeReader,
		replay:            replay,
		intervals:         intervals,
		sessionClassifier: cfg.SessionClassifier,
		tempo:             tempo,
		dispatchTimeout:   dispatchTimeout,
	}
}

// Start spawns one loop per watched symbol. Idempotent: a call while already
// running is ignored.
func (s *Scheduler) Start(symbols []string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	for _, symbol := range symbols {
		s.wg.Add(1)
		go s.runLoop(symbol)
	}
	s.logger.Info("scheduler started", zap.Int("symbolCount", len(symbols)))
}

// Stop signals all loops to terminate and waits for each to release its
// timer before returning.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runLoop(symbol string) {
	defer s.wg.Done()
	log := s.logger.With(zap.String("symbol", symbol))

	timer := time.NewTimer(s.tempo.UnknownInterval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
		}

		if s.replay.ReplayRunning() {
			log.Debug("skipping trigger, replay in progress")
		} else {
			trigger := types.Trigger{
				Symbol:      symbol,
				TriggeredAt: time.Now(),
				TraceID:     uuid.NewString(),
			}
			go s.dispatch(log, trigger)
		}

		regime, err := s.regimeReader.GetLatestRegime(context.Background(), symbol)
		if err != nil {
			log.Warn("fetch latest regime failed, using UNKNOWN", zap.Error(err))
			regime = types.RegimeUnknown
		}
		session := s.sessionClassifier.Classify(time.Now())
		next := nextInterval(s.tempo, regime, session)
		s.intervals.SetSchedulerInterval(symbol, next)
		timer.Reset(next)
	}
}

// dispatch submits one trigger to the pipeline without the loop awaiting
// completion, on its own bounded context so a stuck pipeline invocation
// never leaks past dispatchTimeout.
func (s *Scheduler) dispatch(log *zap.Logger, trigger types.Trigger) {
	ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
	defer cancel()

	if _, err := s.pipeline.Orchestrate(ctx, trigger, false); err != nil {
		log.Warn("pipeline invocation failed", zap.String("traceId", trigger.TraceID), zap.Error(err))
	}
}
