package scheduler

import (
	"context"
	"time"

	"github.com/marketintel/decisiond/pkg/types"
)

// PipelineRunner is the subset of the orchestration pipeline the scheduler
// depends on. Implemented by internal/pipeline.Orchestrator.
type PipelineRunner interface {
	Orchestrate(ctx context.Context, trigger types.Trigger, replayMode bool) (types.FinalDecision, error)
}

// RegimeReader reads the last persisted regime for a symbol, used to drive
// the tempo policy between cycles. Implemented by internal/store.Store.
type RegimeReader interface {
	GetLatestRegime(ctx context.Context, symbol string) (types.MarketRegime, error)
}

// ReplayGate reports whether a process-wide historical replay run is
// currently in progress. While true, scheduler loops skip emitting new
// triggers (but keep recomputing their interval) so a `decisiond replay`
// run never competes with live scheduling for the same symbols.
type ReplayGate interface {
	ReplayRunning() bool
}

// IntervalRecorder reports the scheduler's current per-symbol tempo.
// Optional: a nil value in Config disables recording.
type IntervalRecorder interface {
	SetSchedulerInterval(symbol string, d time.Duration)
}
