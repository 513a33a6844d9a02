package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/internal/classify"
	"github.com/marketintel/decisiond/pkg/types"
)

type countingPipeline struct {
	calls atomic.Int32
	seen  chan types.Trigger
}

func newCountingPipeline() *countingPipeline {
	return &countingPipeline{seen: make(chan types.Trigger, 16)}
}

func (p *countingPipeline) Orchestrate(ctx context.Context, trigger types.Trigger, replayMode bool) (types.FinalDecision, error) {
	p.calls.Add(1)
	p.seen <- trigger
	return types.FinalDecision{Symbol: trigger.Symbol, TraceID: trigger.TraceID}, nil
}

type fakeRegimeReader struct {
	regime types.MarketRegime
}

func (f fakeRegimeReader) GetLatestRegime(ctx context.Context, symbol string) (types.MarketRegime, error) {
	return f.regime, nil
}

func TestScheduler_EmitsTriggersAtShortTempo(t *testing.T) {
	pipeline := newCountingPipeline()

	s := New(Config{
		Logger:            zap.NewNop(),
		Pipeline:          pipeline,
		RegimeReader:      fakeRegimeReader{regime: types.RegimeVolatile},
		SessionClassifier: classify.NewTradingSessionClassifier("UTC"),
		Tempo: types.TempoConfig{
			OffHoursInterval:            20 * time.Millisecond,
			MiddayConsolidationInterval: 20 * time.Millisecond,
			VolatileInterval:            20 * time.Millisecond,
			TrendingInterval:            time.Hour,
			RangingInterval:             time.Hour,
			CalmInterval:                time.Hour,
			UnknownInterval:             20 * time.Millisecond,
		},
	})

	s.Start([]string{"AAPL"})
	defer s.Stop()

	var first, second types.Trigger
	select {
	case first = <-pipeline.seen:
	case <-time.After(time.Second):
		t.Fatal("expected a first trigger")
	}
	select {
	case second = <-pipeline.seen:
	case <-time.After(time.Second):
		t.Fatal("expected a second trigger emitted at the short tempo")
	}

	assert.Equal(t, "AAPL", first.Symbol)
	assert.NotEmpty(t, first.TraceID)
	assert.NotEqual(t, first.TraceID, second.TraceID)
}

func TestScheduler_SkipsTriggersWhileReplayRunning(t *testing.T) {
	pipeline := newCountingPipeline()
	replay := NewReplayState()
	replay.Start()

	s := New(Config{
		Logger:            zap.NewNop(),
		Pipeline:          pipeline,
		RegimeReader:      fakeRegimeReader{regime: types.RegimeVolatile},
		Replay:            replay,
		SessionClassifier: classify.NewTradingSessionClassifier("UTC"),
		Tempo: types.TempoConfig{
			OffHoursInterval:            time.Hour,
			MiddayConsolidationInterval: time.Hour,
			VolatileInterval:            10 * time.Millisecond,
			TrendingInterval:            time.Hour,
			RangingInterval:             time.Hour,
			CalmInterval:                time.Hour,
			UnknownInterval:             10 * time.Millisecond,
		},
	})

	s.Start([]string{"AAPL"})
	defer s.Stop()

	select {
	case <-pipeline.seen:
		t.Fatal("expected no trigger while replay is running")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, int32(0), pipeline.calls.Load())
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	pipeline := newCountingPipeline()
	s := New(Config{
		Logger:            zap.NewNop(),
		Pipeline:          pipeline,
		RegimeReader:      fakeRegimeReader{regime: types.RegimeUnknown},
		SessionClassifier: classify.NewTradingSessionClassifier("UTC"),
		Tempo: types.TempoConfig{
			OffHoursInterval: time.Hour, MiddayConsolidationInterval: time.Hour,
			VolatileInterval: time.Hour, TrendingInterval: time.Hour,
			RangingInterval: time.Hour, CalmInterval: time.Hour,
			UnknownInterval: time.Hour,
		},
	})

	s.Start([]string{"AAPL", "MSFT"})
	s.Start([]string{"GOOG"})
	require.True(t, s.running)
	s.Stop()
}
