package scheduler

import "sync/atomic"

// ReplayState is a process-wide flag: between Start and Finish, any live
// scheduler loops sharing the process suppress their own triggers.
// The `replay` CLI command does not set it; it runs standalone (component L never starts the
// scheduler alongside it), so in practice this stays false for the life of
// a `serve` process; it exists because the loop body's step 2 requires it.
type ReplayState struct {
	running atomic.Bool
}

// NewReplayState returns a ReplayState that is not running.
func NewReplayState() *ReplayState {
	return &ReplayState{}
}

// ReplayRunning implements ReplayGate.
func (r *ReplayState) ReplayRunning() bool {
	return r.running.Load()
}

// Start marks a replay run as in progress.
func (r *ReplayState) Start() {
	r.running.Store(true)
}

// Finish marks a replay run as complete.
func (r *ReplayState) Finish() {
	r.running.Store(false)
}
