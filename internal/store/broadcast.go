package store

import (
	"sync"
	"sync/atomic"

	"github.com/marketintel/decisiond/pkg/types"
)

// snapshotBroadcaster fans out SnapshotProjection events to subscribers
// (the transport layer's SSE/WebSocket feeds). Each subscriber gets its own
// buffered channel; a slow subscriber drops its oldest buffered event
// rather than blocking the publisher.
type snapshotBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[int64]chan types.SnapshotProjection
	bufferSize  int
	nextID      atomic.Int64
	dropped     atomic.Int64
}

func newSnapshotBroadcaster(bufferSize int) *snapshotBroadcaster {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &snapshotBroadcaster{
		subscribers: make(map[int64]chan types.SnapshotProjection),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *snapshotBroadcaster) Subscribe() (<-chan types.SnapshotProjection, func()) {
	id := b.nextID.Add(1)
	ch := make(chan types.SnapshotProjection, b.bufferSize)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return ch, func() { b.unsubscribe(id) }
}

func (b *snapshotBroadcaster) unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish fans the snapshot out to every subscriber. A subscriber whose
// buffer is full has its single oldest queued event dropped to make room,
// so publishing itself never blocks.
func (b *snapshotBroadcaster) Publish(snapshot types.SnapshotProjection) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
				b.dropped.Add(1)
			default:
			}
			select {
			case ch <- snapshot:
			default:
				b.dropped.Add(1)
			}
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *snapshotBroadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped reports the cumulative number of snapshots dropped across all
// subscribers due to back-pressure.
func (b *snapshotBroadcaster) Dropped() int64 {
	return b.dropped.Load()
}
