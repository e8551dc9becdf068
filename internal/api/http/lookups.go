package httpapi

import (
	"context"
	"sync"
)

// lookupTracker cancels a client's in-flight lookup when the same client
// starts a new one.
type lookupTracker struct {
	mu      sync.Mutex
	next    uint64
	running map[string]trackedLookup
}

type trackedLookup struct {
	id     uint64
	cancel context.CancelFunc
}

func newLookupTracker() *lookupTracker {
	return &lookupTracker{running: make(map[string]trackedLookup)}
}

// begin derives a cancellable context for clientID, cancelling any lookup
// the client already has running. The returned func must be called when the
// lookup ends. An empty clientID is never tracked.
func (t *lookupTracker) begin(parent context.Context, clientID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	if clientID == "" {
		return ctx, cancel
	}

	t.mu.Lock()
	if prev, ok := t.running[clientID]; ok {
		prev.cancel()
	}
	t.next++
	id := t.next
	t.running[clientID] = trackedLookup{id: id, cancel: cancel}
	t.mu.Unlock()

	return ctx, func() {
		cancel()
		t.mu.Lock()
		if cur, ok := t.running[clientID]; ok && cur.id == id {
			delete(t.running, clientID)
		}
		t.mu.Unlock()
	}
}

func (t *lookupTracker) inFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.running)
}
