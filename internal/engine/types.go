package engine

import (
	"sync"
	"time"
)

// State represents lifecycle state of the engine/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDraining State = "draining"
	StateError    State = "error"
)

// Snapshot is a read-only projection of the engine state.
type Snapshot struct {
	State State
	Err   string
}

// Instance represents a live model session (one per model id).
type Instance struct {
	ID       string
	State    State
	LastUsed time.Time
	EstMemMB int
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	// Session backing this instance; loaded once at ensure time and shared
	// read-only by all subsequent generations. loadMu serializes the load so
	// concurrent first requests cannot start two sessions; session itself is
	// read and written under the engine mutex.
	loadMu  sync.Mutex
	session InferSession
}
