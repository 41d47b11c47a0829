// Package trace records per-step diagnostics of adaptive-filter runs: the
// scalar loss plus an optional encoded payload (weights, phase estimates).
// Entries can be kept in memory or offloaded to SQLite as they are
// produced, keeping long runs out of the caller's heap.
package trace

import (
	"context"
	"sync"
)

// Entry is one recorded step of a run.
type Entry struct {
	Step    int
	Loss    float64
	Payload []byte // optional codec envelope
}

// Recorder consumes entries in step order.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Memory is an in-process Recorder, safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends an entry.
func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Entries returns a copy of everything recorded so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
