// Copyright 2025 Coheq DSP Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package trace provides the public API for recording per-step run
// diagnostics, in memory or offloaded to SQLite as they are produced.
//
// Example:
//
//	store := trace.NewSQLiteStore("runs.db")
//	if err := store.Init(ctx); err != nil { ... }
//	run, _ := store.StartRun(ctx, "cma")
//	run.Record(ctx, trace.Entry{Step: 0, Loss: out.Loss})
package trace

import (
	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/trace"
)

// Entry is one recorded step of a run.
type Entry = trace.Entry

// Recorder consumes entries in step order.
type Recorder = trace.Recorder

// Memory is an in-process Recorder.
type Memory = trace.Memory

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return trace.NewMemory()
}

// CurrentCodecVersion is stamped into every payload envelope.
const CurrentCodecVersion = trace.CurrentCodecVersion

// ErrVersionMismatch is returned when decoding a payload written by an
// incompatible codec version.
var ErrVersionMismatch = trace.ErrVersionMismatch

// EncodeWeights serializes a weight tensor into a payload envelope.
func EncodeWeights(w *cx.Tensor) ([]byte, error) {
	return trace.EncodeWeights(w)
}

// DecodeWeights deserializes a payload envelope into a weight tensor.
func DecodeWeights(data []byte) (*cx.Tensor, error) {
	return trace.DecodeWeights(data)
}

// EncodeVector serializes a complex vector into a payload envelope.
func EncodeVector(v []complex128) ([]byte, error) {
	return trace.EncodeVector(v)
}

// DecodeVector deserializes a payload envelope into a complex vector.
func DecodeVector(data []byte) ([]complex128, error) {
	return trace.DecodeVector(data)
}

// SQLiteStore persists run traces in a SQLite database.
type SQLiteStore = trace.SQLiteStore

// NewSQLiteStore creates a store backed by the database at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return trace.NewSQLiteStore(path)
}

// Run is a Recorder scoped to one stored run.
type Run = trace.Run

// RunInfo describes a stored run.
type RunInfo = trace.RunInfo
