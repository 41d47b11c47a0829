package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SingleLane(t *testing.T) {
	// A single lane falls back to sequential execution.
	cfg := DefaultConfig()

	var counter int64
	For(1, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 1 {
		t.Errorf("Expected 1, got %d", counter)
	}
}

func TestForErr_LowestIndexWins(t *testing.T) {
	cfg := DefaultConfig()
	errA := errors.New("lane 3 failed")
	errB := errors.New("lane 7 failed")

	err := ForErr(10, func(i int) error {
		switch i {
		case 3:
			return errA
		case 7:
			return errB
		default:
			return nil
		}
	}, cfg)

	if !errors.Is(err, errA) {
		t.Errorf("Expected lane 3 error, got %v", err)
	}
}

func TestForErr_NoError(t *testing.T) {
	if err := ForErr(8, func(int) error { return nil }, DefaultConfig()); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 64

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}
