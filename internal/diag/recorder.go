package diag

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBuffer       = 256
	defaultWriteTimeout = 2 * time.Second
)

// Recorder hands entries to its writers on a background goroutine.
type Recorder struct {
	writers      []Writer
	metrics      *Metrics
	writeTimeout time.Duration
	buffer       int

	mu      sync.RWMutex
	closed  bool
	entries chan Entry
	done    chan struct{}
	dropped atomic.Uint64
}

// RecorderOption configures optional Recorder parameters.
type RecorderOption func(*Recorder)

// WithBuffer sets how many entries may wait for the writers.
func WithBuffer(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.buffer = n
		}
	}
}

// WithMetrics counts recorded and dropped entries.
func WithMetrics(m *Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithWriteTimeout bounds each writer call.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// NewRecorder starts a Recorder fanning entries out to writers in order.
func NewRecorder(writers []Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		writers:      writers,
		writeTimeout: defaultWriteTimeout,
		buffer:       defaultBuffer,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.entries = make(chan Entry, r.buffer)

	go r.run()
	return r
}

// Record enqueues e without blocking. It reports false when the entry was
// dropped.
func (r *Recorder) Record(e Entry) bool {
	r.metrics.observe(e)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.markDropped()
		return false
	}

	select {
	case r.entries <- e:
		return true
	default:
		r.markDropped()
		return false
	}
}

// Dropped returns how many entries were discarded.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close stops accepting entries and waits for queued ones to be written or
// for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("diag.Recorder.Close: %w", ctx.Err())
	}
}

func (r *Recorder) markDropped() {
	r.dropped.Add(1)
	r.metrics.drop()
}

func (r *Recorder) run() {
	defer close(r.done)

	for e := range r.entries {
		for _, w := range r.writers {
			r.write(w, e)
		}
	}
}

func (r *Recorder) write(w Writer, e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := w.Write(ctx, e); err != nil {
		log.Warn().Err(err).Str("entry_id", e.ID).Msg("diagnostic writer failed")
	}
}
