// Package host runs the cost engine either inline or on a background worker.
//
// A Host acquires its worker once, at construction. If that fails the Host
// calculates inline for the rest of its life. When a worker call fails the Host
// recalculates inline for that call only, so callers always get a result.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Simplici0/seacost/internal/calc"
)

var (
	// ErrClosed is returned by Calculate after Close.
	ErrClosed = errors.New("calculation host is closed")
	// ErrSuperseded is returned to a call whose result arrived after a newer call started.
	ErrSuperseded = errors.New("calculation superseded by a newer call")
)

// Worker runs serialized calculations away from the caller's goroutine.
// form is a JSON-encoded calc.FormData and the result a JSON-encoded calc.Results.
type Worker interface {
	Calculate(ctx context.Context, form []byte) ([]byte, error)
	Close() error
}

// Factory builds the Worker for a Host.
type Factory func() (Worker, error)

// Option configures a Host.
type Option func(*Host)

// WithTimeout bounds how long a worker call may take before the Host
// recalculates inline. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) { h.timeout = d }
}

// WithLogger sets the logger used for fallback messages.
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// Host executes calculations for a single caller. It supports one calculation
// in flight at a time; see Calculate.
type Host struct {
	worker  Worker
	timeout time.Duration
	logger  *log.Logger

	mu     sync.Mutex
	closed bool
	latest uint64
}

// New returns a Host using the worker built by factory. A nil factory, an
// error or a panic from it leaves the Host in inline mode.
func New(factory Factory, opts ...Option) *Host {
	h := &Host{logger: log.Default()}
	for _, opt := range opts {
		opt(h)
	}
	if factory == nil {
		return h
	}

	w, err := acquire(factory)
	if err != nil {
		h.logger.Printf("calc host: worker unavailable, calculating inline: %v", err)
		return h
	}
	h.worker = w
	return h
}

func acquire(factory Factory) (w Worker, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			w, err = nil, fmt.Errorf("worker factory panicked: %v", rec)
		}
	}()

	w, err = factory()
	if err == nil && w == nil {
		err = errors.New("worker factory returned no worker")
	}
	return w, err
}

// Inline reports whether the Host calculates on the caller's goroutine.
func (h *Host) Inline() bool {
	return h.worker == nil
}

// Calculate runs the engine for form.
//
// Worker failures and timeouts fall back to an inline calculation and are only
// logged. If another Calculate starts while this one waits on the worker, this
// call returns ErrSuperseded once its result arrives; the worker computation
// itself is never aborted. Cancelling ctx stops waiting and returns ctx.Err().
func (h *Host) Calculate(ctx context.Context, form calc.FormData) (calc.Results, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return calc.Results{}, ErrClosed
	}
	h.latest++
	gen := h.latest
	h.mu.Unlock()

	if h.worker == nil {
		return calc.Calculate(form), nil
	}

	results, err := h.dispatch(ctx, form)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return calc.Results{}, ctxErr
		}
		h.logger.Printf("calc host: worker call failed, calculating inline: %v", err)
		results = calc.Calculate(form)
	}

	h.mu.Lock()
	stale := h.latest != gen
	h.mu.Unlock()
	if stale {
		return calc.Results{}, ErrSuperseded
	}
	return results, nil
}

func (h *Host) dispatch(ctx context.Context, form calc.FormData) (calc.Results, error) {
	payload, err := json.Marshal(form)
	if err != nil {
		return calc.Results{}, fmt.Errorf("encode form: %w", err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out, err := h.worker.Calculate(ctx, payload)
	if err != nil {
		return calc.Results{}, err
	}

	var results calc.Results
	if err := json.Unmarshal(out, &results); err != nil {
		return calc.Results{}, fmt.Errorf("decode worker results: %w", err)
	}
	return results, nil
}

// Close releases the worker. Calculate returns ErrClosed afterwards.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	if h.worker == nil {
		return nil
	}
	if err := h.worker.Close(); err != nil {
		return fmt.Errorf("close worker: %w", err)
	}
	return nil
}
