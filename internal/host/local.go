package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Simplici0/seacost/internal/worker"
)

var errWorkerStopped = errors.New("worker stopped")

// LocalWorker runs calculations on one dedicated goroutine, one at a time.
type LocalWorker struct {
	requests chan localRequest
	done     chan struct{}
	once     sync.Once
}

type localRequest struct {
	form  []byte
	reply chan localReply
}

type localReply struct {
	results []byte
	err     error
}

// NewLocalWorker starts a LocalWorker.
func NewLocalWorker() *LocalWorker {
	w := &LocalWorker{
		requests: make(chan localRequest),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Local is a Factory for LocalWorker.
func Local() (Worker, error) {
	return NewLocalWorker(), nil
}

func (w *LocalWorker) run() {
	for {
		select {
		case req := <-w.requests:
			results, err := safeCalculate(req.form)
			req.reply <- localReply{results: results, err: err}
		case <-w.done:
			return
		}
	}
}

func safeCalculate(form []byte) (results []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results, err = nil, fmt.Errorf("calculation panicked: %v", rec)
		}
	}()
	return worker.Calculate(form)
}

// Calculate implements Worker.
func (w *LocalWorker) Calculate(ctx context.Context, form []byte) ([]byte, error) {
	reply := make(chan localReply, 1)

	select {
	case w.requests <- localRequest{form: form, reply: reply}:
	case <-w.done:
		return nil, errWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.results, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker goroutine once any calculation in progress has finished.
func (w *LocalWorker) Close() error {
	w.once.Do(func() { close(w.done) })
	return nil
}
