package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/Simplici0/seacost/internal/worker"
)

const processStopTimeout = 2 * time.Second

// ProcessWorker forwards calculations to a calcworker subprocess over its
// stdin/stdout using the internal/worker protocol. Calls are serialized.
type ProcessWorker struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu     sync.Mutex
	nextID uint64

	responses chan worker.Response
	exited    chan struct{}
	exitErr   error
	closeOnce sync.Once
}

// ProcessFactory returns a Factory that starts the worker binary at path.
func ProcessFactory(path string, args ...string) Factory {
	return func() (Worker, error) {
		return NewProcessWorker(exec.Command(path, args...))
	}
}

// NewProcessWorker starts cmd and speaks the worker protocol with it.
// cmd must not have Stdin or Stdout set.
func NewProcessWorker(cmd *exec.Cmd) (*ProcessWorker, error) {
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker process: %w", err)
	}

	p := &ProcessWorker{
		cmd:       cmd,
		stdin:     stdin,
		responses: make(chan worker.Response, 1),
		exited:    make(chan struct{}),
	}
	go p.readLoop(stdout)
	return p, nil
}

func (p *ProcessWorker) readLoop(stdout io.Reader) {
	sc := worker.NewScanner(stdout)
	for sc.Scan() {
		var resp worker.Response
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			continue
		}
		p.responses <- resp
	}
	// Wait only after stdout has been drained.
	p.exitErr = p.cmd.Wait()
	close(p.exited)
}

// Calculate implements Worker.
func (p *ProcessWorker) Calculate(ctx context.Context, form []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.exited:
		return nil, p.exitError()
	default:
	}

	p.nextID++
	id := p.nextID
	line, err := json.Marshal(worker.Request{ID: id, Form: form})
	if err != nil {
		return nil, fmt.Errorf("encode worker request: %w", err)
	}
	if _, err := p.stdin.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("write worker request: %w", err)
	}

	for {
		select {
		case resp := <-p.responses:
			if resp.ID != id {
				// Left over from a call that stopped waiting.
				continue
			}
			if resp.Error != "" {
				return nil, fmt.Errorf("worker process: %s", resp.Error)
			}
			return resp.Results, nil
		case <-p.exited:
			return nil, p.exitError()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *ProcessWorker) exitError() error {
	if p.exitErr != nil {
		return fmt.Errorf("worker process exited: %w", p.exitErr)
	}
	return errors.New("worker process exited")
}

// Close ends the subprocess by closing its stdin, killing it if it does not
// exit promptly.
func (p *ProcessWorker) Close() error {
	var err error
	p.closeOnce.Do(func() {
		_ = p.stdin.Close()

		timer := time.NewTimer(processStopTimeout)
		defer timer.Stop()
	wait:
		for {
			select {
			case <-p.exited:
				break wait
			case <-p.responses:
				// Unclaimed responses would keep readLoop from reaching Wait.
			case <-timer.C:
				_ = p.cmd.Process.Kill()
			}
		}

		var exitErr *exec.ExitError
		if p.exitErr != nil && !errors.As(p.exitErr, &exitErr) {
			err = p.exitErr
		}
	})
	return err
}
