package main

import (
	"context"
	"errors"
	"log"

	"github.com/Simplici0/seacost/internal/host"
)

// hostPool hands each request its own Host so no Host ever sees two
// calculations at once.
type hostPool struct {
	hosts chan *host.Host
	size  int
}

func newHostPool(size int, factory host.Factory, opts ...host.Option) *hostPool {
	if size < 1 {
		size = 1
	}
	p := &hostPool{hosts: make(chan *host.Host, size), size: size}
	for i := 0; i < size; i++ {
		p.hosts <- host.New(factory, opts...)
	}
	return p
}

func (p *hostPool) acquire(ctx context.Context) (*host.Host, error) {
	select {
	case h := <-p.hosts:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *hostPool) release(h *host.Host) {
	p.hosts <- h
}

// Close waits for every Host to be released and closes it.
func (p *hostPool) Close() error {
	var errs []error
	for i := 0; i < p.size; i++ {
		h := <-p.hosts
		if err := h.Close(); err != nil {
			log.Printf("close calculation host: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
