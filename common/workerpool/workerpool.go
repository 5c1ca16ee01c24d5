// Package workerpool bounds the number of jobs running at the same time.
package workerpool

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
)

// Pool runs submitted jobs in at most workers*concurrency goroutines
type Pool struct {
	size     int
	wg       sizedwaitgroup.SizedWaitGroup
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New creates a pool. Both knobs must be positive; they multiply to the bound.
func New(workers, concurrency int) (*Pool, error) {
	if workers <= 0 {
		return nil, errors.Errorf("workers must be positive, got %d", workers)
	}
	if concurrency <= 0 {
		return nil, errors.Errorf("concurrency must be positive, got %d", concurrency)
	}
	size := workers * concurrency
	return &Pool{
		size: size,
		wg:   sizedwaitgroup.New(size),
	}, nil
}

// Submit waits for a free slot and runs job in it. It returns ctx.Err()
// without running job when ctx is done before a slot frees up.
func (p *Pool) Submit(ctx context.Context, job func()) error {
	if err := p.wg.AddWithContext(ctx); err != nil {
		return err
	}
	current := p.inFlight.Add(1)
	for {
		peak := p.peak.Load()
		if current <= peak || p.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Add(-1)
		job()
	}()
	return nil
}

// Wait blocks until every submitted job has returned
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size is the maximum number of concurrent jobs
func (p *Pool) Size() int {
	return p.size
}

// InFlight is the number of jobs currently running
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Peak is the highest number of jobs observed running at once
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}
