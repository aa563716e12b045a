// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker runs jobs on a fixed set of goroutines and hands their
// results back to a single owner goroutine.
package worker

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

type task struct {
	job  func() (interface{}, error)
	done func(interface{}, error)
}

// Completion is a finished job. Run invokes its callback and must be called
// on the goroutine that owns the state the callback touches.
type Completion struct {
	result interface{}
	err    error
	done   func(interface{}, error)
}

func (c Completion) Run() {
	if c.done != nil {
		c.done(c.result, c.err)
	}
}

// Pool is a fixed size goroutine pool. Submit never blocks.
type Pool struct {
	tasks       chan task
	completions chan Completion
	workers     sync.WaitGroup
	overflow    sync.WaitGroup // senders waiting on a full queue
	pending     int64          // submitted but not yet completed (atomic)
}

// New starts a pool. workers <= 0 means runtime.GOMAXPROCS(0).
func New(workers, queue int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queue < workers {
		queue = workers
	}
	p := &Pool{
		tasks:       make(chan task, queue),
		completions: make(chan Completion, queue),
	}
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Submit queues job. done is called with its result when the owner runs the
// Completion. There is no cancellation. Must not be called after Close.
func (p *Pool) Submit(job func() (interface{}, error), done func(interface{}, error)) {
	atomic.AddInt64(&p.pending, 1)
	t := task{job: job, done: done}
	select {
	case p.tasks <- t:
	default:
		// Queue is full, don't block the owner.
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.tasks <- t
		}()
	}
}

// Completions delivers one Completion per submitted job, in completion order.
func (p *Pool) Completions() <-chan Completion {
	return p.completions
}

// Pending is the number of jobs submitted but not yet completed.
func (p *Pool) Pending() int {
	return int(atomic.LoadInt64(&p.pending))
}

// Close stops the workers once queued jobs finish. Completions that nobody
// receives are dropped.
func (p *Pool) Close() {
	go func() {
		for range p.completions {
		}
	}()
	p.overflow.Wait()
	close(p.tasks)
	p.workers.Wait()
	close(p.completions)
}

func (p *Pool) work() {
	defer p.workers.Done()
	for t := range p.tasks {
		result, err := run(t.job)
		atomic.AddInt64(&p.pending, -1)
		p.completions <- Completion{result: result, err: err, done: t.done}
	}
}

func run(job func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker: job panicked: %v", r)
		}
	}()
	return job()
}
