// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package runner executes one database operation on a background goroutine
// while the caller keeps rendering. Progress messages arrive on Events in the
// order the operation emits them, followed by exactly one terminal event,
// after which the channel is closed.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	apperrors "srodbpatch/cli/internal/errors"
	"srodbpatch/cli/internal/sqlexec"
)

// ErrAlreadyStarted is returned by Start on a runner that has already run.
var ErrAlreadyStarted = errors.New("runner already started")

// State is the lifecycle position of a Runner.
type State int

const (
	Idle State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Operation is the unit of work a Runner executes.
type Operation func(ctx context.Context, progress sqlexec.Progress) sqlexec.Result

const eventBuffer = 64

// Runner runs a single Operation. It cannot be restarted.
//
// The worker never blocks on delivery: events are queued and a forwarding
// goroutine feeds them to Events, so Wait returns even when nobody reads.
type Runner struct {
	mu      sync.Mutex
	state   State
	result  sqlexec.Result
	pending []Event
	wake    chan struct{}
	events  chan Event
	done    chan struct{}
	logger  *slog.Logger
}

// New creates an idle Runner. A nil logger discards records.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		wake:   make(chan struct{}, 1),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches op on its own goroutine.
func (r *Runner) Start(ctx context.Context, op Operation) error {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.state = Running
	r.mu.Unlock()

	go r.forward()
	go r.run(ctx, op)
	return nil
}

// push queues ev for delivery.
func (r *Runner) push(ev Event) {
	r.mu.Lock()
	r.pending = append(r.pending, ev)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// forward moves queued events to the channel in order and closes it after
// the terminal event.
func (r *Runner) forward() {
	defer close(r.events)
	for range r.wake {
		r.mu.Lock()
		batch := r.pending
		r.pending = nil
		r.mu.Unlock()

		for _, ev := range batch {
			r.events <- ev
			if ev.Terminal() {
				return
			}
		}
	}
}

func (r *Runner) run(ctx context.Context, op Operation) {
	res := r.invoke(ctx, op)

	ev := Event{Type: EventSucceeded, Message: res.Message, Result: &res}
	final := Succeeded
	if !res.Success {
		ev.Type = EventFailed
		final = Failed
	}

	r.mu.Lock()
	r.result = res
	r.state = final
	r.mu.Unlock()
	close(r.done)

	r.logger.Debug("operation finished", "state", final.String())
	r.push(ev)
}

// invoke calls op and turns a panic into a failed result.
func (r *Runner) invoke(ctx context.Context, op Operation) (res sqlexec.Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("operation panicked", "panic", p)
			err := apperrors.Trace(fmt.Errorf("operation panicked: %v", p))
			res = sqlexec.Result{Message: "Error: " + err.Error(), Err: err}
		}
	}()
	return op(ctx, func(msg string) {
		r.push(Event{Type: EventProgress, Message: msg})
	})
}

// Events returns the event stream. It is closed after the terminal event.
func (r *Runner) Events() <-chan Event { return r.events }

// Wait blocks until the operation finished and returns its result. It does
// not depend on Events being read.
func (r *Runner) Wait() sqlexec.Result {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
