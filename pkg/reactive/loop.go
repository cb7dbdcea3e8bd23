package reactive

import (
	"context"
	"fmt"
	"sync"
)

// Loop serializes work from any goroutine onto the single goroutine that
// drives a Runtime. After each task, queued microtasks are flushed and
// turn hooks run.
//
//	loop := reactive.NewLoop(rt, 64)
//	go loop.Run(ctx)
//	loop.Post(func() { count.Set(count.Peek() + 1) })
type Loop struct {
	rt    *Runtime
	tasks chan func()
	done  chan struct{}

	mu     sync.Mutex
	turns  []func()
	closed bool

	// replies are sent after the current turn's hooks. Loop goroutine only.
	replies []func()
}

// NewLoop creates a loop for rt with the given task buffer size.
func NewLoop(rt *Runtime, buffer int) *Loop {
	if buffer < 0 {
		buffer = 0
	}
	return &Loop{
		rt:    orDefault(rt),
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Runtime returns the runtime driven by this loop.
func (l *Loop) Runtime() *Runtime {
	return l.rt
}

// OnTurn registers fn to run on the loop goroutine after every task and
// its microtasks have completed.
func (l *Loop) OnTurn(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, fn)
}

// Post enqueues fn. It blocks while the buffer is full and returns
// ErrLoopStopped once the loop has exited.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Do posts fn and waits until its turn has completed (including the
// microtasks it queued and the turn hooks) or ctx is done.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	err := l.Post(func() {
		err := ErrTaskPanicked
		defer func() {
			l.replies = append(l.replies, func() { result <- err })
		}()
		err = fn()
	})
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Run executes posted tasks until ctx is cancelled. It must be called at
// most once.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		if !l.closed {
			l.closed = true
			close(l.done)
		}
		l.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-l.tasks:
			l.turn(task)
		}
	}
}

func (l *Loop) turn(task func()) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				l.rt.logger.Error("reactive: loop task panicked", "panic", fmt.Sprint(r))
			}
		}()
		task()
	}()
	l.rt.Flush()

	l.mu.Lock()
	hooks := append([]func(){}, l.turns...)
	l.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}

	replies := l.replies
	l.replies = nil
	for _, reply := range replies {
		reply()
	}
}
