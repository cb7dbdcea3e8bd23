package reactive

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBatchDeduplicates(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)
	runs := 0

	NewEffect(rt, func() {
		_ = a.Get()
		_ = b.Get()
		runs++
	})

	rt.Batch(func() {
		a.Set(1)
		b.Set(2)
		a.Set(3)
		if runs != 1 {
			t.Errorf("effects should be deferred inside batch, got %d runs", runs)
		}
	})

	if runs != 2 {
		t.Errorf("expected one run after batch, got %d total", runs)
	}
}

func TestBatchNested(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 0)
	runs := 0
	NewEffect(rt, func() {
		_ = a.Get()
		runs++
	})

	rt.Batch(func() {
		rt.Batch(func() { a.Set(1) })
		if runs != 1 {
			t.Errorf("inner batch should not flush, got %d runs", runs)
		}
		a.Set(2)
	})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestUntracked(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 0)
	runs := 0

	NewEffect(rt, func() {
		runs++
		rt.Untracked(func() { _ = a.Get() })
	})

	a.Set(1)
	if runs != 1 {
		t.Errorf("untracked read should not subscribe, got %d runs", runs)
	}
}

func TestMicrotasksFlushInOrder(t *testing.T) {
	rt := New()
	var order []int

	rt.QueueMicrotask(func() {
		order = append(order, 1)
		rt.QueueMicrotask(func() { order = append(order, 3) })
	})
	rt.QueueMicrotask(func() { order = append(order, 2) })

	if rt.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", rt.Pending())
	}
	rt.Flush()

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if rt.Pending() != 0 {
		t.Errorf("queue should be empty, got %d", rt.Pending())
	}
}

func TestMicrotaskPanicIsContained(t *testing.T) {
	rt := New()
	ran := false

	rt.QueueMicrotask(func() { panic("boom") })
	rt.QueueMicrotask(func() { ran = true })
	rt.Flush()

	if !ran {
		t.Error("later microtask should still run")
	}
}

func TestLoopRunsPostedTasks(t *testing.T) {
	rt := New()
	loop := NewLoop(rt, 4)
	count := NewSignal(rt, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	turns := make(chan int, 8)
	loop.OnTurn(func() { turns <- count.Peek() })

	go func() { _ = loop.Run(ctx) }()

	err := loop.Do(ctx, func() error {
		count.Set(1)
		rt.QueueMicrotask(func() { count.Set(2) })
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	select {
	case v := <-turns:
		if v != 2 {
			t.Errorf("turn hook saw %d, want 2 after microtasks", v)
		}
	case <-time.After(time.Second):
		t.Fatal("turn hook did not run")
	}
}

func TestLoopDoReturnsAfterTurnHooks(t *testing.T) {
	rt := New()
	loop := NewLoop(rt, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hooked := 0
	loop.OnTurn(func() { hooked++ })
	go func() { _ = loop.Run(ctx) }()

	if err := loop.Do(ctx, func() error { return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	var seen int
	if err := loop.Do(ctx, func() error { seen = hooked; return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if seen != 1 {
		t.Errorf("second task saw %d hook runs, want 1", seen)
	}

	err := loop.Do(ctx, func() error { panic("boom") })
	if !errors.Is(err, ErrTaskPanicked) {
		t.Errorf("Do after panic = %v, want ErrTaskPanicked", err)
	}
}

func TestLoopPostAfterStop(t *testing.T) {
	loop := NewLoop(New(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := loop.Run(ctx); err == nil {
		t.Fatal("expected context error")
	}
	if err := loop.Post(func() {}); err != ErrLoopStopped {
		t.Errorf("Post after stop = %v, want ErrLoopStopped", err)
	}
}
