package reactive

import "testing"

func TestEffectRunsOnCreate(t *testing.T) {
	rt := New()
	ran := false

	NewEffect(rt, func() { ran = true })

	if !ran {
		t.Error("effect should run immediately on creation")
	}
}

func TestEffectRerunsExactlyOncePerSet(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 0)
	runs := 0

	NewEffect(rt, func() {
		_ = count.Get()
		_ = count.Get()
		runs++
	})

	count.Set(1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestEffectDynamicTracking(t *testing.T) {
	rt := New()
	flag := NewSignal(rt, true)
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)
	runs := 0

	NewEffect(rt, func() {
		runs++
		if flag.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
	})

	flag.Set(false)
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}

	a.Set(1)
	if runs != 2 {
		t.Errorf("a is no longer read; expected 2 runs, got %d", runs)
	}

	b.Set(1)
	if runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
}

func TestEffectDestroyStopsRuns(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 0)
	runs := 0

	e := NewEffect(rt, func() {
		_ = count.Get()
		runs++
	})
	e.Destroy()

	for i := 1; i <= 3; i++ {
		count.Set(i)
	}
	if runs != 1 {
		t.Errorf("destroyed effect should not run, got %d runs", runs)
	}
	if !e.Destroyed() {
		t.Error("expected Destroyed() to be true")
	}
}

func TestEffectDestroyPrunesSubscriber(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 0)

	e := NewEffect(rt, func() { _ = count.Get() })
	e.Destroy()
	if n := count.base.subscriberCount(); n != 1 {
		t.Fatalf("destroy should not unsubscribe eagerly, got %d subscribers", n)
	}

	count.Set(1)
	if n := count.base.subscriberCount(); n != 0 {
		t.Errorf("inert subscriber should be pruned on notify, got %d", n)
	}
}

func TestEffectNestingRestoresCurrent(t *testing.T) {
	rt := New()
	outer := NewSignal(rt, 0)
	inner := NewSignal(rt, 0)
	outerRuns, innerRuns := 0, 0
	var child *Effect

	NewEffect(rt, func() {
		outerRuns++
		child.Destroy()
		child = NewEffect(rt, func() {
			innerRuns++
			_ = inner.Get()
		})
		_ = outer.Get()
	})

	inner.Set(1)
	if outerRuns != 1 || innerRuns != 2 {
		t.Errorf("inner change: outer=%d inner=%d, want 1 and 2", outerRuns, innerRuns)
	}

	outer.Set(1)
	if outerRuns != 2 || innerRuns != 3 {
		t.Errorf("outer change: outer=%d inner=%d, want 2 and 3", outerRuns, innerRuns)
	}
	if rt.Tracking() {
		t.Error("no effect should be current after runs complete")
	}
}

func TestEffectCreatedDuringNotificationNotReentered(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 0)
	lateRuns := 0
	created := false

	NewEffect(rt, func() {
		if count.Get() == 1 && !created {
			created = true
			NewEffect(rt, func() {
				_ = count.Get()
				lateRuns++
			})
		}
	})

	count.Set(1)
	if lateRuns != 1 {
		t.Errorf("late effect should run once on creation only, got %d", lateRuns)
	}
}

func TestEffectActiveCount(t *testing.T) {
	rt := New()
	e1 := NewEffect(rt, func() {})
	e2 := NewEffect(rt, func() {}, ManualCleanup(), EffectName("render"))

	if rt.ActiveEffects() != 2 {
		t.Fatalf("expected 2 active effects, got %d", rt.ActiveEffects())
	}
	if !e2.Manual() || e2.Name() != "render" {
		t.Error("options were not applied")
	}

	e1.Destroy()
	e1.Destroy()
	e2.Destroy()
	if rt.ActiveEffects() != 0 {
		t.Errorf("expected 0 active effects, got %d", rt.ActiveEffects())
	}
}

type countingObserver struct {
	created, runs, destroyed int
}

func (o *countingObserver) EffectCreated()   { o.created++ }
func (o *countingObserver) EffectRun()       { o.runs++ }
func (o *countingObserver) EffectDestroyed() { o.destroyed++ }

func TestEffectObserver(t *testing.T) {
	obs := &countingObserver{}
	rt := New(WithObserver(obs))
	s := NewSignal(rt, 0)

	e := NewEffect(rt, func() { _ = s.Get() })
	s.Set(1)
	e.Destroy()

	if obs.created != 1 || obs.runs != 2 || obs.destroyed != 1 {
		t.Errorf("observer saw %+v", *obs)
	}
}
