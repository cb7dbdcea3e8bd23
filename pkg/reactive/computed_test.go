package reactive

import "testing"

func TestComputedEagerAndLazy(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 2)
	computations := 0

	doubled := NewComputed(rt, func() int {
		computations++
		return count.Get() * 2
	})

	if computations != 1 {
		t.Fatalf("computed should evaluate on creation, got %d", computations)
	}

	count.Set(3)
	if computations != 1 {
		t.Errorf("computed should not recompute before read, got %d", computations)
	}

	if doubled.Get() != 6 {
		t.Errorf("expected 6, got %d", doubled.Get())
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestComputedMemoizesBetweenReads(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 1)
	computations := 0

	c := NewComputed(rt, func() int {
		computations++
		return count.Get() + 1
	})

	for i := 0; i < 5; i++ {
		_ = c.Get()
	}
	if computations != 1 {
		t.Errorf("expected 1 computation, got %d", computations)
	}
}

func TestComputedPropagatesToEffects(t *testing.T) {
	rt := New()
	price := NewSignal(rt, 100.0)
	tax := NewComputed(rt, func() float64 { return price.Get() * 0.1 })
	total := NewComputed(rt, func() float64 { return price.Get() + tax.Get() })

	var seen float64
	NewEffect(rt, func() {
		seen = total.Get()
	})

	if seen != 110 {
		t.Fatalf("expected 110, got %v", seen)
	}

	price.Set(200)
	if seen != 220 {
		t.Errorf("expected 220, got %v", seen)
	}
}

func TestComputedDeepDependencyMarksDirty(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 1)
	b := NewComputed(rt, func() int { return a.Get() + 1 })
	c := NewComputed(rt, func() int { return b.Get() + 1 })
	computations := 0
	d := NewComputed(rt, func() int {
		computations++
		return c.Get() + 1
	})

	a.Set(10)
	if computations != 1 {
		t.Errorf("dirty marking should not recompute, got %d", computations)
	}
	if d.Get() != 13 {
		t.Errorf("expected 13, got %d", d.Get())
	}
}

func TestComputedDynamicDependencies(t *testing.T) {
	rt := New()
	useA := NewSignal(rt, true)
	a := NewSignal(rt, "a")
	b := NewSignal(rt, "b")
	computations := 0

	c := NewComputed(rt, func() string {
		computations++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	useA.Set(false)
	if c.Get() != "b" {
		t.Fatalf("expected b, got %s", c.Get())
	}
	before := computations

	a.Set("changed")
	_ = c.Get()
	if computations != before {
		t.Errorf("stale dependency a should not invalidate, computations %d -> %d", before, computations)
	}
}

func TestComputedPeek(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 1)
	c := NewComputed(rt, func() int { return count.Get() * 10 })
	runs := 0

	NewEffect(rt, func() {
		runs++
		_ = c.Peek()
	})

	count.Set(2)
	if runs != 1 {
		t.Errorf("Peek should not subscribe, got %d runs", runs)
	}
	if c.Peek() != 20 {
		t.Errorf("expected 20, got %d", c.Peek())
	}
}
