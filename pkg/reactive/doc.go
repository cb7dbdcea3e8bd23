// Package reactive provides the fine-grained reactive core used by Lumen.
//
// Dependencies are tracked automatically at runtime: reading a signal while
// an effect (or computed) is running subscribes that effect to the signal.
// Writes propagate synchronously. By the time Set returns, every effect that
// read the signal during its most recent run has run again.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	rt := reactive.New()
//	count := reactive.NewSignal(rt, 0)
//	count.Get()   // tracked read
//	count.Set(5)  // notifies subscribers before returning
//	count.Update(func(n int) int { return n + 1 })
//
// Computed[T] is a lazily refreshed derived value:
//
//	doubled := reactive.NewComputed(rt, func() int { return count.Get() * 2 })
//
// Effect re-runs whenever something it read last time changes:
//
//	e := reactive.NewEffect(rt, func() {
//	    fmt.Println("count is", count.Get())
//	})
//	defer e.Destroy()
//
// # Runtime
//
// All tracking state (the current-effect slot, batch depth and the microtask
// queue) lives in a Runtime rather than in package globals, so independent
// reactive graphs can coexist. A Runtime is single-threaded, like a browser
// event loop; use Loop to reach it from other goroutines. Signals only track
// effects of the runtime they were created on: reading a signal of another
// runtime inside an effect is a plain, untracked read.
package reactive
