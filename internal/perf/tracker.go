// Package perf provides optional scoped timing for the tick orchestrator
// (spec.md §2, §9 "Performance tracker global"). The design notes flag
// the source's process-wide nested timing stack as a bug pattern to
// avoid: this tracker is a value the caller owns and threads explicitly,
// never a package-level global, so nothing about it is shared across
// goroutines or ticks.
package perf

import "time"

// Tracker accumulates named scope durations for a single tick. Zero
// value is ready to use.
type Tracker struct {
	scopes map[string]time.Duration
	stack  []scopeStart
}

type scopeStart struct {
	name  string
	start time.Time
}

// Start begins timing a named scope; call the returned func to stop it.
// Scopes may nest; each Start/stop pair accumulates into its own name
// regardless of nesting depth.
func (t *Tracker) Start(name string) func() {
	if t.scopes == nil {
		t.scopes = make(map[string]time.Duration)
	}
	begin := time.Now()
	return func() {
		t.scopes[name] += time.Since(begin)
	}
}

// Duration returns the accumulated time spent in the named scope this tick.
func (t *Tracker) Duration(name string) time.Duration {
	return t.scopes[name]
}

// Reset clears all accumulated scopes, called once per tick by the
// orchestrator at the end of the tick, after it has read that tick's
// durations.
func (t *Tracker) Reset() {
	for k := range t.scopes {
		delete(t.scopes, k)
	}
}
