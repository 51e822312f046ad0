// Package effect implements the Effect/SourceUnit lifecycle around a
// compiled program: the live (SourceUnit set, compiled VM, slider table,
// bank) tuple, its hot-swap installation sequence, and the retryLoad state
// machine a failed load-with-initial-state transitions through. Grounded
// on original_source/plugin/processor.cpp's
// installNewFx/RetryState handling, adapted from a JUCE AudioProcessor's
// atomic-pointer publish to an explicit RWMutex-guarded snapshot swap.
package effect

import (
	"sync"
	"sync/atomic"

	"github.com/audioscript/jsfxgo/pkg/compile"
	"github.com/audioscript/jsfxgo/pkg/importgraph"
	"github.com/audioscript/jsfxgo/pkg/mask"
	"github.com/audioscript/jsfxgo/pkg/preset"
	"github.com/audioscript/jsfxgo/pkg/state"
)

// RetryState is the failed-load state machine:
// ok -> mustRetry -> retrying -> (ok | failedRetry).
type RetryState int32

const (
	RetryOK RetryState = iota
	RetryMustRetry
	RetryRetrying
	RetryFailedRetry
)

func (s RetryState) String() string {
	switch s {
	case RetryOK:
		return "ok"
	case RetryMustRetry:
		return "must_retry"
	case RetryRetrying:
		return "retrying"
	case RetryFailedRetry:
		return "failed_retry"
	default:
		return "unknown"
	}
}

// Suspender lets the host façade block the audio thread across an install,
// the only cross-thread block of the audio thread anywhere in the runtime.
type Suspender interface {
	Suspend()
	Resume()
}

// NoSuspend is a Suspender for callers that already serialize every access
// onto one goroutine (tests, an offline renderer with no real-time thread).
type NoSuspend struct{}

func (NoSuspend) Suspend() {}
func (NoSuspend) Resume()  {}

// Snapshot is the tuple a successful off-thread load produces: the loaded
// source graph, its compiled program, and the active preset bank.
type Snapshot struct {
	Graph    *importgraph.Graph
	Compiler *compile.Compiler
	Result   *compile.Result
	Bank     preset.Bank
}

// Effect owns the live snapshot the audio thread reads each block, the
// mask bus that survives across swaps, and the retry state machine for a
// load that failed while an initial state was supplied.
type Effect struct {
	mu   sync.RWMutex
	live *Snapshot
	bus  *mask.Bus

	retry       atomic.Int32
	failedState *state.State
}

// New creates an Effect with no live snapshot yet, publishing through bus.
func New(bus *mask.Bus) *Effect {
	return &Effect{bus: bus}
}

// Current returns the live snapshot, or nil before the first successful
// install.
func (e *Effect) Current() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.live
}

// Install runs the hot-swap installation sequence:
//  1. suspend the audio thread
//  2. replace the compiled VM tuple
//  3. re-sync sliders' host-facing mirror without marking them changed
//  4. set the notify-later mask to all-ones, zero the touch mask
//  5. publish: only step 2's pointer swap is done under the write lock;
//     steps 3-4 run after the lock is released
//  6. resume the audio thread
func (e *Effect) Install(s Suspender, next *Snapshot) {
	if s == nil {
		s = NoSuspend{}
	}
	s.Suspend()
	defer s.Resume()

	e.mu.Lock()
	e.live = next
	e.mu.Unlock()

	if next != nil && next.Result != nil {
		all := next.Result.Sliders.All()
		for _, sl := range all {
			if sl != nil && sl.Exists {
				sl.SetHostNormalized(sl.Curve.ToNormalized(sl.Value()))
			}
		}
	}

	e.bus.NotifyAll()
	e.bus.ResetTouch()
}

// RetryLoad returns the current retry state, arming a pending mustRetry
// into retrying as a side effect: the façade transitions the state the
// moment the host asks about it, so a second concurrent asker doesn't
// re-arm a retry already in flight.
func (e *Effect) RetryLoad() RetryState {
	for {
		cur := RetryState(e.retry.Load())
		if cur != RetryMustRetry {
			return cur
		}
		if e.retry.CompareAndSwap(int32(RetryMustRetry), int32(RetryRetrying)) {
			return cur
		}
	}
}

// RecordLoadOutcome updates the retry state machine after a load attempt.
// A successful compile clears any held-aside state and resets to ok. A
// failed compile with no initial state supplied leaves the retry state
// untouched (there is nothing to retry with). A failed compile with an
// initial state transitions to mustRetry when sourceMissing (the host
// should prompt the user to locate the file) or failedRetry otherwise
// (the source exists but is erroneous), holding initial aside either way.
func (e *Effect) RecordLoadOutcome(compiled bool, initial *state.State, sourceMissing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if compiled {
		e.failedState = nil
		e.retry.Store(int32(RetryOK))
		return
	}
	if initial == nil {
		return
	}
	saved := *initial
	e.failedState = &saved
	if sourceMissing {
		e.retry.Store(int32(RetryMustRetry))
	} else {
		e.retry.Store(int32(RetryFailedRetry))
	}
}

// FailedLoadState returns the state held aside by the most recent failed
// load, if any.
func (e *Effect) FailedLoadState() (state.State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.failedState == nil {
		return state.State{}, false
	}
	return *e.failedState, true
}
