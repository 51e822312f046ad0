// Package worker implements the background concurrency fabric: a single
// worker goroutine, semaphore-signalled, that drains six ordered request
// slots on every wake. Each slot is a single-writer atomic pointer or flag
// via Go's typed sync/atomic wrappers; the two request kinds with
// synchronous callers (load, preset) additionally carry a condvar-backed
// completion signal so a caller can block until its own request lands.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/audioscript/jsfxgo/pkg/process"
)

// LoadRequest asks the worker to compile a new source unit off the audio
// thread.
type LoadRequest struct {
	Path         string
	SkipImports  bool
	InitialState []byte // opaque; carried through to the retry state machine on failure
}

// PresetRequest asks the worker to apply a named preset from the active
// bank.
type PresetRequest struct {
	Name string
}

// UndoDirection selects which way an undo/redo request moves the cursor.
type UndoDirection int32

const (
	UndoNone UndoDirection = iota
	UndoBack
	UndoForward
)

// Handlers are the callbacks the worker invokes once it has claimed a
// request slot. Every callback runs on the worker goroutine.
type Handlers struct {
	NotifySliders   func(process.PublishedMasks)
	InvalidateNames func()
	Load            func(LoadRequest) error
	Preset          func(PresetRequest) error
	PushUndoPoint   func()
	UndoRedo        func(UndoDirection)
}

// syncSlot is a single-writer pending value with a condvar-backed
// completion signal, for the two request kinds a caller may want to block
// on.
type syncSlot[T any] struct {
	mu   sync.Mutex
	cond *sync.Cond
	val  *T
	done bool
	err  error
}

func newSyncSlot[T any]() *syncSlot[T] {
	s := &syncSlot[T]{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// post installs v as the pending request, overwriting whatever was there
// (single-writer discipline: callers serialize their own posts).
func (s *syncSlot[T]) post(v T) {
	s.mu.Lock()
	s.val = &v
	s.done = false
	s.mu.Unlock()
}

func (s *syncSlot[T]) take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.val == nil {
		var zero T
		return zero, false
	}
	v := *s.val
	s.val = nil
	return v, true
}

func (s *syncSlot[T]) complete(err error) {
	s.mu.Lock()
	s.done = true
	s.err = err
	s.cond.Broadcast()
	s.mu.Unlock()
}

// wait blocks until the most recently posted request completes. A caller
// that abandons the wait early does not stop the worker from finishing the
// request and writing the completion flag; there is no partial-cancel.
func (s *syncSlot[T]) wait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.done {
		s.cond.Wait()
	}
	return s.err
}

// Worker drains its six request slots in a fixed order, once per wake.
// Exactly one goroutine should run Run.
type Worker struct {
	sem     *semaphore.Weighted
	pending atomic.Bool
	h       Handlers

	sliderNotify    atomic.Pointer[process.PublishedMasks]
	nameInvalidated atomic.Bool
	loadReq         *syncSlot[LoadRequest]
	presetReq       *syncSlot[PresetRequest]
	wantUndoPoint   atomic.Bool
	undoReq         atomic.Int32

	stopped atomic.Bool
}

// New creates a worker bound to h. Call Run in its own goroutine.
func New(h Handlers) *Worker {
	w := &Worker{
		sem:       semaphore.NewWeighted(1),
		h:         h,
		loadReq:   newSyncSlot[LoadRequest](),
		presetReq: newSyncSlot[PresetRequest](),
	}
	// The semaphore starts with its token held, so Run blocks until the
	// first wake releases it.
	w.sem.TryAcquire(1)
	return w
}

// wake posts a single token if none is already pending: repeated wakes
// before the worker drains coalesce into one pass.
func (w *Worker) wake() {
	if w.pending.CompareAndSwap(false, true) {
		w.sem.Release(1)
	}
}

// NotifySliders posts a published mask snapshot for the worker to hand to
// Handlers.NotifySliders (slot 1).
func (w *Worker) NotifySliders(m process.PublishedMasks) {
	w.sliderNotify.Store(&m)
	w.wake()
}

// InvalidateNames flags a pending parameter-name invalidation (slot 2).
func (w *Worker) InvalidateNames() {
	w.nameInvalidated.Store(true)
	w.wake()
}

// RequestLoad posts a load request (slot 3) and blocks until it completes.
func (w *Worker) RequestLoad(req LoadRequest) error {
	w.loadReq.post(req)
	w.wake()
	return w.loadReq.wait()
}

// RequestPreset posts a preset request (slot 4) and blocks until it
// completes.
func (w *Worker) RequestPreset(req PresetRequest) error {
	w.presetReq.post(req)
	w.wake()
	return w.presetReq.wait()
}

// RequestUndoPoint flags a pending undo-point push (slot 5).
func (w *Worker) RequestUndoPoint() {
	w.wantUndoPoint.Store(true)
	w.wake()
}

// RequestUndo and RequestRedo post an undo/redo request (slot 6),
// overwriting whichever direction was previously pending.
func (w *Worker) RequestUndo() {
	w.undoReq.Store(int32(UndoBack))
	w.wake()
}

func (w *Worker) RequestRedo() {
	w.undoReq.Store(int32(UndoForward))
	w.wake()
}

// Stop wakes the worker one last time and makes the next Run loop
// iteration return.
func (w *Worker) Stop() {
	w.stopped.Store(true)
	w.wake()
}

// Run blocks, draining request slots on every wake until Stop is called or
// ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		w.pending.Store(false)
		if w.stopped.Load() {
			return nil
		}
		w.drain()
	}
}

// drain runs the six slots in their fixed order.
func (w *Worker) drain() {
	if m := w.sliderNotify.Swap(nil); m != nil && w.h.NotifySliders != nil {
		w.h.NotifySliders(*m)
	}
	if w.nameInvalidated.CompareAndSwap(true, false) && w.h.InvalidateNames != nil {
		w.h.InvalidateNames()
	}
	if req, ok := w.loadReq.take(); ok {
		var err error
		if w.h.Load != nil {
			err = w.h.Load(req)
		}
		w.loadReq.complete(err)
	}
	if req, ok := w.presetReq.take(); ok {
		var err error
		if w.h.Preset != nil {
			err = w.h.Preset(req)
		}
		w.presetReq.complete(err)
	}
	if w.wantUndoPoint.CompareAndSwap(true, false) && w.h.PushUndoPoint != nil {
		w.h.PushUndoPoint()
	}
	if dir := UndoDirection(w.undoReq.Swap(int32(UndoNone))); dir != UndoNone && w.h.UndoRedo != nil {
		w.h.UndoRedo(dir)
	}
}
