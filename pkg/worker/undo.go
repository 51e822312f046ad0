package worker

import (
	"sync"

	"github.com/audioscript/jsfxgo/pkg/state"
)

// DefaultUndoCapacity is the bounded deque's default size.
const DefaultUndoCapacity = 64

// UndoHistory is a bounded deque of state snapshots plus a cursor,
// serviced by the worker's undo-point-push and undo/redo request slots.
type UndoHistory struct {
	mu       sync.Mutex
	states   []state.State
	position int // -1 when empty
	capacity int
}

// NewUndoHistory returns an empty history bounded at capacity entries.
// capacity <= 0 defaults to DefaultUndoCapacity.
func NewUndoHistory(capacity int) *UndoHistory {
	if capacity <= 0 {
		capacity = DefaultUndoCapacity
	}
	return &UndoHistory{position: -1, capacity: capacity}
}

// PushUndo diffs s against the snapshot at the cursor; if state-equal, it
// is a no-op. Otherwise it truncates everything after the cursor, appends
// s, advances the cursor, and evicts the oldest entry if now over capacity.
func (h *UndoHistory) PushUndo(s state.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.position >= 0 && h.position < len(h.states) && h.states[h.position].Equal(s) {
		return
	}

	offset := len(h.states)
	if h.position+1 < offset {
		offset = h.position + 1
	}
	if offset < 1 {
		offset = 1
	}
	if offset > len(h.states) {
		offset = len(h.states)
	}
	h.states = h.states[:offset]

	h.states = append(h.states, s)
	h.position = len(h.states) - 1

	if len(h.states) > h.capacity {
		h.states = h.states[1:]
		h.position--
	}
}

// PopUndo moves the cursor one step back and returns the snapshot it now
// points at. ok is false if there was nothing to undo, leaving the cursor
// unmoved past -1.
func (h *UndoHistory) PopUndo() (state.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pos := h.position - 1
	if pos < -1 {
		pos = -1
	}
	h.position = pos
	if h.position < 0 {
		return state.State{}, false
	}
	return h.states[h.position], true
}

// Redo moves the cursor one step forward and returns the snapshot it now
// points at. ok is false if there was nothing to redo.
func (h *UndoHistory) Redo() (state.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.position+1 >= len(h.states) {
		return state.State{}, false
	}
	h.position++
	return h.states[h.position], true
}

// HasUndo reports whether PopUndo would succeed. Matching
// original_source/plugin/processor.cpp's updateUndoState, this is cursor
// position > 0, not >= 0: the entry at position 0 is the oldest snapshot
// with nothing further back to undo to.
func (h *UndoHistory) HasUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position > 0
}

// HasRedo reports whether Redo would succeed.
func (h *UndoHistory) HasRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position+1 < len(h.states)
}
