// Package jsfxconfig implements a process-scoped, reference-counted
// Configuration object. It is the single explicit context value threaded
// through every façade call that may log or resolve a path, not a
// package-level singleton, so multiple hosts in the same process never
// fight over global state.
package jsfxconfig

import (
	"sync"
	"sync/atomic"

	"github.com/audioscript/jsfxgo/pkg/jsfxlog"
)

// AudioFormatHandler is the capability set a registered audio format
// implements: a dynamic dispatch boundary only at registration time,
// formats themselves plain values. The core never decodes audio files
// itself; it only ever calls through this interface.
type AudioFormatHandler interface {
	CanHandle(path string) bool
	Open(path string) (AudioFormatStream, error)
}

// AudioFormatStream is a single opened audio file, positioned for
// sequential sample reads.
type AudioFormatStream interface {
	Info() (sampleRate float64, channels int, err error)
	Avail() int64
	Rewind() error
	Read(buf [][]float32) (n int, err error)
	Close() error
}

// Configuration is shared (reference-counted) and immutable after
// publication: every Effect referencing it sees the same import root, data
// root, format handlers, and log reporter.
type Configuration struct {
	refs int32

	mu           sync.RWMutex
	importRoot   string
	dataRoot     string
	formats      []AudioFormatHandler
	reporter     jsfxlog.Reporter
	userData     interface{}
}

// New creates a Configuration with a single reference. Callers must call
// Release when done; the zero value is not usable.
func New() *Configuration {
	return &Configuration{refs: 1, reporter: jsfxlog.Discard}
}

// Ref increments the reference count and returns the same Configuration,
// so a caller can chain it off of New or a passed-in reference.
func (c *Configuration) Ref() *Configuration {
	atomic.AddInt32(&c.refs, 1)
	return c
}

// Release decrements the reference count. It returns true if this call
// dropped the count to zero (the caller should treat the Configuration as
// destroyed and stop using it).
func (c *Configuration) Release() bool {
	return atomic.AddInt32(&c.refs, -1) == 0
}

// RefCount reports the current reference count, chiefly for tests.
func (c *Configuration) RefCount() int32 {
	return atomic.LoadInt32(&c.refs)
}

// SetImportRoot sets the root directory searched by the path resolver.
func (c *Configuration) SetImportRoot(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.importRoot = path
}

// ImportRoot returns the configured import root.
func (c *Configuration) ImportRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.importRoot
}

// SetDataRoot sets the root directory used for path-type slider defaults.
func (c *Configuration) SetDataRoot(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataRoot = path
}

// DataRoot returns the configured data root.
func (c *Configuration) DataRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataRoot
}

// RegisterAudioFormat adds a format handler, in registration order; the
// first handler for which CanHandle(path) is true wins.
func (c *Configuration) RegisterAudioFormat(h AudioFormatHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formats = append(c.formats, h)
}

// AudioFormatFor returns the first registered handler willing to open path,
// or nil if none can.
func (c *Configuration) AudioFormatFor(path string) AudioFormatHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, h := range c.formats {
		if h.CanHandle(path) {
			return h
		}
	}
	return nil
}

// SetLogReporter installs the log reporter used by every façade call that
// may log.
func (c *Configuration) SetLogReporter(r jsfxlog.Reporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r == nil {
		r = jsfxlog.Discard
	}
	c.reporter = r
}

// Reporter returns the current log reporter.
func (c *Configuration) Reporter() jsfxlog.Reporter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reporter
}

// SetUserData attaches an opaque host-owned pointer, mirroring the
// C-facing façade's `user_data` field.
func (c *Configuration) SetUserData(data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userData = data
}

// UserData returns the opaque host-owned pointer.
func (c *Configuration) UserData() interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userData
}
