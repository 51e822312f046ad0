// Package jsfxerr defines this runtime's error taxonomy. Every kind is a
// distinct type so callers can type-switch; each carries enough context to
// reproduce a host-facing diagnostic (file, line, message).
package jsfxerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError is produced by the preprocessor and parser.
type ParseError struct {
	File    string
	Line    int
	Column  int // 0 when not applicable
	Message string
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// UnknownSection is a sub-kind of ParseError: an `@xxx` directive the parser
// does not recognize.
type UnknownSection struct {
	ParseError
	Section string
}

// ImportNotFound is a sub-kind of ParseError: an `import` directive whose
// target could not be resolved by the path resolver.
type ImportNotFound struct {
	ParseError
	Path string
}

// ImportTooDeep is a sub-kind of ParseError: the import graph loader
// exceeded its maximum recursion depth (32).
type ImportTooDeep struct {
	ParseError
	Depth int
}

// IoError wraps a failed filesystem operation with the path involved.
type IoError struct {
	Path string
	Op   string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// NewIoError wraps err with pkg/errors so the underlying cause survives
// alongside the (path, op) context used by host diagnostics.
func NewIoError(op, path string, err error) *IoError {
	return &IoError{Path: path, Op: op, Err: errors.Wrapf(err, "%s %s", op, path)}
}

// CompileError surfaces a diagnostic from the DSL evaluator, attached to
// the file+line of the originating section.
type CompileError struct {
	File    string
	Section string
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s [@%s:%d]: %s", e.File, e.Section, e.Line, e.Message)
}

// BankError signals a malformed RPL bank or base64 payload.
type BankError struct {
	Message string
	Cause   error
}

func (e *BankError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bank: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("bank: %s", e.Message)
}

func (e *BankError) Unwrap() error { return e.Cause }

// NewBankError wraps cause (if any) with pkg/errors so BankError participates
// in errors.Is/As chains the same way IoError does.
func NewBankError(message string, cause error) *BankError {
	if cause != nil {
		cause = errors.WithMessage(cause, message)
	}
	return &BankError{Message: message, Cause: cause}
}

// StateError signals truncated or version-mismatched persisted state.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return "state: " + e.Message }

// Warning is non-fatal and carried out-of-band in an Effect's warnings
// list; it is never raised as a Go error.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}
