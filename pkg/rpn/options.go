// Package rpn provides the public API for the calculator.
package rpn

import (
	"io"

	"nickandperla.net/rpn/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path. An
// open failure is reported once the runtime is constructed; the
// runtime then runs without persistence.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.storeErr = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithOutput directs calculator output to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// WithErrOutput directs error and debug output to w.
func WithErrOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.errOut = w
	}
}

// WithAutoPrint starts the calculator with automatic printing of
// command values.
func WithAutoPrint(on bool) Option {
	return func(r *Runtime) {
		r.autoPrint = on
	}
}

// WithSplitLines controls whether input lines are split into fields.
func WithSplitLines(on bool) Option {
	return func(r *Runtime) {
		r.splitLines = on
	}
}

// WithSeparator sets the field separator. Empty means whitespace.
func WithSeparator(sep string) Option {
	return func(r *Runtime) {
		r.separator = sep
	}
}

// WithDebug starts the calculator with debug output on.
func WithDebug(on bool) Option {
	return func(r *Runtime) {
		r.debug = on
	}
}
