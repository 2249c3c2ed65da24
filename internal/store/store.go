// Package store provides persistence for the interactive calculator:
// command history for line recall, and named session transcripts.
package store

// Store is the interface for calculator persistence.
type Store interface {
	// AppendLine records an executed input line in the history.
	AppendLine(line string) error
	// Lines returns up to limit history lines, oldest first. A limit
	// of zero or less returns everything.
	Lines(limit int) ([]string, error)
	// SaveSession stores a transcript under name, overwriting if it
	// exists.
	SaveSession(name string, transcript []byte) error
	// LoadSession retrieves a transcript by name. Returns nil if not
	// found.
	LoadSession(name string) ([]byte, error)
	// Sessions lists the saved session names, sorted.
	Sessions() ([]string, error)
	// Close releases resources.
	Close() error
}
