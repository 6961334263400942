// Package diag accumulates non-fatal diagnostics produced while a pipeline
// stage runs, so a region can complete with warnings rather than aborting.
package diag

import (
	"fmt"

	"github.com/google/uuid"
)

// Entry is one accumulated diagnostic.
type Entry struct {
	Kind    error
	Message string
}

// Log is an append-only, ordered collection of diagnostics, stamped with a
// run id so diagnostics from two runs over the same inputs are never
// confused with one another when collected off disk.
type Log struct {
	RunID   string
	entries []Entry
}

// New starts a Log stamped with a fresh run id.
func New() *Log {
	return &Log{RunID: uuid.NewString()}
}

// Add records a diagnostic of the given kind.
func (l *Log) Add(kind error, format string, args ...interface{}) {
	l.entries = append(l.entries, Entry{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// All returns every accumulated entry, in the order added.
func (l *Log) All() []Entry {
	return l.entries
}

// CountKind returns the number of entries matching kind.
func (l *Log) CountKind(kind error) int {
	n := 0
	for _, e := range l.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Empty reports whether no diagnostics were recorded.
func (l *Log) Empty() bool {
	return len(l.entries) == 0
}
