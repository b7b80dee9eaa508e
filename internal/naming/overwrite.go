package naming

import (
	"os"
	"sync"
)

// Overwrite is one recorded replacement of a pre-existing output file.
type Overwrite struct {
	Path     string `json:"path"`
	Document string `json:"document"` // Input document whose task replaced the file.
	Mode     string `json:"mode"`
}

// OverwriteLog tracks output paths claimed during a run and records an event
// whenever a claimed path already exists on disk. Overwrites are allowed, not
// prevented; the record surfaces them in the batch report. All methods are
// goroutine-safe.
type OverwriteLog struct {
	mu     sync.Mutex
	owners map[string]string // output path → document that claimed it
	events []Overwrite
}

// NewOverwriteLog creates a ready-to-use log.
func NewOverwriteLog() *OverwriteLog {
	return &OverwriteLog{owners: make(map[string]string)}
}

// Claim registers an output path for a document/mode pair and records an
// overwrite event when the path was already claimed by another document this
// run, or already exists on disk from an earlier run. Claiming the same path
// again for the same document is a no-op.
func (l *OverwriteLog) Claim(path, document, mode string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, claimed := l.owners[path]
	if claimed && prev == document {
		return
	}
	l.owners[path] = document

	onDisk := false
	if _, err := os.Stat(path); err == nil {
		onDisk = true
	}
	if claimed || onDisk {
		l.events = append(l.events, Overwrite{Path: path, Document: document, Mode: mode})
	}
}

// Events returns a copy of the recorded overwrite events in claim order.
func (l *OverwriteLog) Events() []Overwrite {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Overwrite, len(l.events))
	copy(out, l.events)
	return out
}
