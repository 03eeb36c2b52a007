package engine

import (
	"log"
)

// flusher is implemented by stores that keep a snapshot on disk.
type flusher interface {
	Flush() error
}

// flushStore writes the store snapshot after a batch. Failures are logged
// only; the sentences are still served from memory.
func (e *Engine) flushStore() {
	f, ok := e.store.(flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		log.Printf("Warning: Failed to write sentence snapshot: %v", err)
	}
}
