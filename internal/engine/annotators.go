package engine

import (
	"context"
	"time"

	"github.com/gcbaptista/go-natex/internal/annotator"
)

const readinessTimeout = 5 * time.Second

// Annotators reports the readiness of every registered annotator.
func (e *Engine) Annotators(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return e.annotators.Status(ctx)
}

// Registry returns the annotator registry.
func (e *Engine) Registry() *annotator.Registry {
	return e.annotators
}

// PatternCacheStats reports the compiled-pattern cache size and hit counts.
func (e *Engine) PatternCacheStats() (size int, hits, misses int64) {
	return e.patterns.stats()
}
