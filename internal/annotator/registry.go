package annotator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/services"
)

// Annotator status values reported by Registry.Status.
const (
	StatusReady       = "ready"
	StatusUnavailable = "unavailable"
)

// Registry holds the annotators known to the service by name.
type Registry struct {
	mu         sync.RWMutex
	annotators map[string]services.Annotator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{annotators: make(map[string]services.Annotator)}
}

// FromSettings builds a registry holding the lexicon annotator, extended with
// the configured lexicons and gazetteers, plus every configured remote
// annotator.
func FromSettings(settings config.Settings) (*Registry, error) {
	lexicon, err := NewLexiconAnnotator()
	if err != nil {
		return nil, err
	}
	for lang, path := range settings.LexiconPaths {
		lex, err := LoadLexicon(path)
		if err != nil {
			return nil, err
		}
		if lex.Language != lang {
			log.Printf("Warning: lexicon %s declares language %q but is configured for %q", path, lex.Language, lang)
			lex.Language = lang
		}
		lexicon.AddLexicon(lex)
	}
	for lang, path := range settings.GazetteerPaths {
		entries, err := LoadGazetteer(path)
		if err != nil {
			return nil, err
		}
		if err := lexicon.ExtendGazetteer(lang, entries); err != nil {
			return nil, fmt.Errorf("gazetteer %s: %w", path, err)
		}
	}

	r := NewRegistry()
	r.Register(lexicon)
	for name, remote := range settings.RemoteAnnotators {
		adapter, err := NewAdapter(remote.Adapter, remote.ModelSize)
		if err != nil {
			return nil, fmt.Errorf("remote annotator %s: %w", name, err)
		}
		r.Register(NewRemoteAnnotator(name, remote.URL, adapter, remote.Timeout()))
	}
	return r, nil
}

// Register adds or replaces an annotator under its own name.
func (r *Registry) Register(a services.Annotator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotators[a.Name()] = a
}

// Get returns the annotator registered under name.
func (r *Registry) Get(name string) (services.Annotator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.annotators[name]
	if !ok {
		return nil, errors.NewUnknownAnnotatorError(name)
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.annotators))
	for name := range r.annotators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status checks every annotator that can report readiness. Annotators that
// cannot are always ready.
func (r *Registry) Status(ctx context.Context) map[string]string {
	r.mu.RLock()
	snapshot := make(map[string]services.Annotator, len(r.annotators))
	for name, a := range r.annotators {
		snapshot[name] = a
	}
	r.mu.RUnlock()

	status := make(map[string]string, len(snapshot))
	for name, a := range snapshot {
		status[name] = StatusReady
		if checker, ok := a.(services.ReadinessChecker); ok {
			if err := checker.Ready(ctx); err != nil {
				status[name] = StatusUnavailable
			}
		}
	}
	return status
}
