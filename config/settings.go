// Package config provides configuration structures for the NatEx service.
// It defines annotator backends, serialization options, limits and storage.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Remote annotator adapters.
const (
	AdapterStanza = "stanza"
	AdapterSpacy  = "spacy"
)

// RemoteAnnotator configures an annotator that runs in a separate NLP service
// and is reached over HTTP.
type RemoteAnnotator struct {
	URL            string `json:"url"`             // Base URL of the service (e.g., "http://localhost:5000")
	Adapter        string `json:"adapter"`         // Wire format of the service: "stanza" or "spacy"
	ModelSize      string `json:"model_size"`      // spaCy model size suffix: "sm", "md", "lg" or "trf"
	TimeoutSeconds int    `json:"timeout_seconds"` // Per-request timeout
}

// Timeout returns the request timeout as a duration.
func (r RemoteAnnotator) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Settings contains all configuration options of the service.
type Settings struct {
	DefaultLanguage  string `json:"default_language"`  // Language used when a request names none (e.g., "en")
	DefaultAnnotator string `json:"default_annotator"` // Annotator used when a request names none

	// FlagFeature and FlagValue select the morphological feature that marks
	// a token with "!" in the representation (e.g., Mood=Imp).
	FlagFeature string `json:"flag_feature"`
	FlagValue   string `json:"flag_value"`

	MaxPatternLength  int `json:"max_pattern_length"`  // Longest accepted pattern, in bytes
	MaxSentenceLength int `json:"max_sentence_length"` // Longest accepted sentence, in bytes
	PatternCacheSize  int `json:"pattern_cache_size"`  // Compiled patterns kept by the engine
	MaxJobWorkers     int `json:"max_job_workers"`     // Concurrent background jobs

	StoreBackend string `json:"store_backend"` // "memory" or "sqlite"
	DataDir      string `json:"data_dir"`      // Directory for snapshots and the SQLite database

	RemoteAnnotators map[string]RemoteAnnotator `json:"remote_annotators"` // Extra annotators by name
	LexiconPaths     map[string]string          `json:"lexicon_paths"`     // Language code -> JSON lexicon file
	GazetteerPaths   map[string]string          `json:"gazetteer_paths"`   // Language code -> JSON gazetteer file
}

// Default returns settings with every default applied.
func Default() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// Load reads settings from a JSON file and applies defaults to missing values.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's command line
	if err != nil {
		return s, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	s.ApplyDefaults()
	if problems := s.Validate(); len(problems) > 0 {
		return s, fmt.Errorf("invalid settings in %s: %s", path, strings.Join(problems, "; "))
	}
	return s, nil
}

// ApplyDefaults applies default values to the settings
func (s *Settings) ApplyDefaults() {
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = "en"
	}
	if s.DefaultAnnotator == "" {
		s.DefaultAnnotator = "lexicon"
	}
	if s.FlagFeature == "" {
		s.FlagFeature = "Mood"
		s.FlagValue = "Imp"
	}
	if s.MaxPatternLength == 0 {
		s.MaxPatternLength = 1024
	}
	if s.MaxSentenceLength == 0 {
		s.MaxSentenceLength = 10000
	}
	if s.PatternCacheSize == 0 {
		s.PatternCacheSize = 256
	}
	if s.MaxJobWorkers == 0 {
		s.MaxJobWorkers = 4
	}
	if s.StoreBackend == "" {
		s.StoreBackend = StoreMemory
	}
	if s.DataDir == "" {
		s.DataDir = "./data"
	}

	// Initialize empty maps if nil to prevent nil map writes
	if s.RemoteAnnotators == nil {
		s.RemoteAnnotators = map[string]RemoteAnnotator{}
	}
	if s.LexiconPaths == nil {
		s.LexiconPaths = map[string]string{}
	}
	if s.GazetteerPaths == nil {
		s.GazetteerPaths = map[string]string{}
	}
	for name, remote := range s.RemoteAnnotators {
		if remote.TimeoutSeconds == 0 {
			remote.TimeoutSeconds = 30
		}
		if remote.ModelSize == "" {
			remote.ModelSize = "sm"
		}
		s.RemoteAnnotators[name] = remote
	}
}

// Validate reports every problem with the settings. An empty result means the
// settings are usable.
func (s *Settings) Validate() []string {
	var problems []string

	if s.FlagFeature != "" && s.FlagValue == "" {
		problems = append(problems, "flag_value must be set when flag_feature is set")
	}
	if s.MaxPatternLength < 0 {
		problems = append(problems, "max_pattern_length cannot be negative")
	}
	if s.MaxSentenceLength < 0 {
		problems = append(problems, "max_sentence_length cannot be negative")
	}
	if s.PatternCacheSize < 0 {
		problems = append(problems, "pattern_cache_size cannot be negative")
	}
	if s.MaxJobWorkers < 0 {
		problems = append(problems, "max_job_workers cannot be negative")
	}
	if s.StoreBackend != StoreMemory && s.StoreBackend != StoreSQLite {
		problems = append(problems, "Invalid store_backend '"+s.StoreBackend+"' (must be 'memory' or 'sqlite')")
	}

	for name, remote := range s.RemoteAnnotators {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "Remote annotator name cannot be empty or whitespace-only")
		}
		if name == "lexicon" {
			problems = append(problems, "Remote annotator cannot be named 'lexicon', the name is reserved for the built-in annotator")
		}
		if remote.URL == "" {
			problems = append(problems, "Remote annotator '"+name+"' has no url")
		}
		if remote.Adapter != AdapterStanza && remote.Adapter != AdapterSpacy {
			problems = append(problems, "Invalid adapter '"+remote.Adapter+"' for remote annotator '"+name+"' (must be 'stanza' or 'spacy')")
		}
		if remote.TimeoutSeconds < 0 {
			problems = append(problems, "Remote annotator '"+name+"' has a negative timeout")
		}
	}

	for lang, path := range s.LexiconPaths {
		if strings.TrimSpace(path) == "" {
			problems = append(problems, "Lexicon path for language '"+lang+"' cannot be empty")
		}
	}

	return problems
}
