package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/index"
	"github.com/gcbaptista/go-natex/internal/analytics"
	"github.com/gcbaptista/go-natex/internal/annotator"
	"github.com/gcbaptista/go-natex/internal/jobs"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/natex"
	"github.com/gcbaptista/go-natex/services"
	"github.com/gcbaptista/go-natex/store"
)

const dataDirPerm = 0755

// Engine stores annotated sentences and runs patterns against them.
// It implements the services.SentenceManager interface.
type Engine struct {
	settings   config.Settings
	options    natex.Options
	annotators *annotator.Registry
	store      services.SentenceStore
	tags       *index.TagIndex
	patterns   *patternCache
	jobManager *jobs.Manager
	analytics  *analytics.Service
}

// NewEngine creates the engine described by settings: the annotator
// registry, the sentence store and the job manager.
func NewEngine(settings config.Settings) (*Engine, error) {
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings: %v", problems)
	}

	if err := os.MkdirAll(settings.DataDir, dataDirPerm); err != nil {
		log.Printf("Warning: Could not create data directory %s: %v. Proceeding with an in-memory store.", settings.DataDir, err)
		settings.DataDir = ""
		settings.StoreBackend = config.StoreMemory
	}

	registry, err := annotator.FromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to set up annotators: %w", err)
	}
	return NewEngineWith(settings, registry)
}

// NewEngineWith creates an engine around an existing annotator registry.
func NewEngineWith(settings config.Settings, registry *annotator.Registry) (*Engine, error) {
	settings.ApplyDefaults()
	sentenceStore, err := store.Open(settings.StoreBackend, settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s sentence store: %w", settings.StoreBackend, err)
	}

	analyticsPath := ""
	if settings.DataDir != "" {
		analyticsPath = filepath.Join(settings.DataDir, analytics.DataFileName)
	}
	analyticsService, err := analytics.NewService(analyticsPath)
	if err != nil {
		log.Printf("Warning: Failed to load analytics data: %v. Starting with empty analytics.", err)
		analyticsService, _ = analytics.NewService("")
	}

	e := &Engine{
		settings:   settings,
		options:    natex.Options{FlagFeature: settings.FlagFeature, FlagValue: settings.FlagValue},
		annotators: registry,
		store:      sentenceStore,
		tags:       index.NewTagIndex(),
		patterns:   newPatternCache(settings.PatternCacheSize),
		jobManager: jobs.NewManager(settings.MaxJobWorkers),
		analytics:  analyticsService,
	}
	if err := e.rebuildTagIndex(); err != nil {
		_ = sentenceStore.Close()
		return nil, err
	}
	e.jobManager.Start()
	log.Printf("Engine started (store: %s, sentences: %d, annotators: %v)",
		settings.StoreBackend, e.tags.Len(), registry.Names())
	return e, nil
}

// rebuildTagIndex indexes every stored sentence.
func (e *Engine) rebuildTagIndex() error {
	sentences, _, err := e.store.List(0, 0)
	if err != nil {
		return fmt.Errorf("failed to read stored sentences: %w", err)
	}
	for _, sentence := range sentences {
		e.tags.Add(sentence)
	}
	return nil
}

// Close stops running jobs and closes the sentence store.
func (e *Engine) Close() error {
	e.jobManager.Stop()
	if err := e.analytics.Flush(); err != nil {
		log.Printf("Warning: Failed to save analytics data: %v", err)
	}
	if err := e.store.Close(); err != nil {
		return fmt.Errorf("failed to close sentence store: %w", err)
	}
	log.Printf("Engine stopped")
	return nil
}

// Settings returns the settings the engine runs with.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// GetJob returns a background job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns all jobs, optionally filtered by status.
func (e *Engine) ListJobs(status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(status)
}

// CancelJob stops a pending or running job.
func (e *Engine) CancelJob(jobID string) error {
	return e.jobManager.CancelJob(jobID)
}

// GetJobMetrics returns job counters.
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}

// GetJobSuccessRate returns the share of finished jobs that completed.
func (e *Engine) GetJobSuccessRate() float64 {
	return e.jobManager.GetJobSuccessRate()
}

// GetCurrentWorkload returns the number of running jobs.
func (e *Engine) GetCurrentWorkload() int64 {
	return e.jobManager.GetCurrentWorkload()
}
