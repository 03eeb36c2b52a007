package services

import (
	"context"
	"io"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/index"
	"github.com/gcbaptista/go-natex/model"
)

// Operation names a pattern operation run against a stored sentence.
type Operation string

const (
	OpMatch   Operation = "match"
	OpSearch  Operation = "search"
	OpFindAll Operation = "findall"
	OpSub     Operation = "sub"
	OpSplit   Operation = "split"
)

// PatternRequest is the body of every pattern operation.
type PatternRequest struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement,omitempty"` // only used by sub
	Flags       string `json:"flags,omitempty"`       // any of "i", "m", "s"
	Limit       int    `json:"limit,omitempty"`       // split only, -1 or 0 means no limit
}

// OperationResult carries whichever output the operation produces.
type OperationResult struct {
	SentenceID string             `json:"sentence_id"`
	Operation  Operation          `json:"operation"`
	Pattern    string             `json:"pattern"`
	Regex      string             `json:"regex"`
	Match      *model.MatchResult `json:"match,omitempty"`
	Matched    bool               `json:"matched"`
	Results    []string           `json:"results,omitempty"`
	Text       string             `json:"text,omitempty"`
	Took       int64              `json:"took"` // microseconds
}

// CompileResult describes a compiled pattern without running it.
type CompileResult struct {
	Pattern  string   `json:"pattern"`
	Regex    string   `json:"regex"`
	Flags    string   `json:"flags,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// CorpusSearchRequest runs a pattern over the stored sentences.
type CorpusSearchRequest struct {
	Pattern string   `json:"pattern"`
	Flags   string   `json:"flags,omitempty"`
	Require []string `json:"require,omitempty"` // tag keys such as "@PROPN", "#NSUBJ" or "=lemma"
	Limit   int      `json:"limit,omitempty"`   // maximum number of hits, 0 means the default
}

// CorpusHit is a sentence the pattern matched, with every match in it.
type CorpusHit struct {
	SentenceID string               `json:"sentence_id"`
	Text       string               `json:"text"`
	Matches    []*model.MatchResult `json:"matches"`
}

// CorpusSearchResult lists the hits of a corpus search.
type CorpusSearchResult struct {
	Pattern   string      `json:"pattern"`
	Regex     string      `json:"regex"`
	Hits      []CorpusHit `json:"hits"`
	Scanned   int         `json:"scanned"` // sentences the pattern ran against
	Total     int         `json:"total"`   // stored sentences
	Truncated bool        `json:"truncated"`
	Took      int64       `json:"took"` // microseconds
}

// AddSentenceRequest annotates text with the named annotator, or accepts
// tokens that were annotated elsewhere.
type AddSentenceRequest struct {
	ID        string                 `json:"id,omitempty"`
	Text      string                 `json:"text"`
	Language  string                 `json:"language,omitempty"`
	Annotator string                 `json:"annotator,omitempty"`
	Tokens    []model.AnnotatedToken `json:"tokens,omitempty"`
}

// BulkAddRequest annotates many sentences in a background job.
type BulkAddRequest struct {
	Sentences []AddSentenceRequest `json:"sentences"`
	Language  string               `json:"language,omitempty"`
	Annotator string               `json:"annotator,omitempty"`
}

// Annotator turns raw text into an ordered annotated token stream covering
// the whole sentence.
type Annotator interface {
	Name() string
	Annotate(ctx context.Context, text, language string) ([]model.AnnotatedToken, error)
}

// ReadinessChecker is implemented by annotators backed by a remote service or
// downloaded models.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// SentenceStore keeps annotated sentences.
type SentenceStore interface {
	Put(sentence *model.Sentence) error
	Get(id string) (*model.Sentence, error)
	Delete(id string) error
	List(offset, limit int) ([]*model.Sentence, int, error)
	Close() error
}

// SentenceManager is what the HTTP API needs from the engine.
type SentenceManager interface {
	AddSentence(ctx context.Context, req AddSentenceRequest) (*model.Sentence, error)
	AddSentencesAsync(req BulkAddRequest) (string, error)           // returns job ID
	ImportConlluAsync(r io.Reader, language string) (string, error) // returns job ID
	GetSentence(id string) (*model.Sentence, error)
	ListSentences(offset, limit int) ([]*model.Sentence, int, error)
	DeleteSentence(id string) error

	Run(id string, op Operation, req PatternRequest) (*OperationResult, error)
	SearchCorpus(req CorpusSearchRequest) (*CorpusSearchResult, error)
	CompilePattern(pattern, flags string) (*CompileResult, error)
	TagCounts(prefix string) []index.TagCount

	Annotators(ctx context.Context) map[string]string // name -> "ready" or "unavailable"
	Settings() config.Settings
}

// JobReader reads job state.
type JobReader interface {
	GetJob(jobID string) (*model.Job, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	JobReader
	ListJobs(status *model.JobStatus) []*model.Job
	CancelJob(jobID string) error
}
