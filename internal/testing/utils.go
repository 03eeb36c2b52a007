// Package testing provides annotated sentence fixtures and helpers for tests.
package testing

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

// Fixture is a sentence together with the tokens an annotator would produce for it.
type Fixture struct {
	Text     string
	Language string
	Tokens   []model.AnnotatedToken
}

// CopyTokens returns a deep enough copy of the fixture tokens for a single test.
func (f Fixture) CopyTokens() []model.AnnotatedToken {
	out := make([]model.AnnotatedToken, len(f.Tokens))
	copy(out, f.Tokens)
	return out
}

// tok describes a token by literal, UPOS, dependency, optional features and entity tag.
type tok struct {
	literal string
	upos    string
	dep     string
	feats   string
	entity  model.EntityTag
}

// build locates each literal in text in order and fills spans and indexes.
func build(text, language string, toks ...tok) Fixture {
	tokens := make([]model.AnnotatedToken, 0, len(toks))
	cursor := 0
	for i, tk := range toks {
		offset := strings.Index(text[cursor:], tk.literal)
		if offset < 0 {
			panic(fmt.Sprintf("fixture literal %q not found in %q", tk.literal, text))
		}
		start := cursor + offset
		end := start + len(tk.literal)
		entity := tk.entity
		if entity == "" {
			entity = model.EntityNone
		}
		tokens = append(tokens, model.AnnotatedToken{
			Literal:    tk.literal,
			Lemma:      strings.ToLower(tk.literal),
			UPOS:       tk.upos,
			Dependency: tk.dep,
			Features:   model.ParseFeatures(tk.feats),
			Entity:     entity,
			Span:       model.Span{Start: start, End: end},
			Index:      i,
		})
		cursor = end
	}
	return Fixture{Text: text, Language: language, Tokens: tokens}
}

// TurnOffTheLights is an English imperative with a particle dependency.
func TurnOffTheLights() Fixture {
	return build("Turn off the lights", "en",
		tok{"Turn", "VERB", "root", "Mood=Imp|VerbForm=Fin", ""},
		tok{"off", "ADP", "compound:prt", "", ""},
		tok{"the", "DET", "det", "Definite=Def|PronType=Art", ""},
		tok{"lights", "NOUN", "obj", "Number=Plur", ""},
	)
}

// InNewYork is a German sentence starting with a preposition and a two-word entity.
func InNewYork() Fixture {
	return build("In New York frisst ein Hund aus der Hand.", "de",
		tok{"In", "ADP", "case", "", ""},
		tok{"New", "PROPN", "nmod", "", model.EntityBegin},
		tok{"York", "PROPN", "flat", "", model.EntityEnd},
		tok{"frisst", "VERB", "root", "Mood=Ind", ""},
		tok{"ein", "DET", "det", "", ""},
		tok{"Hund", "NOUN", "nsubj", "", ""},
		tok{"aus", "ADP", "case", "", ""},
		tok{"der", "DET", "det", "", ""},
		tok{"Hand", "NOUN", "obl", "", ""},
		tok{".", "PUNCT", "punct", "", ""},
	)
}

// HundsgemeineHand contains a lower-case adjective starting with "hund".
func HundsgemeineHand() Fixture {
	return build("In New York frisst ein Hund aus der hundsgemeinen Hand.", "de",
		tok{"In", "ADP", "case", "", ""},
		tok{"New", "PROPN", "nmod", "", model.EntityBegin},
		tok{"York", "PROPN", "flat", "", model.EntityEnd},
		tok{"frisst", "VERB", "root", "Mood=Ind", ""},
		tok{"ein", "DET", "det", "", ""},
		tok{"Hund", "NOUN", "nsubj", "", ""},
		tok{"aus", "ADP", "case", "", ""},
		tok{"der", "DET", "det", "", ""},
		tok{"hundsgemeinen", "ADJ", "amod", "", ""},
		tok{"Hand", "NOUN", "obl", "", ""},
		tok{".", "PUNCT", "punct", "", ""},
	)
}

// Gurkensalat is a German sentence with nouns, a subject and a trailing entity.
func Gurkensalat(determiner string) Fixture {
	return build(determiner+" Hund isst keinen Gurkensalat in New York.", "de",
		tok{determiner, "DET", "det", "", ""},
		tok{"Hund", "NOUN", "nsubj", "", ""},
		tok{"isst", "VERB", "root", "Mood=Ind", ""},
		tok{"keinen", "DET", "det", "", ""},
		tok{"Gurkensalat", "NOUN", "obj", "", ""},
		tok{"in", "ADP", "case", "", ""},
		tok{"New", "PROPN", "nmod", "", model.EntityBegin},
		tok{"York", "PROPN", "flat", "", model.EntityEnd},
		tok{".", "PUNCT", "punct", "", ""},
	)
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 20 * time.Millisecond,
		LogProgress:  true,
	}
}

// WaitForJobCompletion polls a job until it completes or times out
func WaitForJobCompletion(t *testing.T, jobs services.JobReader, jobID string, opts JobPollingOptions) *model.Job {
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
		case <-ticker.C:
			job, err := jobs.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
				return job
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}
