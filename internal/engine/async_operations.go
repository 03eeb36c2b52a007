package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/gcbaptista/go-natex/internal/annotator"
	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

// ConlluAnnotator is recorded as the annotator of imported sentences.
const ConlluAnnotator = "conllu"

// AddSentencesAsync annotates and stores a batch of sentences in a
// background job. Sentences without their own language or annotator inherit
// the batch's.
func (e *Engine) AddSentencesAsync(req services.BulkAddRequest) (string, error) {
	if len(req.Sentences) == 0 {
		return "", errors.NewValidationError("sentences", "at least one sentence is required")
	}
	language := req.Language
	if language == "" {
		language = e.settings.DefaultLanguage
	}
	annotatorName := req.Annotator
	if annotatorName == "" {
		annotatorName = e.settings.DefaultAnnotator
	}
	if _, err := e.annotators.Get(annotatorName); err != nil {
		return "", err
	}

	jobID := e.jobManager.CreateJob(model.JobTypeAnnotateBatch, annotatorName, language, map[string]string{
		"operation":      "annotate_batch",
		"sentence_count": strconv.Itoa(len(req.Sentences)),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeAnnotateBatchJob(ctx, req.Sentences, language, annotatorName, jobID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start annotate batch job: %w", err)
	}
	return jobID, nil
}

// executeAnnotateBatchJob stores every sentence that annotates cleanly. A
// sentence that fails does not stop the batch; the job fails at the end when
// any sentence failed.
func (e *Engine) executeAnnotateBatchJob(ctx context.Context, sentences []services.AddSentenceRequest, language, annotatorName, jobID string) error {
	total := len(sentences)
	e.jobManager.UpdateJobProgress(jobID, 0, total, "Starting annotation")

	failed := 0
	var firstErr error
	for i, req := range sentences {
		if err := ctx.Err(); err != nil {
			return err
		}
		if req.Language == "" {
			req.Language = language
		}
		if req.Annotator == "" && len(req.Tokens) == 0 {
			req.Annotator = annotatorName
		}

		sentence, err := e.AddSentence(ctx, req)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("sentence %d: %w", i, err)
			}
			log.Printf("Job %s: sentence %d failed: %v", jobID, i, err)
		} else {
			e.jobManager.AddSentenceID(jobID, sentence.ID)
		}
		e.jobManager.UpdateJobProgress(jobID, i+1, total, fmt.Sprintf("Annotated %d of %d sentences", i+1, total))
	}

	e.flushStore()
	if failed > 0 {
		return fmt.Errorf("%d of %d sentences failed, first error: %w", failed, total, firstErr)
	}
	log.Printf("Annotated and stored %d sentences (async).", total)
	return nil
}

// ImportConlluAsync stores the pre-annotated sentences of a CoNLL-U document
// in a background job.
func (e *Engine) ImportConlluAsync(r io.Reader, language string) (string, error) {
	if language == "" {
		language = e.settings.DefaultLanguage
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read conllu document: %w", err)
	}
	if len(data) == 0 {
		return "", errors.NewValidationError("body", "conllu document is empty")
	}

	jobID := e.jobManager.CreateJob(model.JobTypeImportCoNLLU, ConlluAnnotator, language, map[string]string{
		"operation": "import_conllu",
		"bytes":     strconv.Itoa(len(data)),
	})

	err = e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeImportConlluJob(ctx, data, language, jobID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start conllu import job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeImportConlluJob(ctx context.Context, data []byte, language, jobID string) error {
	sentences, err := annotator.ReadConllu(bytes.NewReader(data))
	if err != nil {
		return err
	}

	total := len(sentences)
	e.jobManager.UpdateJobProgress(jobID, 0, total, "Starting import")
	for i, s := range sentences {
		if err := ctx.Err(); err != nil {
			return err
		}
		sentence, err := e.AddSentence(ctx, services.AddSentenceRequest{
			ID:        s.ID,
			Text:      s.Text,
			Language:  language,
			Annotator: ConlluAnnotator,
			Tokens:    s.Tokens,
		})
		if err != nil {
			return fmt.Errorf("sentence %d (%s): %w", i, s.ID, err)
		}
		e.jobManager.AddSentenceID(jobID, sentence.ID)
		e.jobManager.UpdateJobProgress(jobID, i+1, total, fmt.Sprintf("Imported %d of %d sentences", i+1, total))
	}

	e.flushStore()
	log.Printf("Imported %d sentences from conllu (async).", total)
	return nil
}
