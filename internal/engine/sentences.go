package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/natex"
	"github.com/gcbaptista/go-natex/services"
)

// ExternalAnnotator is recorded as the annotator of sentences submitted with
// their own tokens.
const ExternalAnnotator = "external"

// AddSentence annotates the request text (or takes its tokens as given),
// builds the representation and stores the sentence.
func (e *Engine) AddSentence(ctx context.Context, req services.AddSentenceRequest) (*model.Sentence, error) {
	sentence, err := e.prepareSentence(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.store.Put(sentence); err != nil {
		return nil, err
	}
	e.tags.Add(sentence)
	return sentence, nil
}

// prepareSentence turns a request into a sentence record without storing it.
func (e *Engine) prepareSentence(ctx context.Context, req services.AddSentenceRequest) (*model.Sentence, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.NewValidationError("text", "text cannot be empty")
	}
	if e.settings.MaxSentenceLength > 0 && len(req.Text) > e.settings.MaxSentenceLength {
		return nil, errors.NewValidationError("text",
			fmt.Sprintf("text is %d bytes long, the limit is %d", len(req.Text), e.settings.MaxSentenceLength))
	}

	language := req.Language
	if language == "" {
		language = e.settings.DefaultLanguage
	}

	tokens := req.Tokens
	annotatorName := req.Annotator
	if len(tokens) == 0 {
		if annotatorName == "" {
			annotatorName = e.settings.DefaultAnnotator
		}
		a, err := e.annotators.Get(annotatorName)
		if err != nil {
			return nil, err
		}
		tokens, err = a.Annotate(ctx, req.Text, language)
		if err != nil {
			return nil, fmt.Errorf("failed to annotate sentence with %s: %w", annotatorName, err)
		}
	} else if annotatorName == "" {
		annotatorName = ExternalAnnotator
	}

	s, err := natex.NewWithOptions(req.Text, tokens, e.options)
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	return &model.Sentence{
		ID:             id,
		Text:           req.Text,
		Language:       language,
		Annotator:      annotatorName,
		Tokens:         tokens,
		Representation: s.Representation(),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// GetSentence returns a stored sentence.
func (e *Engine) GetSentence(id string) (*model.Sentence, error) {
	return e.store.Get(id)
}

// ListSentences returns a page of stored sentences and the total count.
func (e *Engine) ListSentences(offset, limit int) ([]*model.Sentence, int, error) {
	return e.store.List(offset, limit)
}

// DeleteSentence removes a stored sentence.
func (e *Engine) DeleteSentence(id string) error {
	if err := e.store.Delete(id); err != nil {
		return err
	}
	e.tags.Remove(id)
	log.Printf("Sentence '%s' deleted", id)
	return nil
}

// loadSentence rebuilds the matchable form of a stored sentence.
func (e *Engine) loadSentence(id string) (*natex.Sentence, error) {
	record, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	return natex.NewWithOptions(record.Text, record.Tokens, e.options)
}
