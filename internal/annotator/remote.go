package annotator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
)

const maxResponseBytes = 16 << 20

// Adapter translates between the canonical token shape and the wire format of
// one NLP backend. Every backend names the same attributes differently; the
// adapter is the only place that knows those names.
type Adapter interface {
	// Name identifies the wire format ("stanza", "spacy").
	Name() string
	// Request returns the path and JSON body of an annotation request.
	Request(text, language string) (path string, body any)
	// Decode turns a response body into tokens of text.
	Decode(text string, body []byte) ([]model.AnnotatedToken, error)
	// ReadyPath is the path answering 200 once models are loaded.
	ReadyPath(language string) string
}

// NewAdapter returns the adapter for a configured adapter name.
func NewAdapter(name, modelSize string) (Adapter, error) {
	switch strings.ToLower(name) {
	case config.AdapterStanza:
		return StanzaAdapter{}, nil
	case config.AdapterSpacy:
		return SpacyAdapter{Size: modelSize}, nil
	}
	return nil, errors.NewValidationError("adapter", fmt.Sprintf("unknown adapter '%s'", name))
}

// RemoteAnnotator calls an NLP service over HTTP.
type RemoteAnnotator struct {
	name    string
	baseURL string
	adapter Adapter
	client  *http.Client
	lang    string
}

// NewRemoteAnnotator creates an annotator for a service at baseURL.
func NewRemoteAnnotator(name, baseURL string, adapter Adapter, timeout time.Duration) *RemoteAnnotator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteAnnotator{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		adapter: adapter,
		client:  &http.Client{Timeout: timeout},
		lang:    "en",
	}
}

func (r *RemoteAnnotator) Name() string { return r.name }

// Annotate sends text to the service and decodes the tokens it returns.
func (r *RemoteAnnotator) Annotate(ctx context.Context, text, language string) ([]model.AnnotatedToken, error) {
	path, body := r.adapter.Request(text, language)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", r.adapter.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewAnnotatorUnavailableError(r.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.NewAnnotatorUnavailableError(r.name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewAnnotatorUnavailableError(r.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAnnotatorUnavailableError(r.name,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	tokens, err := r.adapter.Decode(text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", r.adapter.Name(), err)
	}
	return tokens, nil
}

// Ready reports whether the service is up and has its models loaded.
func (r *RemoteAnnotator) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+r.adapter.ReadyPath(r.lang), nil)
	if err != nil {
		return errors.NewAnnotatorUnavailableError(r.name, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return errors.NewAnnotatorUnavailableError(r.name, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.NewAnnotatorUnavailableError(r.name, fmt.Errorf("readiness check returned status %d", resp.StatusCode))
	}
	return nil
}

// upper normalizes a tag value the way representations expect it.
func upper(s string) string {
	s = strings.TrimSpace(s)
	if s == "_" {
		return ""
	}
	return strings.ToUpper(s)
}

// locate fills missing spans by searching literals in order.
func locate(text string, tokens []model.AnnotatedToken) {
	cursor := 0
	for i := range tokens {
		t := &tokens[i]
		if t.Span.End > t.Span.Start && t.Span.End <= len(text) && text[t.Span.Start:t.Span.End] == t.Literal {
			cursor = t.Span.End
			continue
		}
		if offset := strings.Index(text[cursor:], t.Literal); offset >= 0 {
			t.Span = model.Span{Start: cursor + offset, End: cursor + offset + len(t.Literal)}
			cursor = t.Span.End
		}
	}
}
