package engine

import (
	stderrors "errors"
	"fmt"
	"log"
	"time"

	"github.com/gcbaptista/go-natex/index"
	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

// OpCorpus is the operation name corpus searches are recorded under.
const OpCorpus = "corpus"

const (
	defaultCorpusHits = 100
	maxCorpusHits     = 1000
)

// SearchCorpus runs a pattern over every stored sentence that carries all
// of the required tag keys and returns the sentences it matched, in the
// order they were added.
func (e *Engine) SearchCorpus(req services.CorpusSearchRequest) (*services.CorpusSearchResult, error) {
	start := time.Now()
	result, err := e.searchCorpus(req, start)
	e.analytics.Track(model.OperationEvent{
		Operation: OpCorpus,
		Pattern:   req.Pattern,
		Matched:   err == nil && len(result.Hits) > 0,
		Failed:    err != nil,
		Took:      time.Since(start),
	})
	return result, err
}

func (e *Engine) searchCorpus(req services.CorpusSearchRequest, start time.Time) (*services.CorpusSearchResult, error) {
	p, err := e.compile(req.Pattern, req.Flags)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(req.Require))
	for _, raw := range req.Require {
		key, ok := index.NormalizeKey(raw)
		if !ok {
			return nil, errors.NewValidationError("require",
				fmt.Sprintf("'%s' is not a tag key, expected @UPOS, #DEP or =lemma", raw))
		}
		keys = append(keys, key)
	}

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultCorpusHits
	case limit > maxCorpusHits:
		limit = maxCorpusHits
	}

	result := &services.CorpusSearchResult{
		Pattern: req.Pattern,
		Regex:   p.String(),
		Hits:    []services.CorpusHit{},
		Total:   e.tags.Len(),
	}
	for _, id := range e.tags.Candidates(keys) {
		if len(result.Hits) == limit {
			result.Truncated = true
			break
		}
		s, err := e.loadSentence(id)
		if err != nil {
			// deleted since the candidates were read
			if !stderrors.Is(err, errors.ErrSentenceNotFound) {
				log.Printf("Warning: Skipping sentence '%s' in corpus search: %v", id, err)
			}
			continue
		}
		result.Scanned++
		if matches := p.SearchAll(s); len(matches) > 0 {
			result.Hits = append(result.Hits, services.CorpusHit{SentenceID: id, Text: s.Text(), Matches: matches})
		}
	}
	result.Took = time.Since(start).Microseconds()
	return result, nil
}

// AnalyticsDashboard summarizes recent pattern operations.
func (e *Engine) AnalyticsDashboard() model.AnalyticsDashboard {
	dashboard := e.analytics.Dashboard()
	dashboard.StoredSentences = e.tags.Len()
	return dashboard
}

// TagCounts returns how often each indexed key occurs, most frequent first.
// prefix selects part-of-speech ("@"), dependency ("#") or lemma ("=") keys.
func (e *Engine) TagCounts(prefix string) []index.TagCount {
	return e.tags.Counts(prefix)
}
