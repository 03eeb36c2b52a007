package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/internal/typoutil"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/natex"
	"github.com/gcbaptista/go-natex/services"
)

// Run applies a pattern operation to a stored sentence. Every run is
// recorded for the analytics dashboard.
func (e *Engine) Run(id string, op services.Operation, req services.PatternRequest) (*services.OperationResult, error) {
	start := time.Now()
	result, err := e.run(id, op, req, start)
	e.analytics.Track(model.OperationEvent{
		Operation:  string(op),
		Pattern:    req.Pattern,
		SentenceID: id,
		Matched:    err == nil && result.Matched,
		Failed:     err != nil,
		Took:       time.Since(start),
	})
	return result, err
}

func (e *Engine) run(id string, op services.Operation, req services.PatternRequest, start time.Time) (*services.OperationResult, error) {
	p, err := e.compile(req.Pattern, req.Flags)
	if err != nil {
		return nil, err
	}
	s, err := e.loadSentence(id)
	if err != nil {
		return nil, err
	}

	result := &services.OperationResult{
		SentenceID: id,
		Operation:  op,
		Pattern:    req.Pattern,
		Regex:      p.String(),
	}
	switch op {
	case services.OpMatch:
		result.Match = p.Match(s)
		result.Matched = result.Match != nil
	case services.OpSearch:
		result.Match = p.Search(s)
		result.Matched = result.Match != nil
	case services.OpFindAll:
		result.Results = p.FindAll(s)
		result.Matched = len(result.Results) > 0
	case services.OpSub:
		result.Text = p.Sub(s, req.Replacement)
		result.Matched = result.Text != s.Text()
	case services.OpSplit:
		limit := req.Limit
		if limit == 0 {
			limit = -1
		}
		result.Results = p.Split(s, limit)
		result.Matched = len(result.Results) > 1
	default:
		return nil, errors.NewValidationError("operation", fmt.Sprintf("unknown operation '%s'", op))
	}
	result.Took = time.Since(start).Microseconds()
	return result, nil
}

// CompilePattern compiles a pattern without running it and warns about tag
// values outside the Universal Dependencies vocabularies.
func (e *Engine) CompilePattern(pattern, flags string) (*services.CompileResult, error) {
	p, err := e.compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	return &services.CompileResult{
		Pattern:  pattern,
		Regex:    p.String(),
		Flags:    p.Flags().String(),
		Warnings: tagWarnings(pattern),
	}, nil
}

func (e *Engine) compile(pattern, flags string) (*natex.Pattern, error) {
	if pattern == "" {
		return nil, errors.NewValidationError("pattern", "pattern cannot be empty")
	}
	if e.settings.MaxPatternLength > 0 && len(pattern) > e.settings.MaxPatternLength {
		return nil, errors.NewValidationError("pattern",
			fmt.Sprintf("pattern is %d bytes long, the limit is %d", len(pattern), e.settings.MaxPatternLength))
	}
	f, err := natex.ParseFlags(flags)
	if err != nil {
		return nil, err
	}
	return e.patterns.compile(pattern, f)
}

// suggestionDistance bounds the edit distance of "did you mean" hints.
const suggestionDistance = 1

// tagWarnings lists plain POS and dependency values that are not Universal
// Dependencies tags. Values containing regex syntax are not checked.
func tagWarnings(pattern string) []string {
	var warnings []string
	seen := make(map[string]bool)
	check := func(marker byte, value string, known func(string) bool, vocabulary []string, kind string) {
		if value == "" || seen[string(marker)+value] || strings.ContainsAny(value, `\.*+?()[]{}|^$`) {
			return
		}
		seen[string(marker)+value] = true
		if known(strings.ToUpper(value)) {
			return
		}
		warning := fmt.Sprintf("'%c%s' is not a Universal Dependencies %s tag", marker, value, kind)
		base, _, _ := strings.Cut(strings.ToUpper(value), ":")
		if tag, ok := typoutil.Closest(base, vocabulary, suggestionDistance); ok {
			warning += fmt.Sprintf(", did you mean '%c%s'?", marker, tag)
		}
		warnings = append(warnings, warning)
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '@' && c != '#' {
			continue
		}
		if i > 0 && pattern[i-1] == '\\' {
			continue
		}
		j := i + 1
		for j < len(pattern) && strings.IndexByte("@#:!<> ", pattern[j]) < 0 {
			j++
		}
		value := pattern[i+1 : j]
		if c == '@' {
			check(c, value, model.IsUniversalPOS, model.UniversalPOSTags, "part-of-speech")
		} else {
			check(c, value, model.IsUniversalDep, model.UniversalDepTags, "dependency")
		}
		i = j - 1
	}
	sort.Strings(warnings)
	return warnings
}
