// Package natex matches regular-expression-like patterns over annotated
// sentences. A pattern selects tokens by part-of-speech tag, dependency label
// or morphological flag, and every result is reported in the coordinates of
// the original sentence.
//
//	s, _ := natex.New("Turn off the lights", tokens)
//	s.FindAll(`<@NOUN>`)                 // ["lights"]
//	s.Sub(`<@NOUN>`, "lamps")            // "Turn off the lamps"
//	m, _ := s.Search(`<@DET> <@NOUN>`)   // span (9, 19)
package natex

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/internal/pattern"
	"github.com/gcbaptista/go-natex/internal/representation"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

// Flag modifies how a pattern matches.
type Flag = pattern.Flag

// Supported flags.
const (
	IgnoreCase = pattern.IgnoreCase
	Multiline  = pattern.Multiline
	DotAll     = pattern.DotAll

	I = pattern.I
	M = pattern.M
	S = pattern.S
)

// ParseFlags reads a flag string such as "i" or "ms".
func ParseFlags(s string) (Flag, error) {
	return pattern.ParseFlags(s)
}

// Options controls how a sentence is serialized for matching.
type Options struct {
	// FlagFeature and FlagValue select the morphological feature that marks a
	// token with "!". The default flags imperative verbs (Mood=Imp).
	FlagFeature string
	FlagValue   string
}

func (o Options) representation() representation.Options {
	if o.FlagFeature == "" {
		return representation.DefaultOptions()
	}
	return representation.Options{FlagFeature: o.FlagFeature, FlagValue: o.FlagValue}
}

// Sentence is an annotated sentence ready for matching. It is immutable and
// safe for concurrent use.
type Sentence struct {
	rep *representation.Representation
}

// New builds a sentence from text and the tokens an annotator produced for it.
func New(text string, tokens []model.AnnotatedToken) (*Sentence, error) {
	return NewWithOptions(text, tokens, Options{})
}

// NewWithOptions is like New with explicit serialization options.
func NewWithOptions(text string, tokens []model.AnnotatedToken, opts Options) (*Sentence, error) {
	rep, err := representation.Build(text, tokens, opts.representation())
	if err != nil {
		return nil, err
	}
	return &Sentence{rep: rep}, nil
}

// Parse annotates text with a and builds the sentence.
func Parse(ctx context.Context, a services.Annotator, text, language string) (*Sentence, error) {
	if a == nil {
		return nil, errors.NewValidationError("annotator", "no annotator given")
	}
	tokens, err := a.Annotate(ctx, text, language)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate sentence with %s: %w", a.Name(), err)
	}
	return New(text, tokens)
}

// Text returns the original sentence.
func (s *Sentence) Text() string { return s.rep.Original }

// Representation returns the markup string patterns are matched against.
func (s *Sentence) Representation() string { return s.rep.Text }

// Tokens returns the tokens after named-entity merging.
func (s *Sentence) Tokens() []model.AnnotatedToken {
	out := make([]model.AnnotatedToken, len(s.rep.Tokens))
	copy(out, s.rep.Tokens)
	return out
}

// Separators returns the text between tokens.
func (s *Sentence) Separators() []model.Separator {
	out := make([]model.Separator, len(s.rep.Separators))
	copy(out, s.rep.Separators)
	return out
}

func (s *Sentence) String() string {
	return s.rep.Text
}

// Match applies pattern at the start of the sentence. A nil result with a nil
// error means the pattern does not match.
func (s *Sentence) Match(pattern string, flags ...Flag) (*model.MatchResult, error) {
	p, err := Compile(pattern, flags...)
	if err != nil {
		return nil, err
	}
	return p.Match(s), nil
}

// Search finds the leftmost match of pattern.
func (s *Sentence) Search(pattern string, flags ...Flag) (*model.MatchResult, error) {
	p, err := Compile(pattern, flags...)
	if err != nil {
		return nil, err
	}
	return p.Search(s), nil
}

// FindAll returns the plain text of every non-overlapping match.
func (s *Sentence) FindAll(pattern string, flags ...Flag) ([]string, error) {
	p, err := Compile(pattern, flags...)
	if err != nil {
		return nil, err
	}
	return p.FindAll(s), nil
}

// Sub replaces every match with replacement.
func (s *Sentence) Sub(pattern, replacement string, flags ...Flag) (string, error) {
	p, err := Compile(pattern, flags...)
	if err != nil {
		return "", err
	}
	return p.Sub(s, replacement), nil
}

// Split cuts the sentence at every match.
func (s *Sentence) Split(pattern string, flags ...Flag) ([]string, error) {
	p, err := Compile(pattern, flags...)
	if err != nil {
		return nil, err
	}
	return p.Split(s, -1), nil
}
