package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Sentence is an annotated sentence as kept by the sentence stores.
type Sentence struct {
	ID             string           `json:"id"`
	Text           string           `json:"text"`
	Language       string           `json:"language"`
	Annotator      string           `json:"annotator"`
	Tokens         []AnnotatedToken `json:"tokens"`
	Representation string           `json:"representation,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// MatchResult is a successful match or search, expressed in original-text
// coordinates. Span holds byte offsets for slicing in Go; CharSpan holds the
// same range in code points, which is what clients outside Go count in.
type MatchResult struct {
	Span     Span   `json:"span"`
	CharSpan Span   `json:"char_span"`
	Original string `json:"-"`
	Text     string `json:"match"`
	Regex    string `json:"regex,omitempty"`
}

// NewMatchResult slices original by span and records the regex used.
func NewMatchResult(original string, span Span, regex string) *MatchResult {
	text := original[span.Start:span.End]
	start := utf8.RuneCountInString(original[:span.Start])
	return &MatchResult{
		Span:     span,
		CharSpan: Span{Start: start, End: start + utf8.RuneCountInString(text)},
		Original: original,
		Text:     text,
		Regex:    regex,
	}
}

// String renders the match with code point offsets.
func (m *MatchResult) String() string {
	return fmt.Sprintf("<natex.Match object; span=(%d, %d), match='%s'>", m.CharSpan.Start, m.CharSpan.End, m.Text)
}
