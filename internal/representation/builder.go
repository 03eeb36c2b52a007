// Package representation turns an annotated token stream into the flat
// markup string that NatEx patterns are matched against.
//
// Every token is written as <LITERAL@UPOS#DEP[!]> and the text between tokens
// is copied verbatim, so a representation of "Turn off the lights" reads
//
//	<Turn@VERB#ROOT!> <off@ADP#COMPOUND PRT> <the@DET#DET> <lights@NOUN#OBJ>
//
// Alongside the string a SpanMap records, for every byte, the original span
// of the element that produced it.
package representation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
)

// Markup characters used in the representation.
const (
	TokenOpen   = '<'
	TokenClose  = '>'
	POSMarker   = '@'
	DepMarker   = '#'
	FlagMarker  = '!'
	AnyMarker   = ':'
	depInternal = ":"
	depRendered = " "
)

// Options controls how tokens are serialized.
type Options struct {
	// FlagFeature and FlagValue select the morphological feature that sets the
	// trailing "!" marker of a token.
	FlagFeature string
	FlagValue   string
}

// DefaultOptions flags imperative verbs.
func DefaultOptions() Options {
	return Options{FlagFeature: "Mood", FlagValue: "Imp"}
}

// Representation is the output of Build. It is never mutated after Build returns.
type Representation struct {
	Text       string
	Original   string
	Spans      SpanMap
	Tokens     []model.AnnotatedToken
	Separators []model.Separator
}

func (r *Representation) String() string {
	return r.Text
}

// Reconstruct concatenates separators and tokens in sequence order. The result
// always equals Original.
func (r *Representation) Reconstruct() string {
	type piece struct {
		index   int
		literal string
	}
	pieces := make([]piece, 0, len(r.Tokens)+len(r.Separators))
	for _, t := range r.Tokens {
		pieces = append(pieces, piece{t.Index, t.Literal})
	}
	for _, s := range r.Separators {
		pieces = append(pieces, piece{s.Index, s.Literal})
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].index < pieces[j].index })

	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.literal)
	}
	return b.String()
}

type builder struct {
	opts       Options
	original   string
	text       strings.Builder
	spans      SpanMap
	tokens     []model.AnnotatedToken
	separators []model.Separator
	seq        int
}

// Build writes the representation of original from its annotated tokens.
// Tokens must appear in sentence order. A named-entity run opened by a begin
// marker is merged into a single token up to and including its end marker; a
// run that is never closed is reported as an AnnotationIncompleteError.
func Build(original string, tokens []model.AnnotatedToken, opts Options) (*Representation, error) {
	if opts.FlagFeature == "" {
		opts = DefaultOptions()
	}
	b := &builder{
		opts:     opts,
		original: original,
		spans:    make(SpanMap, 0, len(original)*3+1),
	}

	cursor := 0
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		start, err := b.locate(cursor, tok, i)
		if err != nil {
			return nil, err
		}
		if start > cursor {
			b.writeSeparator(model.Span{Start: cursor, End: start})
		}
		end := start + len(tok.Literal)

		if tok.Entity == model.EntityBegin {
			j := i
			for {
				j++
				if j >= len(tokens) {
					return nil, errors.NewAnnotationIncompleteError(i, tok.Literal,
						"named-entity run has no end marker")
				}
				next := tokens[j]
				nextStart, err := b.locate(end, next, j)
				if err != nil {
					return nil, err
				}
				end = nextStart + len(next.Literal)
				if next.Entity == model.EntityEnd {
					break
				}
			}
			tok.Literal = original[start:end]
			i = j
		}

		tok.Span = model.Span{Start: start, End: end}
		b.writeToken(tok)
		cursor = end
	}
	if cursor < len(original) {
		b.writeSeparator(model.Span{Start: cursor, End: len(original)})
	}
	b.spans = append(b.spans, model.Span{Start: len(original), End: len(original)})

	return &Representation{
		Text:       b.text.String(),
		Original:   original,
		Spans:      b.spans,
		Tokens:     b.tokens,
		Separators: b.separators,
	}, nil
}

// locate finds where tok starts at or after cursor. The annotator's own span
// is trusted when it agrees with the text; otherwise the literal is searched.
func (b *builder) locate(cursor int, tok model.AnnotatedToken, index int) (int, error) {
	if tok.Literal == "" {
		return 0, errors.NewAnnotationIncompleteError(index, "", "token has an empty literal")
	}
	s := tok.Span
	if s.Start >= cursor && s.End <= len(b.original) && s.Len() == len(tok.Literal) &&
		b.original[s.Start:s.End] == tok.Literal {
		return s.Start, nil
	}
	offset := strings.Index(b.original[cursor:], tok.Literal)
	if offset < 0 {
		return 0, errors.NewAnnotationIncompleteError(index, tok.Literal,
			fmt.Sprintf("literal not found in sentence after offset %d", cursor))
	}
	return cursor + offset, nil
}

func (b *builder) writeSeparator(span model.Span) {
	literal := b.original[span.Start:span.End]
	b.separators = append(b.separators, model.Separator{Literal: literal, Span: span, Index: b.seq})
	b.seq++
	b.text.WriteString(literal)
	b.spans = b.spans.fill(span, len(literal))
}

func (b *builder) writeToken(tok model.AnnotatedToken) {
	tok.Index = b.seq
	b.seq++
	b.tokens = append(b.tokens, tok)

	markup := Serialize(tok, b.opts)
	b.text.WriteString(markup)
	b.spans = b.spans.fill(tok.Span, len(markup))
}

// Serialize renders a single token as <LITERAL@UPOS#DEP[!]>.
func Serialize(tok model.AnnotatedToken, opts Options) string {
	var sb strings.Builder
	sb.Grow(len(tok.Literal) + len(tok.UPOS) + len(tok.Dependency) + 5)
	sb.WriteByte(TokenOpen)
	sb.WriteString(tok.Literal)
	sb.WriteByte(POSMarker)
	sb.WriteString(strings.ToUpper(tok.UPOS))
	sb.WriteByte(DepMarker)
	sb.WriteString(strings.ReplaceAll(strings.ToUpper(tok.Dependency), depInternal, depRendered))
	if opts.FlagFeature != "" && tok.Features.Is(opts.FlagFeature, opts.FlagValue) {
		sb.WriteByte(FlagMarker)
	}
	sb.WriteByte(TokenClose)
	return sb.String()
}
