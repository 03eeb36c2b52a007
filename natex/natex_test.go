package natex

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natexerrors "github.com/gcbaptista/go-natex/internal/errors"
	natextesting "github.com/gcbaptista/go-natex/internal/testing"
	"github.com/gcbaptista/go-natex/model"
)

type fixtureAnnotator struct {
	fixture natextesting.Fixture
	err     error
}

func (a fixtureAnnotator) Name() string { return "fixture" }

func (a fixtureAnnotator) Annotate(_ context.Context, _, _ string) ([]model.AnnotatedToken, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.fixture.CopyTokens(), nil
}

func newSentence(t *testing.T, f natextesting.Fixture) *Sentence {
	t.Helper()
	s, err := New(f.Text, f.CopyTokens())
	require.NoError(t, err)
	return s
}

func TestSentence_English(t *testing.T) {
	s := newSentence(t, natextesting.TurnOffTheLights())

	assert.Equal(t, "Turn off the lights", s.Text())
	assert.Equal(t, "<Turn@VERB#ROOT!> <off@ADP#COMPOUND PRT> <the@DET#DET> <lights@NOUN#OBJ>", s.Representation())

	all, err := s.FindAll(`<>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Turn", "off", "the", "lights"}, all)

	nouns, err := s.FindAll(`<@NOUN>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"lights"}, nouns)

	m, err := s.Search(`<@DET> <@NOUN>`)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.Span{Start: 9, End: 19}, m.Span)

	out, err := s.Sub(`<@NOUN>`, "lamps")
	require.NoError(t, err)
	assert.Equal(t, "Turn off the lamps", out)
}

func TestSentence_German(t *testing.T) {
	s := newSentence(t, natextesting.InNewYork())

	m, err := s.Match(`@ADP <@PROPN>`)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "In New York", m.Text)

	m, err = s.Match(`@PROPN`)
	require.NoError(t, err)
	assert.Nil(t, m)

	pieces, err := s.Split(`<@VERB>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"In New York ", " ein Hund aus der Hand."}, pieces)
}

func TestSentence_AdjacentTokens(t *testing.T) {
	s := newSentence(t, natextesting.InNewYork())

	found, err := s.FindAll(`<@NOUN><@PUNCT>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hand."}, found)

	m, err := s.Search(`<@NOUN><@PUNCT>`)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.Span{Start: 36, End: 41}, m.Span)

	m, err = s.Search(`<@DET><@NOUN>`)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "ein Hund", m.Text)
}

func TestSentence_Flags(t *testing.T) {
	s := newSentence(t, natextesting.HundsgemeineHand())

	m, err := s.Search(`<@DET> <hund\w*@NOUN>`, I)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.Span{Start: 19, End: 27}, m.Span)
	assert.Equal(t, "ein Hund", m.Text)

	m, err = s.Search(`<@DET> <hund\w*@NOUN>`)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestSentence_CompilationErrorSurfaces(t *testing.T) {
	s := newSentence(t, natextesting.TurnOffTheLights())

	_, err := s.FindAll(`<@NOUN`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, natexerrors.ErrCompilation))

	_, err = s.Sub(`<<>`, "x")
	assert.True(t, errors.Is(err, natexerrors.ErrCompilation))
}

func TestNew_AnnotationIncomplete(t *testing.T) {
	_, err := New("In New York", []model.AnnotatedToken{
		{Literal: "In", UPOS: "ADP", Dependency: "case"},
		{Literal: "New", UPOS: "PROPN", Dependency: "nmod", Entity: model.EntityBegin},
		{Literal: "York", UPOS: "PROPN", Dependency: "flat"},
	})
	assert.True(t, errors.Is(err, natexerrors.ErrAnnotationIncomplete))
}

func TestNewWithOptions_FlagFeature(t *testing.T) {
	f := natextesting.InNewYork()
	s, err := NewWithOptions(f.Text, f.CopyTokens(), Options{FlagFeature: "Mood", FlagValue: "Ind"})
	require.NoError(t, err)

	flagged, err := s.FindAll(`<!>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"frisst"}, flagged)
}

func TestParse(t *testing.T) {
	f := natextesting.Gurkensalat("Ein")

	s, err := Parse(context.Background(), fixtureAnnotator{fixture: f}, f.Text, f.Language)
	require.NoError(t, err)
	out, err := s.Sub(`@(NOUN|PROPN)`, "Affe")
	require.NoError(t, err)
	assert.Equal(t, "Ein Affe isst keinen Affe in Affe.", out)

	backendDown := errors.New("connection refused")
	_, err = Parse(context.Background(), fixtureAnnotator{err: backendDown}, f.Text, f.Language)
	assert.ErrorIs(t, err, backendDown)

	_, err = Parse(context.Background(), nil, f.Text, f.Language)
	assert.True(t, errors.Is(err, natexerrors.ErrInvalidInput))
}

func TestPattern_ReusedConcurrently(t *testing.T) {
	p := MustCompile(`<@NOUN>`)
	assert.Equal(t, `<@NOUN>`, p.Source())
	assert.Equal(t, `(<[^<@]*@NOUN[^>]*>)`, p.String())

	sentences := []*Sentence{
		newSentence(t, natextesting.TurnOffTheLights()),
		newSentence(t, natextesting.InNewYork()),
		newSentence(t, natextesting.Gurkensalat("Ein")),
	}
	want := [][]string{{"lights"}, {"Hund", "Hand"}, {"Hund", "Gurkensalat"}}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := i % len(sentences)
			assert.Equal(t, want[k], p.FindAll(sentences[k]))
		}(i)
	}
	wg.Wait()
}

func TestPattern_Idempotent(t *testing.T) {
	s := newSentence(t, natextesting.InNewYork())
	first := MustCompile(`@ADP <@PROPN>`)
	second := MustCompile(`@ADP <@PROPN>`)

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, first.Match(s), second.Match(s))
}

func TestMatchResult_CharSpan(t *testing.T) {
	text := "Öffne die Tür"
	tokens := []model.AnnotatedToken{
		{Literal: "Öffne", UPOS: "VERB", Dependency: "root", Features: model.Features{"Mood": "Imp"}},
		{Literal: "die", UPOS: "DET", Dependency: "det"},
		{Literal: "Tür", UPOS: "NOUN", Dependency: "obj"},
	}
	s, err := New(text, tokens)
	require.NoError(t, err)

	m, err := s.Search(`<@NOUN>`)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.Span{Start: 11, End: 15}, m.Span)
	assert.Equal(t, model.Span{Start: 10, End: 13}, m.CharSpan)
	assert.Equal(t, "Tür", text[m.Span.Start:m.Span.End])
	assert.Equal(t, "Tür", string([]rune(text)[m.CharSpan.Start:m.CharSpan.End]))
	assert.Equal(t, "<natex.Match object; span=(10, 13), match='Tür'>", m.String())
}

func TestSearchAll(t *testing.T) {
	s := newSentence(t, natextesting.InNewYork())
	results := MustCompile(`<@DET> <@NOUN>`).SearchAll(s)
	require.Len(t, results, 2)
	assert.Equal(t, "ein Hund", results[0].Text)
	assert.Equal(t, "der Hand", results[1].Text)
}
