package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/internal/errors"
	testutil "github.com/gcbaptista/go-natex/internal/testing"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

func newTestEngine(t *testing.T, configure ...func(*config.Settings)) *Engine {
	t.Helper()
	settings := config.Default()
	settings.DataDir = t.TempDir()
	for _, fn := range configure {
		fn(&settings)
	}
	e, err := NewEngine(settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func addFixture(t *testing.T, e *Engine, id string, f testutil.Fixture) *model.Sentence {
	t.Helper()
	s, err := e.AddSentence(context.Background(), services.AddSentenceRequest{
		ID:       id,
		Text:     f.Text,
		Language: f.Language,
		Tokens:   f.CopyTokens(),
	})
	require.NoError(t, err)
	return s
}

func TestEngine_AddSentenceWithLexicon(t *testing.T) {
	e := newTestEngine(t)

	s, err := e.AddSentence(context.Background(), services.AddSentenceRequest{Text: "Turn off the lights"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "en", s.Language)
	assert.Equal(t, "lexicon", s.Annotator)
	assert.Equal(t, "<Turn@VERB#ROOT!> <off@ADP#COMPOUND PRT> <the@DET#DET> <lights@NOUN#OBJ>", s.Representation)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"<:OBJ>", []string{"lights"}},
		{"<!>", []string{"Turn"}},
		{"<(@NOUN|#AMOD)>", []string{"lights"}},
		{"<(Affe|@NOUN|#AMOD)>", []string{"lights"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			result, err := e.Run(s.ID, services.OpFindAll, services.PatternRequest{Pattern: tt.pattern})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Results)
			assert.True(t, result.Matched)
			assert.NotEmpty(t, result.Regex)
		})
	}
}

func TestEngine_AddSentenceWithTokens(t *testing.T) {
	e := newTestEngine(t)
	s := addFixture(t, e, "gurke", testutil.Gurkensalat("Ein"))
	assert.Equal(t, ExternalAnnotator, s.Annotator)
	assert.Equal(t, "de", s.Language)

	result, err := e.Run("gurke", services.OpSub, services.PatternRequest{Pattern: "#NSUBJ", Replacement: "Affe"})
	require.NoError(t, err)
	assert.Equal(t, "Ein Affe isst keinen Gurkensalat in New York.", result.Text)
	assert.True(t, result.Matched)

	result, err = e.Run("gurke", services.OpSearch, services.PatternRequest{Pattern: "<@PROPN>"})
	require.NoError(t, err)
	require.NotNil(t, result.Match)
	assert.Equal(t, "New York", result.Match.Text)
	assert.Equal(t, model.Span{Start: 36, End: 44}, result.Match.Span)

	result, err = e.Run("gurke", services.OpSplit, services.PatternRequest{Pattern: "<@ADP>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ein Hund isst keinen Gurkensalat ", " New York."}, result.Results)

	result, err = e.Run("gurke", services.OpMatch, services.PatternRequest{Pattern: "<@NOUN>"})
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Nil(t, result.Match)
}

func TestEngine_FlagsAndSearch(t *testing.T) {
	e := newTestEngine(t)
	addFixture(t, e, "hand", testutil.HundsgemeineHand())

	result, err := e.Run("hand", services.OpSearch, services.PatternRequest{Pattern: `<@DET> <hund\w*@NOUN>`, Flags: "i"})
	require.NoError(t, err)
	require.NotNil(t, result.Match)
	assert.Equal(t, model.Span{Start: 19, End: 27}, result.Match.Span)
	assert.Equal(t, "ein Hund", result.Match.Text)
}

func TestEngine_Errors(t *testing.T) {
	e := newTestEngine(t, func(s *config.Settings) {
		s.MaxPatternLength = 16
		s.MaxSentenceLength = 32
	})
	addFixture(t, e, "lights", testutil.TurnOffTheLights())
	ctx := context.Background()

	_, err := e.AddSentence(ctx, services.AddSentenceRequest{Text: "   "})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = e.AddSentence(ctx, services.AddSentenceRequest{Text: strings.Repeat("a ", 20)})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = e.AddSentence(ctx, services.AddSentenceRequest{Text: "Hallo", Annotator: "stanza"})
	assert.ErrorIs(t, err, errors.ErrUnknownAnnotator)

	_, err = e.AddSentence(ctx, services.AddSentenceRequest{
		Text:   "Turn off",
		Tokens: []model.AnnotatedToken{{Literal: "Turn", UPOS: "VERB", Entity: model.EntityBegin}},
	})
	assert.ErrorIs(t, err, errors.ErrAnnotationIncomplete)

	_, err = e.Run("lights", services.OpFindAll, services.PatternRequest{Pattern: "<@NOUN"})
	assert.ErrorIs(t, err, errors.ErrCompilation)

	_, err = e.Run("lights", services.OpFindAll, services.PatternRequest{Pattern: strings.Repeat("@NOUN", 4)})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = e.Run("lights", services.OpFindAll, services.PatternRequest{Pattern: "@NOUN", Flags: "x"})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = e.Run("lights", services.Operation("replace"), services.PatternRequest{Pattern: "@NOUN"})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = e.Run("missing", services.OpFindAll, services.PatternRequest{Pattern: "@NOUN"})
	assert.ErrorIs(t, err, errors.ErrSentenceNotFound)
}

func TestEngine_CompilePattern(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.CompilePattern("<@NOUN>", "")
	require.NoError(t, err)
	assert.Equal(t, "(<[^<@]*@NOUN[^>]*>)", result.Regex)
	assert.Empty(t, result.Warnings)

	result, err = e.CompilePattern("<@NOUNS> <#FOO> <#compound> <@(NOUN|VERB)>", "i")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"'#FOO' is not a Universal Dependencies dependency tag",
		"'@NOUNS' is not a Universal Dependencies part-of-speech tag, did you mean '@NOUN'?",
	}, result.Warnings)

	_, err = e.CompilePattern("", "")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestEngine_PatternCache(t *testing.T) {
	e := newTestEngine(t)
	addFixture(t, e, "lights", testutil.TurnOffTheLights())

	for i := 0; i < 3; i++ {
		_, err := e.Run("lights", services.OpFindAll, services.PatternRequest{Pattern: "@NOUN"})
		require.NoError(t, err)
	}
	_, err := e.Run("lights", services.OpFindAll, services.PatternRequest{Pattern: "@NOUN", Flags: "i"})
	require.NoError(t, err)

	size, hits, misses := e.PatternCacheStats()
	assert.Equal(t, 2, size)
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)
}

func TestEngine_ListAndDelete(t *testing.T) {
	e := newTestEngine(t)
	addFixture(t, e, "a", testutil.TurnOffTheLights())
	addFixture(t, e, "b", testutil.InNewYork())

	page, total, err := e.ListSentences(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].ID)

	require.NoError(t, e.DeleteSentence("a"))
	_, err = e.GetSentence("a")
	assert.ErrorIs(t, err, errors.ErrSentenceNotFound)
	assert.ErrorIs(t, e.DeleteSentence("a"), errors.ErrSentenceNotFound)
}

func TestEngine_Annotators(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, map[string]string{"lexicon": "ready"}, e.Annotators(context.Background()))
	assert.Equal(t, "Mood", e.Settings().FlagFeature)
}

func TestEngine_FlagFeatureSetting(t *testing.T) {
	e := newTestEngine(t, func(s *config.Settings) {
		s.FlagFeature = "Mood"
		s.FlagValue = "Ind"
	})
	s := addFixture(t, e, "gurke", testutil.Gurkensalat("Ein"))
	assert.Contains(t, s.Representation, "<isst@VERB#ROOT!>")

	result, err := e.Run("gurke", services.OpFindAll, services.PatternRequest{Pattern: "<!>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"isst"}, result.Results)
}

func TestEngine_SnapshotSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	settings := config.Default()
	settings.DataDir = dir

	e, err := NewEngine(settings)
	require.NoError(t, err)
	addFixture(t, e, "lights", testutil.TurnOffTheLights())
	require.NoError(t, e.Close())

	reopened, err := NewEngine(settings)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	result, err := reopened.Run("lights", services.OpFindAll, services.PatternRequest{Pattern: "<:OBJ>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lights"}, result.Results)
}

func TestEngine_SQLiteBackend(t *testing.T) {
	e := newTestEngine(t, func(s *config.Settings) {
		s.StoreBackend = config.StoreSQLite
	})
	addFixture(t, e, "york", testutil.InNewYork())

	result, err := e.Run("york", services.OpMatch, services.PatternRequest{Pattern: "@ADP <@PROPN>"})
	require.NoError(t, err)
	require.NotNil(t, result.Match)
	assert.Equal(t, "In New York", result.Match.Text)
}

func TestNewEngine_InvalidSettings(t *testing.T) {
	settings := config.Default()
	settings.DataDir = t.TempDir()
	settings.StoreBackend = "redis"
	_, err := NewEngine(settings)
	assert.Error(t, err)
}
