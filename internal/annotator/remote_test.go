package annotator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
)

const stanzaResponse = `[[
	{"id": 1, "text": "Ich", "lemma": "ich", "upos": "PRON", "xpos": "PPER", "feats": "Case=Nom|Number=Sing|Person=1", "deprel": "nsubj", "start_char": 0, "end_char": 3, "ner": "O"},
	{"id": 2, "text": "gehe", "lemma": "gehen", "upos": "VERB", "xpos": "VVFIN", "feats": "Mood=Ind|Tense=Pres", "deprel": "root", "start_char": 4, "end_char": 8, "ner": "O"},
	{"id": [3, 4], "text": "zum", "start_char": 9, "end_char": 12, "ner": "O"},
	{"id": 3, "text": "zu", "lemma": "zu", "upos": "ADP", "xpos": "APPR", "deprel": "case"},
	{"id": 4, "text": "dem", "lemma": "der", "upos": "DET", "xpos": "ART", "deprel": "det"},
	{"id": 5, "text": "Markt", "lemma": "Markt", "upos": "NOUN", "xpos": "NN", "deprel": "obl", "start_char": 13, "end_char": 18, "ner": "S-LOC"},
	{"id": 6, "text": ".", "lemma": ".", "upos": "PUNCT", "xpos": "$.", "deprel": "punct", "start_char": 18, "end_char": 19, "ner": "O"}
]]`

func TestRemoteAnnotator_Stanza(t *testing.T) {
	var received stanzaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/annotate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stanzaResponse))
	}))
	defer server.Close()

	a := NewRemoteAnnotator("stanza-de", server.URL+"/", StanzaAdapter{}, time.Second)
	assert.Equal(t, "stanza-de", a.Name())

	text := "Ich gehe zum Markt."
	tokens, err := a.Annotate(context.Background(), text, "de")
	require.NoError(t, err)

	assert.Equal(t, text, received.Text)
	assert.Equal(t, "de", received.Language)
	assert.Equal(t, stanzaProcessors, received.Processors)

	require.Len(t, tokens, 5)
	assert.Equal(t, "zum", tokens[2].Literal)
	assert.Equal(t, "ADP", tokens[2].UPOS, "multi-word token takes its first word's tag")
	assert.Equal(t, "case", tokens[2].Dependency)
	assert.Equal(t, model.Span{Start: 9, End: 12}, tokens[2].Span)
	assert.Equal(t, model.EntitySingle, tokens[3].Entity)
	assert.Equal(t, "Markt", tokens[3].Literal)
	assert.True(t, tokens[1].Features.Is("Mood", "Ind"))
	for i, tok := range tokens {
		assert.Equal(t, i, tok.Index)
		assert.Equal(t, tok.Literal, text[tok.Span.Start:tok.Span.End])
	}
	assert.Equal(t, "<Ich@PRON#NSUBJ> <gehe@VERB#ROOT> <zum@ADP#CASE> <Markt@NOUN#OBL><.@PUNCT#PUNCT>",
		representationOf(t, text, tokens))
}

func TestRemoteAnnotator_Spacy(t *testing.T) {
	var received spacyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parse", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`[
			{"text": "Öffne", "idx": 0, "lemma_": "öffnen", "pos_": "VERB", "tag_": "VVIMP", "dep_": "ROOT", "morph": "Mood=Imp|Number=Sing", "ent_iob_": "O"},
			{"text": "die", "idx": 6, "lemma_": "der", "pos_": "DET", "tag_": "ART", "dep_": "nk", "morph": "", "ent_iob_": "O"},
			{"text": "Tür", "idx": 10, "lemma_": "Tür", "pos_": "NOUN", "tag_": "NN", "dep_": "oa", "morph": "Gender=Fem", "ent_iob_": "O"},
			{"text": "in", "idx": 14, "lemma_": "in", "pos_": "ADP", "tag_": "APPR", "dep_": "mo", "ent_iob_": "O"},
			{"text": "New", "idx": 17, "lemma_": "New", "pos_": "PROPN", "tag_": "NE", "dep_": "pnc", "ent_iob_": "B", "ent_type_": "LOC"},
			{"text": "York", "idx": 21, "lemma_": "York", "pos_": "PROPN", "tag_": "NE", "dep_": "nk", "ent_iob_": "I", "ent_type_": "LOC"}
		]`))
	}))
	defer server.Close()

	a := NewRemoteAnnotator("spacy", server.URL, SpacyAdapter{Size: "lg"}, time.Second)
	text := "Öffne die Tür in New York"
	tokens, err := a.Annotate(context.Background(), text, "de")
	require.NoError(t, err)

	assert.Equal(t, "de_core_news_lg", received.Model)
	require.Len(t, tokens, 6)
	assert.Equal(t, model.Span{Start: 11, End: 15}, tokens[2].Span, "code point offsets become byte offsets")
	assert.Equal(t, "root", tokens[0].Dependency)
	assert.Equal(t, model.EntityBegin, tokens[4].Entity)
	assert.Equal(t, model.EntityEnd, tokens[5].Entity)
	assert.Equal(t, "<Öffne@VERB#ROOT!> <die@DET#NK> <Tür@NOUN#OA> <in@ADP#MO> <New York@PROPN#PNC>",
		representationOf(t, text, tokens))
}

func TestRemoteAnnotator_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	a := NewRemoteAnnotator("stanza", server.URL, StanzaAdapter{}, time.Second)
	_, err := a.Annotate(context.Background(), "Hallo", "de")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAnnotatorUnavailable)
	assert.Contains(t, err.Error(), "model not loaded")

	assert.ErrorIs(t, a.Ready(context.Background()), errors.ErrAnnotatorUnavailable)

	server.Close()
	_, err = a.Annotate(context.Background(), "Hallo", "de")
	assert.ErrorIs(t, err, errors.ErrAnnotatorUnavailable)
}

func TestRemoteAnnotator_BadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	a := NewRemoteAnnotator("spacy", server.URL, SpacyAdapter{}, time.Second)
	_, err := a.Annotate(context.Background(), "Hallo", "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode spacy response")
}

func TestRemoteAnnotator_Ready(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		query = r.URL.Query().Get("model")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewRemoteAnnotator("spacy", server.URL, SpacyAdapter{}, time.Second)
	require.NoError(t, a.Ready(context.Background()))
	assert.Equal(t, "en_core_web_sm", query)
}

func TestSpacyAdapter_Model(t *testing.T) {
	assert.Equal(t, "en_core_web_sm", SpacyAdapter{}.Model("en"))
	assert.Equal(t, "de_core_news_md", SpacyAdapter{Size: "md"}.Model("DE"))
	assert.Equal(t, "en_core_web_trf", SpacyAdapter{Size: "trf"}.Model("xx"))
}

func TestIOBToBIOES(t *testing.T) {
	tests := []struct {
		current, next string
		want          model.EntityTag
	}{
		{"B", "I", model.EntityBegin},
		{"B", "O", model.EntitySingle},
		{"B", "B", model.EntitySingle},
		{"I", "I", model.EntityInside},
		{"I", "O", model.EntityEnd},
		{"O", "B", model.EntityNone},
		{"", "", model.EntityNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, iobToBIOES(tt.current, tt.next), "%s followed by %s", tt.current, tt.next)
	}
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter("Stanza", "")
	require.NoError(t, err)
	assert.Equal(t, "stanza", a.Name())

	a, err = NewAdapter("spacy", "md")
	require.NoError(t, err)
	assert.Equal(t, SpacyAdapter{Size: "md"}, a)

	_, err = NewAdapter("udpipe", "")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
