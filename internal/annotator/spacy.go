package annotator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gcbaptista/go-natex/model"
)

// spacyModels maps a language to its spaCy pipeline family. The size suffix
// ("sm", "md", "lg", "trf") is appended.
var spacyModels = map[string]string{
	"en": "en_core_web",
	"de": "de_core_news",
	"fr": "fr_core_news",
	"es": "es_core_news",
	"it": "it_core_news",
	"nl": "nl_core_news",
	"pt": "pt_core_news",
	"zh": "zh_core_web",
	"ja": "ja_core_news",
}

// SpacyAdapter speaks the JSON of a spaCy service returning one dict per token.
type SpacyAdapter struct {
	Size string
}

type spacyRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type spacyToken struct {
	Text    string `json:"text"`
	Idx     int    `json:"idx"`
	Lemma   string `json:"lemma_"`
	POS     string `json:"pos_"`
	Tag     string `json:"tag_"`
	Dep     string `json:"dep_"`
	Morph   string `json:"morph"`
	EntIOB  string `json:"ent_iob_"`
	EntType string `json:"ent_type_"`
}

func (SpacyAdapter) Name() string { return "spacy" }

// Model returns the pipeline name for language. Unknown languages fall back
// to English.
func (a SpacyAdapter) Model(language string) string {
	size := a.Size
	if size == "" {
		size = "sm"
	}
	family, ok := spacyModels[strings.ToLower(language)]
	if !ok {
		family = spacyModels["en"]
	}
	return fmt.Sprintf("%s_%s", family, size)
}

func (a SpacyAdapter) Request(text, language string) (string, any) {
	return "/parse", spacyRequest{Text: text, Model: a.Model(language)}
}

func (a SpacyAdapter) ReadyPath(language string) string {
	return "/health?model=" + a.Model(language)
}

// Decode converts spaCy tokens. spaCy reports entities in IOB form, which is
// turned into BIOES by looking at the following token.
func (SpacyAdapter) Decode(text string, body []byte) ([]model.AnnotatedToken, error) {
	var raw []spacyToken
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapped struct {
			Tokens []spacyToken `json:"tokens"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, err
		}
		raw = wrapped.Tokens
	}

	offsets := newRuneOffsets(text)
	tokens := make([]model.AnnotatedToken, 0, len(raw))
	for i, t := range raw {
		if strings.TrimSpace(t.Text) == "" {
			// spaCy keeps runs of whitespace as tokens
			continue
		}
		start := offsets.byteAt(t.Idx)
		tokens = append(tokens, model.AnnotatedToken{
			Literal:    t.Text,
			Lemma:      t.Lemma,
			UPOS:       upper(t.POS),
			XPOS:       t.Tag,
			Dependency: strings.ToLower(t.Dep),
			Features:   model.ParseFeatures(t.Morph),
			Entity:     iobToBIOES(t.EntIOB, nextIOB(raw, i)),
			Span:       model.Span{Start: start, End: start + len(t.Text)},
			Index:      len(tokens),
		})
	}
	locate(text, tokens)
	return tokens, nil
}

func nextIOB(tokens []spacyToken, i int) string {
	for j := i + 1; j < len(tokens); j++ {
		if strings.TrimSpace(tokens[j].Text) != "" {
			return tokens[j].EntIOB
		}
	}
	return "O"
}

// iobToBIOES derives the boundary tag of a token from its own IOB marker and
// the marker of the token after it.
func iobToBIOES(current, next string) model.EntityTag {
	continues := next == "I"
	switch current {
	case "B":
		if continues {
			return model.EntityBegin
		}
		return model.EntitySingle
	case "I":
		if continues {
			return model.EntityInside
		}
		return model.EntityEnd
	}
	return model.EntityNone
}
