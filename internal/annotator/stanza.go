package annotator

import (
	"encoding/json"
	"fmt"

	"github.com/gcbaptista/go-natex/model"
)

const stanzaProcessors = "tokenize,mwt,pos,lemma,depparse,ner"

// StanzaAdapter speaks the JSON produced by a Stanza pipeline's Document.to_dict:
// a list of sentences, each a list of token dicts.
type StanzaAdapter struct{}

type stanzaRequest struct {
	Text       string `json:"text"`
	Language   string `json:"lang"`
	Processors string `json:"processors"`
}

// stanzaID is either a word index or, for multi-word tokens, an index range.
type stanzaID []int

func (id *stanzaID) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*id = stanzaID{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("invalid stanza token id %s", string(data))
	}
	*id = many
	return nil
}

type stanzaToken struct {
	ID        stanzaID `json:"id"`
	Text      string   `json:"text"`
	Lemma     string   `json:"lemma"`
	UPOS      string   `json:"upos"`
	XPOS      string   `json:"xpos"`
	Feats     string   `json:"feats"`
	Deprel    string   `json:"deprel"`
	StartChar *int     `json:"start_char"`
	EndChar   *int     `json:"end_char"`
	NER       string   `json:"ner"`
}

func (StanzaAdapter) Name() string { return "stanza" }

func (StanzaAdapter) Request(text, language string) (string, any) {
	return "/annotate", stanzaRequest{Text: text, Language: language, Processors: stanzaProcessors}
}

func (StanzaAdapter) ReadyPath(string) string { return "/health" }

// Decode flattens the sentences. A multi-word token ("zum" = "zu" + "dem")
// becomes one token carrying the attributes of its first word.
func (StanzaAdapter) Decode(text string, body []byte) ([]model.AnnotatedToken, error) {
	var sentences [][]stanzaToken
	if err := json.Unmarshal(body, &sentences); err != nil {
		var wrapped struct {
			Sentences [][]stanzaToken `json:"sentences"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, err
		}
		sentences = wrapped.Sentences
	}

	offsets := newRuneOffsets(text)
	var tokens []model.AnnotatedToken
	for _, sentence := range sentences {
		for i := 0; i < len(sentence); i++ {
			raw := sentence[i]
			tok := model.AnnotatedToken{Literal: raw.Text, Index: len(tokens)}
			if raw.StartChar != nil && raw.EndChar != nil {
				tok.Span = model.Span{Start: offsets.byteAt(*raw.StartChar), End: offsets.byteAt(*raw.EndChar)}
			}
			tok.Entity, _ = model.ParseEntityTag(raw.NER)

			word := raw
			if len(raw.ID) == 2 {
				// skip the words the range covers, keeping the first
				covered := raw.ID[1] - raw.ID[0] + 1
				if i+1 < len(sentence) {
					word = sentence[i+1]
				}
				i += covered
			}
			tok.Lemma = word.Lemma
			tok.UPOS = upper(word.UPOS)
			tok.XPOS = word.XPOS
			tok.Dependency = word.Deprel
			tok.Features = model.ParseFeatures(word.Feats)
			tokens = append(tokens, tok)
		}
	}
	locate(text, tokens)
	return tokens, nil
}

// runeOffsets converts code point offsets, as reported by Python services,
// into byte offsets.
type runeOffsets []int

func newRuneOffsets(text string) runeOffsets {
	offsets := make(runeOffsets, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

func (o runeOffsets) byteAt(runeIndex int) int {
	if runeIndex < 0 {
		return 0
	}
	if runeIndex >= len(o) {
		return o[len(o)-1]
	}
	return o[runeIndex]
}
