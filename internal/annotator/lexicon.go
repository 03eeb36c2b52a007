package annotator

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gcbaptista/go-natex/internal/tokenizer"
	"github.com/gcbaptista/go-natex/model"
)

// LexiconName is the registry name of the built-in annotator.
const LexiconName = "lexicon"

//go:embed lexicons/*.json
var builtinLexicons embed.FS

// LexiconEntry describes one word form.
type LexiconEntry struct {
	UPOS     string `json:"upos"`
	XPOS     string `json:"xpos,omitempty"`
	Lemma    string `json:"lemma,omitempty"`
	Features string `json:"features,omitempty"` // "Key=Value|Key=Value"
}

// Lexicon is the word list and gazetteer of one language.
type Lexicon struct {
	Language  string                  `json:"language"`
	Entries   map[string]LexiconEntry `json:"entries"`
	Gazetteer []GazetteerEntry        `json:"gazetteer"`

	gazetteer *Gazetteer
}

// ParseLexicon decodes a JSON lexicon and prepares its lookup structures.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon: %w", err)
	}
	if lex.Language == "" {
		return nil, fmt.Errorf("lexicon has no language")
	}

	entries := make(map[string]LexiconEntry, len(lex.Entries))
	for form, entry := range lex.Entries {
		entry.UPOS = strings.ToUpper(entry.UPOS)
		entries[tokenizer.Normalize(form)] = entry
	}
	lex.Entries = entries

	g, err := NewGazetteer(lex.Gazetteer)
	if err != nil {
		return nil, err
	}
	lex.gazetteer = g
	return &lex, nil
}

// LoadLexicon reads a JSON lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- lexicon paths come from the settings file
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// LexiconAnnotator is a rule-based annotator: part-of-speech tags come from a
// word list, entities from a gazetteer and dependency labels from positional
// heuristics around the main verb. It needs no external service and is meant
// for tests, demos and closed vocabularies.
type LexiconAnnotator struct {
	mu       sync.RWMutex
	lexicons map[string]*Lexicon
}

// NewLexiconAnnotator creates an annotator with the built-in English and
// German lexicons.
func NewLexiconAnnotator() (*LexiconAnnotator, error) {
	a := &LexiconAnnotator{lexicons: make(map[string]*Lexicon)}
	files, err := builtinLexicons.ReadDir("lexicons")
	if err != nil {
		return nil, fmt.Errorf("failed to list built-in lexicons: %w", err)
	}
	for _, f := range files {
		data, err := builtinLexicons.ReadFile("lexicons/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in lexicon %s: %w", f.Name(), err)
		}
		lex, err := ParseLexicon(data)
		if err != nil {
			return nil, fmt.Errorf("built-in lexicon %s: %w", f.Name(), err)
		}
		a.lexicons[lex.Language] = lex
	}
	return a, nil
}

// AddLexicon installs or replaces the lexicon of lex.Language.
func (a *LexiconAnnotator) AddLexicon(lex *Lexicon) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lexicons[lex.Language] = lex
}

// Languages returns the languages with a lexicon.
func (a *LexiconAnnotator) Languages() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	langs := make([]string, 0, len(a.lexicons))
	for lang := range a.lexicons {
		langs = append(langs, lang)
	}
	return langs
}

func (a *LexiconAnnotator) Name() string { return LexiconName }

// Annotate tags text. Languages without a lexicon are tagged by the
// fallback heuristics alone.
func (a *LexiconAnnotator) Annotate(ctx context.Context, text, language string) ([]model.AnnotatedToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	lex := a.lexicons[language]
	a.mu.RUnlock()

	surface := tokenizer.Tokenize(text)
	tokens := make([]model.AnnotatedToken, len(surface))
	for i, s := range surface {
		tokens[i] = model.AnnotatedToken{
			Literal: s.Text,
			Span:    model.Span{Start: s.Start, End: s.End},
			Index:   i,
			Entity:  model.EntityNone,
		}
		tag(&tokens[i], lex, language, i == 0)
	}

	if lex != nil {
		for _, run := range lex.gazetteer.find(text, surface) {
			markEntity(tokens, run)
		}
	}

	assignDependencies(tokens)
	return tokens, nil
}

func tag(tok *model.AnnotatedToken, lex *Lexicon, language string, initial bool) {
	key := tokenizer.Normalize(tok.Literal)
	tok.Lemma = key
	if lex != nil {
		if entry, ok := lex.Entries[key]; ok {
			tok.UPOS = entry.UPOS
			tok.XPOS = entry.XPOS
			tok.Features = model.ParseFeatures(entry.Features)
			if entry.Lemma != "" {
				tok.Lemma = entry.Lemma
			}
			return
		}
	}
	tok.UPOS = guessPOS(tok.Literal, language, initial)
}

// guessPOS tags a word that is not in the lexicon.
func guessPOS(word, language string, initial bool) string {
	switch {
	case tokenizer.IsPunct(word):
		return "PUNCT"
	case tokenizer.IsNumber(word):
		return "NUM"
	case tokenizer.IsCapitalized(word) && language == "de":
		// German capitalizes every noun
		return "NOUN"
	case tokenizer.IsCapitalized(word) && !initial:
		return "PROPN"
	case language == "en" && strings.HasSuffix(word, "ly"):
		return "ADV"
	}
	return "NOUN"
}

func markEntity(tokens []model.AnnotatedToken, run entityRun) {
	for i := run.first; i <= run.last; i++ {
		tokens[i].UPOS = run.entry.UPOS
		tokens[i].Lemma = tokens[i].Literal
		tokens[i].Entity = model.EntityInside
	}
	if run.first == run.last {
		tokens[run.first].Entity = model.EntitySingle
		return
	}
	tokens[run.first].Entity = model.EntityBegin
	tokens[run.last].Entity = model.EntityEnd
}

func isNominal(upos string) bool {
	return upos == "NOUN" || upos == "PROPN" || upos == "PRON"
}

// assignDependencies labels tokens relative to the main verb: nominals before
// it are subjects, the first bare nominal after it is its object, nominals
// introduced by a preposition are obliques.
func assignDependencies(tokens []model.AnnotatedToken) {
	if len(tokens) == 0 {
		return
	}
	root := findRoot(tokens)
	if root == 0 && tokens[0].UPOS == "VERB" {
		if _, ok := tokens[0].Features.Get("Mood"); !ok {
			// a sentence-initial bare verb is an imperative
			if tokens[0].Features == nil {
				tokens[0].Features = model.Features{}
			}
			tokens[0].Features["Mood"] = "Imp"
		}
	}

	objectSeen := false
	afterADP := false
	for i := range tokens {
		tok := &tokens[i]
		if tok.Entity == model.EntityInside || tok.Entity == model.EntityEnd {
			tok.Dependency = "flat"
			continue
		}
		if i == root {
			tok.Dependency = "root"
			afterADP = false
			continue
		}

		switch tok.UPOS {
		case "PUNCT":
			tok.Dependency = "punct"
		case "DET":
			tok.Dependency = "det"
		case "ADJ":
			tok.Dependency = "amod"
		case "ADV":
			tok.Dependency = "advmod"
		case "AUX":
			tok.Dependency = "aux"
		case "CCONJ":
			tok.Dependency = "cc"
		case "SCONJ":
			tok.Dependency = "mark"
		case "NUM":
			tok.Dependency = "nummod"
		case "INTJ":
			tok.Dependency = "discourse"
		case "PART":
			tok.Dependency = "advmod"
		case "VERB":
			tok.Dependency = "conj"
		case "ADP":
			if tok.XPOS == "RP" && i > 0 && tokens[i-1].UPOS == "VERB" {
				tok.Dependency = "compound:prt"
				continue
			}
			tok.Dependency = "case"
			afterADP = true
			continue
		case "NOUN", "PROPN", "PRON":
			switch {
			case afterADP:
				tok.Dependency = "obl"
			case i < root:
				tok.Dependency = "nsubj"
			case !objectSeen:
				tok.Dependency = "obj"
				objectSeen = true
			default:
				tok.Dependency = "nmod"
			}
			afterADP = false
			continue
		default:
			tok.Dependency = "dep"
		}
		if tok.UPOS == "PUNCT" || tok.UPOS == "CCONJ" || tok.UPOS == "VERB" {
			afterADP = false
		}
	}
}

// findRoot returns the index of the first full verb, falling back to the first
// auxiliary, then the first nominal, then the first token.
func findRoot(tokens []model.AnnotatedToken) int {
	for _, want := range []func(string) bool{
		func(upos string) bool { return upos == "VERB" },
		func(upos string) bool { return upos == "AUX" },
		isNominal,
	} {
		for i, t := range tokens {
			if t.Entity != model.EntityInside && t.Entity != model.EntityEnd && want(t.UPOS) {
				return i
			}
		}
	}
	return 0
}

// LoadGazetteer reads a JSON list of gazetteer entries.
func LoadGazetteer(path string) ([]GazetteerEntry, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- gazetteer paths come from the settings file
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer %s: %w", path, err)
	}
	var entries []GazetteerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode gazetteer %s: %w", path, err)
	}
	return entries, nil
}

// ExtendGazetteer adds names to the gazetteer of language, creating an empty
// lexicon for it when needed.
func (a *LexiconAnnotator) ExtendGazetteer(language string, entries []GazetteerEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	extended := &Lexicon{Language: language, Entries: map[string]LexiconEntry{}}
	if lex, ok := a.lexicons[language]; ok {
		extended.Entries = lex.Entries
		extended.Gazetteer = append(extended.Gazetteer, lex.Gazetteer...)
	}
	extended.Gazetteer = append(extended.Gazetteer, entries...)

	g, err := NewGazetteer(extended.Gazetteer)
	if err != nil {
		return err
	}
	extended.gazetteer = g
	a.lexicons[language] = extended
	return nil
}
