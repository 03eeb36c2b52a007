// Package model defines the data shapes shared by the annotators, the
// representation builder, the matcher and the HTTP API.
package model

import (
	"sort"
	"strings"
)

// Span is a half-open byte interval [Start, End) into the original sentence.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// EntityTag is the named-entity boundary marker of a token.
type EntityTag string

const (
	EntityNone    EntityTag = "O"
	EntityBegin   EntityTag = "B"
	EntityInside  EntityTag = "I"
	EntityEnd     EntityTag = "E"
	EntitySingle  EntityTag = "S"
	entityUnknown EntityTag = ""
)

// ParseEntityTag reads BIOES labels such as "B-LOC", "E-PER", "O" or "S-ORG".
// The returned label is the part after the dash (empty for "O").
func ParseEntityTag(raw string) (EntityTag, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "O" || raw == "_" {
		return EntityNone, ""
	}
	prefix, label, _ := strings.Cut(raw, "-")
	switch strings.ToUpper(prefix) {
	case "B":
		return EntityBegin, label
	case "I":
		return EntityInside, label
	case "E", "L":
		return EntityEnd, label
	case "S", "U":
		return EntitySingle, label
	}
	return EntityNone, ""
}

// String renders the tag back into BIOES form.
func (t EntityTag) String() string {
	if t == entityUnknown {
		return string(EntityNone)
	}
	return string(t)
}

// Features holds morphological features. Keys are compared case-insensitively.
type Features map[string]string

// ParseFeatures parses the "Key=Value|Key=Value" format used by CoNLL-U,
// stanza and spaCy. Empty input and "_" yield nil.
func ParseFeatures(raw string) Features {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "_" {
		return nil
	}
	feats := make(Features)
	for _, part := range strings.Split(raw, "|") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		feats[key] = strings.TrimSpace(value)
	}
	if len(feats) == 0 {
		return nil
	}
	return feats
}

// Get returns the value of a feature, matching the key case-insensitively.
func (f Features) Get(key string) (string, bool) {
	if v, ok := f[key]; ok {
		return v, true
	}
	for k, v := range f {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Is reports whether the feature equals value (case-insensitive on both sides).
func (f Features) Is(key, value string) bool {
	v, ok := f.Get(key)
	return ok && strings.EqualFold(v, value)
}

// String renders the features in sorted "Key=Value|..." form, "_" when empty.
func (f Features) String() string {
	if len(f) == 0 {
		return "_"
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f[k]
	}
	return strings.Join(parts, "|")
}

// AnnotatedToken is one token as produced by an Annotator.
type AnnotatedToken struct {
	Literal    string    `json:"literal"`
	Lemma      string    `json:"lemma,omitempty"`
	UPOS       string    `json:"upos"`
	XPOS       string    `json:"xpos,omitempty"`
	Dependency string    `json:"dependency"`
	Features   Features  `json:"features,omitempty"`
	Entity     EntityTag `json:"entity,omitempty"`
	Span       Span      `json:"span"`
	Index      int       `json:"index"`
}

// Separator is the text between two tokens (or before the first / after the last).
type Separator struct {
	Literal string `json:"literal"`
	Span    Span   `json:"span"`
	Index   int    `json:"index"`
}

// UniversalPOSTags is the Universal Dependencies part-of-speech vocabulary.
var UniversalPOSTags = []string{
	"SCONJ", "PUNCT", "PROPN", "CCONJ", "VERB", "PRON", "PART", "NOUN", "INTJ",
	"SYM", "NUM", "DET", "AUX", "ADV", "ADP", "ADJ", "X",
}

// UniversalDepTags is the Universal Dependencies relation vocabulary.
var UniversalDepTags = []string{
	"REPARANDUM", "DISLOCATED", "PARATAXIS", "DISCOURSE", "VOCATIVE", "GOESWITH",
	"COMPOUND", "ORPHAN", "NUMMOD", "ADVMOD", "XCOMP", "PUNCT", "NSUBJ", "FIXED",
	"CSUBJ", "CCOMP", "APPOS", "ADVCL", "ROOT", "NMOD", "MARK", "LIST", "IOBJ",
	"FLAT", "EXPL", "CONJ", "CASE", "AMOD", "OBL", "OBJ", "DET", "DEP", "COP",
	"CLF", "AUX", "ACL", "CC",
}

// IsUniversalPOS reports whether tag belongs to UniversalPOSTags.
func IsUniversalPOS(tag string) bool {
	return contains(UniversalPOSTags, strings.ToUpper(tag))
}

// IsUniversalDep reports whether the base relation of label (before any
// ":" subtype) belongs to UniversalDepTags.
func IsUniversalDep(label string) bool {
	base, _, _ := strings.Cut(strings.ToUpper(label), ":")
	base, _, _ = strings.Cut(base, " ")
	return contains(UniversalDepTags, base)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
