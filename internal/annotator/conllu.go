package annotator

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gcbaptista/go-natex/model"
)

// ConlluSentence is one sentence block of a CoNLL-U file.
type ConlluSentence struct {
	ID     string
	Text   string
	Tokens []model.AnnotatedToken
}

// ConlluReader reads pre-annotated sentences from CoNLL-U, one block at a
// time, so that large treebanks are never held in memory.
type ConlluReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewConlluReader returns a reader over r.
func NewConlluReader(r io.Reader) *ConlluReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &ConlluReader{scanner: scanner}
}

type conlluWord struct {
	form, lemma, upos, xpos, feats, deprel string
	misc                                   map[string]string
}

// Next returns the next sentence, or io.EOF after the last one.
func (r *ConlluReader) Next() (*ConlluSentence, error) {
	sentence := &ConlluSentence{}
	var (
		words    []conlluWord
		surfaces []int // index into words of a multi-word token's surface form
		started  bool
		pending  int // words still covered by the current multi-word token
	)

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if started {
				break
			}
			continue
		}
		started = true

		if strings.HasPrefix(line, "#") {
			key, value, ok := strings.Cut(strings.TrimSpace(line[1:]), "=")
			if !ok {
				continue
			}
			switch strings.TrimSpace(key) {
			case "text":
				sentence.Text = strings.TrimSpace(value)
			case "sent_id":
				sentence.ID = strings.TrimSpace(value)
			}
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != 10 {
			return nil, fmt.Errorf("conllu line %d: expected 10 columns, got %d", r.line, len(cols))
		}
		id := cols[0]
		if strings.Contains(id, ".") {
			// empty node of an enhanced graph
			continue
		}
		word := conlluWord{
			form:   cols[1],
			lemma:  blank(cols[2]),
			upos:   upper(cols[3]),
			xpos:   blank(cols[4]),
			feats:  blank(cols[5]),
			deprel: blank(cols[7]),
			misc:   parseMisc(cols[9]),
		}

		if from, to, ok := strings.Cut(id, "-"); ok {
			first, err1 := strconv.Atoi(from)
			last, err2 := strconv.Atoi(to)
			if err1 != nil || err2 != nil || last < first {
				return nil, fmt.Errorf("conllu line %d: invalid range %q", r.line, id)
			}
			words = append(words, word)
			surfaces = append(surfaces, len(words)-1)
			pending = last - first + 1
			continue
		}
		if _, err := strconv.Atoi(id); err != nil {
			return nil, fmt.Errorf("conllu line %d: invalid id %q", r.line, id)
		}

		if pending > 0 {
			// the first word lends its attributes to the surface token
			surface := &words[surfaces[len(surfaces)-1]]
			if surface.upos == "" {
				surface.lemma, surface.upos, surface.xpos = word.lemma, word.upos, word.xpos
				surface.feats, surface.deprel = word.feats, word.deprel
			}
			pending--
			continue
		}
		words = append(words, word)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("conllu line %d: %w", r.line, err)
	}
	if !started {
		return nil, io.EOF
	}

	if sentence.Text == "" {
		sentence.Text = rebuildText(words)
	}
	sentence.Tokens = make([]model.AnnotatedToken, len(words))
	for i, w := range words {
		entity, _ := model.ParseEntityTag(w.misc["NER"])
		sentence.Tokens[i] = model.AnnotatedToken{
			Literal:    w.form,
			Lemma:      w.lemma,
			UPOS:       w.upos,
			XPOS:       w.xpos,
			Dependency: w.deprel,
			Features:   model.ParseFeatures(w.feats),
			Entity:     entity,
			Index:      i,
		}
	}
	locate(sentence.Text, sentence.Tokens)
	return sentence, nil
}

// ReadConllu reads every sentence of r.
func ReadConllu(r io.Reader) ([]*ConlluSentence, error) {
	reader := NewConlluReader(r)
	var sentences []*ConlluSentence
	for {
		s, err := reader.Next()
		if err == io.EOF {
			return sentences, nil
		}
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, s)
	}
}

func blank(s string) string {
	if s == "_" {
		return ""
	}
	return s
}

func parseMisc(raw string) map[string]string {
	misc := make(map[string]string)
	if raw == "_" || raw == "" {
		return misc
	}
	for _, pair := range strings.Split(raw, "|") {
		key, value, _ := strings.Cut(pair, "=")
		misc[key] = value
	}
	return misc
}

// rebuildText joins forms, honoring SpaceAfter=No.
func rebuildText(words []conlluWord) string {
	var b strings.Builder
	for i, w := range words {
		b.WriteString(w.form)
		if i < len(words)-1 && w.misc["SpaceAfter"] != "No" {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
