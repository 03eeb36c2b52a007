package annotator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"golang.org/x/text/unicode/norm"

	"github.com/gcbaptista/go-natex/internal/tokenizer"
)

// GazetteerEntry is a known multi-word name.
type GazetteerEntry struct {
	Text  string `json:"text"`
	Label string `json:"label"`          // Entity type, e.g. "LOC" or "ORG"
	UPOS  string `json:"upos,omitempty"` // Defaults to PROPN
}

// Gazetteer finds known names in a sentence with a single Aho-Corasick pass.
type Gazetteer struct {
	automaton *ahocorasick.Automaton
	entries   map[string]GazetteerEntry
	names     []string // longest first
}

// entityRun is a gazetteer hit expressed in token indexes [first, last].
type entityRun struct {
	first int
	last  int
	entry GazetteerEntry
}

// NewGazetteer builds the automaton for entries. Longer names are added first
// so that "New York City" wins over "New York".
func NewGazetteer(entries []GazetteerEntry) (*Gazetteer, error) {
	g := &Gazetteer{entries: make(map[string]GazetteerEntry, len(entries))}
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		if e.UPOS == "" {
			e.UPOS = "PROPN"
		}
		g.entries[norm.NFC.String(e.Text)] = e
	}
	if len(g.entries) == 0 {
		return g, nil
	}

	names := make([]string, 0, len(g.entries))
	for name := range g.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	builder := ahocorasick.NewBuilder()
	for _, name := range names {
		builder.AddPattern([]byte(name))
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build gazetteer automaton: %w", err)
	}
	g.automaton = automaton
	g.names = names
	return g, nil
}

// Len returns the number of distinct names.
func (g *Gazetteer) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}

// find returns the hits in text whose boundaries coincide with token
// boundaries. Hits never overlap.
func (g *Gazetteer) find(text string, tokens []tokenizer.Token) []entityRun {
	if g == nil || g.automaton == nil || len(tokens) == 0 {
		return nil
	}
	starts := make(map[int]int, len(tokens))
	ends := make(map[int]int, len(tokens))
	for i, t := range tokens {
		starts[t.Start] = i
		ends[t.End] = i
	}

	haystack := []byte(text)
	var runs []entityRun
	for at := 0; at < len(haystack); {
		m := g.automaton.Find(haystack, at)
		if m == nil {
			break
		}
		first, okStart := starts[m.Start]
		if !okStart {
			at = m.Start + 1
			continue
		}
		end := m.End
		last, okEnd := ends[end]
		if !okEnd {
			// partial word, e.g. "New Yorker"; a shorter name may still fit
			end, okEnd = g.alignedAt(text, m.Start, ends)
			if !okEnd {
				at = m.Start + 1
				continue
			}
			last = ends[end]
		}
		runs = append(runs, entityRun{first: first, last: last, entry: g.entries[text[m.Start:end]]})
		at = end
	}
	return runs
}

// alignedAt returns the end of the longest name starting at start that also
// ends on a token boundary.
func (g *Gazetteer) alignedAt(text string, start int, ends map[int]int) (int, bool) {
	rest := text[start:]
	for _, name := range g.names {
		if !strings.HasPrefix(rest, name) {
			continue
		}
		if _, ok := ends[start+len(name)]; ok {
			return start + len(name), true
		}
	}
	return 0, false
}
