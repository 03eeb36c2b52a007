// Package index keeps a tag index over the stored sentences so that
// corpus-wide searches only run a pattern against sentences that can match.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/gcbaptista/go-natex/model"
)

// TagIndex maps tag keys to the sentences and token positions carrying them.
// Keys are "@UPOS", "#DEP" (plus "#DEP:SUBTYPE" for subtyped relations) and
// "=lemma".
type TagIndex struct {
	Mu    sync.RWMutex
	Index map[string]PostingList

	keys map[string][]string // sentence ID -> keys it is indexed under
	seq  map[string]uint64   // sentence ID -> insertion order
	next uint64
}

// TagCount is a key and the number of tokens carrying it.
type TagCount struct {
	Key       string `json:"key"`
	Tokens    int    `json:"tokens"`
	Sentences int    `json:"sentences"`
}

// NewTagIndex creates an empty index.
func NewTagIndex() *TagIndex {
	return &TagIndex{
		Index: make(map[string]PostingList),
		keys:  make(map[string][]string),
		seq:   make(map[string]uint64),
	}
}

// TokenKeys returns the keys a token is indexed under.
func TokenKeys(tok model.AnnotatedToken) []string {
	var keys []string
	if tok.UPOS != "" && tok.UPOS != "_" {
		keys = append(keys, "@"+strings.ToUpper(tok.UPOS))
	}
	if tok.Dependency != "" && tok.Dependency != "_" {
		dep := strings.ToUpper(tok.Dependency)
		base, _, subtyped := strings.Cut(dep, ":")
		keys = append(keys, "#"+base)
		if subtyped {
			keys = append(keys, "#"+dep)
		}
	}
	if tok.Lemma != "" && tok.Lemma != "_" {
		keys = append(keys, "="+strings.ToLower(tok.Lemma))
	}
	return keys
}

// NormalizeKey upper-cases tag keys and lower-cases lemma keys. It reports
// false for anything that is not a key.
func NormalizeKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if len(key) < 2 {
		return "", false
	}
	switch key[0] {
	case '@', '#':
		return key[:1] + strings.ToUpper(key[1:]), true
	case '=':
		return "=" + strings.ToLower(key[1:]), true
	}
	return "", false
}

// Add indexes a sentence, replacing any earlier version with the same ID.
func (ti *TagIndex) Add(sentence *model.Sentence) {
	ti.Mu.Lock()
	defer ti.Mu.Unlock()

	ti.remove(sentence.ID)

	positions := make(map[string][]int)
	var order []string
	for i, tok := range sentence.Tokens {
		for _, key := range TokenKeys(tok) {
			if _, ok := positions[key]; !ok {
				order = append(order, key)
			}
			positions[key] = append(positions[key], i)
		}
	}
	for _, key := range order {
		ti.Index[key] = append(ti.Index[key], PostingEntry{SentenceID: sentence.ID, Positions: positions[key]})
	}
	ti.keys[sentence.ID] = order
	ti.next++
	ti.seq[sentence.ID] = ti.next
}

// Remove drops a sentence from the index. Unknown IDs are ignored.
func (ti *TagIndex) Remove(sentenceID string) {
	ti.Mu.Lock()
	defer ti.Mu.Unlock()
	ti.remove(sentenceID)
}

func (ti *TagIndex) remove(sentenceID string) {
	for _, key := range ti.keys[sentenceID] {
		list := ti.Index[key].without(sentenceID)
		if len(list) == 0 {
			delete(ti.Index, key)
		} else {
			ti.Index[key] = list
		}
	}
	delete(ti.keys, sentenceID)
	delete(ti.seq, sentenceID)
}

// Len returns the number of indexed sentences.
func (ti *TagIndex) Len() int {
	ti.Mu.RLock()
	defer ti.Mu.RUnlock()
	return len(ti.seq)
}

// Candidates returns the IDs of the sentences carrying every key, in the
// order they were indexed. Without keys it returns every sentence.
func (ti *TagIndex) Candidates(keys []string) []string {
	ti.Mu.RLock()
	defer ti.Mu.RUnlock()

	var ids []string
	if len(keys) == 0 {
		ids = make([]string, 0, len(ti.seq))
		for id := range ti.seq {
			ids = append(ids, id)
		}
	} else {
		// Start from the rarest key.
		lists := make([]PostingList, len(keys))
		for i, key := range keys {
			lists[i] = ti.Index[key]
			if len(lists[i]) == 0 {
				return []string{}
			}
		}
		sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

		counts := make(map[string]int, len(lists[0]))
		for _, entry := range lists[0] {
			counts[entry.SentenceID] = 1
		}
		for _, list := range lists[1:] {
			for _, entry := range list {
				if n, ok := counts[entry.SentenceID]; ok {
					counts[entry.SentenceID] = n + 1
				}
			}
		}
		for id, n := range counts {
			if n == len(lists) {
				ids = append(ids, id)
			}
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ti.seq[ids[i]] < ti.seq[ids[j]] })
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// Positions returns the token indexes of sentenceID that carry key.
func (ti *TagIndex) Positions(key, sentenceID string) []int {
	ti.Mu.RLock()
	defer ti.Mu.RUnlock()
	for _, entry := range ti.Index[key] {
		if entry.SentenceID == sentenceID {
			return entry.Positions
		}
	}
	return nil
}

// Counts returns the keys starting with prefix ("@", "#", "=" or "" for all),
// most frequent first.
func (ti *TagIndex) Counts(prefix string) []TagCount {
	ti.Mu.RLock()
	defer ti.Mu.RUnlock()

	counts := []TagCount{}
	for key, list := range ti.Index {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		c := TagCount{Key: key, Sentences: len(list)}
		for _, entry := range list {
			c.Tokens += len(entry.Positions)
		}
		counts = append(counts, c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Tokens != counts[j].Tokens {
			return counts[i].Tokens > counts[j].Tokens
		}
		return counts[i].Key < counts[j].Key
	})
	return counts
}
