package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-natex/config"
	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

func sentence(id, text string) *model.Sentence {
	return &model.Sentence{
		ID:        id,
		Text:      text,
		Language:  "en",
		Annotator: "lexicon",
		Tokens: []model.AnnotatedToken{{
			Literal:    text,
			UPOS:       "NOUN",
			Dependency: "root",
			Features:   model.Features{"Number": "Sing"},
			Entity:     model.EntityNone,
			Span:       model.Span{Start: 0, End: len(text)},
		}},
		Representation: "<" + text + "@NOUN#ROOT>",
		CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func backends(t *testing.T) map[string]services.SentenceStore {
	sqlite, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]services.SentenceStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(sentence("s1", "lights")))

			got, err := s.Get("s1")
			require.NoError(t, err)
			assert.Equal(t, "lights", got.Text)
			assert.Equal(t, "<lights@NOUN#ROOT>", got.Representation)
			require.Len(t, got.Tokens, 1)
			assert.Equal(t, "Sing", got.Tokens[0].Features["Number"])
			assert.True(t, got.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

			_, err = s.Get("missing")
			assert.ErrorIs(t, err, errors.ErrSentenceNotFound)
		})
	}
}

func TestStore_PutReplaces(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(sentence("a", "one")))
			require.NoError(t, s.Put(sentence("b", "two")))
			require.NoError(t, s.Put(sentence("a", "uno")))

			got, err := s.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "uno", got.Text)

			page, total, err := s.List(0, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, total)
			assert.Equal(t, "a", page[0].ID, "replacing keeps the original position")
		})
	}
}

func TestStore_PutRequiresID(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Put(sentence("", "x")), errors.ErrInvalidInput)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(sentence("a", "one")))
			require.NoError(t, s.Delete("a"))
			_, err := s.Get("a")
			assert.ErrorIs(t, err, errors.ErrSentenceNotFound)
			assert.ErrorIs(t, s.Delete("a"), errors.ErrSentenceNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
				require.NoError(t, s.Put(sentence(id, "text "+id)))
			}

			tests := []struct {
				offset, limit int
				want          []string
			}{
				{0, 2, []string{"s1", "s2"}},
				{2, 2, []string{"s3", "s4"}},
				{4, 10, []string{"s5"}},
				{3, 0, []string{"s4", "s5"}},
				{9, 2, []string{}},
			}
			for _, tt := range tests {
				page, total, err := s.List(tt.offset, tt.limit)
				require.NoError(t, err)
				assert.Equal(t, 5, total)
				ids := make([]string, 0, len(page))
				for _, p := range page {
					ids = append(ids, p.ID)
				}
				assert.Equal(t, tt.want, ids, "offset %d limit %d", tt.offset, tt.limit)
			}
		})
	}
}

func TestMemoryStore_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "sentences.gob")

	s, err := OpenMemoryStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(sentence("a", "one")))
	require.NoError(t, s.Put(sentence("b", "two")))
	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Close())

	reopened, err := OpenMemoryStore(path)
	require.NoError(t, err)
	page, total, err := reopened.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "two", page[0].Text)
	assert.Equal(t, model.Span{Start: 0, End: 3}, page[0].Tokens[0].Span)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "sentences.db")

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(sentence("a", "one")))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Text)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StoreMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.StoreSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
