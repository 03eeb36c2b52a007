package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"sync"

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/internal/persistence"
	"github.com/gcbaptista/go-natex/model"
)

// MemoryStore keeps sentences in memory, in insertion order. When it has a
// snapshot path it is written there on Close and on Flush.
type MemoryStore struct {
	Mu        sync.RWMutex
	Sentences map[string]*model.Sentence
	Order     []string // Sentence IDs in insertion order

	path string
}

// gobMemoryStoreData is a helper struct for Gob encoding/decoding MemoryStore data.
// It excludes the mutex.
type gobMemoryStoreData struct {
	Sentences map[string]*model.Sentence
	Order     []string
}

// NewMemoryStore creates an empty store without a snapshot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Sentences: make(map[string]*model.Sentence)}
}

// OpenMemoryStore creates a store backed by a gob snapshot at path. A missing
// snapshot means a fresh start.
func OpenMemoryStore(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.path = path
	if err := persistence.LoadGob(path, s); err != nil && err != os.ErrNotExist {
		return nil, fmt.Errorf("failed to load sentence snapshot: %w", err)
	}
	return s, nil
}

func (s *MemoryStore) Put(sentence *model.Sentence) error {
	if sentence == nil || sentence.ID == "" {
		return errors.NewValidationError("id", "sentence ID cannot be empty")
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if _, exists := s.Sentences[sentence.ID]; !exists {
		s.Order = append(s.Order, sentence.ID)
	}
	s.Sentences[sentence.ID] = sentence
	return nil
}

func (s *MemoryStore) Get(id string) (*model.Sentence, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	sentence, ok := s.Sentences[id]
	if !ok {
		return nil, errors.NewSentenceNotFoundError(id)
	}
	return sentence, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if _, ok := s.Sentences[id]; !ok {
		return errors.NewSentenceNotFoundError(id)
	}
	delete(s.Sentences, id)
	for i, existing := range s.Order {
		if existing == id {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns a page of sentences and the total count. A limit <= 0 returns
// everything after offset.
func (s *MemoryStore) List(offset, limit int) ([]*model.Sentence, int, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	total := len(s.Order)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*model.Sentence{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	page := make([]*model.Sentence, 0, end-offset)
	for _, id := range s.Order[offset:end] {
		page = append(page, s.Sentences[id])
	}
	return page, total, nil
}

// Flush writes the snapshot, if the store has one.
func (s *MemoryStore) Flush() error {
	if s.path == "" {
		return nil
	}
	return persistence.SaveGob(s.path, s)
}

func (s *MemoryStore) Close() error {
	return s.Flush()
}

// GobEncode implements the gob.GobEncoder interface for MemoryStore.
func (s *MemoryStore) GobEncode() ([]byte, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobMemoryStoreData{Sentences: s.Sentences, Order: s.Order}); err != nil {
		return nil, fmt.Errorf("failed to gob encode sentence store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for MemoryStore.
func (s *MemoryStore) GobDecode(data []byte) error {
	decoded := gobMemoryStoreData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode sentence store data: %w", err)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Sentences = decoded.Sentences
	s.Order = decoded.Order
	// Ensure the map is initialized if it was nil after decoding
	if s.Sentences == nil {
		s.Sentences = make(map[string]*model.Sentence)
	}
	return nil
}
