package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	corpora map[string]store.Corpus
	byName  map[string]string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		corpora: make(map[string]store.Corpus),
		byName:  make(map[string]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveCorpus implements store.Store.
func (s *Store) SaveCorpus(ctx context.Context, c store.Corpus) (string, error) {
	if c.Name == "" {
		return "", fmt.Errorf("memstore: corpus name is required: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if old, ok := s.byName[c.Name]; ok {
		delete(s.corpora, old)
	}
	if prev, ok := s.corpora[c.ID]; ok {
		delete(s.byName, prev.Name)
	}
	s.corpora[c.ID] = copyCorpus(c)
	s.byName[c.Name] = c.ID
	return c.ID, nil
}

// GetCorpus implements store.Store.
func (s *Store) GetCorpus(ctx context.Context, id string) (store.Corpus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.corpora[id]
	if !ok {
		return store.Corpus{}, false, nil
	}
	return copyCorpus(c), true, nil
}

// GetCorpusByName implements store.Store.
func (s *Store) GetCorpusByName(ctx context.Context, name string) (store.Corpus, bool, error) {
	s.mu.RLock()
	id, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return store.Corpus{}, false, nil
	}
	return s.GetCorpus(ctx, id)
}

// ListCorpora implements store.Store. Corpora are ordered by name.
func (s *Store) ListCorpora(ctx context.Context) ([]store.CorpusInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.CorpusInfo, 0, len(s.corpora))
	for _, c := range s.corpora {
		out = append(out, c.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCorpus implements store.Store.
func (s *Store) DeleteCorpus(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.corpora[id]
	if !ok {
		return fmt.Errorf("memstore: corpus %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.corpora, id)
	delete(s.byName, c.Name)
	return nil
}

func copyCorpus(c store.Corpus) store.Corpus {
	out := c
	out.Sentences = make([]corpus.Sentence, len(c.Sentences))
	for i, s := range c.Sentences {
		out.Sentences[i] = corpus.Sentence{
			Words:     append([]string(nil), s.Words...),
			Tags:      append([]string(nil), s.Tags...),
			WordCount: s.WordCount,
		}
	}
	out.Words = copyIndex(c.Words)
	out.Tags = copyIndex(c.Tags)
	return out
}

func copyIndex(idx *vocab.Index) *vocab.Index {
	if idx == nil {
		return vocab.New()
	}
	return vocab.FromTokens(idx.Tokens()...)
}
