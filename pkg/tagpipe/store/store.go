// Package store persists parsed corpora together with the word and tag
// indices built for them, so a later run encodes with identical ids.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Store is the persistence interface for parsed corpora.
type Store interface {
	Close() error

	// SaveCorpus stores c and returns its id. A corpus with the same name
	// is replaced. An empty c.ID is filled with a new id.
	SaveCorpus(ctx context.Context, c Corpus) (string, error)
	GetCorpus(ctx context.Context, id string) (Corpus, bool, error)
	GetCorpusByName(ctx context.Context, name string) (Corpus, bool, error)
	ListCorpora(ctx context.Context) ([]CorpusInfo, error)
	DeleteCorpus(ctx context.Context, id string) error
}

// Corpus is a stored parse result.
type Corpus struct {
	ID        string
	Name      string
	Format    corpus.Format
	Path      string
	CreatedAt time.Time
	Sentences []corpus.Sentence
	Words     *vocab.Index
	Tags      *vocab.Index
}

// CorpusInfo is the metadata of a stored corpus, without its content.
type CorpusInfo struct {
	ID        string
	Name      string
	Format    corpus.Format
	Path      string
	CreatedAt time.Time
	Sentences int
	Words     int
	Tags      int
}

// Info summarizes c.
func (c Corpus) Info() CorpusInfo {
	info := CorpusInfo{
		ID:        c.ID,
		Name:      c.Name,
		Format:    c.Format,
		Path:      c.Path,
		CreatedAt: c.CreatedAt,
		Sentences: len(c.Sentences),
	}
	if c.Words != nil {
		info.Words = c.Words.Len()
	}
	if c.Tags != nil {
		info.Tags = c.Tags.Len()
	}
	return info
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexicographically sortable corpus id.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}
