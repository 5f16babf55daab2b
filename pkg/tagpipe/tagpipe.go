// Package tagpipe wires the corpus parser, encoder, batchers, chunk decoder
// and corpus store into one pipeline.
package tagpipe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/tagpipe/pkg/tagpipe/batch"
	"github.com/cognicore/tagpipe/pkg/tagpipe/chunk"
	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
	"github.com/cognicore/tagpipe/pkg/tagpipe/encode"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Pipeline is the data pipeline facade.
type Pipeline struct {
	lookup  embedding.Lookup
	store   store.Store
	log     zerolog.Logger
	workers int
}

// Options configures a Pipeline. Lookup is required; it must not change
// after the pipeline is created. Store is optional.
type Options struct {
	Lookup  embedding.Lookup
	Store   store.Store
	Logger  zerolog.Logger
	Workers int
}

// New creates a Pipeline with the given dependencies.
func New(opts Options) (*Pipeline, error) {
	if opts.Lookup == nil {
		return nil, fmt.Errorf("tagpipe: embedding lookup is required: %w", internalerr.ErrInvalidInput)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		lookup:  opts.Lookup,
		store:   opts.Store,
		log:     opts.Logger,
		workers: workers,
	}, nil
}

// Close releases the store, if any.
func (p *Pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// CorpusSpec names a corpus file to load.
type CorpusSpec struct {
	Name   string
	Path   string
	Format corpus.Format
}

// Corpus is a parsed corpus. ID is set when it was saved to the store.
type Corpus struct {
	ID     string
	Name   string
	Format corpus.Format
	*corpus.Result
}

// LoadCorpus parses spec and saves the result when a store is configured.
func (p *Pipeline) LoadCorpus(ctx context.Context, spec CorpusSpec) (*Corpus, error) {
	log := p.log.With().Str("corpus", spec.Name).Logger()
	parser := corpus.NewParser(p.lookup, corpus.WithLogger(log))

	res, err := parser.ParseFile(spec.Path, spec.Format)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", spec.Name, err)
	}
	c := &Corpus{Name: spec.Name, Format: spec.Format, Result: res}

	if p.store != nil {
		id, err := p.store.SaveCorpus(ctx, store.Corpus{
			Name:      spec.Name,
			Format:    spec.Format,
			Path:      spec.Path,
			Sentences: res.Sentences,
			Words:     res.Words,
			Tags:      res.Tags,
		})
		if err != nil {
			return nil, fmt.Errorf("save corpus %s: %w", spec.Name, err)
		}
		c.ID = id
		log.Debug().Str("id", id).Msg("corpus saved")
	}
	return c, nil
}

// LoadCorpora parses several corpus files concurrently. Each file gets its
// own parser and indices, so ids are the same as with sequential loading.
// Results are in the order of specs.
func (p *Pipeline) LoadCorpora(ctx context.Context, specs []CorpusSpec) ([]*Corpus, error) {
	out := make([]*Corpus, len(specs))
	wp := pool.New().WithMaxGoroutines(p.workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, spec := range specs {
		wp.Go(func(ctx context.Context) error {
			c, err := p.LoadCorpus(ctx, spec)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// StoredCorpus loads a previously saved corpus by name.
func (p *Pipeline) StoredCorpus(ctx context.Context, name string) (*Corpus, error) {
	if p.store == nil {
		return nil, fmt.Errorf("tagpipe: no store configured: %w", internalerr.ErrStoreUnavailable)
	}
	sc, found, err := p.store.GetCorpusByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("tagpipe: corpus %q: %w", name, internalerr.ErrNotFound)
	}
	return &Corpus{
		ID:     sc.ID,
		Name:   sc.Name,
		Format: sc.Format,
		Result: &corpus.Result{Sentences: sc.Sentences, Words: sc.Words, Tags: sc.Tags},
	}, nil
}

// TrainingPairs encodes the sentences of c with its own indices.
func (p *Pipeline) TrainingPairs(c *Corpus) ([]encode.Pair, error) {
	return encode.Pairs(c.Sentences, c.Words, c.Tags)
}

// PredictionPairs encodes raw texts for inference with the word index of c.
// Words missing from the index are dropped along with the lookup filter,
// since the model has no id for them.
func (p *Pipeline) PredictionPairs(c *Corpus, texts ...string) ([]corpus.Sentence, []encode.Pair, error) {
	sentences := make([]corpus.Sentence, 0, len(texts))
	for _, text := range texts {
		s := corpus.FromText(text, inIndex{p.lookup, c.Words})
		sentences = append(sentences, s)
	}
	pairs, err := encode.PairsForPrediction(sentences, c.Words)
	if err != nil {
		return nil, nil, err
	}
	return sentences, pairs, nil
}

// inIndex accepts words known to both the lookup and a word index.
type inIndex struct {
	embedding.Lookup
	words *vocab.Index
}

func (l inIndex) Contains(word string) bool {
	return l.Lookup.Contains(word) && l.words.Contains(word)
}

// Embeddings merges the word indices of corpora, in order, into one index
// and its embeddings matrix.
func (p *Pipeline) Embeddings(corpora ...*Corpus) (*vocab.Index, *mat.Dense, error) {
	indices := make([]*vocab.Index, 0, len(corpora))
	for _, c := range corpora {
		indices = append(indices, c.Words)
	}
	return embedding.Merge(p.lookup, indices...)
}

// Batches returns a single-corpus minibatcher over c.
func (p *Pipeline) Batches(c *Corpus, size int) (*batch.Minibatcher, error) {
	pairs, err := p.TrainingPairs(c)
	if err != nil {
		return nil, err
	}
	return batch.NewMinibatcher(batch.Pairs(pairs), size)
}

// Mixed returns a mixer alternating batches of pos and ner.
func (p *Pipeline) Mixed(pos, ner *Corpus, size int) (*batch.Mixer, error) {
	a, err := p.TrainingPairs(pos)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", pos.Name, err)
	}
	b, err := p.TrainingPairs(ner)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", ner.Name, err)
	}
	return batch.NewMixer(batch.Pairs(a), batch.Pairs(b), size)
}

// Spans decodes a predicted tag id sequence of c into chunks.
func (p *Pipeline) Spans(c *Corpus, pred []int) ([]chunk.Chunk, error) {
	return chunk.Chunks(pred, c.Tags)
}
