// Package encode converts sentence records into id sequences using the
// indices built during parsing.
package encode

import (
	"fmt"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Pair is an encoded sentence. TagIDs is nil for prediction input.
type Pair struct {
	WordIDs []int
	TagIDs  []int
}

// LookupError reports a token missing from the index used for encoding.
// It means the index and the data come from different parse passes.
type LookupError struct {
	Kind     string // "word" or "tag"
	Token    string
	Position int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("encode: %s %q at position %d not in index", e.Kind, e.Token, e.Position)
}

func (e *LookupError) Unwrap() error { return internalerr.ErrNotFound }

func toIDs(kind string, tokens []string, idx *vocab.Index) ([]int, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, ok := idx.ID(tok)
		if !ok {
			return nil, &LookupError{Kind: kind, Token: tok, Position: i}
		}
		ids[i] = id
	}
	return ids, nil
}

// WordsToIDs maps words to their ids.
func WordsToIDs(words []string, idx *vocab.Index) ([]int, error) {
	return toIDs("word", words, idx)
}

// TagsToIDs maps tags to their ids.
func TagsToIDs(tags []string, idx *vocab.Index) ([]int, error) {
	return toIDs("tag", tags, idx)
}

// Pairs encodes sentences with their tags, for training.
func Pairs(sentences []corpus.Sentence, words, tags *vocab.Index) ([]Pair, error) {
	out := make([]Pair, 0, len(sentences))
	for i, s := range sentences {
		w, err := WordsToIDs(s.Words, words)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		t, err := TagsToIDs(s.Tags, tags)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		out = append(out, Pair{WordIDs: w, TagIDs: t})
	}
	return out, nil
}

// PairsForPrediction encodes sentences without tags.
func PairsForPrediction(sentences []corpus.Sentence, words *vocab.Index) ([]Pair, error) {
	out := make([]Pair, 0, len(sentences))
	for i, s := range sentences {
		w, err := WordsToIDs(s.Words, words)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		out = append(out, Pair{WordIDs: w})
	}
	return out, nil
}

// Decode maps ids back to tokens.
func Decode(ids []int, idx *vocab.Index) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		tok, ok := idx.Token(id)
		if !ok {
			return nil, fmt.Errorf("encode: id %d at position %d not in index: %w", id, i, internalerr.ErrNotFound)
		}
		out[i] = tok
	}
	return out, nil
}
