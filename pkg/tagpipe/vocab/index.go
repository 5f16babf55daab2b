// Package vocab maps tokens (words or tags) to dense integer ids.
//
// Ids are handed out in first-seen order starting at 0 and are never
// reassigned or removed. An Index is built by a single goroutine; once
// construction is finished it may be shared by any number of readers.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
)

// Index is an append-only, insertion-ordered token -> id mapping.
type Index struct {
	ids  map[string]int
	keys []string // keys[id] == token
}

// New creates an empty index.
func New() *Index {
	return &Index{ids: make(map[string]int)}
}

// FromTokens builds an index by adding tokens in order. Repeated tokens keep
// the id of their first occurrence.
func FromTokens(tokens ...string) *Index {
	idx := New()
	for _, t := range tokens {
		idx.Add(t)
	}
	return idx
}

// Add registers token if unseen and returns its id.
func (x *Index) Add(token string) int {
	if id, ok := x.ids[token]; ok {
		return id
	}
	id := len(x.keys)
	x.ids[token] = id
	x.keys = append(x.keys, token)
	return id
}

// ID returns the id of token.
func (x *Index) ID(token string) (int, bool) {
	id, ok := x.ids[token]
	return id, ok
}

// Contains reports whether token has an id.
func (x *Index) Contains(token string) bool {
	_, ok := x.ids[token]
	return ok
}

// Token returns the token stored under id.
func (x *Index) Token(id int) (string, bool) {
	if id < 0 || id >= len(x.keys) {
		return "", false
	}
	return x.keys[id], true
}

// Len returns the number of distinct tokens.
func (x *Index) Len() int {
	return len(x.keys)
}

// Tokens returns the tokens in id order.
func (x *Index) Tokens() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

// Inverse returns the id -> token mapping.
func (x *Index) Inverse() map[int]string {
	inv := make(map[int]string, len(x.keys))
	for id, tok := range x.keys {
		inv[id] = tok
	}
	return inv
}

// MarshalJSON encodes the index as a {"token": id} object.
func (x *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.ids)
}

// UnmarshalJSON decodes a {"token": id} object. The ids must form the
// contiguous range 0..n-1 without duplicates.
func (x *Index) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	idx, err := FromMap(raw)
	if err != nil {
		return err
	}
	*x = *idx
	return nil
}

// FromMap rebuilds an index from a token -> id mapping, typically one that
// was persisted earlier.
func FromMap(m map[string]int) (*Index, error) {
	keys := make([]string, len(m))
	seen := make([]bool, len(m))
	for tok, id := range m {
		if id < 0 || id >= len(m) {
			return nil, fmt.Errorf("vocab: id %d for %q out of range [0,%d): %w", id, tok, len(m), internalerr.ErrMalformed)
		}
		if seen[id] {
			return nil, fmt.Errorf("vocab: id %d assigned twice: %w", id, internalerr.ErrDuplicate)
		}
		seen[id] = true
		keys[id] = tok
	}
	ids := make(map[string]int, len(m))
	for tok, id := range m {
		ids[tok] = id
	}
	return &Index{ids: ids, keys: keys}, nil
}

// SaveJSON writes the index to path as JSON.
func (x *Index) SaveJSON(path string) error {
	data, err := json.Marshal(x)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadJSON reads an index previously written with SaveJSON.
func LoadJSON(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx := New()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return idx, nil
}
