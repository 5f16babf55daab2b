// Package embedding holds the pretrained word vector table consulted while
// parsing corpora, and the merge step that turns several vocabularies into
// one embeddings matrix.
package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
)

// DefaultDim is the vector width of the GloVe tables the pipeline is used with.
const DefaultDim = 300

// Lookup answers membership and vector queries for words.
// Implementations must be safe for concurrent readers.
type Lookup interface {
	Contains(word string) bool
	Vector(word string) ([]float64, bool)
	Dim() int
}

// Table is a map-backed Lookup. It is filled with Set and then sealed with
// Freeze; a frozen table rejects further writes and can be shared freely.
type Table struct {
	dim    int
	vecs   map[string][]float64
	frozen bool
}

// NewTable creates an empty table for vectors of width dim.
func NewTable(dim int) *Table {
	return &Table{dim: dim, vecs: make(map[string][]float64)}
}

// Set stores the vector for word. The first vector stored for a word wins.
func (t *Table) Set(word string, vec []float64) error {
	if t.frozen {
		return fmt.Errorf("embedding: set %q on frozen table: %w", word, internalerr.ErrInvalidInput)
	}
	if len(vec) != t.dim {
		return fmt.Errorf("embedding: vector for %q has %d dims, want %d: %w", word, len(vec), t.dim, internalerr.ErrInvalidInput)
	}
	if _, ok := t.vecs[word]; ok {
		return nil
	}
	v := make([]float64, len(vec))
	copy(v, vec)
	t.vecs[word] = v
	return nil
}

// Freeze seals the table and returns it.
func (t *Table) Freeze() *Table {
	t.frozen = true
	return t
}

// Contains implements Lookup.
func (t *Table) Contains(word string) bool {
	_, ok := t.vecs[word]
	return ok
}

// Vector implements Lookup. The returned slice must not be modified.
func (t *Table) Vector(word string) ([]float64, bool) {
	v, ok := t.vecs[word]
	return v, ok
}

// Dim implements Lookup.
func (t *Table) Dim() int { return t.dim }

// Len returns the number of words in the table.
func (t *Table) Len() int { return len(t.vecs) }

// LoadText reads a GloVe or word2vec text table: one "word v1 v2 ... vD"
// row per line, optionally preceded by a "<count> <dim>" header. The
// returned table is frozen.
func LoadText(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var t *Table
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				dim, err := strconv.Atoi(fields[1])
				if err != nil || dim <= 0 {
					return nil, fmt.Errorf("embedding: bad header %q: %w", scanner.Text(), internalerr.ErrMalformed)
				}
				t = NewTable(dim)
				continue
			}
		}
		if t == nil {
			t = NewTable(len(fields) - 1)
		}
		if len(fields)-1 != t.dim {
			return nil, fmt.Errorf("embedding: line %d has %d values, want %d: %w", lineNo, len(fields)-1, t.dim, internalerr.ErrMalformed)
		}
		vec := make([]float64, t.dim)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("embedding: line %d: %v: %w", lineNo, err, internalerr.ErrMalformed)
			}
			vec[i] = v
		}
		if err := t.Set(fields[0], vec); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("embedding: empty table: %w", internalerr.ErrInvalidInput)
	}
	return t.Freeze(), nil
}

// LoadTextFile opens path and reads it with LoadText.
func LoadTextFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := LoadText(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
