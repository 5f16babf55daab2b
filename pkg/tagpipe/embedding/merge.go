package embedding

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// ErrMissingVector reports a vocabulary word the lookup has no vector for.
// Parsing filters such words out, so seeing it means the indices and the
// lookup do not belong together.
var ErrMissingVector = fmt.Errorf("missing embedding vector: %w", internalerr.ErrNotFound)

// Merge walks the given indices in order and assigns every unseen word a
// fresh id in a merged index. Ids follow first-seen order over the
// concatenated walk, not the per-corpus ids. Row i of the returned matrix
// holds the vector of merged word i.
func Merge(lookup Lookup, indices ...*vocab.Index) (*vocab.Index, *mat.Dense, error) {
	merged := vocab.New()
	for _, idx := range indices {
		if idx == nil {
			continue
		}
		for _, word := range idx.Tokens() {
			merged.Add(word)
		}
	}
	if merged.Len() == 0 {
		return nil, nil, fmt.Errorf("embedding: nothing to merge: %w", internalerr.ErrInvalidInput)
	}

	dim := lookup.Dim()
	if dim <= 0 {
		return nil, nil, fmt.Errorf("embedding: lookup dimension %d: %w", dim, internalerr.ErrInvalidInput)
	}
	m := mat.NewDense(merged.Len(), dim, nil)
	for id, word := range merged.Tokens() {
		vec, ok := lookup.Vector(word)
		if !ok {
			return nil, nil, fmt.Errorf("embedding: %q: %w", word, ErrMissingVector)
		}
		if len(vec) != dim {
			return nil, nil, fmt.Errorf("embedding: %q has %d dims, want %d: %w", word, len(vec), dim, internalerr.ErrMalformed)
		}
		m.SetRow(id, vec)
	}
	return merged, m, nil
}

// Row returns a copy of row id of m.
func Row(m *mat.Dense, id int) ([]float64, error) {
	rows, cols := m.Dims()
	if id < 0 || id >= rows {
		return nil, fmt.Errorf("embedding: row %d out of range [0,%d): %w", id, rows, internalerr.ErrNotFound)
	}
	return mat.Row(make([]float64, cols), id, m), nil
}

// SaveMatrix writes m in gonum's binary matrix format.
func SaveMatrix(w io.Writer, m *mat.Dense) error {
	_, err := m.MarshalBinaryTo(w)
	return err
}

// LoadMatrix reads a matrix written with SaveMatrix.
func LoadMatrix(r io.Reader) (*mat.Dense, error) {
	var m mat.Dense
	if _, err := m.UnmarshalBinaryFrom(r); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMatrixFile writes m to path.
func SaveMatrixFile(path string, m *mat.Dense) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return SaveMatrix(f, m)
}

// LoadMatrixFile reads a matrix from path.
func LoadMatrixFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := LoadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}
