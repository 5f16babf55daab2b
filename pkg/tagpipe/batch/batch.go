package batch

import (
	"fmt"
	"iter"
	"slices"

	"github.com/cognicore/tagpipe/pkg/tagpipe/encode"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
)

// Source names the corpus a mixed batch was drawn from.
type Source string

const (
	SourcePOS Source = "pos"
	SourceNER Source = "ner"
)

// Batch is a group of encoded sentences in input order. Labels[i] is nil for
// prediction input.
type Batch struct {
	Inputs [][]int
	Labels [][]int
	Source Source
}

// Len returns the number of sentences in the batch.
func (b Batch) Len() int { return len(b.Inputs) }

// Padded is the rectangular form of a Batch.
type Padded struct {
	Inputs  [][]int
	Lengths []int
	Labels  [][]int
	Source  Source
}

// Pad pads inputs, and labels when every item has them, to maxLength. A
// maxLength <= 0 pads to the longest input in the batch.
func (b Batch) Pad(padValue, maxLength int) Padded {
	if maxLength <= 0 {
		for _, in := range b.Inputs {
			maxLength = max(maxLength, len(in))
		}
	}
	p := Padded{Source: b.Source}
	p.Inputs, p.Lengths = PadTo(b.Inputs, padValue, maxLength)
	if len(b.Labels) > 0 && !slices.ContainsFunc(b.Labels, func(l []int) bool { return l == nil }) {
		p.Labels, _ = PadTo(b.Labels, padValue, maxLength)
	}
	return p
}

// Pairs adapts a slice of pairs to the sequence type the batchers consume.
func Pairs(pairs []encode.Pair) iter.Seq[encode.Pair] {
	return slices.Values(pairs)
}

func checkSize(size int) error {
	if size < 1 {
		return fmt.Errorf("batch: size %d: %w", size, internalerr.ErrInvalidInput)
	}
	return nil
}

// Minibatcher pulls pairs from a source and hands them out in batches of a
// fixed size. The last batch may be smaller; it is never dropped. A
// Minibatcher makes a single pass; start a new one to read the data again.
type Minibatcher struct {
	next func() (encode.Pair, bool)
	stop func()
	size int
	done bool
}

// NewMinibatcher creates a batcher over src. Call Stop when abandoning it
// before it is exhausted.
func NewMinibatcher(src iter.Seq[encode.Pair], size int) (*Minibatcher, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	next, stop := iter.Pull(src)
	return &Minibatcher{next: next, stop: stop, size: size}, nil
}

// Next returns the next batch, or false once the source is exhausted.
func (m *Minibatcher) Next() (Batch, bool) {
	if m.done {
		return Batch{}, false
	}
	var b Batch
	for b.Len() < m.size {
		p, ok := m.next()
		if !ok {
			m.Stop()
			break
		}
		b.Inputs = append(b.Inputs, p.WordIDs)
		b.Labels = append(b.Labels, p.TagIDs)
	}
	if b.Len() == 0 {
		return Batch{}, false
	}
	return b, true
}

// Stop releases the source. Next returns false afterwards.
func (m *Minibatcher) Stop() {
	if !m.done {
		m.done = true
		m.stop()
	}
}

// Minibatches returns the batches of src as a sequence.
func Minibatches(src iter.Seq[encode.Pair], size int) (iter.Seq[Batch], error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return func(yield func(Batch) bool) {
		var b Batch
		for p := range src {
			b.Inputs = append(b.Inputs, p.WordIDs)
			b.Labels = append(b.Labels, p.TagIDs)
			if b.Len() == size {
				if !yield(b) {
					return
				}
				b = Batch{}
			}
		}
		if b.Len() > 0 {
			yield(b)
		}
	}, nil
}
