package batch

import (
	"iter"

	"github.com/cognicore/tagpipe/pkg/tagpipe/encode"
)

// Mixer alternates batches between two corpora, starting with the POS side.
//
// The stream ends the first time the side whose turn it is has no batch
// left, even when the other side still holds data. Exhausted reports which
// side ended it.
type Mixer struct {
	sides     [2]*Minibatcher
	names     [2]Source
	turn      int
	exhausted Source
}

// NewMixer creates a mixer drawing POS batches from pos and NER batches from
// ner, each of the given size.
func NewMixer(pos, ner iter.Seq[encode.Pair], size int) (*Mixer, error) {
	a, err := NewMinibatcher(pos, size)
	if err != nil {
		return nil, err
	}
	b, err := NewMinibatcher(ner, size)
	if err != nil {
		a.Stop()
		return nil, err
	}
	return &Mixer{
		sides: [2]*Minibatcher{a, b},
		names: [2]Source{SourcePOS, SourceNER},
	}, nil
}

// Next returns the next batch tagged with its source, or false once the
// stream has ended.
func (m *Mixer) Next() (Batch, bool) {
	if m.exhausted != "" {
		return Batch{}, false
	}
	b, ok := m.sides[m.turn].Next()
	if !ok {
		m.exhausted = m.names[m.turn]
		m.Stop()
		return Batch{}, false
	}
	b.Source = m.names[m.turn]
	m.turn = 1 - m.turn
	return b, true
}

// Exhausted returns the source that ended the stream, or "" while it is
// still running.
func (m *Mixer) Exhausted() Source {
	return m.exhausted
}

// Stop releases both sources.
func (m *Mixer) Stop() {
	for _, s := range m.sides {
		s.Stop()
	}
}

// All returns the remaining mixed batches as a sequence.
func (m *Mixer) All() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		defer m.Stop()
		for {
			b, ok := m.Next()
			if !ok || !yield(b) {
				return
			}
		}
	}
}
