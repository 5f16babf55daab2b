package chunk

import (
	"fmt"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Evaluator accumulates chunk-level precision/recall/F1 and token accuracy
// over gold and predicted tag sequences.
type Evaluator struct {
	tags *vocab.Index

	correctTokens int
	totalTokens   int
	correctChunks int
	goldChunks    int
	predChunks    int
}

// NewEvaluator creates an evaluator for sequences labeled with tags.
func NewEvaluator(tags *vocab.Index) *Evaluator {
	return &Evaluator{tags: tags}
}

// Add scores one sentence. Only the first length positions are compared;
// length <= 0 means the whole gold sequence.
func (e *Evaluator) Add(gold, pred []int, length int) error {
	if length <= 0 {
		length = len(gold)
	}
	if length > len(gold) || length > len(pred) {
		return fmt.Errorf("chunk: length %d exceeds sequences (%d gold, %d predicted): %w",
			length, len(gold), len(pred), internalerr.ErrInvalidInput)
	}
	gold, pred = gold[:length], pred[:length]

	for i := range gold {
		if gold[i] == pred[i] {
			e.correctTokens++
		}
	}
	e.totalTokens += length

	goldChunks, err := Chunks(gold, e.tags)
	if err != nil {
		return err
	}
	predChunks, err := Chunks(pred, e.tags)
	if err != nil {
		return err
	}
	set := make(map[Chunk]struct{}, len(goldChunks))
	for _, c := range goldChunks {
		set[c] = struct{}{}
	}
	for _, c := range predChunks {
		if _, ok := set[c]; ok {
			e.correctChunks++
		}
	}
	e.goldChunks += len(goldChunks)
	e.predChunks += len(predChunks)
	return nil
}

// Scores summarizes an evaluation.
type Scores struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Scores returns the metrics accumulated so far.
func (e *Evaluator) Scores() Scores {
	var s Scores
	if e.totalTokens > 0 {
		s.Accuracy = float64(e.correctTokens) / float64(e.totalTokens)
	}
	if e.predChunks > 0 {
		s.Precision = float64(e.correctChunks) / float64(e.predChunks)
	}
	if e.goldChunks > 0 {
		s.Recall = float64(e.correctChunks) / float64(e.goldChunks)
	}
	if e.correctChunks > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
