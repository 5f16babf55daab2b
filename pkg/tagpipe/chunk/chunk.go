// Package chunk decodes tag id sequences into typed spans using IOB/BIOES
// semantics.
package chunk

import (
	"fmt"
	"strings"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Outside is the label of tokens that belong to no chunk.
const Outside = "O"

// ErrNoOutsideLabel is returned when the tag index lacks the Outside label.
var ErrNoOutsideLabel = fmt.Errorf("tag index has no %q label: %w", Outside, internalerr.ErrNotFound)

// Chunk is a span [Start, End) of positions sharing one entity type.
type Chunk struct {
	Type  string
	Start int
	End   int
}

func (c Chunk) String() string {
	return fmt.Sprintf("(%s, %d, %d)", c.Type, c.Start, c.End)
}

// Split breaks a tag such as "B-PER" into its class ("B") and type ("PER").
// The class is the text before the first '-', the type the text after the
// last one. A tag without '-' is both its own class and type.
func Split(tag string) (class, typ string) {
	class, _, _ = strings.Cut(tag, "-")
	typ = tag[strings.LastIndex(tag, "-")+1:]
	return class, typ
}

// TypeOf resolves id through tags and splits the tag.
func TypeOf(id int, tags *vocab.Index) (class, typ string, err error) {
	tag, ok := tags.Token(id)
	if !ok {
		return "", "", fmt.Errorf("chunk: tag id %d: %w", id, internalerr.ErrNotFound)
	}
	class, typ = Split(tag)
	return class, typ, nil
}

// Chunks groups a tag id sequence into spans.
//
// An Outside tag closes the open chunk. Any other tag opens a chunk when none
// is open, and closes the open chunk and opens a new one when its type
// differs or its class is "B". A chunk still open after the last position
// ends at len(seq).
func Chunks(seq []int, tags *vocab.Index) ([]Chunk, error) {
	outside, ok := tags.ID(Outside)
	if !ok {
		return nil, ErrNoOutsideLabel
	}

	var (
		chunks []Chunk
		open   bool
		cur    Chunk
	)
	for i, id := range seq {
		if id == outside {
			if open {
				cur.End = i
				chunks = append(chunks, cur)
				open = false
			}
			continue
		}
		class, typ, err := TypeOf(id, tags)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		switch {
		case !open:
			cur, open = Chunk{Type: typ, Start: i}, true
		case typ != cur.Type || class == "B":
			cur.End = i
			chunks = append(chunks, cur)
			cur = Chunk{Type: typ, Start: i}
		}
	}
	if open {
		cur.End = len(seq)
		chunks = append(chunks, cur)
	}
	return chunks, nil
}
