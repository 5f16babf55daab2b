// Package corpus parses tagged-text corpora into sentence records and the
// word and tag indices seen while reading them.
//
// Two line formats are understood:
//
//	POS: word<whitespace>tag
//	NER: word<TAB>|tag        (the tag field loses its first and last character)
//
// A blank line ends a sentence. Words the embedding lookup does not know are
// dropped together with their tag.
package corpus

import (
	"fmt"
	"strings"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
)

// Outside is the label for tokens that belong to no chunk.
const Outside = "O"

// Format selects the line layout of a corpus file.
type Format string

const (
	FormatPOS Format = "pos"
	FormatNER Format = "ner"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatPOS, FormatNER:
		return f, nil
	default:
		return "", fmt.Errorf("corpus: unknown format %q: %w", name, internalerr.ErrInvalidInput)
	}
}

// Sentence is one parsed sentence. WordCount always equals len(Words) and
// len(Tags).
type Sentence struct {
	Words     []string `json:"words"`
	Tags      []string `json:"tags"`
	WordCount int      `json:"wc"`
}

// Validate checks the record invariant.
func (s Sentence) Validate() error {
	if len(s.Words) != len(s.Tags) || s.WordCount != len(s.Words) {
		return fmt.Errorf("corpus: sentence has %d words, %d tags, count %d: %w",
			len(s.Words), len(s.Tags), s.WordCount, internalerr.ErrMalformed)
	}
	return nil
}

// ErrMalformedLine is returned for a non-blank line that does not split into
// exactly one word and one tag.
var ErrMalformedLine = fmt.Errorf("malformed corpus line: %w", internalerr.ErrMalformed)

// splitLine breaks a line (terminator included) into word and tag.
func splitLine(line string, format Format) (word, tag string, err error) {
	switch format {
	case FormatPOS:
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return "", "", ErrMalformedLine
		}
		return fields[0], fields[1], nil
	case FormatNER:
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return "", "", ErrMalformedLine
		}
		tag = fields[1]
		if len(tag) < 2 {
			return "", "", ErrMalformedLine
		}
		return fields[0], tag[1 : len(tag)-1], nil
	default:
		return "", "", fmt.Errorf("corpus: unknown format %q: %w", format, internalerr.ErrInvalidInput)
	}
}
