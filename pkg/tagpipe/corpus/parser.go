package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Result is everything one parse pass produces.
type Result struct {
	Sentences []Sentence
	Words     *vocab.Index
	Tags      *vocab.Index

	// Filtered counts tokens dropped because the lookup lacked the word.
	Filtered int
	// DroppedTrailing is the word count of a final sentence that was not
	// followed by a blank line and therefore not emitted.
	DroppedTrailing int
}

// Parser turns corpus files into sentence records. The lookup is only read,
// so one lookup may back many parsers.
type Parser struct {
	lookup embedding.Lookup
	log    zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for progress and data warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

// NewParser creates a parser that keeps only words known to lookup.
func NewParser(lookup embedding.Lookup, opts ...Option) *Parser {
	p := &Parser{lookup: lookup, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses the corpus at path.
func (p *Parser) ParseFile(path string, format Format) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := p.Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}

// Parse reads a corpus line by line.
//
// Tokens of a sentence that is still open when the input ends are registered
// in the indices but the sentence itself is not emitted: only a blank line
// completes a sentence.
func (p *Parser) Parse(r io.Reader, format Format) (*Result, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	start := time.Now()

	res := &Result{Words: vocab.New(), Tags: vocab.New()}
	var cur Sentence

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		atEOF := err != nil
		if line == "" && atEOF {
			break
		}
		lineNo++
		line = normalizeTerminator(line)

		if line == "\n" {
			if len(cur.Words) > 0 {
				cur.WordCount = len(cur.Words)
				res.Sentences = append(res.Sentences, cur)
			}
			cur = Sentence{}
		} else {
			word, tag, serr := splitLine(line, format)
			if serr != nil {
				return nil, fmt.Errorf("line %d %q: %w", lineNo, strings.TrimRight(line, "\n"), serr)
			}
			if p.lookup.Contains(word) {
				cur.Words = append(cur.Words, word)
				cur.Tags = append(cur.Tags, tag)
				res.Words.Add(word)
				res.Tags.Add(tag)
			} else {
				res.Filtered++
			}
		}

		if atEOF {
			break
		}
	}

	if len(cur.Words) > 0 {
		res.DroppedTrailing = len(cur.Words)
		p.log.Warn().
			Int("words", len(cur.Words)).
			Msg("final sentence has no closing blank line, not emitted")
	}

	p.log.Info().
		Str("format", string(format)).
		Int("sentences", len(res.Sentences)).
		Int("words", res.Words.Len()).
		Int("tags", res.Tags.Len()).
		Int("filtered", res.Filtered).
		Dur("elapsed", time.Since(start)).
		Msg("parsed corpus")

	return res, nil
}

// normalizeTerminator folds CRLF to LF and gives an unterminated final line
// the terminator it would have had, so NER tag stripping sees the same field
// shape on every line.
func normalizeTerminator(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2] + "\n"
	}
	if !strings.HasSuffix(line, "\n") {
		return line + "\n"
	}
	return line
}
