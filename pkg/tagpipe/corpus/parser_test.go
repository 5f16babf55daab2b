package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/logging"
)

func testLookup(t *testing.T, words ...string) *embedding.Table {
	t.Helper()
	tbl := embedding.NewTable(2)
	for i, w := range words {
		require.NoError(t, tbl.Set(w, []float64{float64(i), 1}))
	}
	return tbl.Freeze()
}

func TestParsePOSSentences(t *testing.T) {
	lookup := testLookup(t, "The", "cat", "sat", ".", "Dogs", "bark")
	input := "The DT\ncat NN\nsat VBD\n. .\n\nDogs NNS\nbark VBP\n\n"

	res, err := NewParser(lookup).Parse(strings.NewReader(input), FormatPOS)
	require.NoError(t, err)

	require.Len(t, res.Sentences, 2)
	assert.Equal(t, []string{"The", "cat", "sat", "."}, res.Sentences[0].Words)
	assert.Equal(t, []string{"DT", "NN", "VBD", "."}, res.Sentences[0].Tags)
	assert.Equal(t, 4, res.Sentences[0].WordCount)
	assert.Equal(t, 2, res.Sentences[1].WordCount)

	for _, s := range res.Sentences {
		assert.NoError(t, s.Validate())
	}

	assert.Equal(t, []string{"The", "cat", "sat", ".", "Dogs", "bark"}, res.Words.Tokens())
	assert.Equal(t, []string{"DT", "NN", "VBD", ".", "NNS", "VBP"}, res.Tags.Tokens())
}

func TestParseNERStripsTagWrapper(t *testing.T) {
	lookup := testLookup(t, "EU", "rejects", "German", "call")
	input := "-DOCSTART-\t|O\n\nEU\t|B-ORG\nrejects\t|O\nGerman\t|B-MISC\ncall\t|O\n\n"

	res, err := NewParser(lookup).Parse(strings.NewReader(input), FormatNER)
	require.NoError(t, err)

	require.Len(t, res.Sentences, 1)
	assert.Equal(t, []string{"B-ORG", "O", "B-MISC", "O"}, res.Sentences[0].Tags)
	// -DOCSTART- is an ordinary token; the lookup does not know it.
	assert.False(t, res.Words.Contains("-DOCSTART-"))
	assert.Equal(t, 1, res.Filtered)
}

func TestParseNERDocstartKnownToLookup(t *testing.T) {
	lookup := testLookup(t, "-DOCSTART-", "EU")
	input := "-DOCSTART-\t|O\n\nEU\t|B-ORG\n\n"

	res, err := NewParser(lookup).Parse(strings.NewReader(input), FormatNER)
	require.NoError(t, err)

	require.Len(t, res.Sentences, 2)
	assert.Equal(t, []string{"-DOCSTART-"}, res.Sentences[0].Words)
	assert.Equal(t, []string{"O", "B-ORG"}, res.Tags.Tokens())
}

func TestParseFiltersUnknownWordsWithTags(t *testing.T) {
	lookup := testLookup(t, "known")
	input := "unknown XX\nknown NN\n\n"

	res, err := NewParser(lookup).Parse(strings.NewReader(input), FormatPOS)
	require.NoError(t, err)

	require.Len(t, res.Sentences, 1)
	assert.Equal(t, []string{"known"}, res.Sentences[0].Words)
	assert.Equal(t, []string{"NN"}, res.Sentences[0].Tags)
	assert.False(t, res.Tags.Contains("XX"))
	assert.False(t, res.Words.Contains("unknown"))
}

func TestParseDiscardsEmptySentences(t *testing.T) {
	lookup := testLookup(t, "a")
	// consecutive blank lines and a sentence made only of filtered words
	input := "\n\nzzz NN\n\na DT\n\n\n"

	res, err := NewParser(lookup).Parse(strings.NewReader(input), FormatPOS)
	require.NoError(t, err)
	require.Len(t, res.Sentences, 1)
	assert.Equal(t, []string{"a"}, res.Sentences[0].Words)
}

// A last sentence without a closing blank line is not emitted. Its tokens
// still reach the indices.
func TestParseDropsTrailingSentenceWithoutBlankLine(t *testing.T) {
	lookup := testLookup(t, "one", "two", "three")
	input := "one CD\n\ntwo CD\nthree CD\n"

	var logs bytes.Buffer
	p := NewParser(lookup, WithLogger(logging.New(&logs, 0)))
	res, err := p.Parse(strings.NewReader(input), FormatPOS)
	require.NoError(t, err)

	require.Len(t, res.Sentences, 1)
	assert.Equal(t, []string{"one"}, res.Sentences[0].Words)
	assert.Equal(t, 2, res.DroppedTrailing)
	assert.True(t, res.Words.Contains("three"))
	assert.Contains(t, logs.String(), "not emitted")
}

func TestParseUnterminatedLastLine(t *testing.T) {
	lookup := testLookup(t, "x", "y")
	res, err := NewParser(lookup).Parse(strings.NewReader("x\t|B-PER\n\ny\t|I-PER"), FormatNER)
	require.NoError(t, err)

	require.Len(t, res.Sentences, 1)
	assert.Equal(t, []string{"B-PER", "I-PER"}, res.Tags.Tokens())
}

func TestParseCRLF(t *testing.T) {
	lookup := testLookup(t, "x")
	res, err := NewParser(lookup).Parse(strings.NewReader("x\t|B-LOC\r\n\r\n"), FormatNER)
	require.NoError(t, err)
	require.Len(t, res.Sentences, 1)
	assert.Equal(t, []string{"B-LOC"}, res.Sentences[0].Tags)
}

func TestParseMalformedLine(t *testing.T) {
	lookup := testLookup(t, "a", "b")
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"pos three fields", "a DT extra\n\n", FormatPOS},
		{"pos one field", "a\n\n", FormatPOS},
		{"pos whitespace only", "a DT\n   \n\n", FormatPOS},
		{"ner no tab", "a |O\n\n", FormatNER},
		{"ner two tabs", "a\t|O\tx\n\n", FormatNER},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(lookup).Parse(strings.NewReader(tt.input), tt.format)
			assert.ErrorIs(t, err, ErrMalformedLine)
			assert.ErrorIs(t, err, internalerr.ErrMalformed)
		})
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := NewParser(testLookup(t)).Parse(strings.NewReader(""), Format("conll"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.txt")
	require.NoError(t, os.WriteFile(path, []byte("a DT\nb NN\n\n"), 0o644))

	res, err := NewParser(testLookup(t, "a", "b")).ParseFile(path, FormatPOS)
	require.NoError(t, err)
	assert.Len(t, res.Sentences, 1)

	_, err = NewParser(testLookup(t)).ParseFile(filepath.Join(t.TempDir(), "none.txt"), FormatPOS)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" NER ")
	require.NoError(t, err)
	assert.Equal(t, FormatNER, f)

	_, err = ParseFormat("iob")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestParseAcceptsFormatVariants(t *testing.T) {
	lookup := testLookup(t, "EU", "call")
	tests := []struct {
		format Format
		input  string
		tags   []string
	}{
		{Format("POS"), "EU NNP\ncall NN\n\n", []string{"NNP", "NN"}},
		{Format(" NER "), "EU\t|B-ORG\ncall\t|O\n\n", []string{"B-ORG", "O"}},
	}
	for _, tt := range tests {
		res, err := NewParser(lookup).Parse(strings.NewReader(tt.input), tt.format)
		require.NoError(t, err, string(tt.format))
		require.Len(t, res.Sentences, 1)
		assert.Equal(t, tt.tags, res.Sentences[0].Tags)
	}
}
