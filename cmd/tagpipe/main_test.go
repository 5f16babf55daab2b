package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// fixture writes an embeddings file, one POS and one NER corpus, and a
// config pointing at them. It returns the config path and output dir.
func fixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"glove.txt": "The 1 0\ncat 0 1\nsat 1 1\nEU 2 0\nrejects 0 2\n",
		"pos.txt":   "The DT\ncat NN\nsat VBD\n\nThe DT\ncat NN\n\n",
		"ner.txt":   "EU\t|B-ORG\nrejects\t|O\n\n",
		"tagpipe.yaml": `
embeddings: glove.txt
dim: 2
batch_size: 1
db: corpora.db
log_level: error
corpora:
  - name: wsj
    path: pos.txt
    format: pos
  - name: conll
    path: ner.txt
    format: ner
outputs:
  dir: out
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return filepath.Join(dir, "tagpipe.yaml"), filepath.Join(dir, "out")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseWritesIndices(t *testing.T) {
	cfg, outDir := fixture(t)

	out, err := run(t, "parse", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "wsj\tpos\tsentences=2\twords=3\ttags=3")
	assert.Contains(t, out, "conll\tner\tsentences=1\twords=2\ttags=2")

	words, err := vocab.LoadJSON(filepath.Join(outDir, "wsj.words.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "cat", "sat"}, words.Tokens())

	tags, err := vocab.LoadJSON(filepath.Join(outDir, "conll.tags.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B-ORG", "O"}, tags.Tokens())
}

func TestParseSingleCorpus(t *testing.T) {
	cfg, outDir := fixture(t)

	out, err := run(t, "parse", "--config", cfg, "--corpus", "conll")
	require.NoError(t, err)
	assert.NotContains(t, out, "wsj")
	assert.NoFileExists(t, filepath.Join(outDir, "wsj.words.json"))

	_, err = run(t, "parse", "--config", cfg, "--corpus", "nope")
	assert.ErrorContains(t, err, `no corpus named "nope"`)
}

func TestCorporaListAndDelete(t *testing.T) {
	cfg, _ := fixture(t)
	_, err := run(t, "parse", "--config", cfg)
	require.NoError(t, err)

	out, err := run(t, "corpora", "--config", cfg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	// Listed by name.
	assert.Contains(t, lines[0], "conll")
	assert.Contains(t, lines[1], "wsj")

	id := strings.Fields(lines[0])[0]
	out, err = run(t, "corpora", "--config", cfg, "--delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+id)

	out, err = run(t, "corpora", "--config", cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "conll")
}

func TestEmbedWritesMatrix(t *testing.T) {
	cfg, outDir := fixture(t)

	out, err := run(t, "embed", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "embeddings 5x2")

	idx, err := vocab.LoadJSON(filepath.Join(outDir, "vocab.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "cat", "sat", "EU", "rejects"}, idx.Tokens())

	m, err := embedding.LoadMatrixFile(filepath.Join(outDir, "embeddings.bin"))
	require.NoError(t, err)
	row, err := embedding.Row(m, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0}, row)
}

func TestBatchesMixed(t *testing.T) {
	cfg, _ := fixture(t)

	out, err := run(t, "batches", "--config", cfg)
	require.NoError(t, err)
	// pos, ner, pos, then the NER side has nothing left.
	assert.Contains(t, out, "0\tpos\tsize=1\tpadded=3")
	assert.Contains(t, out, "1\tner\tsize=1\tpadded=2")
	assert.Contains(t, out, "2\tpos\tsize=1\tpadded=2")
	assert.Contains(t, out, "3 batches, stopped when ner ran out")
}

func TestBatchesOverrides(t *testing.T) {
	cfg, _ := fixture(t)

	out, err := run(t, "batches", "--config", cfg, "--batch-size", "2", "--max-length", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "0\tpos\tsize=2\tpadded=4")

	_, err = run(t, "batches", "--config", cfg, "--batch-size", "0")
	assert.Error(t, err)
}

func TestChunks(t *testing.T) {
	dir := t.TempDir()
	tags := vocab.FromTokens("B-PER", "I-PER", "O", "B-LOC")
	path := filepath.Join(dir, "tags.json")
	require.NoError(t, tags.SaveJSON(path))

	out, err := run(t, "chunks", "--tags", path, "0", "1", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, "[(PER, 0, 2), (LOC, 3, 4)]\n", out)

	_, err = run(t, "chunks", "--tags", path, "x")
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	out, err := run(t, "tokenize", "Hello, world! It's", "fine.")
	require.NoError(t, err)
	assert.Equal(t, "Hello , world ! It's fine .\n", out)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "parse", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
