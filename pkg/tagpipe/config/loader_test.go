package config

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
)

const tinyGlove = "the 0.1 0.2\ncat 0.3 0.4\n"

func TestLoaderMemoryStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "glove.txt", tinyGlove)
	path := writeFile(t, dir, "tagpipe.yaml", "embeddings: glove.txt\ndim: 2\n")

	var logs bytes.Buffer
	loader := Loader{ConfigPath: path, LogOutput: &logs}
	comp, err := loader.Load(context.Background())
	require.NoError(t, err)
	defer comp.Close()

	assert.True(t, comp.Lookup.Contains("cat"))
	assert.Equal(t, 2, comp.Lookup.Dim())
	require.NotNil(t, comp.Store)
	assert.Contains(t, logs.String(), "embeddings loaded")
}

func TestLoaderSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "glove.txt", tinyGlove)
	path := writeFile(t, dir, "tagpipe.yaml", "embeddings: glove.txt\ndim: 2\ndb: corpora.db\n")

	loader := Loader{ConfigPath: path, LogOutput: &bytes.Buffer{}}
	comp, err := loader.Load(context.Background())
	require.NoError(t, err)
	defer comp.Close()

	list, err := comp.Store.ListCorpora(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.FileExists(t, filepath.Join(dir, "corpora.db"))
}

func TestLoaderDimMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "glove.txt", tinyGlove)
	path := writeFile(t, dir, "tagpipe.yaml", "embeddings: glove.txt\n")

	loader := Loader{ConfigPath: path, LogOutput: &bytes.Buffer{}}
	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoaderRequiresEmbeddings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tagpipe.yaml", "dim: 2\n")

	loader := Loader{ConfigPath: path, LogOutput: &bytes.Buffer{}}
	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoaderMissingEmbeddingsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tagpipe.yaml", "embeddings: nope.txt\ndim: 2\n")

	loader := Loader{ConfigPath: path, LogOutput: &bytes.Buffer{}}
	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}
