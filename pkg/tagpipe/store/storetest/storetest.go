// Package storetest holds behavior tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

// Sample returns a small NER corpus.
func Sample(name string) store.Corpus {
	return store.Corpus{
		Name:   name,
		Format: corpus.FormatNER,
		Path:   "data/" + name + ".txt",
		Sentences: []corpus.Sentence{
			{Words: []string{"EU", "rejects", "German", "call"}, Tags: []string{"B-ORG", "O", "B-MISC", "O"}, WordCount: 4},
			{Words: []string{"Peter", "Blackburn"}, Tags: []string{"B-PER", "I-PER"}, WordCount: 2},
		},
		Words: vocab.FromTokens("EU", "rejects", "German", "call", "Peter", "Blackburn"),
		Tags:  vocab.FromTokens("B-ORG", "O", "B-MISC", "B-PER", "I-PER"),
	}
}

// Run exercises a store implementation. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("SaveAndGet", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		defer st.Close()

		want := Sample("ner-train")
		id, err := st.SaveCorpus(ctx, want)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, found, err := st.GetCorpus(ctx, id)
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, id, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Format, got.Format)
		assert.Equal(t, want.Path, got.Path)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
		assert.Equal(t, want.Sentences, got.Sentences)
		assert.Equal(t, want.Words.Tokens(), got.Words.Tokens())
		assert.Equal(t, want.Tags.Tokens(), got.Tags.Tokens())

		byName, found, err := st.GetCorpusByName(ctx, "ner-train")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id, byName.ID)
	})

	t.Run("Missing", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		defer st.Close()

		_, found, err := st.GetCorpus(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = st.GetCorpusByName(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)

		assert.ErrorIs(t, st.DeleteCorpus(ctx, "nope"), internalerr.ErrNotFound)
	})

	t.Run("SameNameReplaces", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		defer st.Close()

		first, err := st.SaveCorpus(ctx, Sample("pos"))
		require.NoError(t, err)

		c := Sample("pos")
		c.Sentences = c.Sentences[:1]
		second, err := st.SaveCorpus(ctx, c)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		_, found, err := st.GetCorpus(ctx, first)
		require.NoError(t, err)
		assert.False(t, found)

		got, found, err := st.GetCorpusByName(ctx, "pos")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, got.Sentences, 1)
	})

	t.Run("SameIDRenames", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		defer st.Close()

		c := Sample("a")
		c.ID = store.NewID()
		_, err := st.SaveCorpus(ctx, c)
		require.NoError(t, err)

		c.Name = "b"
		id, err := st.SaveCorpus(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, c.ID, id)

		_, found, err := st.GetCorpusByName(ctx, "a")
		require.NoError(t, err)
		assert.False(t, found)

		got, found, err := st.GetCorpusByName(ctx, "b")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, c.ID, got.ID)

		require.NoError(t, st.DeleteCorpus(ctx, id))
		_, found, err = st.GetCorpusByName(ctx, "a")
		require.NoError(t, err)
		assert.False(t, found)
		list, err := st.ListCorpora(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		defer st.Close()

		nerID, err := st.SaveCorpus(ctx, Sample("ner"))
		require.NoError(t, err)
		_, err = st.SaveCorpus(ctx, Sample("conll"))
		require.NoError(t, err)

		list, err := st.ListCorpora(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "conll", list[0].Name)
		assert.Equal(t, "ner", list[1].Name)
		assert.Equal(t, 2, list[1].Sentences)
		assert.Equal(t, 6, list[1].Words)
		assert.Equal(t, 5, list[1].Tags)

		require.NoError(t, st.DeleteCorpus(ctx, nerID))
		list, err = st.ListCorpora(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "conll", list[0].Name)
	})

	t.Run("RequiresName", func(t *testing.T) {
		st := newStore(t)
		defer st.Close()

		_, err := st.SaveCorpus(context.Background(), store.Corpus{})
		assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	})
}
