package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store/storetest"
)

func TestMemstore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestMemstoreCopiesOnSave(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := storetest.Sample("ner")
	id, err := s.SaveCorpus(ctx, c)
	require.NoError(t, err)

	c.Sentences[0].Words[0] = "mutated"
	c.Words.Add("late")

	got, _, err := s.GetCorpus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "EU", got.Sentences[0].Words[0])
	assert.False(t, got.Words.Contains("late"))
}
