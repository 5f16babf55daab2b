package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store/storetest"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return st
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, openTemp)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpora.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	want := storetest.Sample("ner")
	id, err := st.SaveCorpus(ctx, want)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	got, found, err := st.GetCorpus(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	// ids must survive the round trip for encoding to stay consistent
	for _, w := range want.Words.Tokens() {
		wantID, _ := want.Words.ID(w)
		gotID, ok := got.Words.ID(w)
		require.True(t, ok, w)
		assert.Equal(t, wantID, gotID, w)
	}
}
