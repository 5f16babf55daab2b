package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentence(t *testing.T) {
	got := SplitSentence("Peter's dog, in Berlin, barks!  Café?")
	assert.Equal(t, []string{"Peter's", "dog", ",", "in", "Berlin", ",", "barks", "!", "Café", "?"}, got)
	assert.Empty(t, SplitSentence("  \t "))
}

func TestFromText(t *testing.T) {
	lookup := testLookup(t, "Peter", "lives", "Berlin", ".")
	s := FromText("Peter lives in Berlin.", lookup)

	assert.Equal(t, []string{"Peter", "lives", "Berlin", "."}, s.Words)
	assert.Equal(t, []string{"O", "O", "O", "O"}, s.Tags)
	assert.NoError(t, s.Validate())
}
