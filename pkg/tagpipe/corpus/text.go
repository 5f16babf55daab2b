package corpus

import (
	"regexp"

	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
)

// wordPattern matches runs of word characters and apostrophes, or a single
// sentence punctuation mark.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_']+|[.,!?;]`)

// SplitSentence breaks raw text into the tokens a tagger expects.
func SplitSentence(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// FromText builds a sentence for prediction from raw text. Tokens the lookup
// does not know are dropped, as during corpus parsing, and every kept token
// is labeled Outside.
func FromText(text string, lookup embedding.Lookup) Sentence {
	var s Sentence
	for _, tok := range SplitSentence(text) {
		if !lookup.Contains(tok) {
			continue
		}
		s.Words = append(s.Words, tok)
		s.Tags = append(s.Tags, Outside)
	}
	s.WordCount = len(s.Words)
	return s
}
