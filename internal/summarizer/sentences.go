package summarizer

import (
	"strings"
	"unicode"
)

// splitSentences breaks text at terminal punctuation followed by
// whitespace, and at blank lines. Sentences keep their punctuation.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	var sentences []string
	start := 0

	flush := func(end int) {
		s := strings.Join(strings.Fields(string(runes[start:end])), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		switch {
		case isTerminal(runes[i]):
			j := i + 1
			for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
				j++
			}
			if j == len(runes) || unicode.IsSpace(runes[j]) {
				flush(j)
				i = j - 1
			}
		case runes[i] == '\n' && i+1 < len(runes) && runes[i+1] == '\n':
			flush(i)
		}
	}
	flush(len(runes))

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == '”' || r == '’'
}
