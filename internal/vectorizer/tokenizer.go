package vectorizer

import (
	"strings"
	"unicode"
)

// minTokenLen drops single-character tokens such as "a" or "3".
const minTokenLen = 2

// Tokenizer splits text into lowercase word tokens.
type Tokenizer struct {
	stopWords map[string]struct{}
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{stopWords: englishStopWords}
}

// Tokenize returns the surviving tokens of text in order of appearance.
func (t *Tokenizer) Tokenize(text string) []string {
	content := []rune(strings.ToLower(text))
	tokens := make([]string, 0, len(content)/5)

	for len(content) > 0 {
		n := 0
		for n < len(content) && isWordRune(content[n]) {
			n++
		}
		if n == 0 {
			content = content[1:]
			continue
		}

		word := content[:n]
		content = content[n:]
		if len(word) < minTokenLen {
			continue
		}

		token := string(word)
		if _, skip := t.stopWords[token]; skip {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
