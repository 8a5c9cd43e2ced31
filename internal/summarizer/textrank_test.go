package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "   ", nil},
		{"simple", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"no terminal", "no punctuation here", []string{"no punctuation here"}},
		{"decimal", "Price is 3.50 today. Buy.", []string{"Price is 3.50 today.", "Buy."}},
		{"quoted", `He said "stop!" Then left.`, []string{`He said "stop!"`, "Then left."}},
		{"blank line", "Hello team\n\nSee attached", []string{"Hello team", "See attached"}},
		{"whitespace collapsed", "Line one\ncontinues.  Next.", []string{"Line one continues.", "Next."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.in))
		})
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	tr := NewTextRank()

	assert.Equal(t, "", tr.Summarize("", 3))
	assert.Equal(t, "", tr.Summarize("Anything at all.", 0))
	assert.Equal(t, "Short one. Short two.", tr.Summarize("Short one.   Short two.", 3))
}

func TestSummarizePicksCentralSentencesInOrder(t *testing.T) {
	text := strings.Join([]string{
		"The quarterly budget review covers marketing budget and sales budget.",
		"My cat enjoys sleeping on the windowsill.",
		"Marketing asked for a larger budget next quarter.",
		"Sales budget numbers were strong this quarter.",
		"Lunch is served at noon.",
	}, " ")

	got := NewTextRank().Summarize(text, 2)

	sentences := splitSentences(got)
	assert.Len(t, sentences, 2)
	assert.NotContains(t, got, "cat")
	assert.NotContains(t, got, "Lunch")

	// selected sentences keep their original relative order
	first := strings.Index(text, sentences[0])
	second := strings.Index(text, sentences[1])
	assert.Less(t, first, second)
}

func TestSummarizeDeterministic(t *testing.T) {
	text := "Win a free prize today. Claim your free prize now. Offer ends soon. Reply to win."
	tr := NewTextRank()
	assert.Equal(t, tr.Summarize(text, 2), tr.Summarize(text, 2))
}

func TestRankUniformWithoutEdges(t *testing.T) {
	p := rank(similarityMatrix([][]string{{"alpha"}, {"beta"}, {"gamma"}}))
	for _, v := range p {
		assert.InDelta(t, 1.0/3.0, v, 1e-9)
	}
}

func TestSummarizeLargeInputIsBounded(t *testing.T) {
	text := strings.Repeat("Win cash now. ", 100000) + "Unsubscribe link is below."

	start := time.Now()
	got := NewTextRank().Summarize(text, 3)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 5*time.Second)
	assert.Len(t, splitSentences(got), 3)
	assert.NotContains(t, got, "Unsubscribe")
}
