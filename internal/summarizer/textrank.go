// Package summarizer produces extractive summaries by ranking sentences with
// TextRank and returning the best ones in document order.
package summarizer

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tebeka/snowball"

	"spamsniffer/internal/vectorizer"
)

const (
	DefaultSentences = 3

	damping       = 0.85
	epsilon       = 1e-4
	maxIterations = 100

	// maxRankedSentences bounds the n*n similarity graph; later sentences
	// are never candidates for the summary.
	maxRankedSentences = 200
)

// TextRank is stateless; a stemmer is opened per call because snowball
// stemmers are not safe for concurrent use.
type TextRank struct {
	tokenizer *vectorizer.Tokenizer
	language  string
}

func NewTextRank() *TextRank {
	return &TextRank{
		tokenizer: vectorizer.NewTokenizer(),
		language:  "english",
	}
}

// Summarize returns up to count sentences of text joined by single spaces.
func (tr *TextRank) Summarize(text string, count int) string {
	if count <= 0 {
		return ""
	}

	sentences := splitSentences(text)
	if len(sentences) > maxRankedSentences {
		sentences = sentences[:maxRankedSentences]
	}
	if len(sentences) <= count {
		return strings.Join(sentences, " ")
	}

	words := tr.sentenceWords(sentences)
	ratings := rank(similarityMatrix(words))

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ratings[order[a]] > ratings[order[b]]
	})

	chosen := order[:count]
	sort.Ints(chosen)

	out := make([]string, len(chosen))
	for i, idx := range chosen {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func (tr *TextRank) sentenceWords(sentences []string) [][]string {
	stemmer, err := snowball.New(tr.language)
	if err != nil {
		log.Warn().Err(err).Str("language", tr.language).Msg("stemmer unavailable, ranking unstemmed words")
		stemmer = nil
	} else {
		defer stemmer.Close()
	}

	words := make([][]string, len(sentences))
	for i, s := range sentences {
		tokens := tr.tokenizer.Tokenize(s)
		if stemmer != nil {
			for j, t := range tokens {
				tokens[j] = stemmer.Stem(t)
			}
		}
		words[i] = tokens
	}
	return words
}

// similarityMatrix weights two sentences by their shared words, damped by
// the log of their lengths so long sentences do not dominate.
func similarityMatrix(words [][]string) [][]float64 {
	n := len(words)
	sets := make([]map[string]struct{}, n)
	for i, ws := range words {
		sets[i] = make(map[string]struct{}, len(ws))
		for _, w := range ws {
			sets[i][w] = struct{}{}
		}
	}

	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			common := 0
			for w := range sets[i] {
				if _, ok := sets[j][w]; ok {
					common++
				}
			}
			if common == 0 {
				continue
			}
			norm := math.Log(float64(len(sets[i]))) + math.Log(float64(len(sets[j])))
			if norm <= 0 {
				norm = 1
			}
			m[i][j] = float64(common) / norm
			m[j][i] = m[i][j]
		}
	}

	return m
}

// rank runs the damped power method over the row-normalised matrix.
// Sentences with no edges spread their weight uniformly.
func rank(m [][]float64) []float64 {
	n := len(m)
	transition := make([][]float64, n)
	for i, row := range m {
		transition[i] = make([]float64, n)
		var sum float64
		for _, w := range row {
			sum += w
		}
		for j := range row {
			if sum == 0 {
				transition[i][j] = 1 / float64(n)
			} else {
				transition[i][j] = row[j] / sum
			}
		}
	}

	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}

	for iter := 0; iter < maxIterations; iter++ {
		next := make([]float64, n)
		for j := 0; j < n; j++ {
			var s float64
			for i := 0; i < n; i++ {
				s += transition[i][j] * p[i]
			}
			next[j] = (1-damping)/float64(n) + damping*s
		}

		var delta float64
		for i := range p {
			delta += math.Abs(next[i] - p[i])
		}
		p = next
		if delta < epsilon {
			break
		}
	}

	return p
}
