// Package vectorizer turns email text into TF-IDF weighted sparse vectors
// using a vocabulary and IDF table fitted offline.
package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Norm selects the per-document normalisation applied after weighting.
type Norm string

const (
	NormNone Norm = ""
	NormL2   Norm = "l2"
)

var ErrEmptyVocabulary = errors.New("vectorizer: empty vocabulary")

// Vectorizer is immutable once built and safe for concurrent use.
type Vectorizer struct {
	tokenizer *Tokenizer
	vocab     map[string]int
	idf       []float64
	norm      Norm
}

// New builds a vectorizer from fitted artifacts. Every vocabulary index must
// address a slot of idf.
func New(vocab map[string]int, idf []float64, norm Norm) (*Vectorizer, error) {
	if len(vocab) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if len(vocab) != len(idf) {
		return nil, fmt.Errorf("vectorizer: vocabulary has %d terms but idf has %d weights", len(vocab), len(idf))
	}
	if norm != NormNone && norm != NormL2 {
		return nil, fmt.Errorf("vectorizer: unknown norm %q", norm)
	}

	seen := make([]bool, len(idf))
	for term, idx := range vocab {
		if idx < 0 || idx >= len(idf) {
			return nil, fmt.Errorf("vectorizer: term %q has index %d outside [0,%d)", term, idx, len(idf))
		}
		if seen[idx] {
			return nil, fmt.Errorf("vectorizer: index %d assigned to more than one term", idx)
		}
		seen[idx] = true
	}

	return &Vectorizer{
		tokenizer: NewTokenizer(),
		vocab:     vocab,
		idf:       idf,
		norm:      norm,
	}, nil
}

// Dim is the length of every vector produced by Transform.
func (v *Vectorizer) Dim() int {
	return len(v.idf)
}

func (v *Vectorizer) Norm() Norm {
	return v.norm
}

// Vocabulary returns the term index. Callers must not modify it.
func (v *Vectorizer) Vocabulary() map[string]int {
	return v.vocab
}

// IDF returns the per-column weights. Callers must not modify it.
func (v *Vectorizer) IDF() []float64 {
	return v.idf
}

// Transform maps text to a vector of raw count times idf for every known
// term. Unknown terms are ignored; empty text yields the zero vector.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]int)
	for _, token := range v.tokenizer.Tokenize(text) {
		if idx, ok := v.vocab[token]; ok {
			counts[idx]++
		}
	}

	vec := NewVector(v.Dim())
	if len(counts) == 0 {
		return vec
	}

	vec.Indices = make([]int, 0, len(counts))
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	vec.Values = make([]float64, len(vec.Indices))
	var sumSq float64
	for i, idx := range vec.Indices {
		w := float64(counts[idx]) * v.idf[idx]
		vec.Values[i] = w
		sumSq += w * w
	}

	if v.norm == NormL2 && sumSq > 0 {
		n := math.Sqrt(sumSq)
		for i := range vec.Values {
			vec.Values[i] /= n
		}
	}

	return vec
}
