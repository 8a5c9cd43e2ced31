package vectorizer

import (
	"math"
	"sort"
)

// FitOptions controls vocabulary construction.
type FitOptions struct {
	// MinDF drops terms that occur in fewer documents.
	MinDF int
	Norm  Norm
}

// Fit learns a vocabulary and smoothed IDF weights from a corpus.
// Columns are assigned in lexical term order so the same corpus always
// produces the same artifact.
func Fit(docs []string, opts FitOptions) (*Vectorizer, error) {
	tokenizer := NewTokenizer()
	df := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, token := range tokenizer.Tokenize(doc) {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}

	minDF := opts.MinDF
	if minDF < 1 {
		minDF = 1
	}

	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	sort.Strings(terms)

	n := float64(len(docs))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = smoothIDF(n, float64(df[term]))
	}

	return New(vocab, idf, opts.Norm)
}

// smoothIDF adds one to both counts as if an extra document held every term,
// so no weight is ever zero or infinite.
func smoothIDF(docCount, docFreq float64) float64 {
	return math.Log((1+docCount)/(1+docFreq)) + 1
}
