package classifier

import (
	"errors"
	"fmt"
	"math"

	"spamsniffer/internal/vectorizer"
)

// DefaultAlpha is Laplace smoothing.
const DefaultAlpha = 1.0

var ErrNoTrainingData = errors.New("classifier: no training data")

// Train fits a multinomial naive Bayes model. Priors come from class
// frequencies; likelihoods from summed feature weights with additive
// smoothing alpha.
func Train(vectors []vectorizer.Vector, labels []Class, alpha float64) (*MultinomialNB, error) {
	if len(vectors) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(vectors) != len(labels) {
		return nil, fmt.Errorf("classifier: %d vectors but %d labels", len(vectors), len(labels))
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("classifier: alpha must be positive, got %v", alpha)
	}

	features := vectors[0].Dim
	classCount := make([]int, NumClasses)
	featureCount := make([][]float64, NumClasses)
	for c := range featureCount {
		featureCount[c] = make([]float64, features)
	}

	for i, v := range vectors {
		if v.Dim != features {
			return nil, fmt.Errorf("%w: vector %d has %d features, expected %d",
				ErrDimensionMismatch, i, v.Dim, features)
		}
		c := labels[i]
		if c != ClassNotSpam && c != ClassSpam {
			return nil, fmt.Errorf("classifier: label %d of vector %d is not a known class", c, i)
		}
		classCount[c]++
		for j, idx := range v.Indices {
			featureCount[c][idx] += v.Values[j]
		}
	}

	classLogPrior := make([]float64, NumClasses)
	featureLogProb := make([][]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		if classCount[c] == 0 {
			return nil, fmt.Errorf("classifier: no training examples for class %s", Class(c))
		}
		classLogPrior[c] = math.Log(float64(classCount[c]) / float64(len(vectors)))

		var total float64
		for _, n := range featureCount[c] {
			total += n
		}
		denom := math.Log(total + alpha*float64(features))

		featureLogProb[c] = make([]float64, features)
		for f, n := range featureCount[c] {
			featureLogProb[c][f] = math.Log(n+alpha) - denom
		}
	}

	return NewMultinomialNB(classLogPrior, featureLogProb)
}
