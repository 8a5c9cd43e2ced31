package classifier

import (
	"fmt"
	"math"

	"spamsniffer/internal/vectorizer"
)

// MultinomialNB holds log-space parameters. It is never mutated after
// construction, so one instance can serve every request.
type MultinomialNB struct {
	classLogPrior  []float64   // class -> log P(class)
	featureLogProb [][]float64 // class -> feature -> log P(feature | class)
}

// NewMultinomialNB validates trained parameters and wraps them.
func NewMultinomialNB(classLogPrior []float64, featureLogProb [][]float64) (*MultinomialNB, error) {
	if len(classLogPrior) != NumClasses || len(featureLogProb) != NumClasses {
		return nil, fmt.Errorf("classifier: expected %d classes, got %d priors and %d likelihood rows",
			NumClasses, len(classLogPrior), len(featureLogProb))
	}

	features := len(featureLogProb[0])
	if features == 0 {
		return nil, fmt.Errorf("classifier: likelihood rows are empty")
	}

	for c := 0; c < NumClasses; c++ {
		if math.IsNaN(classLogPrior[c]) || math.IsInf(classLogPrior[c], 0) {
			return nil, fmt.Errorf("classifier: class %s prior is not finite", Class(c))
		}
		if len(featureLogProb[c]) != features {
			return nil, fmt.Errorf("%w: class %s has %d features, class %s has %d",
				ErrDimensionMismatch, Class(c), len(featureLogProb[c]), Class(0), features)
		}
		for f, lp := range featureLogProb[c] {
			if math.IsNaN(lp) || math.IsInf(lp, 0) {
				return nil, fmt.Errorf("classifier: class %s feature %d likelihood is not finite", Class(c), f)
			}
		}
	}

	return &MultinomialNB{
		classLogPrior:  classLogPrior,
		featureLogProb: featureLogProb,
	}, nil
}

// Features is the vector dimension the model was trained on.
func (nb *MultinomialNB) Features() int {
	return len(nb.featureLogProb[0])
}

// ClassLogPrior returns the log priors. Callers must not modify it.
func (nb *MultinomialNB) ClassLogPrior() []float64 {
	return nb.classLogPrior
}

// FeatureLogProb returns the likelihood matrix. Callers must not modify it.
func (nb *MultinomialNB) FeatureLogProb() [][]float64 {
	return nb.featureLogProb
}

// PredictProbability returns the posterior over {not spam, spam}.
func (nb *MultinomialNB) PredictProbability(v vectorizer.Vector) (Probabilities, error) {
	if v.Dim != nb.Features() {
		return Probabilities{}, fmt.Errorf("%w: vector has %d features, model expects %d",
			ErrDimensionMismatch, v.Dim, nb.Features())
	}

	scores := make([]float64, NumClasses)
	for c := range scores {
		scores[c] = nb.classLogPrior[c] + v.Dot(nb.featureLogProb[c])
	}

	probs := softmax(scores)
	return Probabilities{NotSpam: probs[ClassNotSpam], Spam: probs[ClassSpam]}, nil
}

// softmax normalises log scores through log-sum-exp, shifting by the
// maximum so the largest term is exp(0).
func softmax(scores []float64) []float64 {
	m := scores[0]
	for _, s := range scores[1:] {
		if s > m {
			m = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
