// Package classifier scores feature vectors with a multinomial naive Bayes
// model trained offline.
package classifier

import (
	"errors"

	"spamsniffer/internal/vectorizer"
)

// Class indexes the model's class axis. The order is part of the artifact
// format and must not change.
type Class int

const (
	ClassNotSpam Class = 0
	ClassSpam    Class = 1
)

const NumClasses = 2

func (c Class) String() string {
	switch c {
	case ClassNotSpam:
		return "not_spam"
	case ClassSpam:
		return "spam"
	}
	return "unknown"
}

var ErrDimensionMismatch = errors.New("classifier: feature dimension mismatch")

// Probabilities is a distribution over the two classes; the fields sum to 1.
type Probabilities struct {
	NotSpam float64
	Spam    float64
}

// Classifier maps a feature vector to class probabilities.
type Classifier interface {
	PredictProbability(v vectorizer.Vector) (Probabilities, error)
	Features() int
}
