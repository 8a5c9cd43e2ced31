package training

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"spamsniffer/internal/artifact"
	"spamsniffer/internal/classifier"
	"spamsniffer/internal/pipeline"
	"spamsniffer/internal/vectorizer"
)

const DefaultSeed = 42

type Options struct {
	Alpha    float64
	MinDF    int
	TestSize float64
	Norm     vectorizer.Norm
	Seed     uint64
}

func DefaultOptions() Options {
	return Options{
		Alpha:    classifier.DefaultAlpha,
		MinDF:    1,
		TestSize: 0.2,
		Norm:     vectorizer.NormL2,
		Seed:     DefaultSeed,
	}
}

// Metrics are computed on the hold-out split with spam as the positive class.
type Metrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	Train     int
	Test      int
}

func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		"accuracy":  m.Accuracy,
		"precision": m.Precision,
		"recall":    m.Recall,
		"f1":        m.F1,
		"train":     float64(m.Train),
		"test":      float64(m.Test),
	}
}

// Run shuffles examples deterministically, fits on the training split and
// evaluates on the rest. The returned artifact carries the metrics.
func Run(examples []Example, opts Options) (*artifact.Artifact, Metrics, error) {
	if len(examples) == 0 {
		return nil, Metrics{}, classifier.ErrNoTrainingData
	}
	if opts.TestSize < 0 || opts.TestSize >= 1 {
		return nil, Metrics{}, fmt.Errorf("training: test size must be in [0, 1), got %v", opts.TestSize)
	}

	trainSet, testSet := Split(examples, opts.TestSize, opts.Seed)

	docs := make([]string, len(trainSet))
	labels := make([]classifier.Class, len(trainSet))
	for i, ex := range trainSet {
		docs[i] = ex.Text
		labels[i] = ex.Label
	}

	vec, err := vectorizer.Fit(docs, vectorizer.FitOptions{MinDF: opts.MinDF, Norm: opts.Norm})
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("fitting vectorizer: %w", err)
	}

	vectors := make([]vectorizer.Vector, len(docs))
	for i, doc := range docs {
		vectors[i] = vec.Transform(doc)
	}

	nb, err := classifier.Train(vectors, labels, opts.Alpha)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("training classifier: %w", err)
	}

	m, err := Evaluate(vec, nb, testSet)
	if err != nil {
		return nil, Metrics{}, err
	}
	m.Train = len(trainSet)

	log.Info().
		Int("train", m.Train).
		Int("test", m.Test).
		Int("features", vec.Dim()).
		Float64("accuracy", m.Accuracy).
		Float64("precision", m.Precision).
		Float64("recall", m.Recall).
		Msg("model trained")

	a := artifact.New(vec, nb)
	a.Metrics = m.Map()
	return a, m, nil
}

// Split returns a seeded permutation of examples cut into train and test.
func Split(examples []Example, testSize float64, seed uint64) (train, test []Example) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)

	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTest := int(float64(len(shuffled)) * testSize)
	return shuffled[nTest:], shuffled[:nTest]
}

// Evaluate scores examples with the serving spam threshold.
func Evaluate(vec *vectorizer.Vectorizer, cl classifier.Classifier, examples []Example) (Metrics, error) {
	var tp, fp, tn, fn int
	for _, ex := range examples {
		probs, err := cl.PredictProbability(vec.Transform(ex.Text))
		if err != nil {
			return Metrics{}, fmt.Errorf("evaluating model: %w", err)
		}

		predicted := probs.Spam > pipeline.SpamThreshold
		actual := ex.Label == classifier.ClassSpam
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}

	m := Metrics{Test: len(examples)}
	if m.Test > 0 {
		m.Accuracy = float64(tp+tn) / float64(m.Test)
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m, nil
}
