package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spamsniffer/internal/artifact"
	"spamsniffer/internal/classifier"
	"spamsniffer/internal/domain"
	"spamsniffer/internal/vectorizer"
)

// spamArtifact has five spam-leaning terms and five ham-leaning terms.
func spamArtifact() *artifact.Artifact {
	terms := []string{"buy", "free", "win", "prize", "offer", "meet", "tomorrow", "discuss", "quarterly", "report"}
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	ham := make([]float64, len(terms))
	spam := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = 1.5
		if i < 5 {
			spam[i], ham[i] = math.Log(0.18), math.Log(0.02)
		} else {
			spam[i], ham[i] = math.Log(0.02), math.Log(0.18)
		}
	}

	return &artifact.Artifact{
		FormatVersion:  artifact.FormatVersion,
		Classes:        []string{"not_spam", "spam"},
		Norm:           vectorizer.NormL2,
		Vocabulary:     vocab,
		IDF:            idf,
		ClassLogPrior:  []float64{math.Log(0.6), math.Log(0.4)},
		FeatureLogProb: [][]float64{ham, spam},
	}
}

func newTestPipeline(t *testing.T, a *artifact.Artifact) *Pipeline {
	t.Helper()
	p, err := New(a, Options{SummarySentences: 2})
	require.NoError(t, err)
	return p
}

func TestCheckPromotional(t *testing.T) {
	p := newTestPipeline(t, spamArtifact())

	v, err := p.Check("Buy now! Limited offer, click here to win a free prize!!!")
	require.NoError(t, err)

	assert.True(t, v.IsSpam)
	assert.Greater(t, v.SpamScore, 0.5)
	assert.Equal(t, domain.SpamTypePromotional, v.SpamType)
	assert.Equal(t, "This email looks like a promotional offer.", v.Description)
	assert.NotEmpty(t, v.Summary)
}

func TestCheckLegitimate(t *testing.T) {
	p := newTestPipeline(t, spamArtifact())

	v, err := p.Check("Let's meet tomorrow at 3pm to discuss the quarterly report.")
	require.NoError(t, err)

	assert.False(t, v.IsSpam)
	assert.Less(t, v.SpamScore, 0.5)
	assert.Equal(t, domain.SpamTypeLegitimate, v.SpamType)
	assert.Equal(t, "This email seems legitimate.", v.Description)
	assert.Equal(t, "Let's meet tomorrow at 3pm to discuss the quarterly report.", v.Summary)
}

func TestEmptyTextReturnsPriors(t *testing.T) {
	p := newTestPipeline(t, spamArtifact())

	assert.True(t, p.Vectorize("").IsZero())

	probs, err := p.Score("")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, probs.NotSpam, 1e-12)
	assert.InDelta(t, 0.4, probs.Spam, 1e-12)

	v, err := p.Check("")
	require.NoError(t, err)
	assert.False(t, v.IsSpam)
	assert.Equal(t, "", v.Summary)
}

func TestOutOfVocabularyFallsBackToPriors(t *testing.T) {
	p := newTestPipeline(t, spamArtifact())

	probs, err := p.Score("Zebras gallop across savannah grasslands")
	require.NoError(t, err)

	assert.False(t, math.IsNaN(probs.Spam) || math.IsInf(probs.Spam, 0))
	assert.InDelta(t, 0.4, probs.Spam, 1e-12)
}

func TestScoreInUnitIntervalAndDeterministic(t *testing.T) {
	p := newTestPipeline(t, spamArtifact())

	texts := []string{
		"",
		"free free free free free prize prize win win buy offer",
		"report report report quarterly discuss",
		"mixed free report meet prize",
		"!!!???...",
	}
	for _, text := range texts {
		a, err := p.Check(text)
		require.NoError(t, err)
		b, err := p.Check(text)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, a.SpamScore, 0.0, text)
		assert.LessOrEqual(t, a.SpamScore, 1.0, text)
		assert.Equal(t, a, b, text)
	}
}

func TestThresholdBoundaryIsNotSpam(t *testing.T) {
	a := spamArtifact()
	half := math.Log(0.5)
	a.ClassLogPrior = []float64{half, half}
	row := make([]float64, a.Features())
	for i := range row {
		row[i] = math.Log(0.1)
	}
	a.FeatureLogProb = [][]float64{row, append([]float64(nil), row...)}

	p := newTestPipeline(t, a)

	v, err := p.Check("buy free prize and a quarterly report")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v.SpamScore)
	assert.False(t, v.IsSpam)
	assert.Equal(t, domain.SpamTypeLegitimate, v.SpamType)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		score    float64
		isSpam   bool
		spamType domain.SpamType
	}{
		{0, false, domain.SpamTypeLegitimate},
		{0.5, false, domain.SpamTypeLegitimate},
		{math.Nextafter(0.5, 1), true, domain.SpamTypePromotional},
		{0.51, true, domain.SpamTypePromotional},
		{1, true, domain.SpamTypePromotional},
	}

	for _, tt := range tests {
		isSpam, spamType, desc := Decide(tt.score)
		assert.Equal(t, tt.isSpam, isSpam, tt.score)
		assert.Equal(t, tt.spamType, spamType, tt.score)
		assert.NotEmpty(t, desc)
	}
}

func TestNewRejectsMismatchedArtifact(t *testing.T) {
	a := spamArtifact()
	a.FeatureLogProb[1] = a.FeatureLogProb[1][:3]

	_, err := New(a, Options{})
	assert.ErrorIs(t, err, classifier.ErrDimensionMismatch)
}

type fixedClassifier struct {
	features int
	err      error
}

func (f fixedClassifier) PredictProbability(vectorizer.Vector) (classifier.Probabilities, error) {
	return classifier.Probabilities{}, f.err
}

func (f fixedClassifier) Features() int { return f.features }

func TestNewFromPartsDimensionMismatch(t *testing.T) {
	vec, err := vectorizer.New(map[string]int{"free": 0, "prize": 1}, []float64{1, 1}, vectorizer.NormNone)
	require.NoError(t, err)

	_, err = NewFromParts(vec, fixedClassifier{features: 3}, nil, Options{})
	assert.ErrorIs(t, err, classifier.ErrDimensionMismatch)
}

func TestCheckSurfacesClassifierFailure(t *testing.T) {
	vec, err := vectorizer.New(map[string]int{"free": 0}, []float64{1}, vectorizer.NormNone)
	require.NoError(t, err)

	p, err := NewFromParts(vec, fixedClassifier{features: 1, err: classifier.ErrDimensionMismatch}, nil, Options{})
	require.NoError(t, err)

	v, err := p.Check("free")
	assert.Nil(t, v)
	assert.ErrorIs(t, err, classifier.ErrDimensionMismatch)
}

func TestInfo(t *testing.T) {
	info := newTestPipeline(t, spamArtifact()).Info()

	assert.Equal(t, 10, info.Features)
	assert.Equal(t, "l2", info.Norm)
	assert.InDelta(t, 0.4, info.PriorSpam, 1e-12)
}
