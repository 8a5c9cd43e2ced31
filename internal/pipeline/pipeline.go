// Package pipeline wires the vectorizer, classifier and summarizer into the
// single object every request handler scores text with.
package pipeline

import (
	"fmt"
	"math"
	"time"

	"spamsniffer/internal/artifact"
	"spamsniffer/internal/classifier"
	"spamsniffer/internal/domain"
	"spamsniffer/internal/summarizer"
	"spamsniffer/internal/vectorizer"
)

// Summarizer produces an extractive summary of at most count sentences.
type Summarizer interface {
	Summarize(text string, count int) string
}

type Options struct {
	SummarySentences int
}

// Info describes the loaded model.
type Info struct {
	FormatVersion int       `json:"format_version"`
	CreatedAt     time.Time `json:"created_at"`
	Features      int       `json:"features"`
	Norm          string    `json:"norm"`
	PriorNotSpam  float64   `json:"prior_not_spam"`
	PriorSpam     float64   `json:"prior_spam"`
}

// Pipeline is built once at startup and never mutated, so it is shared by
// reference between handlers without locking.
type Pipeline struct {
	vectorizer *vectorizer.Vectorizer
	classifier classifier.Classifier
	summarizer Summarizer
	sentences  int
	info       Info
}

// New builds a pipeline from a validated artifact.
func New(a *artifact.Artifact, opts Options) (*Pipeline, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	vec, err := vectorizer.New(a.Vocabulary, a.IDF, a.Norm)
	if err != nil {
		return nil, fmt.Errorf("building vectorizer: %w", err)
	}

	nb, err := classifier.NewMultinomialNB(a.ClassLogPrior, a.FeatureLogProb)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	p, err := NewFromParts(vec, nb, summarizer.NewTextRank(), opts)
	if err != nil {
		return nil, err
	}

	p.info.FormatVersion = a.FormatVersion
	p.info.CreatedAt = a.CreatedAt
	p.info.PriorNotSpam = math.Exp(a.ClassLogPrior[classifier.ClassNotSpam])
	p.info.PriorSpam = math.Exp(a.ClassLogPrior[classifier.ClassSpam])
	return p, nil
}

// NewFromParts assembles a pipeline from already built components. The
// vectorizer and classifier must agree on the feature count.
func NewFromParts(vec *vectorizer.Vectorizer, cl classifier.Classifier, sum Summarizer, opts Options) (*Pipeline, error) {
	if vec.Dim() != cl.Features() {
		return nil, fmt.Errorf("%w: vectorizer produces %d features, classifier expects %d",
			classifier.ErrDimensionMismatch, vec.Dim(), cl.Features())
	}

	sentences := opts.SummarySentences
	if sentences <= 0 {
		sentences = summarizer.DefaultSentences
	}

	return &Pipeline{
		vectorizer: vec,
		classifier: cl,
		summarizer: sum,
		sentences:  sentences,
		info: Info{
			FormatVersion: artifact.FormatVersion,
			Features:      vec.Dim(),
			Norm:          string(vec.Norm()),
		},
	}, nil
}

func (p *Pipeline) Info() Info {
	return p.info
}

// Vectorize exposes the feature vector for a text.
func (p *Pipeline) Vectorize(text string) vectorizer.Vector {
	return p.vectorizer.Transform(text)
}

// Score returns the class distribution for text.
func (p *Pipeline) Score(text string) (classifier.Probabilities, error) {
	probs, err := p.classifier.PredictProbability(p.vectorizer.Transform(text))
	if err != nil {
		return classifier.Probabilities{}, fmt.Errorf("scoring text: %w", err)
	}
	return probs, nil
}

// Check scores and summarizes text and applies the spam policy.
func (p *Pipeline) Check(text string) (*domain.Verdict, error) {
	probs, err := p.Score(text)
	if err != nil {
		return nil, err
	}

	isSpam, spamType, description := Decide(probs.Spam)

	return &domain.Verdict{
		IsSpam:      isSpam,
		SpamScore:   probs.Spam,
		Description: description,
		Summary:     p.summarizer.Summarize(text, p.sentences),
		SpamType:    spamType,
	}, nil
}

// Version identifies the loaded model for cache keys.
func (i Info) Version() string {
	return fmt.Sprintf("%d-%d", i.FormatVersion, i.CreatedAt.Unix())
}
