// Package artifact reads and writes the versioned model file produced by
// training and consumed by the scoring pipeline.
package artifact

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"spamsniffer/internal/classifier"
	"spamsniffer/internal/vectorizer"
)

// FormatVersion is bumped whenever the file layout or tokenizer changes.
const FormatVersion = 1

var (
	ErrUnsupportedVersion = errors.New("artifact: unsupported format version")
	ErrInvalidArtifact    = errors.New("artifact: invalid")
)

type Artifact struct {
	FormatVersion  int                `json:"format_version"`
	CreatedAt      time.Time          `json:"created_at"`
	Classes        []string           `json:"classes"`
	Norm           vectorizer.Norm    `json:"norm"`
	Vocabulary     map[string]int     `json:"vocabulary"`
	IDF            []float64          `json:"idf"`
	ClassLogPrior  []float64          `json:"class_log_prior"`
	FeatureLogProb [][]float64        `json:"feature_log_prob"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// New packs a fitted vectorizer and classifier into an artifact.
func New(vec *vectorizer.Vectorizer, nb *classifier.MultinomialNB) *Artifact {
	return &Artifact{
		FormatVersion:  FormatVersion,
		CreatedAt:      time.Now().UTC(),
		Classes:        []string{classifier.ClassNotSpam.String(), classifier.ClassSpam.String()},
		Norm:           vec.Norm(),
		Vocabulary:     vec.Vocabulary(),
		IDF:            vec.IDF(),
		ClassLogPrior:  nb.ClassLogPrior(),
		FeatureLogProb: nb.FeatureLogProb(),
	}
}

// Features is the vocabulary size.
func (a *Artifact) Features() int {
	return len(a.Vocabulary)
}

// Validate checks the version and that every dimension agrees. A failure
// means the file must not be served.
func (a *Artifact) Validate() error {
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, a.FormatVersion, FormatVersion)
	}
	if len(a.Classes) != classifier.NumClasses {
		return fmt.Errorf("%w: %d classes, want %d", ErrInvalidArtifact, len(a.Classes), classifier.NumClasses)
	}
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrInvalidArtifact)
	}
	if len(a.IDF) != len(a.Vocabulary) {
		return fmt.Errorf("%w: %w: idf has %d weights for %d terms",
			ErrInvalidArtifact, classifier.ErrDimensionMismatch, len(a.IDF), len(a.Vocabulary))
	}
	if a.Norm != vectorizer.NormNone && a.Norm != vectorizer.NormL2 {
		return fmt.Errorf("%w: unknown norm %q", ErrInvalidArtifact, a.Norm)
	}

	seen := make([]bool, len(a.IDF))
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.IDF) {
			return fmt.Errorf("%w: term %q has index %d outside [0,%d)", ErrInvalidArtifact, term, idx, len(a.IDF))
		}
		if seen[idx] {
			return fmt.Errorf("%w: index %d assigned to more than one term", ErrInvalidArtifact, idx)
		}
		seen[idx] = true
	}

	for i, w := range a.IDF {
		if !isFinite(w) || w < 0 {
			return fmt.Errorf("%w: idf[%d] = %v", ErrInvalidArtifact, i, w)
		}
	}
	if len(a.ClassLogPrior) != classifier.NumClasses || len(a.FeatureLogProb) != classifier.NumClasses {
		return fmt.Errorf("%w: model parameters do not cover %d classes", ErrInvalidArtifact, classifier.NumClasses)
	}
	for c, p := range a.ClassLogPrior {
		if !isFinite(p) {
			return fmt.Errorf("%w: class_log_prior[%d] = %v", ErrInvalidArtifact, c, p)
		}
	}
	for c, row := range a.FeatureLogProb {
		if len(row) != len(a.Vocabulary) {
			return fmt.Errorf("%w: %w: likelihood row %d has %d features for %d terms",
				ErrInvalidArtifact, classifier.ErrDimensionMismatch, c, len(row), len(a.Vocabulary))
		}
		for i, p := range row {
			if !isFinite(p) {
				return fmt.Errorf("%w: feature_log_prob[%d][%d] = %v", ErrInvalidArtifact, c, i, p)
			}
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Load reads an artifact, transparently decompressing ".gz" files, and
// validates it.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip artifact: %w", err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("decompressing artifact: %w", err)
		}
	}

	return Decode(data)
}

// Decode parses and validates an uncompressed artifact.
func Decode(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Save writes the artifact, gzip-compressed when path ends in ".gz".
func Save(path string, a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}

	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("compressing artifact: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("closing gzip writer: %w", err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}
