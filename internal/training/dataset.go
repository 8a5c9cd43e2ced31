// Package training fits a model artifact from a labelled CSV corpus.
package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"spamsniffer/internal/classifier"
)

var ErrMissingColumn = errors.New("training: missing column")

type Example struct {
	Text  string
	Label classifier.Class
}

// ReadCSV loads examples from a file with "text" and "label_num" header
// columns (0 ham, 1 spam). Rows with empty text or an unknown label are
// skipped.
func ReadCSV(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseCSV(f)
}

func ParseCSV(r io.Reader) ([]Example, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "text":
			textCol = i
		case "label_num":
			labelCol = i
		}
	}
	if textCol < 0 {
		return nil, fmt.Errorf("%w: text", ErrMissingColumn)
	}
	if labelCol < 0 {
		return nil, fmt.Errorf("%w: label_num", ErrMissingColumn)
	}

	var (
		examples []Example
		skipped  int
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if textCol >= len(rec) || labelCol >= len(rec) {
			skipped++
			continue
		}

		text := strings.TrimSpace(rec[textCol])
		label, err := strconv.Atoi(strings.TrimSpace(rec[labelCol]))
		if text == "" || err != nil || (label != int(classifier.ClassNotSpam) && label != int(classifier.ClassSpam)) {
			skipped++
			continue
		}

		examples = append(examples, Example{Text: text, Label: classifier.Class(label)})
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("skipped unusable training rows")
	}

	return examples, nil
}
