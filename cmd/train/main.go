package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"spamsniffer/internal/artifact"
	"spamsniffer/internal/logger"
	"spamsniffer/internal/training"
	"spamsniffer/internal/vectorizer"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	defaults := training.DefaultOptions()

	var (
		data     string
		out      string
		norm     string
		logLevel string
		opts     = defaults
	)

	cmd := &cobra.Command{
		Use:          "train",
		Short:        "Fit a spam model artifact from a labelled CSV corpus",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(logLevel, "console")

			if data == "" {
				return fmt.Errorf("--data is required")
			}
			switch vectorizer.Norm(norm) {
			case vectorizer.NormNone, vectorizer.NormL2:
				opts.Norm = vectorizer.Norm(norm)
			default:
				return fmt.Errorf("unknown norm %q", norm)
			}

			examples, err := training.ReadCSV(data)
			if err != nil {
				return fmt.Errorf("reading corpus: %w", err)
			}
			log.Info().Int("examples", len(examples)).Str("path", data).Msg("corpus loaded")

			a, m, err := training.Run(examples, opts)
			if err != nil {
				return err
			}

			if err := artifact.Save(out, a); err != nil {
				return fmt.Errorf("writing artifact: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "accuracy  %.4f\nprecision %.4f\nrecall    %.4f\nf1        %.4f\nwrote %s (%d features)\n",
				m.Accuracy, m.Precision, m.Recall, m.F1, out, a.Features())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&data, "data", "", "CSV corpus with text and label_num columns")
	f.StringVar(&out, "out", "model.json.gz", "artifact path; .gz compresses")
	f.Float64Var(&opts.Alpha, "alpha", defaults.Alpha, "additive smoothing")
	f.IntVar(&opts.MinDF, "min-df", defaults.MinDF, "minimum document frequency of a term")
	f.Float64Var(&opts.TestSize, "test-size", defaults.TestSize, "hold-out fraction")
	f.Uint64Var(&opts.Seed, "seed", defaults.Seed, "shuffle seed")
	f.StringVar(&norm, "norm", string(defaults.Norm), `vector normalisation: "l2" or ""`)
	f.StringVar(&logLevel, "log-level", "info", "log level")

	return cmd
}
