package commands

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dknn"
	"github.com/hupe1980/dknn/cmd/dknn/internal/config"
	"github.com/hupe1980/dknn/dataset"
)

// prediction is one output line of classify.
type prediction struct {
	ID          string  `json:"id,omitempty"`
	Label       int     `json:"label"`
	Credibility float64 `json:"credibility"`
	Votes       []int   `json:"votes"`
}

func newClassifyCommand() *cobra.Command {
	var (
		snapshot   string
		fromStore  bool
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify JSONL queries with a snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			b, sink := recordBuilder(cfg, logger)
			clf, err := loadClassifier(ctx, cfg, b, snapshot, fromStore)
			if err != nil {
				return err
			}
			defer clf.Close()

			records, err := dataset.ReadFile(inputPath)
			if err != nil {
				return err
			}
			results, err := clf.Evaluate(ctx, records)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			w := dataset.NewWriter(out)
			for i, r := range results {
				if err := w.Write(prediction{
					ID:          records[i].ID,
					Label:       r.Label,
					Credibility: r.Credibility,
					Votes:       r.Votes,
				}); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return sink.flush()
		},
	}

	cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "snapshot file, or blob name with --from-store")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "load from the configured store (CURRENT if --snapshot is empty)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "queries (JSONL)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func loadClassifier(ctx context.Context, cfg *config.Config, b dknn.Builder[dataset.Record], snapshot string, fromStore bool) (*dknn.Classifier[dataset.Record], error) {
	if !fromStore {
		if snapshot == "" {
			return nil, errors.New("--snapshot is required without --from-store")
		}
		return b.LoadFile(ctx, snapshot)
	}
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == "" {
		return b.LoadCurrent(ctx, store)
	}
	return b.LoadBlob(ctx, store, snapshot)
}
