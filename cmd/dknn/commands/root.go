// Package commands implements the dknn CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/dknn"
	"github.com/hupe1980/dknn/cmd/dknn/internal/config"
	"github.com/hupe1980/dknn/dataset"
)

var (
	configPath      string
	verbose         bool
	metricsTextfile string
)

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "dknn",
		Short: "Deep k-NN classifier with conformal credibility",
		Long: `dknn builds and runs Deep k-NN classifiers over precomputed embeddings.

Inputs are JSON Lines files, one sample per line:

  {"label":3,"layers":{"conv1":[...],"fc":[...]}}

Examples:
  dknn build -c dknn.yaml --train train.jsonl --cal cal.jsonl -o model.dknn
  dknn build -c dknn.yaml --train train.jsonl --cal cal.jsonl --publish snap-0001.dknn
  dknn classify -c dknn.yaml -s model.dknn -i queries.jsonl
  dknn inspect model.dknn`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(newBuildCommand(), newClassifyCommand(), newInspectCommand())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func loadConfig() (*config.Config, *dknn.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(verbose), nil
}

func recordBuilder(cfg *config.Config, logger *dknn.Logger) (dknn.Builder[dataset.Record], *metricsSink) {
	sink, collector := newMetricsSink(cfg)
	b := dknn.New[dataset.Record](dataset.Embedder{}).
		HashBits(cfg.HashBits).
		Seed(cfg.Seed).
		Parallelism(cfg.Parallelism).
		Compression(cfg.CompressionValue()).
		Codec(cfg.CodecValue()).
		Logger(logger).
		Metrics(collector)
	if len(cfg.Layers) > 0 {
		b = b.Layers(cfg.Layers...)
	}
	if cfg.K > 0 {
		b = b.K(cfg.K)
	}
	if cfg.NumClasses > 0 {
		b = b.NumClasses(cfg.NumClasses)
	}
	return b, sink
}

func readLabeled(path string) (dknn.Dataset[dataset.Record], error) {
	records, err := dataset.ReadFile(path)
	if err != nil {
		return dknn.Dataset[dataset.Record]{}, err
	}
	labels, err := dataset.Labels(records)
	if err != nil {
		return dknn.Dataset[dataset.Record]{}, err
	}
	return dknn.Dataset[dataset.Record]{Inputs: records, Labels: labels}, nil
}
