package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	var (
		trainPath string
		calPath   string
		outPath   string
		publish   string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a classifier and write its snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outPath == "" && publish == "" {
				return errors.New("one of --out or --publish is required")
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			train, err := readLabeled(trainPath)
			if err != nil {
				return fmt.Errorf("training set: %w", err)
			}
			cal, err := readLabeled(calPath)
			if err != nil {
				return fmt.Errorf("calibration set: %w", err)
			}

			ctx := cmd.Context()
			b, sink := recordBuilder(cfg, logger)
			clf, err := b.Build(ctx, train, cal)
			if err != nil {
				return err
			}
			defer clf.Close()

			if outPath != "" {
				if err := clf.SaveFile(outPath); err != nil {
					return err
				}
			}
			if publish != "" {
				store, err := cfg.OpenStore(ctx)
				if err != nil {
					return err
				}
				if err := clf.Publish(ctx, store, publish); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "built %d layers over %d samples, calibrated on %d\n",
				len(clf.Layers()), clf.TrainSize(), clf.CalibrationSize())
			return sink.flush()
		},
	}

	cmd.Flags().StringVar(&trainPath, "train", "", "training set (JSONL)")
	cmd.Flags().StringVar(&calPath, "cal", "", "calibration set (JSONL)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "snapshot file to write")
	cmd.Flags().StringVar(&publish, "publish", "", "publish the snapshot to the configured store under this name")
	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("cal")
	return cmd
}
