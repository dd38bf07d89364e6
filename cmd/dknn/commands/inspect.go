package commands

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dknn/codec"
	"github.com/hupe1980/dknn/persistence"
)

type inspectOutput struct {
	Version     string                      `yaml:"version"`
	Compression string                      `yaml:"compression"`
	HashBits    uint32                      `yaml:"hash_bits"`
	K           uint32                      `yaml:"k"`
	NumClasses  uint32                      `yaml:"num_classes"`
	PayloadLen  uint64                      `yaml:"payload_bytes"`
	RawLen      uint64                      `yaml:"raw_bytes"`
	TrainSize   int                         `yaml:"train_size"`
	CalSize     int                         `yaml:"calibration_size"`
	Layers      []persistence.LayerManifest `yaml:"layers"`
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Print the header and manifest of a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			h, m, err := persistence.ReadManifest(f, codec.Default)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(inspectOutput{
				Version:     fmt.Sprintf("%d.%d", h.Version>>16, h.Version&0xFFFF),
				Compression: persistence.Compression(h.Compression).String(),
				HashBits:    h.HashBits,
				K:           h.K,
				NumClasses:  h.NumClasses,
				PayloadLen:  h.PayloadLen,
				RawLen:      h.RawLen,
				TrainSize:   m.TrainSize,
				CalSize:     m.CalibrationSize,
				Layers:      m.Layers,
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
