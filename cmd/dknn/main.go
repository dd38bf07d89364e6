// Command dknn builds, inspects and runs Deep k-NN classifiers over
// precomputed per-layer embeddings.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/dknn/cmd/dknn/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
