// generate: writes noisy circle, square and triangle samples for training and
// validation.
//
// Usage:
//
//	generate --root=input --count=20 --seed=1
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/rand"

	"github.com/tormozz48/simlpe-neural-network/sample"
	"github.com/tormozz48/simlpe-neural-network/utils"
)

func main() {
	defaults := utils.DefaultConfig()
	root := flag.String("root", defaults.DataRoot, "Directory receiving the train and validate sets")
	count := flag.Int("count", defaults.SamplesPerShape, "Samples per shape and set")
	seed := flag.Uint64("seed", defaults.Seed, "Random seed")
	flag.Parse()

	if *count <= 0 {
		fmt.Fprintf(os.Stderr, "count must be positive, got %d\n", *count)
		os.Exit(1)
	}

	gen := sample.NewGenerator(rand.NewSource(*seed))
	for _, kind := range []sample.Kind{sample.Train, sample.Validate} {
		if err := sample.WriteSet(*root, kind, gen, *count); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d samples to %s\n", *count*len(sample.Shapes), sample.SetDir(*root, kind))
	}
}
