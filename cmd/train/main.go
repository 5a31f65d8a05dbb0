// train: trains the shape classifier on a sample directory and validates it.
//
// Usage:
//
//	train --root=input --epochs=50 --seed=1
//
// INPUT_SIZE, NEURON_SIZE, OUTPUT_SIZE and LAYER_COUNT override the network
// sizes, --arch="7 14 3 1" overrides them all at once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/exp/rand"

	"github.com/tormozz48/simlpe-neural-network/nn"
	"github.com/tormozz48/simlpe-neural-network/sample"
	"github.com/tormozz48/simlpe-neural-network/train"
	"github.com/tormozz48/simlpe-neural-network/utils"
)

var (
	root     = flag.String("root", "input", "Directory holding the train and validate sets")
	epochs   = flag.Int("epochs", 50, "Maximum number of training epochs")
	seed     = flag.Uint64("seed", 1, "Random seed for the initial weights")
	arch     = flag.String("arch", "", "Network sizes: input neuron output layers")
	generate = flag.Int("generate", 0, "Generate this many samples per shape before training")
	verbose  = flag.Bool("verbose", true, "Print timing statistics")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	logger := log.New(os.Stdout, "", 0)

	config, err := loadConfig()
	if err != nil {
		logger.Fatalf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func loadConfig() (utils.Config, error) {
	config := utils.DefaultConfig()
	config.DataRoot = *root
	config.Epochs = *epochs
	config.Seed = *seed
	if *generate > 0 {
		config.SamplesPerShape = *generate
	}

	config, err := utils.ConfigFromEnv(config)
	if err != nil {
		return config, err
	}
	if *arch != "" {
		if config.Network, err = utils.ParseArchitecture(*arch); err != nil {
			return config, err
		}
	}
	return config, utils.ValidateConfig(&config)
}

func run(ctx context.Context, config utils.Config, logger *log.Logger) error {
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Data:          %s\n", config.DataRoot)
	fmt.Printf("  Architecture:  %d %d %d %d\n", config.Network.InputSize,
		config.Network.NeuronSize, config.Network.OutputSize, config.Network.LayerCount)
	fmt.Printf("  Epochs:        %d\n", config.Epochs)
	fmt.Println()

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	if *generate > 0 {
		gen := sample.NewGenerator(rand.NewSource(config.Seed + 1))
		for _, kind := range []sample.Kind{sample.Train, sample.Validate} {
			if err := sample.WriteSet(config.DataRoot, kind, gen, config.SamplesPerShape); err != nil {
				return err
			}
		}
	}
	size, outputs := config.Network.InputSize, config.Network.OutputSize
	trainSet, err := sample.LoadSet(config.DataRoot, sample.Train, size, outputs)
	if err != nil {
		return err
	}
	validateSet, err := sample.LoadSet(config.DataRoot, sample.Validate, size, outputs)
	if err != nil {
		return err
	}
	stats.DataLoadingTime = time.Since(start)

	start = time.Now()
	network, err := nn.NewNetwork(config.Network, rand.NewSource(config.Seed))
	if err != nil {
		return err
	}
	stats.ModelInitTime = time.Since(start)

	policy := train.DefaultPolicy()
	policy.Epochs = config.Epochs
	trainer := train.New(network, policy, logger)
	trainer.Stats = stats

	result, err := trainer.Fit(ctx, trainSet)
	if err != nil {
		return err
	}
	report, err := trainer.Validate(ctx, validateSet)
	if err != nil {
		return err
	}
	stats.TotalTime = time.Since(totalStart)

	fmt.Printf("\nConverged: %v, accuracy: %.2f%% (%d misses)\n",
		result.Converged, report.Accuracy*100, len(report.Misses))
	utils.PrintTimingStats(stats, result.Epochs*len(trainSet))
	return nil
}
