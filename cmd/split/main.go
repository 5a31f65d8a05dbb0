// split: trains the shape classifier, then classifies the validation samples
// with the first layer evaluated on encrypted images by an in-process server.
//
// Usage:
//
//	split --count=20 --logN=13 --seed=1
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"github.com/tormozz48/simlpe-neural-network/nn"
	"github.com/tormozz48/simlpe-neural-network/sample"
	"github.com/tormozz48/simlpe-neural-network/split"
	"github.com/tormozz48/simlpe-neural-network/train"
	"github.com/tormozz48/simlpe-neural-network/utils"
)

var (
	count   = flag.Int("count", 20, "Samples per shape and set")
	logN    = flag.Int("logN", split.DefaultLogN, "Ring dimension log2")
	seed    = flag.Uint64("seed", 1, "Random seed")
	verbose = flag.Bool("verbose", true, "Print timing statistics")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	logger := log.New(os.Stdout, "", 0)

	if err := run(logger); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(logger *log.Logger) error {
	stats := &utils.TimingStats{}
	totalStart := time.Now()

	gen := sample.NewGenerator(rand.NewSource(*seed))
	trainSet := generate(gen, *count)
	validateSet := generate(gen, *count)

	network, err := nn.NewNetwork(nn.DefaultConfig(), rand.NewSource(*seed))
	if err != nil {
		return err
	}
	trainer := train.New(network, train.DefaultPolicy(), logger)
	trainer.Stats = stats
	if _, err := trainer.Fit(context.Background(), trainSet); err != nil {
		return err
	}

	fmt.Println("Initializing HE context...")
	start := time.Now()
	heCtx, err := split.NewContext(*logN, network.Config().InputNum())
	if err != nil {
		return err
	}
	server, err := split.NewServer(heCtx.ServerKit(), network.Weights(0))
	if err != nil {
		return err
	}
	if *verbose {
		server.Log = log.New(os.Stdout, "[server] ", 0)
	}
	stats.ModelInitTime = time.Since(start)

	clientConn, serverConn := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(split.NewProtocol(serverConn, serverConn))
		serverConn.Close()
	}()

	client := split.NewClient(heCtx, split.NewProtocol(clientConn, clientConn))
	client.Stats = stats
	correct, agree := 0, 0
	for i, s := range validateSet {
		class, err := client.Classify(network, s.Input)
		if err != nil {
			return err
		}
		network.SetInput(s.Input)
		if class == network.Apply() {
			agree++
		}
		if class == s.Class() {
			correct++
		} else {
			logger.Printf("Error on image %d: expected %v, actual %d", i, s.Expected, class)
		}
	}
	if err := client.Close(); err != nil {
		return err
	}
	if err := <-done; err != nil {
		return err
	}
	clientConn.Close()
	stats.TotalTime = time.Since(totalStart)

	fmt.Printf("\nEncrypted accuracy: %.2f%%, agreement with plaintext: %d/%d\n",
		float64(correct)/float64(len(validateSet))*100, agree, len(validateSet))
	utils.PrintTimingStats(stats, len(validateSet))
	return nil
}

func generate(gen *sample.Generator, perShape int) []sample.Sample {
	var samples []sample.Sample
	for _, shape := range sample.Shapes {
		for i := 0; i < perShape; i++ {
			samples = append(samples, gen.Generate(shape))
		}
	}
	return samples
}
