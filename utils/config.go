package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tormozz48/simlpe-neural-network/nn"
)

// Config holds run configuration shared by the commands.
type Config struct {
	Network         nn.Config
	Epochs          int
	DataRoot        string
	SamplesPerShape int
	Seed            uint64
}

// DefaultConfig mirrors the classic three-shape setup.
func DefaultConfig() Config {
	return Config{
		Network:         nn.DefaultConfig(),
		Epochs:          50,
		DataRoot:        "input",
		SamplesPerShape: 20,
		Seed:            1,
	}
}

// ParseArchitecture parses "inputSize neuronSize outputSize layerCount".
func ParseArchitecture(archStr string) (nn.Config, error) {
	archParts := strings.Fields(archStr)
	if len(archParts) != 4 {
		return nn.Config{}, errors.Errorf("architecture needs 4 values, got %d", len(archParts))
	}
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nn.Config{}, errors.Wrapf(err, "parsing architecture value %d", i)
		}
		arch[i] = n
	}
	return nn.Config{
		InputSize:  arch[0],
		NeuronSize: arch[1],
		OutputSize: arch[2],
		LayerCount: arch[3],
	}, nil
}

var envSizes = []struct {
	name  string
	field func(*nn.Config) *int
}{
	{"INPUT_SIZE", func(c *nn.Config) *int { return &c.InputSize }},
	{"NEURON_SIZE", func(c *nn.Config) *int { return &c.NeuronSize }},
	{"OUTPUT_SIZE", func(c *nn.Config) *int { return &c.OutputSize }},
	{"LAYER_COUNT", func(c *nn.Config) *int { return &c.LayerCount }},
}

// ConfigFromEnv overrides the network sizes of config with INPUT_SIZE,
// NEURON_SIZE, OUTPUT_SIZE and LAYER_COUNT when they are set.
func ConfigFromEnv(config Config) (Config, error) {
	return configFromLookup(config, os.LookupEnv)
}

func configFromLookup(config Config, lookup func(string) (string, bool)) (Config, error) {
	for _, size := range envSizes {
		raw, ok := lookup(size.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return config, errors.Wrapf(err, "parsing %s", size.name)
		}
		*size.field(&config.Network) = n
	}
	return config, nil
}

// ValidateConfig validates run configuration
func ValidateConfig(config *Config) error {
	if err := config.Network.Validate(); err != nil {
		return err
	}

	if config.Epochs <= 0 {
		return errors.New("epochs must be positive")
	}

	if config.SamplesPerShape <= 0 {
		return errors.New("samples per shape must be positive")
	}

	if config.DataRoot == "" {
		return errors.New("data root must not be empty")
	}

	return nil
}
