package nn

import "fmt"

// Config holds the sizing of a network. It never changes once a Network is built.
type Config struct {
	InputSize  int // side of the square input grid, the input layer has InputSize² neurons
	NeuronSize int // width of every hidden layer
	OutputSize int // number of classes
	LayerCount int // number of hidden layers, may be zero
}

// DefaultConfig is the 7×7 three-shape classifier with one hidden layer of 14 neurons.
func DefaultConfig() Config {
	return Config{
		InputSize:  7,
		NeuronSize: 14,
		OutputSize: 3,
		LayerCount: 1,
	}
}

// Validate reports the first non-positive dimension.
func (c Config) Validate() error {
	if c.InputSize <= 0 {
		return fmt.Errorf("input size must be positive, got %d", c.InputSize)
	}
	if c.NeuronSize <= 0 {
		return fmt.Errorf("neuron size must be positive, got %d", c.NeuronSize)
	}
	if c.OutputSize <= 0 {
		return fmt.Errorf("output size must be positive, got %d", c.OutputSize)
	}
	if c.LayerCount < 0 {
		return fmt.Errorf("layer count must not be negative, got %d", c.LayerCount)
	}
	return nil
}

// InputNum is the width of the input layer.
func (c Config) InputNum() int {
	return c.InputSize * c.InputSize
}

// layerSizes returns the width of every layer, input and output included.
func (c Config) layerSizes() []int {
	sizes := make([]int, c.LayerCount+2)
	sizes[0] = c.InputNum()
	for i := 1; i <= c.LayerCount; i++ {
		sizes[i] = c.NeuronSize
	}
	sizes[c.LayerCount+1] = c.OutputSize
	return sizes
}
