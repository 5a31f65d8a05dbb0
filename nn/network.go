package nn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxErr is the error at or below which Train leaves the weights alone.
	MaxErr = 0.1
	// MinAlpha and MaxAlpha bound the adaptive learning rate.
	MinAlpha = 0.1
	MaxAlpha = 0.3

	maxInitialWeight = 0.3
)

// Network is a fully-connected feedforward classifier trained online, one sample
// per call. A Network is not safe for concurrent use: the forward pass overwrites
// the shared activation buffers.
type Network struct {
	config    Config
	activator Sigmoid
	alpha     float64

	layers   []*mat.VecDense // input, hidden layers, output
	deltas   []*mat.VecDense // one per non-input layer
	weights  []*mat.Dense    // weights[l] maps layers[l] to layers[l+1], rows are destinations
	expected []float64
}

// NewNetwork allocates every buffer once and draws the weights uniformly from
// [0, 0.3). A nil src uses the package-global generator.
func NewNetwork(c Config, src rand.Source) (*Network, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}

	sizes := c.layerSizes()
	totalWeights := c.LayerCount + 1
	net := &Network{
		config:   c,
		layers:   make([]*mat.VecDense, len(sizes)),
		deltas:   make([]*mat.VecDense, totalWeights),
		weights:  make([]*mat.Dense, totalWeights),
		expected: make([]float64, c.OutputSize),
	}
	for i, size := range sizes {
		net.layers[i] = mat.NewVecDense(size, nil)
	}

	dist := distuv.Uniform{Min: 0, Max: maxInitialWeight, Src: src}
	for i := 0; i < totalWeights; i++ {
		rows, cols := sizes[i+1], sizes[i]
		net.weights[i] = mat.NewDense(rows, cols, randomArray(rows*cols, dist))
		net.deltas[i] = mat.NewVecDense(rows, nil)
	}

	return net, nil
}

func randomArray(size int, dist distuv.Uniform) []float64 {
	data := make([]float64, size)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}

func (net *Network) lastIndex() int {
	return len(net.layers) - 1
}

// Config returns the sizing the network was built with.
func (net *Network) Config() Config {
	return net.config
}

// SetInput flattens m row by row into the input layer. It panics unless m is
// InputSize × InputSize.
func (net *Network) SetInput(m mat.Matrix) {
	rows, cols := m.Dims()
	if rows != net.config.InputSize || cols != net.config.InputSize {
		panic(fmt.Sprintf("nn: invalid input size %dx%d, want %dx%d",
			rows, cols, net.config.InputSize, net.config.InputSize))
	}

	input := net.layers[0]
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			input.SetVec(i*cols+j, m.At(i, j))
		}
	}
}

// SetExpected stores v as the target of the next Train or Err call. The slice is
// kept, not copied. It panics unless len(v) == OutputSize.
func (net *Network) SetExpected(v []float64) {
	if len(v) != net.config.OutputSize {
		panic(fmt.Sprintf("nn: invalid expected size %d, want %d", len(v), net.config.OutputSize))
	}
	net.expected = v
}

// Apply runs a forward pass and returns the index of the strongest output.
func (net *Network) Apply() int {
	net.clear()
	net.feedForward()
	return net.classify()
}

// ApplyFrom finishes a forward pass from the weighted sums of the first
// transition, computed outside the network. The input layer is left untouched.
func (net *Network) ApplyFrom(sums []float64) int {
	first := net.layers[1]
	if len(sums) != first.Len() {
		panic(fmt.Sprintf("nn: invalid weighted sums size %d, want %d", len(sums), first.Len()))
	}

	net.clear()
	for i, sum := range sums {
		first.SetVec(i, net.activator.Activate(i, 0, sum))
	}
	for l := 1; l <= net.config.LayerCount; l++ {
		net.propagate(l)
	}
	return net.classify()
}

// Train runs a forward pass and, unless the sample is already within MaxErr,
// one delta-rule step scaled by the current error.
func (net *Network) Train() {
	net.clear()
	net.feedForward()
	net.recalculateAlpha()

	if net.Err() > MaxErr {
		net.adjustWeights()
	}
}

// Err is half the L1 distance between the expected vector and the output layer.
func (net *Network) Err() float64 {
	return floats.Distance(net.expected, net.output(), 1) / 2
}

// Alpha is the learning rate computed by the last Train call.
func (net *Network) Alpha() float64 {
	return net.alpha
}

// Output returns a copy of the output layer activations.
func (net *Network) Output() []float64 {
	return append([]float64(nil), net.output()...)
}

// Weights returns a copy of transition l.
func (net *Network) Weights(l int) mat.Matrix {
	return mat.DenseCopyOf(net.weights[l])
}

func (net *Network) output() []float64 {
	return net.layers[net.lastIndex()].RawVector().Data
}

func (net *Network) classify() int {
	return floats.MaxIdx(net.output())
}

func (net *Network) clear() {
	for i := 1; i < len(net.layers); i++ {
		net.layers[i].Zero()
	}
}

// feedForward computes F(Σ W·y) for every transition in order.
func (net *Network) feedForward() {
	for l := 0; l <= net.config.LayerCount; l++ {
		net.propagate(l)
	}
}

func (net *Network) propagate(l int) {
	dst := net.layers[l+1]
	dst.MulVec(net.weights[l], net.layers[l])
	for i := 0; i < dst.Len(); i++ {
		dst.SetVec(i, net.activator.Activate(i, 0, dst.AtVec(i)))
	}
}

func (net *Network) recalculateAlpha() {
	relativeError := 2 * math.Abs(net.Err()) / float64(net.config.OutputSize)
	net.alpha = relativeError*(MaxAlpha-MinAlpha) + MinAlpha
}

func (net *Network) adjustWeights() {
	last := net.config.LayerCount

	outputs := net.layers[last+1]
	for i := 0; i < outputs.Len(); i++ {
		y := outputs.AtVec(i)
		net.deltas[last].SetVec(i, net.activator.Deactivate(y)*(net.expected[i]-y))
	}

	// each hidden delta needs the finished delta of the layer after it
	for l := last - 1; l >= 0; l-- {
		delta := net.deltas[l]
		delta.MulVec(net.weights[l+1].T(), net.deltas[l+1])
		ys := net.layers[l+1]
		for j := 0; j < delta.Len(); j++ {
			delta.SetVec(j, net.activator.Deactivate(ys.AtVec(j))*delta.AtVec(j))
		}
	}

	for l := 0; l <= last; l++ {
		net.weights[l].RankOne(net.weights[l], net.alpha, net.deltas[l], net.layers[l])
	}
}
