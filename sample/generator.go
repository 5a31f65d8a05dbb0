package sample

import (
	"golang.org/x/exp/rand"
)

const maxNoise = 5

// Generator produces noisy copies of the shape templates.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator seeds a Generator from src. A nil src uses a fixed seed of zero.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(0)
	}
	return &Generator{rng: rand.New(src)}
}

// Generate flips between 1 and 5 random pixels of the template of shape. The
// same pixel may be picked twice, flipping it back.
func (g *Generator) Generate(shape Shape) Sample {
	m := shape.Template()
	size, _ := m.Dims()

	noise := g.rng.Intn(maxNoise) + 1
	for i := 0; i < noise; i++ {
		x := g.rng.Intn(size)
		y := g.rng.Intn(size)
		m.Set(x, y, 1-m.At(x, y))
	}

	return Sample{
		Expected: shape.Expected(),
		Input:    m,
	}
}
