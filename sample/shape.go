package sample

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Shape identifies one of the classes the network learns.
type Shape int

const (
	Circle Shape = iota
	Square
	Triangle
)

// Shapes lists every shape in class-index order.
var Shapes = []Shape{Circle, Square, Triangle}

// TemplateSize is the side of the built-in templates.
const TemplateSize = 7

var templates = map[Shape]string{
	Circle: `
0 0 1 1 1 0 0
0 1 0 0 0 1 0
1 0 0 0 0 0 1
1 0 0 0 0 0 1
1 0 0 0 0 0 1
0 1 0 0 0 1 0
0 0 1 1 1 0 0`,
	Square: `
1 1 1 1 1 1 1
1 0 0 0 0 0 1
1 0 0 0 0 0 1
1 0 0 0 0 0 1
1 0 0 0 0 0 1
1 0 0 0 0 0 1
1 1 1 1 1 1 1`,
	Triangle: `
0 0 0 1 0 0 0
0 0 1 0 1 0 0
0 0 1 0 1 0 0
0 1 0 0 0 1 0
0 1 0 0 0 1 0
1 0 0 0 0 0 1
1 1 1 1 1 1 1`,
}

func (s Shape) String() string {
	switch s {
	case Circle:
		return "circle"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	}
	return "unknown"
}

// ParseShape is the inverse of Shape.String.
func ParseShape(name string) (Shape, error) {
	for _, s := range Shapes {
		if s.String() == strings.ToLower(name) {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown shape %q", name)
}

// Expected returns a fresh one-hot vector for s.
func (s Shape) Expected() []float64 {
	v := make([]float64, len(Shapes))
	v[s] = 1
	return v
}

// Template returns a copy of the noiseless image of s.
func (s Shape) Template() *mat.Dense {
	m := mat.NewDense(TemplateSize, TemplateSize, nil)
	rows := strings.Split(strings.TrimSpace(templates[s]), "\n")
	for i, row := range rows {
		for j, tok := range strings.Fields(row) {
			if tok == "1" {
				m.Set(i, j, 1)
			}
		}
	}
	return m
}
