package nn

import "math"

// Sigmoid is the logistic activation used by every layer.
type Sigmoid struct{}

// Activate has the signature expected by mat.Dense.Apply and mat.VecDense callbacks.
func (s Sigmoid) Activate(i, j int, sum float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sum))
}

// Deactivate is the derivative expressed through the activation y itself.
func (s Sigmoid) Deactivate(y float64) float64 {
	return y * (1 - y)
}

func (s Sigmoid) String() string {
	return "sigmoid"
}
