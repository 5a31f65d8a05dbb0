package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigmoid(t *testing.T) {
	s := Sigmoid{}
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0.5},
		{2, 1 / (1 + math.Exp(-2))},
		{-2, 1 / (1 + math.Exp(2))},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, s.Activate(0, 0, tt.in), 1e-15)
	}

	// symmetric around zero
	require.InDelta(t, 1.0, s.Activate(0, 0, 3)+s.Activate(0, 0, -3), 1e-15)
	require.Equal(t, "sigmoid", s.String())
}

func TestSigmoidDeactivate(t *testing.T) {
	s := Sigmoid{}
	require.Equal(t, 0.25, s.Deactivate(0.5))
	require.Zero(t, s.Deactivate(0))
	require.Zero(t, s.Deactivate(1))

	// matches a finite difference of Activate
	x, h := 0.7, 1e-6
	numeric := (s.Activate(0, 0, x+h) - s.Activate(0, 0, x-h)) / (2 * h)
	require.InDelta(t, numeric, s.Deactivate(s.Activate(0, 0, x)), 1e-9)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, Config{InputSize: 1, NeuronSize: 1, OutputSize: 1}.Validate())
	require.Error(t, Config{InputSize: 7, NeuronSize: 14, OutputSize: 3, LayerCount: -2}.Validate())
	require.Equal(t, 49, DefaultConfig().InputNum())
	require.Equal(t, []int{49, 14, 3}, DefaultConfig().layerSizes())
	require.Equal(t, []int{4, 2}, Config{InputSize: 2, NeuronSize: 9, OutputSize: 2}.layerSizes())
}
