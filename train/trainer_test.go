package train

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/tormozz48/simlpe-neural-network/nn"
	"github.com/tormozz48/simlpe-neural-network/sample"
)

func newNetwork(t *testing.T, seed uint64) *nn.Network {
	t.Helper()
	net, err := nn.NewNetwork(nn.DefaultConfig(), rand.NewSource(seed))
	require.NoError(t, err)
	return net
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

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"epochs", func(p *Policy) { p.Epochs = 0 }},
		{"barrier", func(p *Policy) { p.LearningBarrier = -1 }},
		{"max barrier", func(p *Policy) { p.MaxBarrier = 0 }},
		{"max err", func(p *Policy) { p.MaxErr = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			require.Error(t, p.Validate())
		})
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	trainer := New(newNetwork(t, 1), DefaultPolicy(), nil)
	_, err := trainer.Fit(context.Background(), nil)
	require.Error(t, err)

	trainer.Policy.Epochs = 0
	_, err = trainer.Fit(context.Background(), generate(sample.NewGenerator(nil), 1))
	require.Error(t, err)
}

func TestFitStopsWhenErrorSettles(t *testing.T) {
	s := sample.Sample{Expected: []float64{1, 0, 0}, Input: mat.NewDense(7, 7, nil)}
	samples := make([]sample.Sample, 60)
	for i := range samples {
		samples[i] = s
	}

	var logs bytes.Buffer
	trainer := New(newNetwork(t, 3), DefaultPolicy(), log.New(&logs, "", 0))
	result, err := trainer.Fit(context.Background(), samples)
	require.NoError(t, err)

	require.True(t, result.Converged)
	require.Less(t, result.Epochs, DefaultPolicy().Epochs)
	require.Len(t, result.History, result.Epochs)
	require.Less(t, result.MeanError, nn.MaxErr)
	require.Contains(t, logs.String(), "Train stopped on")
	require.Positive(t, trainer.Stats.TrainingTime)
}

func TestFitAndValidateShapes(t *testing.T) {
	gen := sample.NewGenerator(rand.NewSource(11))
	trainSet := generate(gen, 20)
	validateSet := generate(gen, 20)

	trainer := New(newNetwork(t, 11), DefaultPolicy(), nil)
	result, err := trainer.Fit(context.Background(), trainSet)
	require.NoError(t, err)
	require.LessOrEqual(t, result.Epochs, DefaultPolicy().Epochs)
	require.Less(t, result.MeanError, result.History[0])

	report, err := trainer.Validate(context.Background(), validateSet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, report.Accuracy, 0.9)
	require.Less(t, report.MeanError, 0.3)

	total := 0
	for expected, row := range report.Confusion {
		for actual, n := range row {
			total += n
			if expected != actual {
				require.LessOrEqual(t, n, len(report.Misses))
			}
		}
	}
	require.Equal(t, len(validateSet), total)
}

func TestValidateReportsMisses(t *testing.T) {
	gen := sample.NewGenerator(rand.NewSource(2))
	samples := generate(gen, 5)

	var logs bytes.Buffer
	trainer := New(newNetwork(t, 2), DefaultPolicy(), log.New(&logs, "", 0))
	report, err := trainer.Validate(context.Background(), samples)
	require.NoError(t, err)

	// an untrained network cannot get every class right
	require.NotEmpty(t, report.Misses)
	for _, miss := range report.Misses {
		require.Zero(t, miss.Expected[miss.Actual])
		require.Equal(t, samples[miss.Index].Expected, miss.Expected)
	}
	require.InDelta(t, 1-float64(len(report.Misses))/float64(len(samples)), report.Accuracy, 1e-12)
	require.Contains(t, logs.String(), "Error on image")
	require.Contains(t, logs.String(), "Mean error on validation is")
}

func TestFitAndValidateHonorContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	samples := generate(sample.NewGenerator(rand.NewSource(1)), 1)
	trainer := New(newNetwork(t, 1), DefaultPolicy(), nil)

	_, err := trainer.Fit(ctx, samples)
	require.ErrorIs(t, err, context.Canceled)

	_, err = trainer.Validate(ctx, samples)
	require.ErrorIs(t, err, context.Canceled)

	_, err = trainer.Validate(context.Background(), nil)
	require.Error(t, err)
}
