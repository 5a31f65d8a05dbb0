// Package train drives a network over sample sets: epochs with a convergence
// rule for training, and classification reports for validation.
package train

import (
	"context"
	"io"
	"log"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/tormozz48/simlpe-neural-network/nn"
	"github.com/tormozz48/simlpe-neural-network/sample"
	"github.com/tormozz48/simlpe-neural-network/utils"
)

// Policy decides when training stops.
type Policy struct {
	Epochs int
	// LearningBarrier is the smallest change of the epoch mean error that
	// still counts as progress.
	LearningBarrier float64
	// MaxBarrier is how many epochs in a row without progress end training,
	// provided the mean error is already below MaxErr.
	MaxBarrier int
	MaxErr     float64
}

// DefaultPolicy returns the stopping rule the shape classifier was tuned with.
func DefaultPolicy() Policy {
	return Policy{
		Epochs:          50,
		LearningBarrier: 0.001,
		MaxBarrier:      3,
		MaxErr:          nn.MaxErr,
	}
}

// Validate checks every field is usable.
func (p Policy) Validate() error {
	if p.Epochs <= 0 {
		return errors.Errorf("epochs must be positive, got %d", p.Epochs)
	}
	if p.LearningBarrier < 0 {
		return errors.Errorf("learning barrier must not be negative, got %v", p.LearningBarrier)
	}
	if p.MaxBarrier <= 0 {
		return errors.Errorf("max barrier must be positive, got %d", p.MaxBarrier)
	}
	if p.MaxErr <= 0 {
		return errors.Errorf("max error must be positive, got %v", p.MaxErr)
	}
	return nil
}

// Trainer owns the training loop for one network. Like the network it is not
// safe for concurrent use.
type Trainer struct {
	Net    *nn.Network
	Policy Policy
	Log    *log.Logger
	Stats  *utils.TimingStats
}

// New returns a Trainer logging to logger, or nowhere when logger is nil.
func New(net *nn.Network, policy Policy, logger *log.Logger) *Trainer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Trainer{
		Net:    net,
		Policy: policy,
		Log:    logger,
		Stats:  &utils.TimingStats{},
	}
}

// Result summarizes a Fit call.
type Result struct {
	Epochs    int
	MeanError float64
	Converged bool
	History   []float64 // mean error of every epoch
}

// Fit trains on samples epoch after epoch until the policy says stop. The
// context is checked between samples.
func (t *Trainer) Fit(ctx context.Context, samples []sample.Sample) (Result, error) {
	var result Result
	if err := t.Policy.Validate(); err != nil {
		return result, errors.Wrap(err, "invalid training policy")
	}
	if len(samples) == 0 {
		return result, errors.New("no training samples")
	}

	start := time.Now()
	defer func() {
		if t.Stats != nil {
			t.Stats.TrainingTime += time.Since(start)
		}
	}()

	oldMeanError := 10.0
	countBarrier := 0
	errs := make([]float64, len(samples))

	for epoch := 0; epoch < t.Policy.Epochs; epoch++ {
		for i, s := range samples {
			if err := ctx.Err(); err != nil {
				return result, errors.Wrapf(err, "training stopped at epoch %d", epoch+1)
			}
			t.Net.SetExpected(s.Expected)
			t.Net.SetInput(s.Input)
			t.Net.Train()
			errs[i] = t.Net.Err()
		}

		meanError := stat.Mean(errs, nil)
		result.Epochs = epoch + 1
		result.MeanError = meanError
		result.History = append(result.History, meanError)

		if math.Abs(oldMeanError-meanError) < t.Policy.LearningBarrier || meanError > oldMeanError {
			countBarrier++
		} else {
			countBarrier = 0
		}
		oldMeanError = meanError

		if countBarrier == t.Policy.MaxBarrier && meanError < t.Policy.MaxErr {
			result.Converged = true
			break
		}
	}

	t.Log.Printf("Train stopped on %d epoch", result.Epochs)
	t.Log.Printf("Mean error on train is %v", result.MeanError)
	return result, nil
}
