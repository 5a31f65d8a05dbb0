package train

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/tormozz48/simlpe-neural-network/sample"
)

// Miss is a validation sample the network put in the wrong class.
type Miss struct {
	Index    int
	Expected []float64
	Actual   int
}

// Report is the outcome of Validate.
type Report struct {
	MeanError float64
	Accuracy  float64
	Misses    []Miss
	// Confusion[expected][actual] counts samples per class pair.
	Confusion [][]int
}

// Validate classifies every sample without training and reports the mean
// error, the accuracy and each misclassified sample.
func (t *Trainer) Validate(ctx context.Context, samples []sample.Sample) (Report, error) {
	var report Report
	if len(samples) == 0 {
		return report, errors.New("no validation samples")
	}

	start := time.Now()
	defer func() {
		if t.Stats != nil {
			t.Stats.ValidationTime += time.Since(start)
		}
	}()

	classes := t.Net.Config().OutputSize
	report.Confusion = make([][]int, classes)
	for i := range report.Confusion {
		report.Confusion[i] = make([]int, classes)
	}

	errs := make([]float64, len(samples))
	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrapf(err, "validation stopped at sample %d", i)
		}
		t.Net.SetExpected(s.Expected)
		t.Net.SetInput(s.Input)
		classified := t.Net.Apply()

		if s.Expected[classified] == 0 {
			report.Misses = append(report.Misses, Miss{
				Index:    i,
				Expected: s.Expected,
				Actual:   classified,
			})
			t.Log.Printf("Error on image %d: expected %v, actual %d", i, s.Expected, classified)
		}
		report.Confusion[s.Class()][classified]++
		errs[i] = t.Net.Err()
	}

	report.MeanError = stat.Mean(errs, nil)
	report.Accuracy = 1 - float64(len(report.Misses))/float64(len(samples))
	t.Log.Printf("Mean error on validation is %v", report.MeanError)
	return report, nil
}
