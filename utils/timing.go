package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime       time.Duration
	DataLoadingTime time.Duration
	ModelInitTime   time.Duration
	TrainingTime    time.Duration
	ValidationTime  time.Duration
	EncryptionTime  time.Duration
	ServerTime      time.Duration
	DecryptionTime  time.Duration
}

func percentOf(part, whole time.Duration) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func perStep(d time.Duration, steps int) time.Duration {
	if steps <= 0 {
		return 0
	}
	return d / time.Duration(steps)
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, steps int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Average time per step: %v\n", perStep(stats.TotalTime, steps))
	fmt.Fprintf(Output, "Steps completed: %d\n", steps)
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Data loading: %v (%.1f%%)\n", stats.DataLoadingTime, percentOf(stats.DataLoadingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, percentOf(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Training: %v (%.1f%%)\n", stats.TrainingTime, percentOf(stats.TrainingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Validation: %v (%.1f%%)\n", stats.ValidationTime, percentOf(stats.ValidationTime, stats.TotalTime))
	if stats.EncryptionTime > 0 || stats.ServerTime > 0 || stats.DecryptionTime > 0 {
		fmt.Fprintln(Output, "\nSplit inference:")
		fmt.Fprintf(Output, "  Encryption: %v (%.1f%%)\n", stats.EncryptionTime, percentOf(stats.EncryptionTime, stats.TotalTime))
		fmt.Fprintf(Output, "  Server evaluation: %v (%.1f%%)\n", stats.ServerTime, percentOf(stats.ServerTime, stats.TotalTime))
		fmt.Fprintf(Output, "  Decryption: %v (%.1f%%)\n", stats.DecryptionTime, percentOf(stats.DecryptionTime, stats.TotalTime))
	}
	fmt.Fprintln(Output, "\nPerformance metrics:")
	fmt.Fprintf(Output, "  Average training time: %v\n", perStep(stats.TrainingTime, steps))
	fmt.Fprintf(Output, "  Average validation time: %v\n", perStep(stats.ValidationTime, steps))
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
