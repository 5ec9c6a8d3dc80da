// Package statistics quantifies the spread of per-pair percentages, so a
// style graded over several image pairs reports an interval rather than a
// bare average.
package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval is the result of a bootstrap confidence interval
// computation over per-pair percentage scores.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// BootstrapCI computes a bootstrap confidence interval over the given
// percentages using the percentile method. confidenceLevel should be in
// (0, 1), e.g. 0.95. With fewer than 2 data points the interval collapses
// to the mean and NumBootstraps is 0.
func BootstrapCI(percentages []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(percentages, confidenceLevel, -1)
}

// BootstrapCIWithSeed is BootstrapCI with a fixed seed for reproducibility.
// A negative seed uses a non-deterministic source.
func BootstrapCIWithSeed(percentages []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(percentages)
	m := Mean(percentages)
	if n < 2 {
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumBootstraps:   0,
		}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	iters := DefaultBootstrapIterations
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			sample[j] = percentages[rng.Intn(n)]
		}
		bootMeans[i] = Mean(sample)
	}
	sort.Float64s(bootMeans)

	// Percentile method
	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// Mean computes the arithmetic mean. Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the sample standard deviation (Bessel's correction).
// Returns 0 with fewer than 2 data points.
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0.0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}
