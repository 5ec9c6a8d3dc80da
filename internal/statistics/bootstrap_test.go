package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 50.0, Mean([]float64{50}))
	assert.Equal(t, 75.0, Mean([]float64{60, 90}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	// Sample stddev of {2, 4, 4, 4, 5, 5, 7, 9} is ~2.138
	assert.InDelta(t, 2.138, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 0.001)
}

func TestBootstrapCISinglePoint(t *testing.T) {
	ci := BootstrapCI([]float64{82.5}, 0.95)
	assert.Equal(t, 82.5, ci.Lower)
	assert.Equal(t, 82.5, ci.Upper)
	assert.Equal(t, 82.5, ci.Mean)
	assert.Equal(t, 0, ci.NumBootstraps)
}

func TestBootstrapCIEmpty(t *testing.T) {
	ci := BootstrapCI(nil, 0.95)
	assert.Equal(t, 0.0, ci.Mean)
	assert.Equal(t, 0, ci.NumBootstraps)
}

func TestBootstrapCIBracketsMean(t *testing.T) {
	scores := []float64{70, 75, 80, 85, 90}
	ci := BootstrapCIWithSeed(scores, 0.95, 7)

	assert.Equal(t, 80.0, ci.Mean)
	assert.Equal(t, DefaultBootstrapIterations, ci.NumBootstraps)
	assert.LessOrEqual(t, ci.Lower, ci.Mean)
	assert.GreaterOrEqual(t, ci.Upper, ci.Mean)
	// All data within [70, 90], so resampled means cannot escape it
	assert.GreaterOrEqual(t, ci.Lower, 70.0)
	assert.LessOrEqual(t, ci.Upper, 90.0)
}

func TestBootstrapCIReproducibleWithSeed(t *testing.T) {
	scores := []float64{55, 65, 75, 85}
	a := BootstrapCIWithSeed(scores, 0.95, 42)
	b := BootstrapCIWithSeed(scores, 0.95, 42)
	assert.Equal(t, a, b)
}

func TestBootstrapCIIdenticalScores(t *testing.T) {
	ci := BootstrapCIWithSeed([]float64{80, 80, 80}, 0.95, 1)
	assert.Equal(t, 80.0, ci.Lower)
	assert.Equal(t, 80.0, ci.Upper)
	assert.Equal(t, 80.0, ci.Mean)
}
