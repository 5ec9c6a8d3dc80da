package synthesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnicalRankings(t *testing.T) {
	ranks := TechnicalRankings(map[string]float64{
		"watercolor": 82.5,
		"cyberpunk":  91.0,
		"sketch":     40.0,
	})

	assert.Equal(t, 1, ranks["cyberpunk"])
	assert.Equal(t, 2, ranks["watercolor"])
	assert.Equal(t, 3, ranks["sketch"])
}

func TestTechnicalRankings_TieBreaksByName(t *testing.T) {
	ranks := TechnicalRankings(map[string]float64{
		"zebra": 50.0,
		"apple": 50.0,
	})
	assert.Equal(t, 1, ranks["apple"])
	assert.Equal(t, 2, ranks["zebra"])
}

func TestBlend_EqualWeights(t *testing.T) {
	technical := map[string]int{"a": 1, "b": 2, "c": 3}
	preference := map[string]int{"a": 3, "b": 1, "c": 2}

	entries, err := Blend(technical, preference, 0.5, 0.5)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// b: 0.5*2 + 0.5*1 = 1.5; a: 0.5*1 + 0.5*3 = 2.0; c: 0.5*3 + 0.5*2 = 2.5.
	assert.Equal(t, "b", entries[0].Style)
	assert.InDelta(t, 1.5, entries[0].FinalScore, 1e-9)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, "a", entries[1].Style)
	assert.Equal(t, "c", entries[2].Style)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestBlend_SkewedWeights(t *testing.T) {
	technical := map[string]int{"a": 1, "b": 2}
	preference := map[string]int{"a": 2, "b": 1}

	// All weight on preference flips the order.
	entries, err := Blend(technical, preference, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", entries[0].Style)
	assert.Equal(t, "a", entries[1].Style)
}

func TestBlend_SwappedJudgesWithSwappedWeightsAgree(t *testing.T) {
	technical := map[string]int{"a": 1, "b": 2, "c": 3}
	preference := map[string]int{"a": 3, "b": 1, "c": 2}

	forward, err := Blend(technical, preference, 0.7, 0.3)
	require.NoError(t, err)
	swapped, err := Blend(preference, technical, 0.3, 0.7)
	require.NoError(t, err)

	require.Len(t, swapped, len(forward))
	for i := range forward {
		assert.Equal(t, forward[i].Style, swapped[i].Style)
		assert.InDelta(t, forward[i].FinalScore, swapped[i].FinalScore, 1e-9)
	}
}

func TestBlend_TieBreaksByTechnicalRank(t *testing.T) {
	// a: 0.5*1 + 0.5*4 = 2.5; b: 0.5*4 + 0.5*1 = 2.5. Technical rank wins.
	technical := map[string]int{"a": 1, "b": 4}
	preference := map[string]int{"a": 4, "b": 1}

	entries, err := Blend(technical, preference, 0.5, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "a", entries[0].Style)
	assert.Equal(t, "b", entries[1].Style)
}

func TestBlend_InvalidWeights(t *testing.T) {
	technical := map[string]int{"a": 1}
	preference := map[string]int{"a": 1}

	_, err := Blend(technical, preference, -0.1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Blend(technical, preference, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestBlend_StyleSetMismatch(t *testing.T) {
	technical := map[string]int{"a": 1, "b": 2}
	preference := map[string]int{"a": 1, "c": 2}

	_, err := Blend(technical, preference, 0.5, 0.5)
	require.Error(t, err)

	var mismatch *RankingSetMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"b"}, mismatch.OnlyTechnical)
	assert.Equal(t, []string{"c"}, mismatch.OnlyPreference)
}
