// Package synthesis blends the technical judge's scored rankings with the
// preference judge's holistic ranking into one final ordering of styles.
package synthesis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/restylelab/stylebench/internal/models"
)

// ErrInvalidWeights is returned when the blend weights are negative or sum
// to zero.
var ErrInvalidWeights = errors.New("synthesis weights must be non-negative and sum to a positive value")

// RankingSetMismatchError reports that the two judges ranked different
// style sets. Synthesis requires both rankings to cover exactly the same
// styles; a mismatch means one judge's output is unusable.
type RankingSetMismatchError struct {
	OnlyTechnical  []string
	OnlyPreference []string
}

func (e *RankingSetMismatchError) Error() string {
	var parts []string
	if len(e.OnlyTechnical) > 0 {
		parts = append(parts, fmt.Sprintf("only in technical ranking: %s", strings.Join(e.OnlyTechnical, ", ")))
	}
	if len(e.OnlyPreference) > 0 {
		parts = append(parts, fmt.Sprintf("only in preference ranking: %s", strings.Join(e.OnlyPreference, ", ")))
	}
	return "ranking style sets differ: " + strings.Join(parts, "; ")
}

// TechnicalRankings orders styles by their average evaluation percentage,
// best first. Ties share score but not rank; the tied style that sorts
// first by name gets the better rank so the output is deterministic.
func TechnicalRankings(averages map[string]float64) map[string]int {
	type styleAvg struct {
		style string
		avg   float64
	}

	ordered := make([]styleAvg, 0, len(averages))
	for style, avg := range averages {
		ordered = append(ordered, styleAvg{style, avg})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].avg != ordered[j].avg {
			return ordered[i].avg > ordered[j].avg
		}
		return ordered[i].style < ordered[j].style
	})

	ranks := make(map[string]int, len(ordered))
	for i, sa := range ordered {
		ranks[sa.style] = i + 1
	}
	return ranks
}

// Blend combines the two rank maps into the final ordering. Lower blended
// score is better. Ties break by technical rank, then by style name.
func Blend(technical, preference map[string]int, feasibilityWeight, preferenceWeight float64) ([]models.RankingEntry, error) {
	if feasibilityWeight < 0 || preferenceWeight < 0 || feasibilityWeight+preferenceWeight == 0 {
		return nil, ErrInvalidWeights
	}

	if err := checkSameStyles(technical, preference); err != nil {
		return nil, err
	}

	entries := make([]models.RankingEntry, 0, len(technical))
	for style, techRank := range technical {
		prefRank := preference[style]
		entries = append(entries, models.RankingEntry{
			Style:          style,
			TechnicalRank:  techRank,
			PreferenceRank: prefRank,
			FinalScore:     feasibilityWeight*float64(techRank) + preferenceWeight*float64(prefRank),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore < entries[j].FinalScore
		}
		if entries[i].TechnicalRank != entries[j].TechnicalRank {
			return entries[i].TechnicalRank < entries[j].TechnicalRank
		}
		return entries[i].Style < entries[j].Style
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

func checkSameStyles(technical, preference map[string]int) error {
	mismatch := &RankingSetMismatchError{}
	for style := range technical {
		if _, ok := preference[style]; !ok {
			mismatch.OnlyTechnical = append(mismatch.OnlyTechnical, style)
		}
	}
	for style := range preference {
		if _, ok := technical[style]; !ok {
			mismatch.OnlyPreference = append(mismatch.OnlyPreference, style)
		}
	}
	if len(mismatch.OnlyTechnical) > 0 || len(mismatch.OnlyPreference) > 0 {
		sort.Strings(mismatch.OnlyTechnical)
		sort.Strings(mismatch.OnlyPreference)
		return mismatch
	}
	return nil
}
