package monitor

import (
	"math"
	"sort"
)

// Contribution scores a value's deviation from its normal range. Values
// outside the range score positively in proportion to the excursion;
// values inside score mildly negative near the midpoint, approaching zero
// at the boundaries.
func Contribution(value, low, high, outWeight, inWeight float64) float64 {
	span := math.Max(high-low, 1)
	if value < low {
		return round1((low - value) / span * outWeight)
	}
	if value > high {
		return round1((value - high) / span * outWeight)
	}
	mid := (low + high) / 2
	normalized := math.Abs(value-mid) / (span / 2)
	return round1(-math.Max(0, 1-normalized) * inWeight)
}

func ContributorLabel(name string, value, low, high float64) string {
	if value < low {
		return name + " ↓"
	}
	if value > high {
		return name + " ↑"
	}
	return name
}

type rankedFeature struct {
	label        string
	contribution float64
}

// rankContributors picks the top contributors by score, preferring
// strictly positive ones; when none are positive it falls back to the raw
// ordering so some signal is always produced.
func rankContributors(ranked []rankedFeature, limit int) []string {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].contribution > ranked[j].contribution
	})
	positive := ranked[:0:0]
	for _, f := range ranked {
		if f.contribution > 0 {
			positive = append(positive, f)
		}
	}
	pool := positive
	if len(pool) == 0 {
		pool = ranked
	}
	if limit > len(pool) {
		limit = len(pool)
	}
	out := make([]string, 0, limit)
	for _, f := range pool[:limit] {
		out = append(out, f.label)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
