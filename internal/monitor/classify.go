package monitor

import (
	"math"
	"time"

	"icuwatch/internal/model"
)

// Classify maps a patient's current state to an alert status. It is a pure
// function of its inputs: no transition memory lives here, so re-running
// it on unchanged state yields the same answer.
//
// Staleness wins over everything. Among rule triggers, rate-of-change
// takes priority over sustained even when both fire in the same cycle.
func Classify(now, lastUpdate time.Time, currentRisk, change float64, history []model.RiskPoint, rules []model.AlertRule, staleThreshold time.Duration) model.AlertStatus {
	if now.Sub(lastUpdate) > staleThreshold {
		return model.StatusStaleData
	}
	var rapid, sustained bool
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		if r.RateOfChangeThreshold > 0 &&
			currentRisk >= r.RiskThreshold &&
			change >= r.RateOfChangeThreshold {
			rapid = true
		}
		if r.SustainedDurationMinutes > 0 {
			cutoff := now.Add(-time.Duration(r.SustainedDurationMinutes) * time.Minute)
			if sustainedAtOrAbove(history, cutoff, r.RiskThreshold) {
				sustained = true
			}
		}
	}
	if rapid {
		return model.StatusRapidIncrease
	}
	if sustained {
		return model.StatusSustainedHigh
	}
	return model.StatusNormal
}

// sustainedAtOrAbove reports whether every point at or after cutoff has
// risk >= threshold. An empty restricted window never fires.
func sustainedAtOrAbove(history []model.RiskPoint, cutoff time.Time, threshold float64) bool {
	seen := false
	for _, p := range history {
		if p.Timestamp.Before(cutoff) {
			continue
		}
		seen = true
		if p.Risk < threshold {
			return false
		}
	}
	return seen
}

// ChangeSince returns latest risk minus the risk at or before cutoff,
// rounded. When no point is old enough the oldest available point is the
// baseline; short history is never an error.
func ChangeSince(history []model.RiskPoint, cutoff time.Time) float64 {
	if len(history) == 0 {
		return 0
	}
	latest := history[len(history)-1].Risk
	base := history[0].Risk
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Timestamp.After(cutoff) {
			base = history[i].Risk
			break
		}
	}
	return math.Round(latest - base)
}
