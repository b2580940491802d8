package monitor

import (
	"math"
	"time"

	"icuwatch/internal/model"
)

// Forecast extrapolates a short-horizon risk trajectory from the tail of a
// risk history. The slope is the mean per-step change across the last
// slopeWindow points; a single point yields a flat forecast and an empty
// history yields no forecast.
func Forecast(history []model.RiskPoint, slopeWindow, points int, interval time.Duration) []model.RiskPoint {
	if len(history) == 0 || points <= 0 {
		return nil
	}
	if slopeWindow < 1 {
		slopeWindow = 1
	}
	start := len(history) - slopeWindow
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	steps := len(recent) - 1
	if steps < 1 {
		steps = 1
	}
	slope := (recent[len(recent)-1].Risk - recent[0].Risk) / float64(steps)

	last := history[len(history)-1]
	out := make([]model.RiskPoint, 0, points)
	for i := 1; i <= points; i++ {
		out = append(out, model.RiskPoint{
			Timestamp: last.Timestamp.Add(time.Duration(i) * interval),
			Risk:      clamp(math.Round(last.Risk+slope*float64(i)), 0, 100),
		})
	}
	return out
}
