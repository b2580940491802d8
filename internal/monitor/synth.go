package monitor

import (
	"math"
	"math/rand/v2"
	"time"

	"icuwatch/internal/model"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
)

// Synthesizer produces bounded samples and risk walks from an injected
// random source, so a fixed seed yields a reproducible patient.
type Synthesizer struct {
	rng        *rand.Rand
	imputeProb float64
}

func NewSynthesizer(rng *rand.Rand, imputeProb float64) *Synthesizer {
	return &Synthesizer{rng: rng, imputeProb: imputeProb}
}

func (s *Synthesizer) Reading(tpl model.FeatureTemplate, ts time.Time) model.Reading {
	value := tpl.BaseValue + (s.rng.Float64()-0.5)*tpl.Variance
	if tpl.Discrete {
		value = math.Round(value)
	}
	if tpl.Min != nil && value < *tpl.Min {
		value = *tpl.Min
	}
	if tpl.Max != nil && value > *tpl.Max {
		value = *tpl.Max
	}
	if tpl.RoundDigits != nil {
		value = roundTo(value, *tpl.RoundDigits)
	}
	prob := tpl.ImputationProbability
	if prob <= 0 {
		prob = s.imputeProb
	}
	return model.Reading{
		Timestamp: ts,
		Value:     value,
		IsImputed: s.rng.Float64() < prob,
	}
}

func (s *Synthesizer) BackfillReadings(tpl model.FeatureTemplate, base time.Time, points int, step time.Duration) []model.Reading {
	out := make([]model.Reading, 0, points)
	for i := points - 1; i >= 0; i-- {
		out = append(out, s.Reading(tpl, base.Add(-time.Duration(i)*step)))
	}
	return out
}

func (s *Synthesizer) NextRisk(last float64) float64 {
	return math.Round(clamp(last+s.Uniform(-4, 4), 0, 100))
}

func (s *Synthesizer) BackfillRisk(current float64, trend Trend, base time.Time, points int, step time.Duration) []model.RiskPoint {
	out := make([]model.RiskPoint, 0, points)
	for i := points - 1; i >= 0; i-- {
		var risk float64
		switch trend {
		case TrendIncreasing:
			risk = current - float64(i)/12*3 + s.Uniform(-2.5, 2.5)
		case TrendDecreasing:
			risk = current + float64(i)/12*3 + s.Uniform(-2.5, 2.5)
		default:
			risk = current + s.Uniform(-2, 2)
		}
		out = append(out, model.RiskPoint{
			Timestamp: base.Add(-time.Duration(i) * step),
			Risk:      math.Round(clamp(risk, 0, 100)),
		})
	}
	return out
}

func (s *Synthesizer) Uniform(low, high float64) float64 {
	return low + s.rng.Float64()*(high-low)
}

// SeededFraction maps an integer seed to a stable pseudo-random fraction.
// Used for admission-time jitter that must not depend on RNG call order.
func SeededFraction(seed int) float64 {
	v := math.Sin(float64(seed)*9999) * 10000
	return v - math.Floor(v)
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}
