package monitor

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"icuwatch/internal/model"
)

func testSynth(imputeProb float64) *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewPCG(7, 11)), imputeProb)
}

func TestReadingRespectsBounds(t *testing.T) {
	s := testSynth(0)
	tpl := model.FeatureTemplate{
		Key: "hr", BaseValue: 96, Variance: 200,
		Min: fptr(40), Max: fptr(160),
	}
	now := time.Now().UTC()
	for i := 0; i < 200; i++ {
		r := s.Reading(tpl, now)
		if r.Value < 40 || r.Value > 160 {
			t.Fatalf("value %v outside [40,160]", r.Value)
		}
	}
}

func TestReadingZeroVarianceIsDeterministic(t *testing.T) {
	s := testSynth(0)
	tpl := model.FeatureTemplate{Key: "gcs", BaseValue: 4.5, Variance: 0}
	for i := 0; i < 10; i++ {
		r := s.Reading(tpl, time.Now())
		if r.Value != 4.5 {
			t.Fatalf("expected fixed value 4.5, got %v", r.Value)
		}
	}
}

func TestReadingDiscrete(t *testing.T) {
	s := testSynth(0)
	tpl := model.FeatureTemplate{
		Key: "gcs_eye", BaseValue: 3.6, Variance: 1,
		Min: fptr(1), Max: fptr(4), Discrete: true,
	}
	for i := 0; i < 100; i++ {
		r := s.Reading(tpl, time.Now())
		if r.Value != math.Trunc(r.Value) {
			t.Fatalf("expected integer value, got %v", r.Value)
		}
	}
}

func TestReadingRoundDigits(t *testing.T) {
	s := testSynth(0)
	tpl := model.FeatureTemplate{Key: "temp", BaseValue: 37.2, Variance: 1.2, RoundDigits: iptr(1)}
	for i := 0; i < 100; i++ {
		r := s.Reading(tpl, time.Now())
		scaled := r.Value * 10
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("expected one decimal place, got %v", r.Value)
		}
	}
}

func TestReadingNoBoundsDoesNotClamp(t *testing.T) {
	s := testSynth(0)
	tpl := model.FeatureTemplate{Key: "free", BaseValue: 0, Variance: 1000}
	for i := 0; i < 100; i++ {
		s.Reading(tpl, time.Now())
	}
}

func TestReadingImputationFlag(t *testing.T) {
	always := testSynth(0)
	tpl := model.FeatureTemplate{Key: "x", BaseValue: 1, Variance: 0, ImputationProbability: 1}
	for i := 0; i < 20; i++ {
		if r := always.Reading(tpl, time.Now()); !r.IsImputed {
			t.Fatalf("expected imputed reading with probability 1")
		}
	}
	never := testSynth(0)
	tpl.ImputationProbability = 0
	for i := 0; i < 20; i++ {
		if r := never.Reading(tpl, time.Now()); r.IsImputed {
			t.Fatalf("expected direct reading with probability 0")
		}
	}
}

func TestNextRiskStaysInRange(t *testing.T) {
	s := testSynth(0)
	risk := 2.0
	for i := 0; i < 500; i++ {
		risk = s.NextRisk(risk)
		if risk < 0 || risk > 100 {
			t.Fatalf("risk %v outside [0,100]", risk)
		}
		if risk != math.Round(risk) {
			t.Fatalf("risk %v not rounded", risk)
		}
	}
}

func TestBackfillRiskChronological(t *testing.T) {
	s := testSynth(0)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	history := s.BackfillRisk(60, TrendIncreasing, base, 73, 5*time.Minute)
	if len(history) != 73 {
		t.Fatalf("expected 73 points, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if !history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
	if !history[len(history)-1].Timestamp.Equal(base) {
		t.Fatalf("last point should land on base time")
	}
	for _, p := range history {
		if p.Risk < 0 || p.Risk > 100 {
			t.Fatalf("risk %v outside [0,100]", p.Risk)
		}
	}
}

func TestSeededFractionStable(t *testing.T) {
	a := SeededFraction(5)
	b := SeededFraction(5)
	if a != b {
		t.Fatalf("expected stable fraction, got %v and %v", a, b)
	}
	if a < 0 || a >= 1 {
		t.Fatalf("fraction %v outside [0,1)", a)
	}
}
