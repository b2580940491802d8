package monitor

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"icuwatch/internal/config"
	"icuwatch/internal/inference"
	"icuwatch/internal/model"
)

type Feature struct {
	template     model.FeatureTemplate
	readings     *Series[model.Reading]
	contribution float64
}

// Patient owns one risk window, one window per monitored feature, and the
// fields derived from them. Every derived field is recomputed in full each
// cycle; nothing is incrementally patched, so an interrupted batch leaves
// no partial state behind.
type Patient struct {
	mu sync.Mutex

	id  string
	bed string
	age int
	sex string

	currentRisk float64
	riskHistory *Series[model.RiskPoint]
	forecast    []model.RiskPoint
	change      float64
	lastUpdate  time.Time
	status      model.AlertStatus
	imputedPct  float64

	topContributors []string
	outOfRange      []string
	features        []*Feature

	// rules overrides the default rule set when non-nil.
	rules []model.AlertRule

	synth *Synthesizer
}

func NewPatient(index int, cfg config.MonitorConfig, defaults []model.AlertRule, mdl inference.Model, now time.Time) *Patient {
	profile := Profiles[index%len(Profiles)]
	stayID := 30000000 + index*17 + 25

	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(index)))
	synth := NewSynthesizer(rng, cfg.ImputationProbability)

	riskJitter := (SeededFraction(index+1) - 0.5) * 22
	currentRisk := math.Round(clamp(profile.CurrentRisk+riskJitter, 5, 98))
	age := int(clamp(22+SeededFraction(index+7)*68, 18, 90))
	sex := "F"
	if SeededFraction(index+11) > 0.48 {
		sex = "M"
	}

	points := cfg.HistoryPoints()
	p := &Patient{
		id:          strconv.Itoa(stayID),
		bed:         fmt.Sprintf("MIMIC4-ICU-%d", stayID),
		age:         age,
		sex:         sex,
		currentRisk: currentRisk,
		riskHistory: NewSeries[model.RiskPoint](points),
		lastUpdate:  now,
		imputedPct:  synth.Uniform(5, 35),
		synth:       synth,
	}

	for _, pt := range synth.BackfillRisk(currentRisk, profile.Trend, now, points, cfg.SampleInterval) {
		p.riskHistory.Append(pt)
	}
	if last, ok := p.riskHistory.Last(); ok {
		p.currentRisk = last.Risk
	}

	riskBias := profileRiskBias[index%len(profileRiskBias)]
	for idx, tpl := range Templates {
		bias := 1 + float64(idx%3-1)*0.04
		if idx%5 == 0 {
			bias = riskBias
		}
		biased := tpl
		biased.BaseValue = tpl.BaseValue * bias
		f := &Feature{template: biased, readings: NewSeries[model.Reading](points)}
		for _, r := range synth.BackfillReadings(biased, now, points, cfg.SampleInterval) {
			f.readings.Append(r)
		}
		p.features = append(p.features, f)
	}

	p.refresh(cfg, defaults, mdl, now)
	return p
}

func (p *Patient) ID() string {
	return p.id
}

// Tick runs one update cycle: append one sample per window, then rebuild
// every derived field from the windows.
func (p *Patient) Tick(cfg config.MonitorConfig, defaults []model.AlertRule, mdl inference.Model, now time.Time) model.AlertStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.features {
		f.readings.Append(p.synth.Reading(f.template, now))
	}

	lastRisk := 50.0
	if last, ok := p.riskHistory.Last(); ok {
		lastRisk = last.Risk
	}
	next := p.synth.NextRisk(lastRisk)
	if mdl != nil {
		if out := mdl.Predict(p.latestValues()); out.Risk != nil {
			next = math.Round(clamp(*out.Risk, 0, 100))
		}
	}
	p.riskHistory.Append(model.RiskPoint{Timestamp: now, Risk: next})
	p.currentRisk = next
	p.lastUpdate = now
	p.imputedPct = clamp(p.imputedPct+p.synth.Uniform(-5, 5), 2, 55)

	p.refresh(cfg, defaults, mdl, now)
	return p.status
}

// refresh recomputes change, contributions, forecast, out-of-range alerts
// and status from the currently held windows.
func (p *Patient) refresh(cfg config.MonitorConfig, defaults []model.AlertRule, mdl inference.Model, now time.Time) {
	history := p.riskHistory.Points()
	p.change = ChangeSince(history, now.Add(-cfg.ChangeWindow))

	var explained map[string]float64
	if mdl != nil {
		explained = mdl.Explain(p.latestValues()).Contributions
	}

	ranked := make([]rankedFeature, 0, len(p.features))
	outOfRange := make([]string, 0)
	for _, f := range p.features {
		latest, ok := f.readings.Last()
		if !ok {
			f.contribution = 0
			continue
		}
		tpl := f.template
		if c, found := explained[tpl.Key]; found {
			f.contribution = round1(c)
		} else {
			f.contribution = Contribution(latest.Value, tpl.NormalLow, tpl.NormalHigh, cfg.OutOfRangeWeight, cfg.InRangeWeight)
		}
		label := ContributorLabel(tpl.Name, latest.Value, tpl.NormalLow, tpl.NormalHigh)
		ranked = append(ranked, rankedFeature{label: label, contribution: f.contribution})
		if latest.Value < tpl.NormalLow || latest.Value > tpl.NormalHigh {
			outOfRange = append(outOfRange, label)
		}
	}
	p.topContributors = rankContributors(ranked, cfg.TopContributors)
	p.outOfRange = outOfRange

	p.forecast = Forecast(history, cfg.SlopeWindow, cfg.ForecastPoints, cfg.ForecastInterval)
	p.status = Classify(now, p.lastUpdate, p.currentRisk, p.change, history, p.activeRules(defaults), cfg.StaleThreshold)
}

func (p *Patient) activeRules(defaults []model.AlertRule) []model.AlertRule {
	if p.rules != nil {
		return p.rules
	}
	return defaults
}

func (p *Patient) latestValues() map[string]float64 {
	values := make(map[string]float64, len(p.features))
	for _, f := range p.features {
		if latest, ok := f.readings.Last(); ok {
			values[f.template.Key] = latest.Value
		}
	}
	return values
}

// IngestReading appends an externally supplied sample to the matching
// feature window. Derived fields catch up on the next cycle.
func (p *Patient) IngestReading(key string, r model.Reading) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.features {
		if f.template.Key == key {
			f.readings.Append(r)
			if r.Timestamp.After(p.lastUpdate) {
				p.lastUpdate = r.Timestamp
			}
			return nil
		}
	}
	return fmt.Errorf("unknown feature: %s", key)
}

func (p *Patient) IngestRisk(pt model.RiskPoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pt.Risk = clamp(pt.Risk, 0, 100)
	p.riskHistory.Append(pt)
	p.currentRisk = pt.Risk
	if pt.Timestamp.After(p.lastUpdate) {
		p.lastUpdate = pt.Timestamp
	}
}

func (p *Patient) SetRules(rules []model.AlertRule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules = rules
}

func (p *Patient) Rules() ([]model.AlertRule, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rules == nil {
		return nil, false
	}
	out := make([]model.AlertRule, len(p.rules))
	copy(out, p.rules)
	return out, true
}

func (p *Patient) Status() model.AlertStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Snapshot deep-copies the patient for readers, so the presentation layer
// observes a consistent pre- or post-tick state and never a torn one.
func (p *Patient) Snapshot() model.PatientSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	features := make([]model.FeatureSnapshot, 0, len(p.features))
	for _, f := range p.features {
		tpl := f.template
		features = append(features, model.FeatureSnapshot{
			Key:          tpl.Key,
			Name:         tpl.Name,
			Unit:         tpl.Unit,
			NormalRange:  [2]float64{tpl.NormalLow, tpl.NormalHigh},
			Readings:     f.readings.Points(),
			Contribution: f.contribution,
		})
	}
	forecast := make([]model.RiskPoint, len(p.forecast))
	copy(forecast, p.forecast)
	top := make([]string, len(p.topContributors))
	copy(top, p.topContributors)
	oor := make([]string, len(p.outOfRange))
	copy(oor, p.outOfRange)

	return model.PatientSnapshot{
		ICUID:                 p.id,
		BedNumber:             p.bed,
		Age:                   p.age,
		Sex:                   p.sex,
		CurrentRisk:           int(p.currentRisk),
		RiskHistory:           p.riskHistory.Points(),
		PredictedRiskHistory:  forecast,
		ChangeInLast30Min:     int(p.change),
		LastDataUpdate:        p.lastUpdate,
		ImputedDataPercentage: int(p.imputedPct),
		TopContributors:       top,
		AlertStatus:           p.status,
		OutOfRangeAlerts:      oor,
		Features:              features,
	}
}
