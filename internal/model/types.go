package model

import "time"

type AlertStatus string

const (
	StatusNormal        AlertStatus = "normal"
	StatusRapidIncrease AlertStatus = "rapid-increase"
	StatusSustainedHigh AlertStatus = "sustained-high"
	StatusStaleData     AlertStatus = "stale-data"
)

type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	IsImputed bool      `json:"isImputed"`
}

type RiskPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Risk      float64   `json:"risk"`
}

type FeatureTemplate struct {
	Key                   string
	Name                  string
	Unit                  string
	NormalLow             float64
	NormalHigh            float64
	BaseValue             float64
	Variance              float64
	Min                   *float64
	Max                   *float64
	RoundDigits           *int
	Discrete              bool
	ImputationProbability float64
}

type FeatureSnapshot struct {
	Key          string     `json:"key"`
	Name         string     `json:"name"`
	Unit         string     `json:"unit"`
	NormalRange  [2]float64 `json:"normalRange"`
	Readings     []Reading  `json:"readings"`
	Contribution float64    `json:"contribution"`
}

type AlertRule struct {
	ID                       string  `json:"id" yaml:"id"`
	Name                     string  `json:"name" yaml:"name"`
	RiskThreshold            float64 `json:"risk_threshold" yaml:"risk_threshold"`
	SustainedDurationMinutes int     `json:"sustained_duration_minutes" yaml:"sustained_duration_minutes"`
	RateOfChangeThreshold    float64 `json:"rate_of_change_threshold" yaml:"rate_of_change_threshold"`
	Enabled                  bool    `json:"enabled" yaml:"enabled"`
}

type PatientSnapshot struct {
	ICUID                 string            `json:"icuId"`
	BedNumber             string            `json:"bedNumber"`
	Age                   int               `json:"age"`
	Sex                   string            `json:"sex"`
	CurrentRisk           int               `json:"currentRisk"`
	RiskHistory           []RiskPoint       `json:"riskHistory"`
	PredictedRiskHistory  []RiskPoint       `json:"predictedRiskHistory"`
	ChangeInLast30Min     int               `json:"changeInLast30Min"`
	LastDataUpdate        time.Time         `json:"lastDataUpdate"`
	ImputedDataPercentage int               `json:"imputedDataPercentage"`
	TopContributors       []string          `json:"topContributors"`
	AlertStatus           AlertStatus       `json:"alertStatus"`
	OutOfRangeAlerts      []string          `json:"outOfRangeAlerts"`
	Features              []FeatureSnapshot `json:"features"`
}

type Observation struct {
	PatientID string    `json:"patient_id"`
	Feature   string    `json:"feature,omitempty"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Imputed   bool      `json:"imputed,omitempty"`
	Source    string    `json:"source,omitempty"`
}

type TransitionEvent struct {
	ID            string      `json:"id"`
	PatientID     string      `json:"patient_id"`
	Previous      AlertStatus `json:"previous"`
	New           AlertStatus `json:"new"`
	RiskAtTrigger int         `json:"risk_at_trigger"`
	Timestamp     time.Time   `json:"timestamp"`
	Note          string      `json:"note,omitempty"`
}
