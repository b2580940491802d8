package monitor

import "icuwatch/internal/model"

// Demonstration catalog of monitored vitals and labs. Ranges and variances
// are plausible-looking demo parameters, not validated clinical constants.

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

var Templates = []model.FeatureTemplate{
	{Key: "pco2", Name: "pCO2 (Blood Gas)", Unit: "mmHg", NormalLow: 35, NormalHigh: 45, BaseValue: 42, Variance: 8, Min: fptr(20), Max: fptr(70), RoundDigits: iptr(1)},
	{Key: "po2", Name: "pO2 (Blood Gas)", Unit: "mmHg", NormalLow: 80, NormalHigh: 100, BaseValue: 92, Variance: 20, Min: fptr(50), Max: fptr(140), RoundDigits: iptr(1)},
	{Key: "alt", Name: "ALT", Unit: "U/L", NormalLow: 7, NormalHigh: 56, BaseValue: 38, Variance: 30, Min: fptr(5), Max: fptr(200), RoundDigits: iptr(0)},
	{Key: "albumin", Name: "Albumin", Unit: "g/dL", NormalLow: 3.5, NormalHigh: 5.0, BaseValue: 3.2, Variance: 0.8, Min: fptr(1.8), Max: fptr(5.5), RoundDigits: iptr(2)},
	{Key: "alp", Name: "Alkaline Phosphatase", Unit: "U/L", NormalLow: 44, NormalHigh: 147, BaseValue: 110, Variance: 60, Min: fptr(30), Max: fptr(300), RoundDigits: iptr(0)},
	{Key: "ast", Name: "AST", Unit: "U/L", NormalLow: 10, NormalHigh: 40, BaseValue: 46, Variance: 30, Min: fptr(5), Max: fptr(200), RoundDigits: iptr(0)},
	{Key: "bicarb", Name: "Bicarbonate", Unit: "mEq/L", NormalLow: 22, NormalHigh: 29, BaseValue: 24, Variance: 6, Min: fptr(12), Max: fptr(36), RoundDigits: iptr(1)},
	{Key: "bili", Name: "Bilirubin, Total", Unit: "mg/dL", NormalLow: 0.1, NormalHigh: 1.2, BaseValue: 1.1, Variance: 1.0, Min: fptr(0), Max: fptr(5), RoundDigits: iptr(2)},
	{Key: "calcium", Name: "Calcium", Unit: "mg/dL", NormalLow: 8.6, NormalHigh: 10.2, BaseValue: 9.1, Variance: 1.2, Min: fptr(6.5), Max: fptr(12), RoundDigits: iptr(2)},
	{Key: "chloride", Name: "Chloride", Unit: "mEq/L", NormalLow: 98, NormalHigh: 106, BaseValue: 102, Variance: 6, Min: fptr(85), Max: fptr(120), RoundDigits: iptr(0)},
	{Key: "creatinine", Name: "Creatinine", Unit: "mg/dL", NormalLow: 0.6, NormalHigh: 1.3, BaseValue: 1.4, Variance: 0.6, Min: fptr(0.3), Max: fptr(4), RoundDigits: iptr(2)},
	{Key: "glucose", Name: "Glucose", Unit: "mg/dL", NormalLow: 70, NormalHigh: 140, BaseValue: 130, Variance: 50, Min: fptr(50), Max: fptr(300), RoundDigits: iptr(0)},
	{Key: "potassium", Name: "Potassium", Unit: "mEq/L", NormalLow: 3.5, NormalHigh: 5.1, BaseValue: 4.4, Variance: 1.1, Min: fptr(2.5), Max: fptr(6.5), RoundDigits: iptr(2)},
	{Key: "protein", Name: "Protein, Total", Unit: "g/dL", NormalLow: 6.0, NormalHigh: 8.3, BaseValue: 6.6, Variance: 1.2, Min: fptr(4.0), Max: fptr(9.5), RoundDigits: iptr(2)},
	{Key: "sodium", Name: "Sodium", Unit: "mEq/L", NormalLow: 135, NormalHigh: 145, BaseValue: 138, Variance: 8, Min: fptr(120), Max: fptr(160), RoundDigits: iptr(0)},
	{Key: "bun", Name: "Urea Nitrogen (BUN)", Unit: "mg/dL", NormalLow: 7, NormalHigh: 20, BaseValue: 24, Variance: 12, Min: fptr(3), Max: fptr(60), RoundDigits: iptr(0)},
	{Key: "hematocrit", Name: "Hematocrit", Unit: "%", NormalLow: 36, NormalHigh: 50, BaseValue: 38, Variance: 10, Min: fptr(20), Max: fptr(60), RoundDigits: iptr(1)},
	{Key: "hemoglobin", Name: "Hemoglobin", Unit: "g/dL", NormalLow: 12, NormalHigh: 17, BaseValue: 12.5, Variance: 3, Min: fptr(7), Max: fptr(20), RoundDigits: iptr(1)},
	{Key: "inr", Name: "INR (PT)", Unit: "", NormalLow: 0.8, NormalHigh: 1.2, BaseValue: 1.3, Variance: 0.6, Min: fptr(0.6), Max: fptr(4), RoundDigits: iptr(2)},
	{Key: "platelet", Name: "Platelet Count", Unit: "x10^9/L", NormalLow: 150, NormalHigh: 400, BaseValue: 170, Variance: 90, Min: fptr(30), Max: fptr(600), RoundDigits: iptr(0)},
	{Key: "rbc", Name: "Red Blood Cells (RBC)", Unit: "x10^12/L", NormalLow: 4.2, NormalHigh: 5.9, BaseValue: 4.6, Variance: 1.0, Min: fptr(2.5), Max: fptr(7), RoundDigits: iptr(2)},
	{Key: "wbc", Name: "WBC Count", Unit: "x10^9/L", NormalLow: 4, NormalHigh: 11, BaseValue: 12, Variance: 6, Min: fptr(1), Max: fptr(30), RoundDigits: iptr(1)},
	{Key: "hr", Name: "Heart rate", Unit: "/min", NormalLow: 60, NormalHigh: 100, BaseValue: 96, Variance: 20, Min: fptr(40), Max: fptr(160), RoundDigits: iptr(0)},
	{Key: "sbp", Name: "SBP", Unit: "mmHg", NormalLow: 90, NormalHigh: 120, BaseValue: 102, Variance: 20, Min: fptr(70), Max: fptr(180), RoundDigits: iptr(0)},
	{Key: "dbp", Name: "DBP", Unit: "mmHg", NormalLow: 60, NormalHigh: 80, BaseValue: 66, Variance: 14, Min: fptr(40), Max: fptr(110), RoundDigits: iptr(0)},
	{Key: "rr", Name: "Respiratory rate", Unit: "/min", NormalLow: 12, NormalHigh: 20, BaseValue: 20, Variance: 8, Min: fptr(8), Max: fptr(40), RoundDigits: iptr(0)},
	{Key: "spo2", Name: "SpO2", Unit: "%", NormalLow: 95, NormalHigh: 100, BaseValue: 95, Variance: 6, Min: fptr(80), Max: fptr(100), RoundDigits: iptr(0)},
	{Key: "gcs_eye", Name: "GCS – eye", Unit: "score", NormalLow: 3, NormalHigh: 4, BaseValue: 3.6, Variance: 1, Min: fptr(1), Max: fptr(4), RoundDigits: iptr(0), Discrete: true},
	{Key: "temp", Name: "Body temperature", Unit: "C", NormalLow: 36.5, NormalHigh: 37.5, BaseValue: 37.2, Variance: 1.2, Min: fptr(35), Max: fptr(40), RoundDigits: iptr(1)},
	{Key: "fio2", Name: "Inspired O2 fraction (FiO2)", Unit: "fraction", NormalLow: 0.21, NormalHigh: 0.6, BaseValue: 0.35, Variance: 0.25, Min: fptr(0.21), Max: fptr(1.0), RoundDigits: iptr(2)},
	{Key: "gcs_verbal", Name: "GCS – verbal", Unit: "score", NormalLow: 4, NormalHigh: 5, BaseValue: 4.3, Variance: 1, Min: fptr(1), Max: fptr(5), RoundDigits: iptr(0), Discrete: true},
	{Key: "gcs_motor", Name: "GCS – motor", Unit: "score", NormalLow: 5, NormalHigh: 6, BaseValue: 5.4, Variance: 1, Min: fptr(1), Max: fptr(6), RoundDigits: iptr(0), Discrete: true},
	{Key: "delta_vital_hr", Name: "delta_vital_hr", Unit: "hr", NormalLow: 0, NormalHigh: 4, BaseValue: 1.4, Variance: 2.5, Min: fptr(0), Max: fptr(12), RoundDigits: iptr(1)},
	{Key: "delta_lab_hr", Name: "delta_lab_hr", Unit: "hr", NormalLow: 0, NormalHigh: 12, BaseValue: 4.5, Variance: 6, Min: fptr(0), Max: fptr(24), RoundDigits: iptr(1)},
}

// AdmissionProfile shapes a synthetic patient's starting risk level and
// trajectory. The classifier derives status from the resulting history, so
// profiles carry no status of their own.
type AdmissionProfile struct {
	CurrentRisk float64
	Trend       Trend
}

var Profiles = []AdmissionProfile{
	{CurrentRisk: 78, Trend: TrendIncreasing},
	{CurrentRisk: 45, Trend: TrendStable},
	{CurrentRisk: 92, Trend: TrendStable},
	{CurrentRisk: 28, Trend: TrendDecreasing},
	{CurrentRisk: 65, Trend: TrendStable},
	{CurrentRisk: 55, Trend: TrendIncreasing},
}

var profileRiskBias = []float64{1.15, 1.0, 1.25, 0.95, 1.1, 1.05}

func FeatureOrder() []string {
	out := make([]string, 0, len(Templates))
	for _, tpl := range Templates {
		out = append(out, tpl.Key)
	}
	return out
}
