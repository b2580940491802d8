package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"icuwatch/internal/model"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestHistoryPoints(t *testing.T) {
	cfg := DefaultConfig().Monitor
	if got := cfg.HistoryPoints(); got != 73 {
		t.Fatalf("expected 73 history points for 6h at 5m, got %d", got)
	}
	cfg.HistoryHours = 1
	if got := cfg.HistoryPoints(); got != 13 {
		t.Fatalf("expected 13 history points for 1h at 5m, got %d", got)
	}
}

func TestValidateRejectsBadRules(t *testing.T) {
	cases := []model.AlertRule{
		{ID: "", RiskThreshold: 50, Enabled: true},
		{ID: "neg", RiskThreshold: -1, Enabled: true},
		{ID: "big", RiskThreshold: 101, Enabled: true},
		{ID: "sus", RiskThreshold: 50, SustainedDurationMinutes: -10, Enabled: true},
		{ID: "roc", RiskThreshold: 50, RateOfChangeThreshold: -3, Enabled: true},
	}
	for _, rule := range cases {
		if err := ValidateRules([]model.AlertRule{rule}); err == nil {
			t.Fatalf("expected validation error for rule %+v", rule)
		}
	}
}

func TestValidateZeroDimensionsAllowed(t *testing.T) {
	rule := model.AlertRule{ID: "ok", Name: "Ok", RiskThreshold: 50, Enabled: true}
	if err := ValidateRules([]model.AlertRule{rule}); err != nil {
		t.Fatalf("zero-valued dimensions should be allowed: %v", err)
	}
}

func TestValidateRejectsOddSampleInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Monitor.SampleInterval = 7 * time.Minute
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for interval that does not divide an hour")
	}
}

func TestValidateKafkaRequiresBrokers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ingest.Kafka.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for kafka without brokers")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
monitor:
  patient_count: 4
rules:
  - id: test-rule
    name: Test rule
    risk_threshold: 60
    sustained_duration_minutes: 15
    enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.Monitor.PatientCount != 4 {
		t.Fatalf("expected 4 patients, got %d", cfg.Monitor.PatientCount)
	}
	if cfg.Monitor.SampleInterval != 5*time.Minute {
		t.Fatalf("expected default sample interval, got %v", cfg.Monitor.SampleInterval)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].ID != "test-rule" {
		t.Fatalf("expected configured rule set, got %v", cfg.Rules)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"log_level": "warn", "monitor": {"patient_count": 2}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != "warn" || cfg.Monitor.PatientCount != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsMalformedRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rules:
  - id: bad
    risk_threshold: -10
    enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected load to reject negative threshold")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty config")
	}
}

func TestManagerReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.Get().LogLevel != "info" {
		t.Fatalf("expected info, got %s", m.Get().LogLevel)
	}
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if _, err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.Get().LogLevel != "debug" {
		t.Fatalf("expected debug after reload, got %s", m.Get().LogLevel)
	}
}
