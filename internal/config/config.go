package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"icuwatch/internal/model"
)

type Config struct {
	LogLevel string            `json:"log_level" yaml:"log_level"`
	LogFile  string            `json:"log_file" yaml:"log_file"`
	Monitor  MonitorConfig     `json:"monitor" yaml:"monitor"`
	Rules    []model.AlertRule `json:"rules" yaml:"rules"`
	Ingest   IngestConfig      `json:"ingest" yaml:"ingest"`
	API      APIConfig         `json:"api" yaml:"api"`
	Storage  StorageConfig     `json:"storage" yaml:"storage"`
	Audit    AuditConfig       `json:"audit" yaml:"audit"`
}

type MonitorConfig struct {
	PatientCount          int           `json:"patient_count" yaml:"patient_count"`
	Seed                  uint64        `json:"seed" yaml:"seed"`
	SampleInterval        time.Duration `json:"sample_interval" yaml:"sample_interval"`
	HistoryHours          int           `json:"history_hours" yaml:"history_hours"`
	UpdateInterval        time.Duration `json:"update_interval" yaml:"update_interval"`
	StaleThreshold        time.Duration `json:"stale_threshold" yaml:"stale_threshold"`
	ChangeWindow          time.Duration `json:"change_window" yaml:"change_window"`
	ForecastPoints        int           `json:"forecast_points" yaml:"forecast_points"`
	ForecastInterval      time.Duration `json:"forecast_interval" yaml:"forecast_interval"`
	SlopeWindow           int           `json:"slope_window" yaml:"slope_window"`
	TopContributors       int           `json:"top_contributors" yaml:"top_contributors"`
	OutOfRangeWeight      float64       `json:"out_of_range_weight" yaml:"out_of_range_weight"`
	InRangeWeight         float64       `json:"in_range_weight" yaml:"in_range_weight"`
	ImputationProbability float64       `json:"imputation_probability" yaml:"imputation_probability"`
	UpdateWorkers         int           `json:"update_workers" yaml:"update_workers"`
}

func (m MonitorConfig) HistoryPoints() int {
	perHour := int(time.Hour / m.SampleInterval)
	return m.HistoryHours*perHour + 1
}

type IngestConfig struct {
	ChannelBuffer int         `json:"channel_buffer" yaml:"channel_buffer"`
	Kafka         KafkaConfig `json:"kafka" yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

type APIConfig struct {
	Enabled    bool          `json:"enabled" yaml:"enabled"`
	Addr       string        `json:"addr" yaml:"addr"`
	RateLimit  int           `json:"rate_limit" yaml:"rate_limit"`
	RateWindow time.Duration `json:"rate_window" yaml:"rate_window"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type AuditConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Monitor: MonitorConfig{
			PatientCount:          26,
			Seed:                  1,
			SampleInterval:        5 * time.Minute,
			HistoryHours:          6,
			UpdateInterval:        4 * time.Second,
			StaleThreshold:        20 * time.Minute,
			ChangeWindow:          30 * time.Minute,
			ForecastPoints:        6,
			ForecastInterval:      5 * time.Minute,
			SlopeWindow:           6,
			TopContributors:       3,
			OutOfRangeWeight:      28,
			InRangeWeight:         6,
			ImputationProbability: 0.12,
			UpdateWorkers:         4,
		},
		Rules: DefaultRules(),
		Ingest: IngestConfig{
			ChannelBuffer: 10000,
			Kafka:         KafkaConfig{Enabled: false},
		},
		API:     APIConfig{Enabled: true, Addr: ":8080", RateLimit: 120, RateWindow: time.Minute},
		Storage: StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:icuwatch.db?_pragma=busy_timeout(5000)"},
		Audit:   AuditConfig{StoreLimit: 1000},
	}
}

func DefaultRules() []model.AlertRule {
	return []model.AlertRule{
		{
			ID:                    "rapid-deterioration",
			Name:                  "Rapid deterioration",
			RiskThreshold:         50,
			RateOfChangeThreshold: 10,
			Enabled:               true,
		},
		{
			ID:                       "sustained-critical",
			Name:                     "Sustained critical risk",
			RiskThreshold:            80,
			SustainedDurationMinutes: 30,
			Enabled:                  true,
		},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Monitor.PatientCount <= 0 {
		cfg.Monitor.PatientCount = def.Monitor.PatientCount
	}
	if cfg.Monitor.SampleInterval <= 0 {
		cfg.Monitor.SampleInterval = def.Monitor.SampleInterval
	}
	if cfg.Monitor.HistoryHours <= 0 {
		cfg.Monitor.HistoryHours = def.Monitor.HistoryHours
	}
	if cfg.Monitor.UpdateInterval <= 0 {
		cfg.Monitor.UpdateInterval = def.Monitor.UpdateInterval
	}
	if cfg.Monitor.StaleThreshold <= 0 {
		cfg.Monitor.StaleThreshold = def.Monitor.StaleThreshold
	}
	if cfg.Monitor.ChangeWindow <= 0 {
		cfg.Monitor.ChangeWindow = def.Monitor.ChangeWindow
	}
	if cfg.Monitor.ForecastInterval <= 0 {
		cfg.Monitor.ForecastInterval = def.Monitor.ForecastInterval
	}
	if cfg.Monitor.SlopeWindow <= 0 {
		cfg.Monitor.SlopeWindow = def.Monitor.SlopeWindow
	}
	if cfg.Monitor.TopContributors <= 0 {
		cfg.Monitor.TopContributors = def.Monitor.TopContributors
	}
	if cfg.Monitor.OutOfRangeWeight <= 0 {
		cfg.Monitor.OutOfRangeWeight = def.Monitor.OutOfRangeWeight
	}
	if cfg.Monitor.InRangeWeight <= 0 {
		cfg.Monitor.InRangeWeight = def.Monitor.InRangeWeight
	}
	if cfg.Monitor.UpdateWorkers <= 0 {
		cfg.Monitor.UpdateWorkers = def.Monitor.UpdateWorkers
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	if cfg.Ingest.ChannelBuffer <= 0 {
		cfg.Ingest.ChannelBuffer = def.Ingest.ChannelBuffer
	}
	if cfg.Audit.StoreLimit <= 0 {
		cfg.Audit.StoreLimit = def.Audit.StoreLimit
	}
}

func Validate(cfg *Config) error {
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			return errors.New("ingest.kafka requires brokers, topic, group_id")
		}
	}
	if cfg.Monitor.ForecastPoints < 0 {
		return errors.New("monitor.forecast_points must be >= 0")
	}
	if p := cfg.Monitor.ImputationProbability; p < 0 || p > 1 {
		return fmt.Errorf("monitor.imputation_probability out of range: %v", p)
	}
	if cfg.Monitor.SampleInterval <= 0 {
		return errors.New("monitor.sample_interval must be > 0")
	}
	if time.Hour%cfg.Monitor.SampleInterval != 0 {
		return fmt.Errorf("monitor.sample_interval must divide one hour: %s", cfg.Monitor.SampleInterval)
	}
	return ValidateRules(cfg.Rules)
}

func ValidateRules(rules []model.AlertRule) error {
	for _, r := range rules {
		if r.ID == "" {
			return errors.New("rule id is required")
		}
		if r.RiskThreshold < 0 || r.RiskThreshold > 100 {
			return fmt.Errorf("rule %q: risk_threshold out of range: %v", r.ID, r.RiskThreshold)
		}
		if r.SustainedDurationMinutes < 0 {
			return fmt.Errorf("rule %q: sustained_duration_minutes must be >= 0", r.ID)
		}
		if r.RateOfChangeThreshold < 0 {
			return fmt.Errorf("rule %q: rate_of_change_threshold must be >= 0", r.ID)
		}
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	if m.path != "" {
		if err := Save(m.path, cfg); err != nil {
			return err
		}
		if info, err := os.Stat(m.path); err == nil {
			m.modTime = info.ModTime()
		}
	}
	m.cfg.Store(cfg)
	return nil
}

func (m *Manager) NeedsReload() (bool, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
