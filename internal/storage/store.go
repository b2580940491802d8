package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"icuwatch/internal/config"
	"icuwatch/internal/model"
)

type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveTransition(ctx context.Context, ev model.TransitionEvent) error
	SaveRules(ctx context.Context, patientID string, rules []model.AlertRule) error
	LoadRules(ctx context.Context) (map[string][]model.AlertRule, error)
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func encodeJSON(value any) string {
	data, _ := json.Marshal(value)
	return string(data)
}

func decodeRules(data string) ([]model.AlertRule, error) {
	var rules []model.AlertRule
	if err := json.Unmarshal([]byte(data), &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
