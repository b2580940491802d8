package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"icuwatch/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:icuwatch.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transitions (
			id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
			patient_id TEXT NOT NULL,
			previous_status TEXT NOT NULL,
			new_status TEXT NOT NULL,
			risk_at_trigger INTEGER NOT NULL,
			note TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_ts ON transitions(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_patient ON transitions(patient_id)`,
		`CREATE TABLE IF NOT EXISTS patient_rules (
			patient_id TEXT PRIMARY KEY,
			updated_at TEXT NOT NULL,
			rules_json TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) SaveTransition(ctx context.Context, ev model.TransitionEvent) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (id, ts, patient_id, previous_status, new_status, risk_at_trigger, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.Timestamp.UTC(),
		ev.PatientID,
		string(ev.Previous),
		string(ev.New),
		ev.RiskAtTrigger,
		ev.Note,
	)
	return err
}

func (s *sqliteStore) SaveRules(ctx context.Context, patientID string, rules []model.AlertRule) error {
	if s.db == nil || patientID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patient_rules (patient_id, updated_at, rules_json)
		VALUES (?, ?, ?)
		ON CONFLICT(patient_id) DO UPDATE SET updated_at = excluded.updated_at, rules_json = excluded.rules_json`,
		patientID,
		nowUTC(),
		encodeJSON(rules),
	)
	return err
}

func (s *sqliteStore) LoadRules(ctx context.Context) (map[string][]model.AlertRule, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT patient_id, rules_json FROM patient_rules`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]model.AlertRule)
	for rows.Next() {
		var patientID, rulesJSON string
		if err := rows.Scan(&patientID, &rulesJSON); err != nil {
			return nil, err
		}
		rules, err := decodeRules(rulesJSON)
		if err != nil {
			continue
		}
		out[patientID] = rules
	}
	return out, rows.Err()
}
