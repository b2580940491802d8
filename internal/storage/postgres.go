package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"icuwatch/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/icuwatch?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transitions (
			id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
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
			updated_at TIMESTAMPTZ NOT NULL,
			rules_json JSONB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) SaveTransition(ctx context.Context, ev model.TransitionEvent) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (id, ts, patient_id, previous_status, new_status, risk_at_trigger, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
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

func (s *postgresStore) SaveRules(ctx context.Context, patientID string, rules []model.AlertRule) error {
	if s.db == nil || patientID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patient_rules (patient_id, updated_at, rules_json)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id) DO UPDATE SET updated_at = EXCLUDED.updated_at, rules_json = EXCLUDED.rules_json`,
		patientID,
		nowUTC(),
		encodeJSON(rules),
	)
	return err
}

func (s *postgresStore) LoadRules(ctx context.Context) (map[string][]model.AlertRule, error) {
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
