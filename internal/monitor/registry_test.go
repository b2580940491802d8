package monitor

import (
	"context"
	"testing"
	"time"

	"icuwatch/internal/audit"
	"icuwatch/internal/config"
	"icuwatch/internal/model"
)

func testRegistry(patients int, mdl *fakeModel) (*Registry, *audit.Store) {
	cfg := config.DefaultConfig()
	cfg.Monitor.HistoryHours = 1
	cfg.Monitor.PatientCount = patients
	auditStore := audit.NewStore(100)
	if mdl == nil {
		reg := NewRegistry(cfg, nil, nil, auditStore, nil)
		reg.Seed(testNow())
		return reg, auditStore
	}
	reg := NewRegistry(cfg, nil, mdl, auditStore, nil)
	reg.Seed(testNow())
	return reg, auditStore
}

func TestRegistrySeedAndList(t *testing.T) {
	reg, _ := testRegistry(5, nil)
	if reg.Count() != 5 {
		t.Fatalf("expected 5 patients, got %d", reg.Count())
	}
	list := reg.List()
	if len(list) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ICUID >= list[i].ICUID {
			t.Fatalf("expected stable id ordering")
		}
	}
}

func TestRegistryGetAndDischarge(t *testing.T) {
	reg, _ := testRegistry(2, nil)
	list := reg.List()
	id := list[0].ICUID
	if _, ok := reg.Get(id); !ok {
		t.Fatalf("expected patient %s", id)
	}
	if !reg.Discharge(id) {
		t.Fatalf("expected discharge to succeed")
	}
	if _, ok := reg.Get(id); ok {
		t.Fatalf("expected patient %s gone after discharge", id)
	}
	if reg.Discharge(id) {
		t.Fatalf("expected second discharge to fail")
	}
	if reg.Count() != 1 {
		t.Fatalf("expected 1 patient left, got %d", reg.Count())
	}
}

func TestRegistryUpdateEmitsTransition(t *testing.T) {
	risk := 100.0
	reg, auditStore := testRegistry(1, &fakeModel{risk: &risk})
	reg.UpdateAll(context.Background(), testNow().Add(4*time.Second))

	list := reg.List()
	if list[0].AlertStatus != model.StatusRapidIncrease {
		t.Fatalf("expected rapid-increase after risk jump, got %s", list[0].AlertStatus)
	}
	events := auditStore.List(0)
	if len(events) == 0 {
		t.Fatalf("expected a transition event")
	}
	last := events[len(events)-1]
	if last.New != model.StatusRapidIncrease {
		t.Fatalf("expected transition to rapid-increase, got %s", last.New)
	}
	if last.PatientID != list[0].ICUID {
		t.Fatalf("expected event for patient %s, got %s", list[0].ICUID, last.PatientID)
	}
	if last.ID == "" {
		t.Fatalf("expected event id")
	}
}

func TestRegistryRepeatedStatusEmitsOnce(t *testing.T) {
	risk := 100.0
	reg, auditStore := testRegistry(1, &fakeModel{risk: &risk})
	now := testNow()
	reg.UpdateAll(context.Background(), now.Add(4*time.Second))
	first := len(auditStore.List(0))
	reg.UpdateAll(context.Background(), now.Add(8*time.Second))
	if got := len(auditStore.List(0)); got != first {
		t.Fatalf("expected no new event while status unchanged, got %d then %d", first, got)
	}
}

func TestRegistryPanicIsolation(t *testing.T) {
	reg, auditStore := testRegistry(3, &fakeModel{panics: true})
	reg.UpdateAll(context.Background(), testNow().Add(4*time.Second))
	if reg.Count() != 3 {
		t.Fatalf("expected all patients to survive a failing batch")
	}
	events := auditStore.List(0)
	skipped := 0
	for _, ev := range events {
		if ev.Note != "" {
			skipped++
		}
	}
	if skipped != 3 {
		t.Fatalf("expected 3 skip records, got %d", skipped)
	}
}

func TestRegistryIngest(t *testing.T) {
	reg, _ := testRegistry(1, nil)
	id := reg.List()[0].ICUID
	ts := testNow().Add(time.Minute)

	if err := reg.Ingest(model.Observation{PatientID: id, Value: 97, Timestamp: ts}); err != nil {
		t.Fatalf("unexpected risk ingest error: %v", err)
	}
	snap, _ := reg.Get(id)
	if snap.CurrentRisk != 97 {
		t.Fatalf("expected ingested risk 97, got %d", snap.CurrentRisk)
	}

	if err := reg.Ingest(model.Observation{PatientID: id, Feature: "hr", Value: 150, Timestamp: ts}); err != nil {
		t.Fatalf("unexpected reading ingest error: %v", err)
	}
	if err := reg.Ingest(model.Observation{PatientID: "missing", Value: 5}); err == nil {
		t.Fatalf("expected error for unknown patient")
	}
	if err := reg.Ingest(model.Observation{PatientID: id, Feature: "nope", Value: 5}); err == nil {
		t.Fatalf("expected error for unknown feature")
	}
}

func TestRegistryRuleOverrides(t *testing.T) {
	reg, _ := testRegistry(1, nil)
	id := reg.List()[0].ICUID

	rules, overridden, err := reg.PatientRules(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overridden {
		t.Fatalf("expected inherited defaults before override")
	}
	if len(rules) == 0 {
		t.Fatalf("expected default rules")
	}

	custom := []model.AlertRule{{ID: "custom", Name: "Custom", RiskThreshold: 70, SustainedDurationMinutes: 15, Enabled: true}}
	if err := reg.SetPatientRules(id, custom); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules, overridden, err = reg.PatientRules(id)
	if err != nil || !overridden {
		t.Fatalf("expected override after set, err=%v", err)
	}
	if rules[0].ID != "custom" {
		t.Fatalf("expected custom rule, got %v", rules)
	}

	bad := []model.AlertRule{{ID: "bad", RiskThreshold: -5, Enabled: true}}
	if err := reg.SetPatientRules(id, bad); err == nil {
		t.Fatalf("expected validation error for negative threshold")
	}
}
