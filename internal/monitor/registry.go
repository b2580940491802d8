package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"icuwatch/internal/audit"
	"icuwatch/internal/config"
	"icuwatch/internal/inference"
	"icuwatch/internal/model"
	"icuwatch/internal/storage"
)

// Registry owns the monitored patient population: admit, discharge, batch
// update, snapshot reads, and rule overrides. It also diffs each patient's
// computed status against the previously observed one and hands transition
// events to the audit sink, keeping the classifier itself memoryless.
type Registry struct {
	logger *slog.Logger
	mdl    inference.Model
	audit  *audit.Store
	store  storage.Store
	cfg    atomic.Value

	mu         sync.RWMutex
	patients   map[string]*Patient
	lastStatus map[string]model.AlertStatus
}

func NewRegistry(cfg *config.Config, logger *slog.Logger, mdl inference.Model, auditStore *audit.Store, store storage.Store) *Registry {
	r := &Registry{
		logger:     logger,
		mdl:        mdl,
		audit:      auditStore,
		store:      store,
		patients:   make(map[string]*Patient),
		lastStatus: make(map[string]model.AlertStatus),
	}
	r.cfg.Store(cfg)
	return r
}

func (r *Registry) UpdateConfig(cfg *config.Config) {
	r.cfg.Store(cfg)
}

func (r *Registry) config() *config.Config {
	if v := r.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

// Seed admits the configured number of synthetic patients with fully
// backfilled histories.
func (r *Registry) Seed(now time.Time) {
	cfg := r.config()
	for i := 0; i < cfg.Monitor.PatientCount; i++ {
		r.Admit(NewPatient(i, cfg.Monitor, cfg.Rules, r.mdl, now))
	}
	if r.logger != nil {
		r.logger.Info("patient registry seeded", "count", cfg.Monitor.PatientCount)
	}
}

func (r *Registry) Admit(p *Patient) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID()] = p
	r.lastStatus[p.ID()] = p.Status()
}

func (r *Registry) Discharge(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return false
	}
	delete(r.patients, id)
	delete(r.lastStatus, id)
	return true
}

func (r *Registry) Get(id string) (model.PatientSnapshot, bool) {
	r.mu.RLock()
	p, ok := r.patients[id]
	r.mu.RUnlock()
	if !ok {
		return model.PatientSnapshot{}, false
	}
	return p.Snapshot(), true
}

func (r *Registry) List() []model.PatientSnapshot {
	r.mu.RLock()
	list := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		list = append(list, p)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	out := make([]model.PatientSnapshot, 0, len(list))
	for _, p := range list {
		out = append(out, p.Snapshot())
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients)
}

// Ingest routes an externally supplied observation to its patient. An
// observation with an empty feature key is a risk score.
func (r *Registry) Ingest(obs model.Observation) error {
	r.mu.RLock()
	p, ok := r.patients[obs.PatientID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown patient: %s", obs.PatientID)
	}
	ts := obs.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if obs.Feature == "" {
		p.IngestRisk(model.RiskPoint{Timestamp: ts, Risk: obs.Value})
		return nil
	}
	return p.IngestReading(obs.Feature, model.Reading{
		Timestamp: ts,
		Value:     obs.Value,
		IsImputed: obs.Imputed,
	})
}

func (r *Registry) SetPatientRules(id string, rules []model.AlertRule) error {
	if err := config.ValidateRules(rules); err != nil {
		return err
	}
	r.mu.RLock()
	p, ok := r.patients[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown patient: %s", id)
	}
	p.SetRules(rules)
	if r.store != nil {
		if err := r.store.SaveRules(context.Background(), id, rules); err != nil && r.logger != nil {
			r.logger.Warn("persist rules failed", "patient", id, "err", err)
		}
	}
	return nil
}

func (r *Registry) PatientRules(id string) ([]model.AlertRule, bool, error) {
	r.mu.RLock()
	p, ok := r.patients[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false, fmt.Errorf("unknown patient: %s", id)
	}
	if rules, overridden := p.Rules(); overridden {
		return rules, true, nil
	}
	return r.config().Rules, false, nil
}

// RestoreRules reapplies persisted per-patient rule overrides, typically
// at startup.
func (r *Registry) RestoreRules(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	saved, err := r.store.LoadRules(ctx)
	if err != nil {
		return err
	}
	for id, rules := range saved {
		if config.ValidateRules(rules) != nil {
			continue
		}
		r.mu.RLock()
		p, ok := r.patients[id]
		r.mu.RUnlock()
		if ok {
			p.SetRules(rules)
		}
	}
	return nil
}

// UpdateAll runs one update cycle for every patient. Patients are
// independent, so the batch fans out over a small worker pool; a failure in
// one patient is recorded and skipped, never aborting the batch.
func (r *Registry) UpdateAll(ctx context.Context, now time.Time) {
	cfg := r.config()

	r.mu.RLock()
	batch := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		batch = append(batch, p)
	}
	r.mu.RUnlock()
	if len(batch) == 0 {
		return
	}

	workers := cfg.Monitor.UpdateWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	work := make(chan *Patient, len(batch))
	for _, p := range batch {
		work <- p
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for p := range work {
				if ctx.Err() != nil {
					return
				}
				r.updateOne(cfg, p, now)
			}
		}()
	}
	wg.Wait()
}

func (r *Registry) updateOne(cfg *config.Config, p *Patient, now time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.logger != nil {
				r.logger.Error("patient update failed", "patient", p.ID(), "err", rec)
			}
			if r.audit != nil {
				r.audit.Record(model.TransitionEvent{
					ID:        uuid.NewString(),
					PatientID: p.ID(),
					Previous:  p.Status(),
					New:       p.Status(),
					Timestamp: now,
					Note:      fmt.Sprintf("update skipped: %v", rec),
				})
			}
		}
	}()

	status := p.Tick(cfg.Monitor, cfg.Rules, r.mdl, now)
	r.recordTransition(p, status, now)
}

func (r *Registry) recordTransition(p *Patient, status model.AlertStatus, now time.Time) {
	r.mu.Lock()
	previous, seen := r.lastStatus[p.ID()]
	r.lastStatus[p.ID()] = status
	r.mu.Unlock()

	if !seen || previous == status || status == model.StatusNormal {
		return
	}
	snap := p.Snapshot()
	ev := model.TransitionEvent{
		ID:            uuid.NewString(),
		PatientID:     p.ID(),
		Previous:      previous,
		New:           status,
		RiskAtTrigger: snap.CurrentRisk,
		Timestamp:     now,
	}
	if r.audit != nil {
		r.audit.Record(ev)
	}
	if r.logger != nil {
		r.logger.Warn("alert status transition",
			"patient", ev.PatientID,
			"previous", ev.Previous,
			"new", ev.New,
			"risk", ev.RiskAtTrigger,
		)
	}
	if r.store != nil {
		_ = r.store.SaveTransition(context.Background(), ev)
	}
}
