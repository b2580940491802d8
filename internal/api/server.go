package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"icuwatch/internal/audit"
	"icuwatch/internal/config"
	"icuwatch/internal/inference"
	"icuwatch/internal/model"
	"icuwatch/internal/monitor"
)

type Server struct {
	cfg      *config.Manager
	registry *monitor.Registry
	audit    *audit.Store
	mdl      inference.Model
	logger   *slog.Logger
	version  string
}

type statusResponse struct {
	Status       string   `json:"status"`
	Time         string   `json:"time"`
	Version      string   `json:"version"`
	ConfigPath   string   `json:"config_path"`
	Model        string   `json:"model"`
	PatientCount int      `json:"patient_count"`
	UpdateEvery  string   `json:"update_every"`
	Rules        []string `json:"rules"`
}

type rulesResponse struct {
	PatientID  string            `json:"patient_id"`
	Overridden bool              `json:"overridden"`
	Rules      []model.AlertRule `json:"rules"`
}

func Start(ctx context.Context, cfg *config.Manager, registry *monitor.Registry, auditStore *audit.Store, mdl inference.Model, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:      cfg,
		registry: registry,
		audit:    auditStore,
		mdl:      mdl,
		logger:   logger,
		version:  version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/patients", server.handlePatients)
	mux.HandleFunc("/api/patients/", server.handlePatient)
	mux.HandleFunc("/api/status", server.handleStatus)
	mux.HandleFunc("/api/feature-order", server.handleFeatureOrder)
	mux.HandleFunc("/api/transitions", server.handleTransitions)

	var handler http.Handler = mux
	if current.RateLimit > 0 {
		window := current.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		handler = rateLimitMiddleware(current.RateLimit, window)(handler)
	}
	handler = timingMiddleware(handler)

	httpServer := &http.Server{Addr: current.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handlePatient(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/patients/")
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/rules"); ok {
		s.handlePatientRules(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		snap, ok := s.registry.Get(rest)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	case http.MethodDelete:
		if !s.registry.Discharge(rest) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		if s.logger != nil {
			s.logger.Info("patient discharged", "patient", rest)
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePatientRules(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		rules, overridden, err := s.registry.PatientRules(id)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{PatientID: id, Overridden: overridden, Rules: rules})
	case http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var rules []model.AlertRule
		if err := json.Unmarshal(body, &rules); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := s.registry.SetPatientRules(id, rules); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{PatientID: id, Overridden: true, Rules: rules})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg.Get()
	ruleNames := make([]string, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		ruleNames = append(ruleNames, rule.Name)
	}
	modelStatus := "none"
	if s.mdl != nil {
		modelStatus = s.mdl.Status()
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:       "ok",
		Time:         time.Now().UTC().Format(time.RFC3339Nano),
		Version:      s.version,
		ConfigPath:   s.cfg.Path(),
		Model:        modelStatus,
		PatientCount: s.registry.Count(),
		UpdateEvery:  cfg.Monitor.UpdateInterval.String(),
		Rules:        ruleNames,
	})
}

func (s *Server) handleFeatureOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, monitor.FeatureOrder())
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if since := r.URL.Query().Get("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid since"})
			return
		}
		writeJSON(w, http.StatusOK, s.audit.Since(ts))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	writeJSON(w, http.StatusOK, s.audit.List(limit))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
