package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ultiview/printwatch/internal/config"
	"github.com/ultiview/printwatch/internal/printer"
)

const defaultPageSize = 100

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	s.writeJSON(w, http.StatusOK, s.groups.RecentEntries(limit))
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.alerts.Active())
}

func (s *Server) handleAlertHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize)
	s.writeJSON(w, http.StatusOK, s.alerts.History(limit))
}

func (s *Server) handleAlertResolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	alert := s.alerts.Resolve(id)
	if alert == nil {
		s.writeJSON(w, http.StatusNotFound, statusResponse{Status: "error", Message: "alert not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.groups.Stats())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.writeJSON(w, http.StatusOK, map[string]string{"printer_address": s.cfg.Printer.Address})
}

type configUpdate struct {
	PrinterAddress *string `json:"printer_address"`
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var update configUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid JSON body"})
		return
	}
	if update.PrinterAddress == nil {
		s.writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid configuration"})
		return
	}

	s.mu.Lock()
	s.cfg.Printer.Address = *update.PrinterAddress
	cfg := *s.cfg
	path := s.configPath
	s.mu.Unlock()

	// Swapping through the shared reference repoints the poller too.
	s.client.Set(printer.NewClient(printer.Options{
		Address:    cfg.Printer.Address,
		CameraPort: cfg.Printer.CameraPort,
		HTTPClient: &http.Client{Timeout: cfg.Printer.Timeout},
		Logger:     s.log,
	}))

	if path != "" {
		if err := config.Save(&cfg, path); err != nil {
			s.log.Error().Err(err).Msg("persisting config update")
			s.writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if s.printerAddress() == "" {
		s.writeJSON(w, http.StatusOK, printer.ConnectionStatus{
			Connected: false,
			Message:   "printer address not configured",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, s.printerClient().TestConnection(r.Context()))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.printerClient().Events(r.Context(), queryInt(r, "count", 0))
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handlePrintJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.printerClient().PrintJobs(r.Context(), queryInt(r, "count", 0))
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleCameraStream(w http.ResponseWriter, r *http.Request) {
	if s.printerAddress() == "" {
		http.Error(w, "printer address not configured", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, s.printerClient().CameraStreamURL(), http.StatusFound)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) printerAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Printer.Address
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
