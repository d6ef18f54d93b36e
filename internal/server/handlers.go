package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dhanjo/project-guardian-2.0/internal/websocket"
)

const version = "2.0.0"

// ScanRequest is the body of POST /v1/scan
type ScanRequest struct {
	RecordID string `json:"record_id"`
	DataJSON string `json:"data_json"`
}

// ScanResponse is the result of scanning one record
type ScanResponse struct {
	RecordID     string            `json:"record_id"`
	RedactedData string            `json:"redacted_data_json"`
	IsPII        bool              `json:"is_pii"`
	Source       string            `json:"source"`
	MaskedFields map[string]string `json:"masked_fields,omitempty"`
}

// handleScan runs one payload through the PII engine and returns the
// redacted copy.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !s.config.Privacy.Enabled {
		s.writeError(w, http.StatusServiceUnavailable, "privacy scanning is disabled")
		return
	}

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecordID == "" {
		s.writeError(w, http.StatusBadRequest, "record_id is required")
		return
	}

	start := time.Now()
	outcome := s.detector.ScanPayload(req.RecordID, req.DataJSON)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordsScanned.WithLabelValues(string(outcome.Source)).Inc()
		if outcome.IsPII {
			s.metrics.PIIRecords.Inc()
		}
		s.metrics.ObserveScan(elapsed)
	}

	s.logger.LogRecordOutcome(outcome.RecordID, outcome.IsPII, string(outcome.Source), len(outcome.MaskedFields))

	if s.config.Privacy.LogFindings && outcome.IsPII {
		s.logger.Info("PII detected",
			zap.String("record_id", outcome.RecordID),
			zap.String("source", string(outcome.Source)),
			zap.Int("masked_fields", len(outcome.MaskedFields)),
		)
	}

	if outcome.IsPII {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeDetection,
			Timestamp: time.Now(),
			Data: websocket.DetectionEvent{
				RecordID:     outcome.RecordID,
				Source:       string(outcome.Source),
				MaskedFields: outcome.MaskedFields,
				FieldCount:   len(outcome.MaskedFields),
				ProcessingMS: float64(elapsed.Microseconds()) / 1000,
			},
		})
	}

	s.writeJSON(w, http.StatusOK, ScanResponse{
		RecordID:     outcome.RecordID,
		RedactedData: outcome.Redacted,
		IsPII:        outcome.IsPII,
		Source:       string(outcome.Source),
		MaskedFields: outcome.MaskedFields,
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":            "project-guardian",
		"version":         version,
		"privacy_enabled": s.config.Privacy.Enabled,
		"rate_limit":      s.config.Server.RateLimit.Enabled,
		"websocket":       s.config.WebSocket.Enabled,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
