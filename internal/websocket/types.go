package websocket

import (
	"time"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeDetection represents a PII detection event
	EventTypeDetection EventType = "pii_detection"
	// EventTypeProgress represents batch scan progress
	EventTypeProgress EventType = "scan_progress"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// DetectionEvent describes one record in which PII was found. The masked
// replacements are safe to broadcast; original values never leave the engine.
type DetectionEvent struct {
	RecordID     string            `json:"record_id"`
	Source       string            `json:"source"`
	MaskedFields map[string]string `json:"masked_fields,omitempty"`
	FieldCount   int               `json:"field_count"`
	ProcessingMS float64           `json:"processing_ms"`
}

// ProgressEvent describes batch scan progress
type ProgressEvent struct {
	RunID          string  `json:"run_id"`
	RecordsScanned int64   `json:"records_scanned"`
	PIIRecords     int64   `json:"pii_records"`
	RawFallbacks   int64   `json:"raw_fallbacks"`
	RatePerSecond  float64 `json:"rate_per_second"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalScans       int64  `json:"total_scans"`
	TotalDetections  int64  `json:"total_detections"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
	Message  string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// SubscriptionRequest lets a client restrict which event types it receives
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}
