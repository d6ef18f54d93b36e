package websocket

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard allows anything", []string{"*"}, "http://example.com", true},
		{"exact match", []string{"http://dash.local"}, "http://dash.local", true},
		{"mismatch", []string{"http://dash.local"}, "http://evil.com", false},
		{"empty allow list denies", nil, "http://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHub(&HubConfig{AllowedOrigins: tt.allowed}, zap.NewNop())

			r := httptest.NewRequest("GET", "/ws", nil)
			r.Header.Set("Origin", tt.origin)

			if got := h.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldBroadcastEvent(t *testing.T) {
	h := NewHub(&HubConfig{
		BroadcastDetections: true,
		BroadcastProgress:   false,
		BroadcastSystem:     true,
	}, zap.NewNop())

	if !h.shouldBroadcastEvent(EventTypeDetection) {
		t.Error("detections should broadcast")
	}
	if h.shouldBroadcastEvent(EventTypeProgress) {
		t.Error("progress should not broadcast")
	}
	if !h.shouldBroadcastEvent(EventTypeSystemStatus) {
		t.Error("system status should broadcast")
	}
	if h.shouldBroadcastEvent("unknown") {
		t.Error("unknown event types should not broadcast")
	}
}

func TestShouldSendToClient(t *testing.T) {
	h := NewHub(&HubConfig{}, zap.NewNop())
	event := Event{Type: EventTypeDetection, Timestamp: time.Now()}

	t.Run("no subscription receives everything", func(t *testing.T) {
		client := &Client{}
		if !h.shouldSendToClient(client, event) {
			t.Error("unfiltered client should receive event")
		}
	})

	t.Run("matching subscription", func(t *testing.T) {
		client := &Client{Subscription: &SubscriptionRequest{Events: []EventType{EventTypeDetection}}}
		if !h.shouldSendToClient(client, event) {
			t.Error("subscribed client should receive event")
		}
	})

	t.Run("non-matching subscription", func(t *testing.T) {
		client := &Client{Subscription: &SubscriptionRequest{Events: []EventType{EventTypeProgress}}}
		if h.shouldSendToClient(client, event) {
			t.Error("filtered client should not receive event")
		}
	})
}

func TestBroadcastEventDropsDisabledTypes(t *testing.T) {
	h := NewHub(&HubConfig{BroadcastDetections: false}, zap.NewNop())

	h.BroadcastEvent(Event{Type: EventTypeDetection, Timestamp: time.Now()})

	select {
	case <-h.broadcast:
		t.Error("disabled event type reached the broadcast channel")
	default:
	}
}
