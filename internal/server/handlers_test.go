package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhanjo/project-guardian-2.0/internal/config"
	"github.com/dhanjo/project-guardian-2.0/internal/logger"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.Server.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}

	srv, err := New(cfg, log, nil)
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func postScan(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/v1/scan", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHandleScan(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("PII record", func(t *testing.T) {
		w := postScan(t, srv, `{"record_id":"r1","data_json":"{\"phone\":\"9876543210\"}"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}

		var resp ScanResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if !resp.IsPII {
			t.Error("expected is_pii true")
		}
		if resp.Source != "structured" {
			t.Errorf("source = %q", resp.Source)
		}
		if !strings.Contains(resp.RedactedData, "98XXXXXX10") {
			t.Errorf("redacted = %q", resp.RedactedData)
		}
		if resp.MaskedFields["phone"] != "98XXXXXX10" {
			t.Errorf("masked fields = %v", resp.MaskedFields)
		}
	})

	t.Run("clean record", func(t *testing.T) {
		w := postScan(t, srv, `{"record_id":"r2","data_json":"{\"note\":\"hello\"}"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}

		var resp ScanResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.IsPII {
			t.Error("expected is_pii false")
		}
		if resp.RedactedData != `{"note":"hello"}` {
			t.Errorf("clean payload modified: %q", resp.RedactedData)
		}
	})

	t.Run("missing record id", func(t *testing.T) {
		w := postScan(t, srv, `{"data_json":"{}"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		w := postScan(t, srv, `not json`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandleScanDisabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Privacy.Enabled = false
	})

	w := postScan(t, srv, `{"record_id":"r1","data_json":"{}"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandleInfo(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/info", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var info map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info["name"] != "project-guardian" {
		t.Errorf("name = %v", info["name"])
	}
	if info["privacy_enabled"] != true {
		t.Errorf("privacy_enabled = %v", info["privacy_enabled"])
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.Enabled = true
		cfg.Server.RateLimit.RequestsPerSecond = 0.001
		cfg.Server.RateLimit.Burst = 1
	})

	first := postScan(t, srv, `{"record_id":"r1","data_json":"{}"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := postScan(t, srv, `{"record_id":"r2","data_json":"{}"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}
