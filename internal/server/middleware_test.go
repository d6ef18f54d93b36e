package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestResponseWriterCapturesStatusAndSize(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	if _, err := rw.Write([]byte("not found")); err != nil {
		t.Fatal(err)
	}
	if _, err := rw.Write([]byte("!")); err != nil {
		t.Fatal(err)
	}

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}
	if rw.size != len("not found")+1 {
		t.Errorf("size = %d, want %d", rw.size, len("not found")+1)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("underlying recorder code = %d", rec.Code)
	}
}

func TestResponseWriterDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := rw.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", rw.statusCode)
	}
}

func TestRateLimiterConcurrentSameClient(t *testing.T) {
	rl := newRateLimiter(1000, 1000)

	var wg sync.WaitGroup
	allowed := make([]bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			allowed[i] = rl.Allow("10.0.0.1")
		}(i)
	}
	wg.Wait()

	for i, ok := range allowed {
		if !ok {
			t.Errorf("request %d rejected under a burst of 1000", i)
		}
	}

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if len(rl.limiters) != 1 {
		t.Errorf("limiters = %d, want one shared bucket", len(rl.limiters))
	}
}

func TestRateLimiterSeparateClients(t *testing.T) {
	rl := newRateLimiter(0.001, 1)

	if !rl.Allow("10.0.0.1") {
		t.Error("first request from first client should pass")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("first request from second client should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second request from first client should be limited")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"x-forwarded-for wins", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "5.6.7.8"}, "1.2.3.4"},
		{"x-real-ip fallback", map[string]string{"X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
		{"remote addr fallback", nil, "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
