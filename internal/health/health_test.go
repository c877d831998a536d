package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestChecker_ReadyHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		storageErr error
		running    bool
		wantCode   int
		wantStatus Status
	}{
		{name: "all healthy", running: true, wantCode: http.StatusOK, wantStatus: StatusHealthy},
		{name: "storage down", storageErr: errors.New("disk gone"), running: true, wantCode: http.StatusServiceUnavailable, wantStatus: StatusUnhealthy},
		{name: "loop stopped", running: false, wantCode: http.StatusServiceUnavailable, wantStatus: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker("test", "immediate").
				Register("storage", PingFunc(func(context.Context) error { return tt.storageErr })).
				Register("reconcile_loop", RunningFunc(func() bool { return tt.running }))

			r := gin.New()
			r.GET("/health/ready", checker.ReadyHandler())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}

			var body HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Mode != "immediate" || len(body.Checks) != 2 {
				t.Errorf("unexpected body: %+v", body)
			}
		})
	}
}

func TestChecker_LiveHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/health/live", NewChecker("", "").LiveHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", w.Code)
	}
}
