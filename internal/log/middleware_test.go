package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name          string
		withRequestID bool
		status        int
		wantLevel     string
	}{
		{"tagged with request id", true, http.StatusOK, "level=INFO"},
		{"no request id", false, http.StatusNotFound, "level=WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})

			var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
				w.WriteHeader(tt.status)
			})
			h = RequestLogger(logger)(h)
			if tt.withRequestID {
				h = middleware.RequestID(h)
			}

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ledger", nil))

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != 2 {
				t.Fatalf("got %d log lines, want 2: %q", len(lines), buf.String())
			}
			for _, line := range lines {
				if got := strings.Contains(line, FieldRequestID+"="); got != tt.withRequestID {
					t.Errorf("request id present = %v in %q", got, line)
				}
			}
			if !strings.Contains(lines[1], tt.wantLevel) {
				t.Errorf("completion line %q, want %s", lines[1], tt.wantLevel)
			}
		})
	}
}
