package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evcraddock/realty-crm/internal/db"
	"github.com/evcraddock/realty-crm/internal/logging"
	"github.com/evcraddock/realty-crm/internal/visit"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("visit 3: %w", db.ErrNotFound), http.StatusNotFound},
		{"conflict", visit.ErrConflict, http.StatusConflict},
		{"validation", &visit.ValidationError{Kind: visit.ErrInvalidStatus, Field: "status", Message: "bad"}, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/visits/", nil), tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestWriteErrorLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := logging.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New("disk full"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/visits/", nil)
	req.Header.Set(logging.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}

	var failed string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `msg="request failed"`) {
			failed = line
		}
	}
	if failed == "" {
		t.Fatalf("no error log line in:\n%s", buf.String())
	}
	if !strings.Contains(failed, "request_id=req-42") {
		t.Errorf("error log missing request id: %s", failed)
	}
	if strings.Contains(w.Body.String(), "disk full") {
		t.Error("internal error text leaked to the client")
	}
}
