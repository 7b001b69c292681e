package core

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"omc/internal/types"
)

func TestRecoverer_WritesErrorEnvelope(t *testing.T) {
	srv := newTestServer(t)
	h := RequestIDMiddleware(srv.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom \"quoted\"")
	})))

	req := httptest.NewRequest(http.MethodPost, "/events/listen", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("panic response is not valid JSON: %v (%s)", err, rec.Body.String())
	}
	if body.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code = %q", body.Error.Code)
	}
	if body.Error.RequestID != "req-42" {
		t.Errorf("request_id = %q, want req-42", body.Error.RequestID)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	h.ServeHTTP(rec, req)
	if seen != "caller-id" || rec.Header().Get(requestIDHeader) != "caller-id" {
		t.Errorf("propagated id = %q / header %q, want caller-id", seen, rec.Header().Get(requestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Errorf("generated id = %q, want a UUID", seen)
	}
	if rec.Header().Get(requestIDHeader) != seen {
		t.Error("response header does not match context id")
	}
}

func TestContextTimeoutMiddleware(t *testing.T) {
	var deadline time.Time
	h := ContextTimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if deadline.IsZero() {
		t.Fatal("expected a deadline on the request context")
	}
	if until := time.Until(deadline); until > time.Second {
		t.Errorf("deadline %v is further out than the configured timeout", until)
	}
}

func TestRequestLogger_RedactsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestLogger(logger, []string{"authorization"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	req := httptest.NewRequest(http.MethodPost, "/events/listen", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Errorf("authorization header leaked into log: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected redaction marker in log: %s", out)
	}
	if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, `"status":502`) {
		t.Errorf("5xx should be logged at error level with status: %s", out)
	}
}

func TestEscapeJSON(t *testing.T) {
	got := escapeJSON("a\"b\\c\nd")
	if got != `a\"b\\c\nd` {
		t.Errorf("escapeJSON = %q", got)
	}
}
