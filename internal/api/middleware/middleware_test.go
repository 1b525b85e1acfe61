package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestCorrelationIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generated", header: ""},
		{name: "propagated", header: "req-123_abc.def", wantSame: true},
		{name: "rejected characters", header: "evil\nline"},
		{name: "too long", header: strings.Repeat("a", 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := CorrelationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = CorrelationCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(CorrelationIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("no correlation id in context")
			}
			if got := rec.Header().Get(CorrelationIDHeader); got != seen {
				t.Errorf("header = %q, context = %q", got, seen)
			}
			if tt.wantSame != (seen == tt.header) {
				t.Errorf("correlation id = %q, header = %q, wantSame = %v", seen, tt.header, tt.wantSame)
			}
		})
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked into the response")
	}
}

func TestLoggingMiddleware_Status(t *testing.T) {
	var sw *statusWriter
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw, _ = w.(*statusWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if sw == nil {
		t.Fatal("handler did not receive a statusWriter")
	}
	if sw.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want the first written status", sw.statusCode)
	}
}
