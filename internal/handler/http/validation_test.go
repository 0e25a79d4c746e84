package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInputValidation(t *testing.T) {
	limits := DefaultInputLimits()

	tests := []struct {
		name        string
		target      string
		auth        string
		wantStatus  int
		wantReached bool
		wantBody    string
	}{
		{
			name:        "typical request",
			target:      "/api/sentinel/person/12345678",
			auth:        "Bearer eyJhbGciOiJIUzI1NiJ9.eyJpZCI6NDJ9.c2ln",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:        "no authorization header",
			target:      "/health",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:        "authorization header at limit",
			target:      "/health",
			auth:        strings.Repeat("a", limits.MaxAuthHeader),
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:       "authorization header too large",
			target:     "/health",
			auth:       strings.Repeat("a", limits.MaxAuthHeader+1),
			wantStatus: http.StatusBadRequest,
			wantBody:   "authorization header too large",
		},
		{
			name:        "path at limit",
			target:      "/" + strings.Repeat("a", limits.MaxPath-1),
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:       "path too long",
			target:     "/" + strings.Repeat("a", limits.MaxPath),
			wantStatus: http.StatusRequestURITooLong,
			wantBody:   "URI too long",
		},
		{
			name:       "query too long",
			target:     "/api/clients/1/credit-check?x=" + strings.Repeat("a", limits.MaxQuery),
			wantStatus: http.StatusRequestURITooLong,
			wantBody:   "URI too long",
		},
		{
			name:       "header checked before path",
			target:     "/" + strings.Repeat("a", limits.MaxPath),
			auth:       strings.Repeat("a", limits.MaxAuthHeader+1),
			wantStatus: http.StatusBadRequest,
			wantBody:   "authorization header too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := InputValidation(limits)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if reached != tt.wantReached {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantReached)
			}
			if tt.wantBody != "" {
				if !strings.Contains(rec.Body.String(), tt.wantBody) {
					t.Errorf("expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
				}
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected Content-Type application/json, got %q", ct)
				}
			}
		})
	}
}

func TestInputValidation_BodySizeLimit(t *testing.T) {
	limits := DefaultInputLimits()

	var readErr error
	handler := InputValidation(limits)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/clients/1/credit-check", bytes.NewReader(make([]byte, limits.MaxBody+1)))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Error("expected error when reading oversized body")
	}
}

func TestInputValidation_NormalBody(t *testing.T) {
	var got []byte
	handler := InputValidation(DefaultInputLimits())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/clients/1/credit-check", strings.NewReader(`{"force":true}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if string(got) != `{"force":true}` {
		t.Errorf("expected body to pass through, got %q", got)
	}
}
