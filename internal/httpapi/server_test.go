package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/moderation"
)

func TestNewServerAppliesDefaults(t *testing.T) {
	t.Parallel()

	server := NewServer(nil, zerolog.Nop(), nil, nil, nil, Options{})
	if server == nil {
		t.Fatalf("expected server")
	}
	if server.opts.Host != "0.0.0.0" {
		t.Fatalf("unexpected default host: %q", server.opts.Host)
	}
	if server.opts.Port != 8090 {
		t.Fatalf("unexpected default port: %d", server.opts.Port)
	}
	if server.opts.SessionTTL != 7*24*time.Hour {
		t.Fatalf("unexpected default session ttl: %s", server.opts.SessionTTL)
	}
	if server.opts.SessionCookieName != "pulse_session" {
		t.Fatalf("unexpected default cookie name: %q", server.opts.SessionCookieName)
	}
}

func TestNewServerKeepsExplicitOptions(t *testing.T) {
	t.Parallel()

	server := NewServer(nil, zerolog.Nop(), nil, nil, nil, Options{
		Host:              "127.0.0.1",
		Port:              9000,
		SessionTTL:        2 * time.Hour,
		SessionCookieName: "custom_session",
	})
	if server.opts.Host != "127.0.0.1" || server.opts.Port != 9000 {
		t.Fatalf("explicit host/port were overridden: %q %d", server.opts.Host, server.opts.Port)
	}
	if server.opts.SessionTTL != 2*time.Hour {
		t.Fatalf("explicit session ttl was overridden: %s", server.opts.SessionTTL)
	}
	if server.opts.SessionCookieName != "custom_session" {
		t.Fatalf("explicit cookie name was overridden: %q", server.opts.SessionCookieName)
	}
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestPathID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		param  string
		wantID int64
		wantOK bool
	}{
		{name: "valid", param: "42", wantID: 42, wantOK: true},
		{name: "padded", param: " 7 ", wantID: 7, wantOK: true},
		{name: "zero", param: "0", wantOK: false},
		{name: "negative", param: "-3", wantOK: false},
		{name: "not a number", param: "abc", wantOK: false},
		{name: "empty", param: "", wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newTestContext(t, http.MethodGet, "/", "")
			c.SetParamNames("id")
			c.SetParamValues(tc.param)

			id, ok := pathID(c)
			if ok != tc.wantOK {
				t.Fatalf("pathID(%q) ok = %v, want %v", tc.param, ok, tc.wantOK)
			}
			if ok && id != tc.wantID {
				t.Fatalf("pathID(%q) = %d, want %d", tc.param, id, tc.wantID)
			}
		})
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodPost, "/", `{"limit":10,"bogus":true}`)

	var req rescanRequest
	if err := decodeJSONBody(c, &req); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestDecodeJSONBodyDecodesKnownFields(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodPost, "/", `{"limit":25}`)

	var req rescanRequest
	if err := decodeJSONBody(c, &req); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if req.Limit != 25 {
		t.Fatalf("unexpected limit: %d", req.Limit)
	}
}

func TestModerationErrorStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "invalid input", err: moderation.ErrInvalidInput, wantCode: http.StatusBadRequest},
		{name: "not found", err: moderation.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "unexpected error", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := NewServer(nil, zerolog.Nop(), nil, nil, nil, Options{})
			c, rec := newTestContext(t, http.MethodPost, "/", "")

			if err := server.moderationError(c, tc.err, "test"); err != nil {
				t.Fatalf("moderationError returned error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, tc.wantCode)
			}
		})
	}
}

func TestAllowedWorkflowStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"Open", "In Progress", "Resolved", "Closed"} {
		if _, ok := allowedWorkflowStatuses[status]; !ok {
			t.Fatalf("expected %q to be an allowed workflow status", status)
		}
	}
	if _, ok := allowedWorkflowStatuses["open"]; ok {
		t.Fatalf("workflow statuses must be case sensitive")
	}
}

func TestHandleHealthReportsUnreachableDatabase(t *testing.T) {
	t.Parallel()

	server := &Server{logger: zerolog.Nop()}
	c, rec := newTestContext(t, http.MethodGet, "/api/health", "")

	if err := server.handleHealth(c); err != nil {
		t.Fatalf("handleHealth: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without a reachable database, got %d", rec.Code)
	}
}

func TestHandleSubmitFeedbackRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	// Payloads are schema-checked before any storage work, so a server
	// with no backing services never reaches them for a bad body.
	server := &Server{logger: zerolog.Nop()}

	cases := []struct {
		name string
		body string
	}{
		{"missing version", `{"department":"IT Support","category":"bug","subject":"VPN drops","body":"The VPN drops every hour on the hour."}`},
		{"unknown field", `{"payload_version":"v1","department":"IT Support","category":"bug","subject":"VPN drops","body":"The VPN drops every hour on the hour.","extra":true}`},
		{"not json", `not-json`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, rec := newTestContext(t, http.MethodPost, "/api/feedback", tc.body)
			if err := server.handleSubmitFeedback(c); err != nil {
				t.Fatalf("handleSubmitFeedback: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %s, got %d", tc.name, rec.Code)
			}
		})
	}
}
