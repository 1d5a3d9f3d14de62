package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token request: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type: got %q, want refresh_token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, apiServer *httptest.Server) *Client {
	t.Helper()
	tokenServer := newTokenServer(t, nil)
	return newWithOverrides(
		ClientConfig{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			RefreshToken: "test-refresh",
		},
		apiServer.URL,
		tokenServer.URL,
		apiServer.Client(),
	)
}

func TestClient_Raw(t *testing.T) {
	t.Parallel()

	rawMessage := "From: bad@evil.com\r\nSubject: Win\r\n\r\nBody."

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization: got %q, want %q", got, "Bearer test-token")
		}
		if got := r.URL.Path; got != "/gmail/v1/users/me/messages/msg1" {
			t.Errorf("path: got %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "raw" {
			t.Errorf("format: got %q, want raw", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"raw": base64.URLEncoding.EncodeToString([]byte(rawMessage)),
		})
	}))
	defer apiServer.Close()

	c := newTestClient(t, apiServer)

	got, err := c.Raw(context.Background(), "msg1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != rawMessage {
		t.Errorf("Raw: got %q, want %q", got, rawMessage)
	}
}

func TestClient_RawUnpaddedBase64(t *testing.T) {
	t.Parallel()

	rawMessage := "From: bad@evil.com\r\n\r\nX"

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"raw": base64.RawURLEncoding.EncodeToString([]byte(rawMessage)),
		})
	}))
	defer apiServer.Close()

	c := newTestClient(t, apiServer)

	got, err := c.Raw(context.Background(), "msg1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != rawMessage {
		t.Errorf("Raw: got %q, want %q", got, rawMessage)
	}
}

func TestClient_RawMissingContent(t *testing.T) {
	t.Parallel()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}))
	defer apiServer.Close()

	c := newTestClient(t, apiServer)

	if _, err := c.Raw(context.Background(), "msg1"); err == nil {
		t.Error("expected error for message without raw content, got nil")
	}
}

func TestClient_RawAPIError(t *testing.T) {
	t.Parallel()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"Not Found"}}`)
	}))
	defer apiServer.Close()

	c := newTestClient(t, apiServer)

	if _, err := c.Raw(context.Background(), "missing"); err == nil {
		t.Error("expected error for 404 response, got nil")
	}
}

func TestClient_Summary(t *testing.T) {
	t.Parallel()

	rawMessage := "From: bad@evil.com\r\n\r\nBody."

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("format") {
		case "full":
			fmt.Fprint(w, `{
				"internalDate": "1709633730000",
				"payload": {
					"mimeType": "multipart/mixed",
					"headers": [
						{"name": "Subject", "value": "Win a prize"},
						{"name": "From", "value": "Attacker <bad@evil.com>"},
						{"name": "To", "value": "victim@example.com"},
						{"name": "Date", "value": "Tue, 05 Mar 2024 10:15:30 +0000"}
					],
					"body": {"size": 0},
					"parts": [
						{"mimeType": "text/plain", "filename": "", "body": {"size": 20}},
						{"mimeType": "application/pdf", "filename": "invoice.pdf", "body": {"size": 4096}}
					]
				}
			}`)
		case "raw":
			json.NewEncoder(w).Encode(map[string]string{
				"raw": base64.URLEncoding.EncodeToString([]byte(rawMessage)),
			})
		default:
			t.Errorf("unexpected format %q", r.URL.Query().Get("format"))
		}
	}))
	defer apiServer.Close()

	c := newTestClient(t, apiServer)

	sum, err := c.Summary(context.Background(), "msg1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Subject != "Win a prize" {
		t.Errorf("Subject: got %q", sum.Subject)
	}
	if sum.From != "Attacker <bad@evil.com>" {
		t.Errorf("From: got %q", sum.From)
	}
	if sum.To != "victim@example.com" {
		t.Errorf("To: got %q", sum.To)
	}
	wantDate := time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)
	if !sum.Date.Equal(wantDate) {
		t.Errorf("Date: got %v, want %v", sum.Date, wantDate)
	}
	if string(sum.Raw) != rawMessage {
		t.Errorf("Raw: got %q", sum.Raw)
	}
	if len(sum.Attachments) != 1 {
		t.Fatalf("Attachments count: got %d, want 1", len(sum.Attachments))
	}
	att := sum.Attachments[0]
	if att.Name != "invoice.pdf" || att.Type != "application/pdf" || att.Size != 4096 {
		t.Errorf("Attachment: got %+v", att)
	}
}

func TestClient_SummaryFallsBackToInternalDate(t *testing.T) {
	t.Parallel()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("format") == "full" {
			fmt.Fprint(w, `{
				"internalDate": "1709633730000",
				"payload": {"headers": [{"name": "Subject", "value": "x"}], "body": {"size": 0}}
			}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"raw": base64.URLEncoding.EncodeToString([]byte("x")),
		})
	}))
	defer apiServer.Close()

	c := newTestClient(t, apiServer)

	sum, err := c.Summary(context.Background(), "msg1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.UnixMilli(1709633730000)
	if !sum.Date.Equal(want) {
		t.Errorf("Date: got %v, want %v", sum.Date, want)
	}
}

func TestTokenCache_Reuse(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	tokenServer := newTokenServer(t, &tokenCalls)

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"raw": base64.URLEncoding.EncodeToString([]byte("x")),
		})
	}))
	defer apiServer.Close()

	c := newWithOverrides(
		ClientConfig{ClientID: "c", ClientSecret: "s", RefreshToken: "r"},
		apiServer.URL,
		tokenServer.URL,
		apiServer.Client(),
	)

	for i := 0; i < 3; i++ {
		if _, err := c.Raw(context.Background(), "msg1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("token endpoint calls: got %d, want 1 (cached token reused)", got)
	}
}

func TestTokenCache_RefreshFailure(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called when token refresh fails")
	}))
	defer apiServer.Close()

	c := newWithOverrides(
		ClientConfig{ClientID: "c", ClientSecret: "s", RefreshToken: "expired"},
		apiServer.URL,
		tokenServer.URL,
		apiServer.Client(),
	)

	if _, err := c.Raw(context.Background(), "msg1"); err == nil {
		t.Error("expected error when token refresh fails, got nil")
	}
}

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	short := []byte("short body")
	if got := truncateBody(short); got != "short body" {
		t.Errorf("got %q, want unchanged", got)
	}

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	got := truncateBody(long)
	if len(got) != 256+len("...") {
		t.Errorf("truncated length: got %d", len(got))
	}
}
