// Package gmail implements both mailbox retrieval tiers against the Gmail
// REST API using OAuth2 refresh-token credentials.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/don-san-sec/samurai/internal/source"
)

// ClientConfig holds the OAuth2 credentials for the Gmail API.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Client fetches messages from the Gmail API. It implements both
// source.Raw (messages.get with format=raw) and source.Summary
// (format=full metadata, the degraded fallback view).
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      *tokenCache
}

const (
	defaultBaseURL = "https://gmail.googleapis.com"
	tokenURL       = "https://oauth2.googleapis.com/token"
)

// New creates a Client with the given credentials.
func New(cfg ClientConfig) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, httpClient),
	}
}

// newWithOverrides creates a Client with custom URLs and HTTP client,
// used for testing.
func newWithOverrides(cfg ClientConfig, baseURL, tokenURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, httpClient),
	}
}

// Raw fetches the full RFC 822 bytes of a message.
func (c *Client) Raw(ctx context.Context, id string) ([]byte, error) {
	var msg struct {
		Raw string `json:"raw"`
	}
	if err := c.get(ctx, id, "raw", &msg); err != nil {
		return nil, err
	}
	if msg.Raw == "" {
		return nil, fmt.Errorf("message %s has no raw content", id)
	}

	decoded, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		// The API omits padding; try the unpadded alphabet before giving up.
		decoded, err = base64.RawURLEncoding.DecodeString(msg.Raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode raw content: %w", err)
		}
	}
	return decoded, nil
}

// fullMessage mirrors the subset of the Gmail messages.get format=full
// response that the fallback tier needs.
type fullMessage struct {
	InternalDate string      `json:"internalDate"`
	Payload      messagePart `json:"payload"`
}

type messagePart struct {
	MimeType string `json:"mimeType"`
	Filename string `json:"filename"`
	Headers  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body struct {
		Size int64 `json:"size"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

// Summary fetches the degraded view of a message: top-level headers and
// attachment metadata from the structured payload, plus the raw bytes so
// the artifact can still be preserved. Reply-To, Message-ID and User-Agent
// are never supplied on this tier.
func (c *Client) Summary(ctx context.Context, id string) (*source.MessageSummary, error) {
	var msg fullMessage
	if err := c.get(ctx, id, "full", &msg); err != nil {
		return nil, err
	}

	raw, err := c.Raw(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw content for summary: %w", err)
	}

	sum := &source.MessageSummary{
		Raw:     raw,
		Subject: headerValue(msg.Payload, "Subject"),
		From:    headerValue(msg.Payload, "From"),
		To:      headerValue(msg.Payload, "To"),
		Date:    messageDate(msg),
	}
	collectAttachments(msg.Payload, &sum.Attachments)
	return sum, nil
}

// get performs an authenticated messages.get call with the given format.
func (c *Client) get(ctx context.Context, id, format string, out any) error {
	token, err := c.token.Token()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	url := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s?format=%s", c.baseURL, id, format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gmail API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gmail API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail API returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse gmail API response: %w", err)
	}
	return nil
}

func headerValue(p messagePart, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// messageDate parses the Date header, falling back to the server-side
// internalDate (epoch milliseconds), then to the current time.
func messageDate(msg fullMessage) time.Time {
	if v := headerValue(msg.Payload, "Date"); v != "" {
		if t, err := mail.ParseDate(v); err == nil {
			return t
		}
	}
	if ms, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms)
	}
	return time.Now()
}

// collectAttachments walks the part tree in order, keeping parts that
// declare a filename.
func collectAttachments(p messagePart, out *[]source.AttachmentSummary) {
	if p.Filename != "" {
		*out = append(*out, source.AttachmentSummary{
			Name: p.Filename,
			Type: p.MimeType,
			Size: p.Body.Size,
		})
	}
	for _, child := range p.Parts {
		collectAttachments(child, out)
	}
}
