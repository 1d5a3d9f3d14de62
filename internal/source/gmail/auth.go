package gmail

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenExpiryBuffer is the time before actual expiry when we consider a
// token expired. This prevents using a token that is about to expire during
// a request.
const tokenExpiryBuffer = 5 * time.Minute

// tokenCache manages OAuth2 access tokens obtained via the refresh-token
// grant, with thread-safe caching and refresh before expiration.
type tokenCache struct {
	mu           sync.Mutex
	accessToken  string
	expiresAt    time.Time
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
	httpClient   *http.Client
}

// newTokenCache creates a token cache for the given OAuth2 client and
// refresh token.
func newTokenCache(tokenURL, clientID, clientSecret, refreshToken string, httpClient *http.Client) *tokenCache {
	return &tokenCache{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		httpClient:   httpClient,
	}
}

// Token returns a valid access token, refreshing it if necessary.
// Safe for concurrent use.
func (tc *tokenCache) Token() (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.accessToken != "" && time.Now().Before(tc.expiresAt) {
		return tc.accessToken, nil
	}

	return tc.refresh()
}

// refresh exchanges the refresh token for a new access token.
// The caller must hold tc.mu.
func (tc *tokenCache) refresh() (string, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {tc.clientID},
		"client_secret": {tc.clientSecret},
		"refresh_token": {tc.refreshToken},
	}

	req, err := http.NewRequest(http.MethodPost, tc.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	tc.accessToken = tokenResp.AccessToken
	tc.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpiryBuffer)

	return tc.accessToken, nil
}

// truncateBody limits error detail from the token endpoint to a sane size.
func truncateBody(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
