// Package githubapi is a thin authenticated client for the GitHub REST API.
// It resolves credentials (static token or GitHub App installation token)
// and normalizes responses into a uniform result shape.
package githubapi

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const defaultBaseURL = "https://api.github.com"

// tokenExpiryMargin keeps a cached installation token from expiring between
// the cache hit and the request that uses it.
const tokenExpiryMargin = 30 * time.Second

// ErrAppAuthNotConfigured is returned when an installation token is
// requested but app_id, installation_id, or the private key is missing.
var ErrAppAuthNotConfigured = errors.New("github app credentials not configured (need app_id, installation_id, and private_key)")

// ExchangeError reports a failed installation-token exchange. The cached
// token, if any, is left untouched.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("installation token exchange failed (HTTP %d): %s", e.Status, e.Body)
}

// Config holds already-validated auth settings supplied by the config
// loader. Token serves read-mode calls; the app triple serves app-mode.
type Config struct {
	BaseURL        string
	AppID          string
	InstallationID string
	PrivateKey     string
	Token          string
}

// Credentials resolves the base URL and mints bearer tokens. The
// installation token cache is a single slot owned by this instance,
// replaced wholesale on refresh.
type Credentials struct {
	cfg        Config
	httpClient *http.Client

	mu        sync.Mutex
	signKey   *rsa.PrivateKey
	token     string
	expiresAt time.Time
	nowFunc   func() time.Time // for testing
}

func NewCredentials(cfg Config) *Credentials {
	return &Credentials{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		nowFunc:    time.Now,
	}
}

func (c *Credentials) BaseURL() string {
	if u := strings.TrimSpace(c.cfg.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultBaseURL
}

// TokenForRead returns the static token when configured. It never performs
// network I/O and never fails; absence means the call goes out anonymous.
func (c *Credentials) TokenForRead() (string, bool) {
	if t := strings.TrimSpace(c.cfg.Token); t != "" {
		return t, true
	}
	return "", false
}

// InstallationToken returns a cached installation token while it is more
// than tokenExpiryMargin from expiry, otherwise exchanges a fresh RS256
// assertion for a new one. Refreshes are serialized; two concurrent callers
// share one exchange.
func (c *Credentials) InstallationToken(ctx context.Context) (string, error) {
	if c.cfg.AppID == "" || c.cfg.InstallationID == "" || c.cfg.PrivateKey == "" {
		return "", ErrAppAuthNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if c.token != "" && now.Add(tokenExpiryMargin).Before(c.expiresAt) {
		return c.token, nil
	}

	assertion, err := c.signAssertionLocked(now)
	if err != nil {
		return "", err
	}

	token, expiresAt, err := c.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiresAt = expiresAt
	return token, nil
}

// signAssertionLocked mints the short-lived app JWT: issued-at backdated a
// minute for clock skew, expiry held under GitHub's ten-minute cap.
func (c *Credentials) signAssertionLocked(now time.Time) (string, error) {
	if c.signKey == nil {
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.cfg.PrivateKey))
		if err != nil {
			return "", fmt.Errorf("parse private key: %w", err)
		}
		c.signKey = key
	}

	claims := jwt.RegisteredClaims{
		Issuer:    c.cfg.AppID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.signKey)
}

func (c *Credentials) exchange(ctx context.Context, assertion string) (string, time.Time, error) {
	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", c.BaseURL(), c.cfg.InstallationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+assertion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("installation token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read installation token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", time.Time{}, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", time.Time{}, fmt.Errorf("decode installation token response: %w", err)
	}
	if result.Token == "" {
		return "", time.Time{}, fmt.Errorf("installation token response missing token")
	}
	return result.Token, result.ExpiresAt, nil
}
