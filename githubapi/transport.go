package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
	userAgent    = "gitwarden/1.0 (+https://github.com/quailyquaily)"
)

type AuthMode string

const (
	AuthApp   AuthMode = "app"
	AuthToken AuthMode = "token"
	AuthNone  AuthMode = "none"
)

// Request describes one API call. Query values that are empty strings are
// dropped rather than serialized.
type Request struct {
	Path     string
	Method   string
	Query    map[string]string
	Headers  map[string]string
	Body     any
	AuthMode AuthMode
}

// APIError is GitHub's structured error body.
type APIError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// Result is the uniform outcome shape. HTTP-level failures never surface as
// Go errors; they come back with OK=false and the parsed error.
type Result struct {
	OK     bool      `json:"ok"`
	Status int       `json:"status,omitempty"`
	Data   any       `json:"data,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

// FailureReason implements guard.Failer so guarded invocations can audit a
// transport failure that was returned as data.
func (r Result) FailureReason() (string, bool) {
	if r.OK {
		return "", false
	}
	msg := ""
	if r.Error != nil {
		msg = r.Error.Message
	}
	return fmt.Sprintf("github api error (status %d): %s", r.Status, msg), true
}

// Client performs requests against the GitHub API, attaching the credential
// selected by the request's auth mode.
type Client struct {
	creds      *Credentials
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(creds *Credentials, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Do executes the request. The returned error is reserved for credential
// and network-level failures; any HTTP response, success or not, comes back
// as a Result.
func (c *Client) Do(ctx context.Context, req Request) (Result, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	target := c.creds.BaseURL() + req.Path + buildQuery(req.Query)

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return Result{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Result{}, err
	}

	httpReq.Header.Set("Accept", acceptHeader)
	httpReq.Header.Set("X-GitHub-Api-Version", apiVersion)
	httpReq.Header.Set("User-Agent", userAgent)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	switch req.AuthMode {
	case AuthApp:
		token, err := c.creds.InstallationToken(ctx)
		if err != nil {
			return Result{}, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	case AuthToken:
		// No configured token means the call proceeds anonymously; public
		// read endpoints still work under the remote rate limits.
		if token, ok := c.creds.TokenForRead(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Message: string(text)}
		var parsed APIError
		if json.Unmarshal(text, &parsed) == nil && parsed.Message != "" {
			apiErr = &parsed
		}
		c.log.Debug("github_api_error", "status", resp.StatusCode, "path", req.Path)
		return Result{OK: false, Status: resp.StatusCode, Error: apiErr}, nil
	}

	if len(text) == 0 {
		return Result{OK: true, Status: resp.StatusCode}, nil
	}

	var data any
	if err := json.Unmarshal(text, &data); err != nil {
		// Tolerate non-JSON success bodies.
		return Result{OK: true, Status: resp.StatusCode, Data: string(text)}, nil
	}
	return Result{OK: true, Status: resp.StatusCode, Data: data}, nil
}

func buildQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	params := url.Values{}
	for k, v := range query {
		if v == "" {
			continue
		}
		params.Set(k, v)
	}
	if s := params.Encode(); s != "" {
		return "?" + s
	}
	return ""
}
