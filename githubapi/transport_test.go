package githubapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(srv *httptest.Server, token string) *Client {
	return NewClient(NewCredentials(Config{BaseURL: srv.URL, Token: token}), discardLogger())
}

func TestDo_JSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
			t.Errorf("api version = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ghp_test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"number": 7, "state": "open"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, "ghp_test")
	res, err := c.Do(context.Background(), Request{
		Path:     "/repos/acme/docs/issues/7",
		AuthMode: AuthToken,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !res.OK || res.Status != http.StatusOK {
		t.Fatalf("result = %+v", res)
	}

	want := map[string]any{"number": float64(7), "state": "open"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestDo_EmptyBodySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res, err := newTestClient(srv, "").Do(context.Background(), Request{Path: "/x", Method: http.MethodPut})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !res.OK || res.Status != http.StatusNoContent || res.Data != nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestDo_NonJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("raw file content"))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, "").Do(context.Background(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !res.OK {
		t.Fatalf("result = %+v", res)
	}
	if got, ok := res.Data.(string); !ok || got != "raw file content" {
		t.Fatalf("data = %#v", res.Data)
	}
}

func TestDo_APIErrorAsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, "").Do(context.Background(), Request{Path: "/repos/acme/gone"})
	if err != nil {
		t.Fatalf("HTTP failure must not be a Go error, got: %v", err)
	}
	if res.OK || res.Status != http.StatusNotFound {
		t.Fatalf("result = %+v", res)
	}
	if res.Error == nil || res.Error.Message != "Not Found" {
		t.Fatalf("error = %+v", res.Error)
	}

	reason, failed := res.FailureReason()
	if !failed {
		t.Fatal("FailureReason should mark the result failed")
	}
	if reason == "" {
		t.Fatal("empty failure reason")
	}
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, "").Do(context.Background(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.OK || res.Error == nil || res.Error.Message != "upstream unavailable" {
		t.Fatalf("result = %+v", res)
	}
}

func TestDo_QueryBuilding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").Do(context.Background(), Request{
		Path:  "/search/repositories",
		Query: map[string]string{"q": "gitwarden", "sort": "", "per_page": "10"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	// Empty values are dropped; remaining keys are sorted by Encode.
	if gotQuery != "per_page=10&q=gitwarden" {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestDo_AnonymousWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, "").Do(context.Background(), Request{Path: "/x", AuthMode: AuthToken})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !res.OK {
		t.Fatalf("result = %+v", res)
	}
}

func TestDo_BodyEncoding(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 1}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").Do(context.Background(), Request{
		Path:   "/repos/acme/docs/issues",
		Method: http.MethodPost,
		Body:   map[string]any{"title": "hello"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if diff := cmp.Diff(map[string]any{"title": "hello"}, gotBody); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestDo_AppModeCredentialError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server without credentials")
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").Do(context.Background(), Request{Path: "/x", AuthMode: AuthApp})
	if err == nil {
		t.Fatal("expected credential error for unconfigured app auth")
	}
}
