package builtin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quailyquaily/gitwarden/guard"
)

// repoCreateServer fakes the repo-create surface: user repo creation, the
// gitignore template endpoint, and the git data API. It records the call
// order and the blob contents it received.
type repoCreateServer struct {
	*httptest.Server

	calls          []string
	blobContents   []string
	templateStatus int
	refsStatus     int
}

func newRepoCreateServer(t *testing.T) *repoCreateServer {
	t.Helper()
	s := &repoCreateServer{templateStatus: http.StatusOK, refsStatus: http.StatusCreated}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /app/installations/7/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		t.Error("repo create must not mint an installation token")
	})
	mux.HandleFunc("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		s.calls = append(s.calls, "create")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["auto_init"] != false {
			t.Errorf("auto_init = %v, want false", body["auto_init"])
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":  body["name"],
			"owner": map[string]any{"login": "octocat"},
		})
	})
	mux.HandleFunc("GET /gitignore/templates/", func(w http.ResponseWriter, r *http.Request) {
		s.calls = append(s.calls, "template")
		if r.Header.Get("Authorization") != "" {
			t.Error("template fetch must be unauthenticated")
		}
		if s.templateStatus != http.StatusOK {
			w.WriteHeader(s.templateStatus)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":   "Node",
			"source": "node_modules/\ndist/\n",
		})
	})
	mux.HandleFunc("POST /repos/octocat/widgets/git/blobs", func(w http.ResponseWriter, r *http.Request) {
		s.calls = append(s.calls, "blob")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		content, _ := body["content"].(string)
		s.blobContents = append(s.blobContents, content)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"sha": "blobsha"})
	})
	mux.HandleFunc("POST /repos/octocat/widgets/git/trees", func(w http.ResponseWriter, r *http.Request) {
		s.calls = append(s.calls, "tree")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"sha": "treesha"})
	})
	mux.HandleFunc("POST /repos/octocat/widgets/git/commits", func(w http.ResponseWriter, r *http.Request) {
		s.calls = append(s.calls, "commit")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["tree"] != "treesha" {
			t.Errorf("commit tree = %v, want treesha", body["tree"])
		}
		if body["message"] != "Initial commit" {
			t.Errorf("commit message = %v", body["message"])
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"sha": "commitsha"})
	})
	mux.HandleFunc("POST /repos/octocat/widgets/git/refs", func(w http.ResponseWriter, r *http.Request) {
		s.calls = append(s.calls, "refs")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["ref"] != "refs/heads/main" || body["sha"] != "commitsha" {
			t.Errorf("refs body = %v", body)
		}
		w.WriteHeader(s.refsStatus)
		if s.refsStatus >= 300 {
			_, _ = w.Write([]byte(`{"message":"Reference update failed"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ref": "refs/heads/main"})
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestRepoCreate_StarterSetSequence(t *testing.T) {
	srv := newRepoCreateServer(t)

	deps, ledger, _ := newTestDeps(t, srv.Server, guard.PolicyConfig{})
	ledger.ApproveRepo("s1", "user", "widgets")
	tool := &RepoCreateTool{Deps: deps}

	out, err := tool.Execute(sessionCtx("s1"), map[string]any{
		"name":        "widgets",
		"description": "Widget factory",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantCalls := []string{"create", "template", "blob", "blob", "tree", "commit", "refs"}
	if len(srv.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", srv.calls, wantCalls)
	}
	for i := range wantCalls {
		if srv.calls[i] != wantCalls[i] {
			t.Fatalf("call %d = %s, want %s (all: %v)", i, srv.calls[i], wantCalls[i], srv.calls)
		}
	}

	// README blob first, gitignore blob second, with the fetched template.
	if len(srv.blobContents) != 2 {
		t.Fatalf("blob contents = %v", srv.blobContents)
	}
	if !strings.HasPrefix(srv.blobContents[0], "# widgets") || !strings.Contains(srv.blobContents[0], "Widget factory") {
		t.Fatalf("README blob = %q", srv.blobContents[0])
	}
	if srv.blobContents[1] != "node_modules/\ndist/\n" {
		t.Fatalf("gitignore blob = %q", srv.blobContents[1])
	}

	var res struct {
		OK   bool           `json:"ok"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !res.OK || res.Data["initialized"] != true || res.Data["default_branch"] != "main" {
		t.Fatalf("got %s", out)
	}
}

func TestRepoCreate_FallbackGitignoreOnTemplateMiss(t *testing.T) {
	srv := newRepoCreateServer(t)
	srv.templateStatus = http.StatusNotFound

	deps, ledger, _ := newTestDeps(t, srv.Server, guard.PolicyConfig{})
	ledger.ApproveRepo("s1", "user", "widgets")
	tool := &RepoCreateTool{Deps: deps}

	if _, err := tool.Execute(sessionCtx("s1"), map[string]any{"name": "widgets"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(srv.blobContents) != 2 {
		t.Fatalf("blob contents = %v", srv.blobContents)
	}
	if srv.blobContents[1] != fallbackGitignore {
		t.Fatalf("gitignore blob = %q, want the fallback", srv.blobContents[1])
	}
}

func TestRepoCreate_InitFailureIsWarningNotError(t *testing.T) {
	srv := newRepoCreateServer(t)
	srv.refsStatus = http.StatusUnprocessableEntity

	deps, ledger, _ := newTestDeps(t, srv.Server, guard.PolicyConfig{})
	ledger.ApproveRepo("s1", "user", "widgets")
	tool := &RepoCreateTool{Deps: deps}

	out, err := tool.Execute(sessionCtx("s1"), map[string]any{"name": "widgets"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var res struct {
		OK      bool   `json:"ok"`
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// The repo exists even though the starter commit failed.
	if !res.OK {
		t.Fatalf("got %s, want ok", out)
	}
	if !strings.Contains(res.Warning, "initialization failed") {
		t.Fatalf("warning = %q", res.Warning)
	}
}

func TestRepoCreate_NeedsApprovalWithoutGrant(t *testing.T) {
	srv := newRepoCreateServer(t)

	deps, _, _ := newTestDeps(t, srv.Server, guard.PolicyConfig{})
	tool := &RepoCreateTool{Deps: deps}

	out, err := tool.Execute(sessionCtx("s1"), map[string]any{"name": "widgets"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var res struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Code != guard.CodeApprovalRequired {
		t.Fatalf("code = %q, want %s", res.Code, guard.CodeApprovalRequired)
	}
	if len(srv.calls) != 0 {
		t.Fatalf("API reached without approval: %v", srv.calls)
	}
}
