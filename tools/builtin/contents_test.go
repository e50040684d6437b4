package builtin

import (
	"context"
	"encoding/json"
	"testing"
)

func TestSafeWritePath(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain_file", "README.md", false},
		{"nested", "docs/guide.md", false},
		{"leading_slash", "/docs/guide.md", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"traversal", "../secrets.txt", true},
		{"nested_traversal", "docs/../../etc/passwd", true},
		{"workflow_file", ".github/workflows/ci.yml", true},
		{"workflow_dir", ".github/workflows", true},
		{"actions_file", ".github/actions/setup/action.yml", true},
		{"github_dir_other", ".github/CODEOWNERS", false},
		{"sneaky_clean", "docs/./.github/workflows/x.yml", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := safeWritePath(tc.path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("safeWritePath(%q) error=%v, wantErr=%v", tc.path, err, tc.wantErr)
			}
		})
	}
}

func TestFilePut_ProtectedPathBlockedBeforePolicy(t *testing.T) {
	// No API, guard, or ledger wired: the path check must reject the call
	// before any of them are touched.
	tool := &FilePutTool{Deps: &Deps{}}

	out, err := tool.Execute(context.Background(), map[string]any{
		"owner":          "acme",
		"repo":           "docs",
		"path":           ".github/workflows/deploy.yml",
		"message":        "update workflow",
		"content_base64": "aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var res struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if res.Code != "NOT_ALLOWED" {
		t.Fatalf("code = %q, want NOT_ALLOWED", res.Code)
	}
}

func TestFilePut_MissingParams(t *testing.T) {
	tool := &FilePutTool{Deps: &Deps{}}
	_, err := tool.Execute(context.Background(), map[string]any{
		"owner": "acme",
		"repo":  "docs",
	})
	if err == nil {
		t.Fatal("expected error for missing params")
	}
}
