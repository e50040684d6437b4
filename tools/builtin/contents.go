package builtin

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

// protectedPrefixes are repository paths no file-write tool may touch,
// checked before the policy engine runs and not bypassable by approval.
var protectedPrefixes = []string{
	".github/workflows/",
	".github/actions/",
}

// safeWritePath rejects traversal and writes under protected prefixes.
// The raw path is inspected for ".." before cleaning, since path.Clean
// resolves traversal components and would hide them.
func safeWritePath(p string) error {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/")
	if p == "" {
		return fmt.Errorf("missing file path")
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed: %s", p)
		}
	}
	cleaned := path.Clean(p)
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(cleaned, prefix) || cleaned == strings.TrimSuffix(prefix, "/") {
			return fmt.Errorf("writes under %s are not allowed", prefix)
		}
	}
	return nil
}

type FileGetTool struct {
	Deps *Deps
}

func (t *FileGetTool) Name() string { return "github_repo_file_get" }

func (t *FileGetTool) Description() string {
	return "Gets file content from a repository (read-only)."
}

func (t *FileGetTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
			"repo":  map[string]any{"type": "string"},
			"path":  map[string]any{"type": "string"},
			"ref":   map[string]any{"type": "string", "description": "Optional branch, tag, or commit SHA."},
		},
		"required": []string{"owner", "repo", "path"},
	})
}

func (t *FileGetTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	owner, err := requiredString(params, "owner")
	if err != nil {
		return "", err
	}
	repo, err := requiredString(params, "repo")
	if err != nil {
		return "", err
	}
	filePath, err := requiredString(params, "path")
	if err != nil {
		return "", err
	}

	res, err := t.Deps.API.Do(ctx, githubapi.Request{
		Path:     fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, filePath),
		Query:    map[string]string{"ref": optionalString(params, "ref")},
		AuthMode: githubapi.AuthToken,
	})
	if err != nil {
		return "", err
	}
	return jsonutil.Encode(res), nil
}

type FilePutTool struct {
	Deps *Deps
}

func (t *FilePutTool) Name() string { return "github_repo_file_put" }

func (t *FilePutTool) Description() string {
	return "Creates or updates a file via the Contents API (write; allowlist or per-session approval required)."
}

func (t *FilePutTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner":          map[string]any{"type": "string"},
			"repo":           map[string]any{"type": "string"},
			"path":           map[string]any{"type": "string"},
			"message":        map[string]any{"type": "string", "description": "Commit message."},
			"content_base64": map[string]any{"type": "string", "description": "File content, base64-encoded."},
			"sha":            map[string]any{"type": "string", "description": "Blob SHA when updating an existing file."},
			"branch":         map[string]any{"type": "string"},
		},
		"required": []string{"owner", "repo", "path", "message", "content_base64"},
	})
}

func (t *FilePutTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	owner, err := requiredString(params, "owner")
	if err != nil {
		return "", err
	}
	repo, err := requiredString(params, "repo")
	if err != nil {
		return "", err
	}
	filePath, err := requiredString(params, "path")
	if err != nil {
		return "", err
	}
	message, err := requiredString(params, "message")
	if err != nil {
		return "", err
	}
	content, err := requiredString(params, "content_base64")
	if err != nil {
		return "", err
	}

	if err := safeWritePath(filePath); err != nil {
		return jsonutil.Encode(guard.Result{
			Code:    "NOT_ALLOWED",
			Message: err.Error(),
		}), nil
	}

	req := guard.Request{
		Action:     "repo.file.put",
		Capability: guard.CapabilityWrite,
		Resource:   guard.Resource{Owner: owner, Repo: repo, Type: guard.ResourceRepo},
	}

	return t.Deps.guarded(ctx, req, func(ctx context.Context) (any, error) {
		body := map[string]any{
			"message": message,
			"content": content,
		}
		if sha := optionalString(params, "sha"); sha != "" {
			body["sha"] = sha
		}
		if branch := optionalString(params, "branch"); branch != "" {
			body["branch"] = branch
		}
		return t.Deps.API.Do(ctx, githubapi.Request{
			Path:     fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, filePath),
			Method:   "PUT",
			Body:     body,
			AuthMode: githubapi.AuthApp,
		})
	})
}
