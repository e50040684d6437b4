package builtin

import (
	"context"
	"fmt"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
)

// fallbackGitignore seeds new repositories when the template fetch fails.
const fallbackGitignore = "# Node.js\nnode_modules/\n.env\n"

type RepoCreateTool struct {
	Deps *Deps
}

func (t *RepoCreateTool) Name() string { return "github_repo_create" }

func (t *RepoCreateTool) Description() string {
	return "Creates a new repository for the authenticated user with README and .gitignore starter files (write; requires approval)."
}

func (t *RepoCreateTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":               map[string]any{"type": "string"},
			"description":        map[string]any{"type": "string"},
			"private":            map[string]any{"type": "boolean", "description": "Defaults to true."},
			"has_issues":         map[string]any{"type": "boolean", "description": "Defaults to true."},
			"has_projects":       map[string]any{"type": "boolean", "description": "Defaults to false."},
			"has_wiki":           map[string]any{"type": "boolean", "description": "Defaults to false."},
			"gitignore_template": map[string]any{"type": "string", "description": "Template name, e.g. Node or Go."},
		},
		"required": []string{"name"},
	})
}

func (t *RepoCreateTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	name, err := requiredString(params, "name")
	if err != nil {
		return "", err
	}
	if len(name) > 100 {
		return "", fmt.Errorf("repository name too long (max 100 characters)")
	}

	req := guard.Request{
		Action:     "repo.create",
		Capability: guard.CapabilityWrite,
		Resource:   guard.Resource{Owner: "user", Repo: name, Type: guard.ResourceRepo},
	}

	return t.Deps.guarded(ctx, req, func(ctx context.Context) (any, error) {
		created, err := t.Deps.API.Do(ctx, githubapi.Request{
			Path:   "/user/repos",
			Method: "POST",
			Body: map[string]any{
				"name":         name,
				"description":  optionalString(params, "description"),
				"private":      optionalBool(params, "private", true),
				"has_issues":   optionalBool(params, "has_issues", true),
				"has_projects": optionalBool(params, "has_projects", false),
				"has_wiki":     optionalBool(params, "has_wiki", false),
				"auto_init":    false,
			},
			AuthMode: githubapi.AuthToken,
		})
		if err != nil || !created.OK {
			return created, err
		}

		repoData, _ := created.Data.(map[string]any)
		owner := ""
		if o, ok := repoData["owner"].(map[string]any); ok {
			owner, _ = o["login"].(string)
		}
		repoName, _ := repoData["name"].(string)
		if owner == "" || repoName == "" {
			return created, nil
		}

		if err := t.initStarterSet(ctx, owner, repoName, optionalString(params, "description"), optionalString(params, "gitignore_template")); err != nil {
			// The repository exists; surface the init failure as a warning
			// rather than failing the whole create.
			return map[string]any{
				"ok":      true,
				"data":    repoData,
				"warning": fmt.Sprintf("repository created but initialization failed: %v", err),
			}, nil
		}

		repoData["initialized"] = true
		repoData["default_branch"] = "main"
		return githubapi.Result{OK: true, Status: created.Status, Data: repoData}, nil
	})
}

// initStarterSet builds the initial commit through the git data API: fetch a
// gitignore template, create blobs, a tree, a commit, then refs/heads/main.
func (t *RepoCreateTool) initStarterSet(ctx context.Context, owner, repo, description, gitignoreTemplate string) error {
	gitignore := fallbackGitignore
	if gitignoreTemplate == "" {
		gitignoreTemplate = "Node"
	}
	if tpl, err := t.Deps.API.Do(ctx, githubapi.Request{
		Path:     "/gitignore/templates/" + gitignoreTemplate,
		AuthMode: githubapi.AuthNone,
	}); err == nil && tpl.OK {
		if data, ok := tpl.Data.(map[string]any); ok {
			if src, ok := data["source"].(string); ok && src != "" {
				gitignore = src
			}
		}
	}

	if description == "" {
		description = "A new repository."
	}
	readme := fmt.Sprintf("# %s\n\n%s\n", repo, description)

	readmeSHA, err := t.createBlob(ctx, owner, repo, readme)
	if err != nil {
		return fmt.Errorf("create README blob: %w", err)
	}
	gitignoreSHA, err := t.createBlob(ctx, owner, repo, gitignore)
	if err != nil {
		return fmt.Errorf("create .gitignore blob: %w", err)
	}

	tree, err := t.gitData(ctx, owner, repo, "trees", map[string]any{
		"tree": []map[string]any{
			{"path": "README.md", "mode": "100644", "type": "blob", "sha": readmeSHA},
			{"path": ".gitignore", "mode": "100644", "type": "blob", "sha": gitignoreSHA},
		},
	})
	if err != nil {
		return fmt.Errorf("create tree: %w", err)
	}

	commit, err := t.gitData(ctx, owner, repo, "commits", map[string]any{
		"message": "Initial commit",
		"tree":    tree,
		"parents": []string{},
	})
	if err != nil {
		return fmt.Errorf("create commit: %w", err)
	}

	res, err := t.Deps.API.Do(ctx, githubapi.Request{
		Path:   fmt.Sprintf("/repos/%s/%s/git/refs", owner, repo),
		Method: "POST",
		Body: map[string]any{
			"ref": "refs/heads/main",
			"sha": commit,
		},
		AuthMode: githubapi.AuthToken,
	})
	if err != nil {
		return err
	}
	if !res.OK {
		reason, _ := res.FailureReason()
		return fmt.Errorf("create ref: %s", reason)
	}
	return nil
}

func (t *RepoCreateTool) createBlob(ctx context.Context, owner, repo, content string) (string, error) {
	return t.gitData(ctx, owner, repo, "blobs", map[string]any{
		"content":  content,
		"encoding": "utf-8",
	})
}

// gitData POSTs to a git data endpoint and returns the created object SHA.
func (t *RepoCreateTool) gitData(ctx context.Context, owner, repo, kind string, body map[string]any) (string, error) {
	res, err := t.Deps.API.Do(ctx, githubapi.Request{
		Path:     fmt.Sprintf("/repos/%s/%s/git/%s", owner, repo, kind),
		Method:   "POST",
		Body:     body,
		AuthMode: githubapi.AuthToken,
	})
	if err != nil {
		return "", err
	}
	if !res.OK {
		reason, _ := res.FailureReason()
		return "", fmt.Errorf("%s", reason)
	}
	data, _ := res.Data.(map[string]any)
	sha, _ := data["sha"].(string)
	if sha == "" {
		return "", fmt.Errorf("git %s response missing sha", kind)
	}
	return sha, nil
}
