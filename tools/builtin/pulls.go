package builtin

import (
	"context"
	"fmt"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

type PullListTool struct {
	Deps *Deps
}

func (t *PullListTool) Name() string { return "github_pr_list" }

func (t *PullListTool) Description() string {
	return "Lists pull requests in a repository (read-only)."
}

func (t *PullListTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
			"repo":  map[string]any{"type": "string"},
			"state": map[string]any{
				"type": "string",
				"enum": []string{"open", "closed", "all"},
			},
		},
		"required": []string{"owner", "repo"},
	})
}

func (t *PullListTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	owner, err := requiredString(params, "owner")
	if err != nil {
		return "", err
	}
	repo, err := requiredString(params, "repo")
	if err != nil {
		return "", err
	}
	state := optionalString(params, "state")
	if state == "" {
		state = "open"
	}

	res, err := t.Deps.API.Do(ctx, githubapi.Request{
		Path:     fmt.Sprintf("/repos/%s/%s/pulls", owner, repo),
		Query:    map[string]string{"state": state},
		AuthMode: githubapi.AuthToken,
	})
	if err != nil {
		return "", err
	}
	return jsonutil.Encode(res), nil
}

type PullCreateTool struct {
	Deps *Deps
}

func (t *PullCreateTool) Name() string { return "github_pr_create" }

func (t *PullCreateTool) Description() string {
	return "Creates a pull request (write; allowlist or per-session approval required)."
}

func (t *PullCreateTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
			"repo":  map[string]any{"type": "string"},
			"title": map[string]any{"type": "string"},
			"head":  map[string]any{"type": "string", "description": "Branch containing the changes."},
			"base":  map[string]any{"type": "string", "description": "Branch to merge into."},
			"body":  map[string]any{"type": "string"},
		},
		"required": []string{"owner", "repo", "title", "head", "base"},
	})
}

func (t *PullCreateTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	owner, err := requiredString(params, "owner")
	if err != nil {
		return "", err
	}
	repo, err := requiredString(params, "repo")
	if err != nil {
		return "", err
	}
	title, err := requiredString(params, "title")
	if err != nil {
		return "", err
	}
	head, err := requiredString(params, "head")
	if err != nil {
		return "", err
	}
	base, err := requiredString(params, "base")
	if err != nil {
		return "", err
	}

	req := guard.Request{
		Action:     "pr.create",
		Capability: guard.CapabilityWrite,
		Resource:   guard.Resource{Owner: owner, Repo: repo, Type: guard.ResourcePR},
	}

	return t.Deps.guarded(ctx, req, func(ctx context.Context) (any, error) {
		return t.Deps.API.Do(ctx, githubapi.Request{
			Path:   fmt.Sprintf("/repos/%s/%s/pulls", owner, repo),
			Method: "POST",
			Body: map[string]any{
				"title": title,
				"head":  head,
				"base":  base,
				"body":  optionalString(params, "body"),
			},
			AuthMode: githubapi.AuthApp,
		})
	})
}
