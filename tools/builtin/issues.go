package builtin

import (
	"context"
	"fmt"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

type IssueListTool struct {
	Deps *Deps
}

func (t *IssueListTool) Name() string { return "github_issue_list" }

func (t *IssueListTool) Description() string {
	return "Lists issues in a repository (read-only)."
}

func (t *IssueListTool) ParameterSchema() string {
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

func (t *IssueListTool) Execute(ctx context.Context, params map[string]any) (string, error) {
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
		Path:     fmt.Sprintf("/repos/%s/%s/issues", owner, repo),
		Query:    map[string]string{"state": state},
		AuthMode: githubapi.AuthToken,
	})
	if err != nil {
		return "", err
	}
	return jsonutil.Encode(res), nil
}

type IssueCreateTool struct {
	Deps *Deps
}

func (t *IssueCreateTool) Name() string { return "github_issue_create" }

func (t *IssueCreateTool) Description() string {
	return "Creates an issue (write; allowlist or per-session approval required)."
}

func (t *IssueCreateTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
			"repo":  map[string]any{"type": "string"},
			"title": map[string]any{"type": "string"},
			"body":  map[string]any{"type": "string"},
		},
		"required": []string{"owner", "repo", "title"},
	})
}

func (t *IssueCreateTool) Execute(ctx context.Context, params map[string]any) (string, error) {
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

	req := guard.Request{
		Action:     "issue.create",
		Capability: guard.CapabilityWrite,
		Resource:   guard.Resource{Owner: owner, Repo: repo, Type: guard.ResourceIssue},
	}

	return t.Deps.guarded(ctx, req, func(ctx context.Context) (any, error) {
		return t.Deps.API.Do(ctx, githubapi.Request{
			Path:   fmt.Sprintf("/repos/%s/%s/issues", owner, repo),
			Method: "POST",
			Body: map[string]any{
				"title": title,
				"body":  optionalString(params, "body"),
			},
			AuthMode: githubapi.AuthApp,
		})
	})
}

type IssueCommentTool struct {
	Deps *Deps
}

func (t *IssueCommentTool) Name() string { return "github_issue_comment" }

func (t *IssueCommentTool) Description() string {
	return "Comments on an issue or pull request (write; allowlist or per-session approval required)."
}

func (t *IssueCommentTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner":        map[string]any{"type": "string"},
			"repo":         map[string]any{"type": "string"},
			"issue_number": map[string]any{"type": "integer"},
			"body":         map[string]any{"type": "string"},
		},
		"required": []string{"owner", "repo", "issue_number", "body"},
	})
}

func (t *IssueCommentTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	owner, err := requiredString(params, "owner")
	if err != nil {
		return "", err
	}
	repo, err := requiredString(params, "repo")
	if err != nil {
		return "", err
	}
	number, err := intParam(params, "issue_number")
	if err != nil {
		return "", err
	}
	if number <= 0 {
		return "", fmt.Errorf("issue_number must be positive")
	}
	body, err := requiredString(params, "body")
	if err != nil {
		return "", err
	}

	req := guard.Request{
		Action:     "issue.comment",
		Capability: guard.CapabilityWrite,
		Resource:   guard.Resource{Owner: owner, Repo: repo, Type: guard.ResourceIssue},
	}

	return t.Deps.guarded(ctx, req, func(ctx context.Context) (any, error) {
		return t.Deps.API.Do(ctx, githubapi.Request{
			Path:     fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number),
			Method:   "POST",
			Body:     map[string]any{"body": body},
			AuthMode: githubapi.AuthApp,
		})
	})
}
