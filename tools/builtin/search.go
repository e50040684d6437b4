package builtin

import (
	"context"
	"fmt"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

type SearchTool struct {
	Deps *Deps
}

func (t *SearchTool) Name() string { return "github_search" }

func (t *SearchTool) Description() string {
	return "Searches GitHub repositories, issues, or code (read-only)."
}

func (t *SearchTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The search query."},
			"type": map[string]any{
				"type":        "string",
				"description": "Search domain. Defaults to repositories.",
				"enum":        []string{"repositories", "issues", "code"},
			},
		},
		"required": []string{"query"},
	})
}

func (t *SearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query, err := requiredString(params, "query")
	if err != nil {
		return "", err
	}

	searchType := optionalString(params, "type")
	if searchType == "" {
		searchType = "repositories"
	}
	switch searchType {
	case "repositories", "issues", "code":
	default:
		return "", fmt.Errorf("invalid search type: %s", searchType)
	}

	res, err := t.Deps.API.Do(ctx, githubapi.Request{
		Path:     "/search/" + searchType,
		Query:    map[string]string{"q": query},
		AuthMode: githubapi.AuthToken,
	})
	if err != nil {
		return "", err
	}
	return jsonutil.Encode(res), nil
}
