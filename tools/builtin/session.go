package builtin

import (
	"context"
	"fmt"

	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

// SessionAllowTool is the single ledger-mutation operation: it grants all
// write actions on a repository for the current session. The host must only
// call it after explicit user confirmation.
type SessionAllowTool struct {
	Deps *Deps
}

func (t *SessionAllowTool) Name() string { return "github_session_allow_repo" }

func (t *SessionAllowTool) Description() string {
	return "Allows write actions for a repository for the current session. Use ONLY after explicit user confirmation."
}

func (t *SessionAllowTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
			"repo":  map[string]any{"type": "string"},
		},
		"required": []string{"owner", "repo"},
	})
}

func (t *SessionAllowTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	owner, err := requiredString(params, "owner")
	if err != nil {
		return "", err
	}
	repo, err := requiredString(params, "repo")
	if err != nil {
		return "", err
	}

	sessionID := guard.SessionFromContext(ctx)
	if sessionID == "" {
		return "", fmt.Errorf("no session in context")
	}

	t.Deps.Ledger.ApproveRepo(sessionID, owner, repo)

	return jsonutil.Encode(map[string]any{
		"ok": true,
		"data": map[string]any{
			"approved":   true,
			"repo":       owner + "/" + repo,
			"session_id": sessionID,
		},
	}), nil
}
