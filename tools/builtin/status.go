package builtin

import (
	"context"

	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

// StatusTool reports which credential paths are configured without exposing
// the credentials themselves.
type StatusTool struct {
	Deps *Deps
}

func (t *StatusTool) Name() string { return "github_status" }

func (t *StatusTool) Description() string {
	return "Reports the plugin's authentication configuration state."
}

func (t *StatusTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	})
}

func (t *StatusTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	_ = params

	_, hasToken := t.Deps.Creds.TokenForRead()

	return jsonutil.Encode(map[string]any{
		"ok": true,
		"data": map[string]any{
			"base_url": t.Deps.Creds.BaseURL(),
			"token":    hasToken,
			"session":  guard.SessionFromContext(ctx),
		},
	}), nil
}
