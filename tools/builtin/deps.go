// Package builtin provides the GitHub tool set: read tools that call the
// API directly and write tools that route through the guard.
package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

// Deps wires the shared collaborators into each tool.
type Deps struct {
	API    *githubapi.Client
	Guard  *guard.Guard
	Ledger *guard.Ledger
	Creds  *githubapi.Credentials
}

// guarded routes a write operation through the guard. Policy short-circuits
// are encoded as JSON results; only credential/network failures become errors.
func (d *Deps) guarded(ctx context.Context, req guard.Request, op guard.Op) (string, error) {
	inv := guard.Invocation{
		SessionID: guard.SessionFromContext(ctx),
		Actor:     guard.ActorFromContext(ctx),
		Request:   req,
	}
	res, err := d.Guard.Invoke(ctx, inv, op)
	if err != nil {
		return "", err
	}
	if res.Code != "" {
		return jsonutil.Encode(res), nil
	}
	return jsonutil.Encode(res.Value), nil
}

func requiredString(params map[string]any, key string) (string, error) {
	v, _ := params[key].(string)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("missing required param: %s", key)
	}
	return v, nil
}

func optionalString(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return strings.TrimSpace(v)
}

func optionalBool(params map[string]any, key string, fallback bool) bool {
	v, ok := params[key].(bool)
	if !ok {
		return fallback
	}
	return v
}

// intParam accepts both float64 (JSON numbers) and int.
func intParam(params map[string]any, key string) (int, error) {
	switch v := params[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("missing or invalid param: %s (expected number)", key)
	}
}

func schemaJSON(s map[string]any) string {
	return jsonutil.Encode(s)
}
