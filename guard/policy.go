package guard

import (
	"fmt"
	"strings"
)

// Engine evaluates requests against the configured allow/deny lists and the
// session approval ledger.
type Engine struct {
	cfg       PolicyConfig
	approvals *Ledger
}

func NewEngine(cfg PolicyConfig, approvals *Ledger) *Engine {
	return &Engine{cfg: cfg, approvals: approvals}
}

// Evaluate classifies a request for the given session. Evaluation order,
// first match wins:
//
//  1. read capability — always allowed, lists and approvals are not consulted
//  2. denylist match (only when the denylist is non-empty) — denied
//  3. allowlist match — allowed
//  4. session approval (specific action or repo-wide) — allowed
//  5. otherwise — needs_approval
func (e *Engine) Evaluate(req Request, sessionID string) Decision {
	if req.Capability == CapabilityRead {
		return Decision{Outcome: OutcomeAllowed, Reason: "read operations are always allowed"}
	}

	slug := req.Resource.Slug()

	if len(e.cfg.Denylist) > 0 && matchesAny(slug, e.cfg.Denylist) {
		return Decision{Outcome: OutcomeDenied, Reason: "repository is explicitly denied"}
	}

	if matchesAny(slug, e.cfg.Allowlist) {
		return Decision{Outcome: OutcomeAllowed, Reason: "repository is on the allowlist"}
	}

	if e.approvals != nil && e.approvals.IsApproved(sessionID, req) {
		return Decision{Outcome: OutcomeAllowed, Reason: "operation approved for this session"}
	}

	return Decision{
		Outcome: OutcomeNeedsApproval,
		Reason:  fmt.Sprintf("write operation to %s requires explicit approval or allowlist entry", slug),
	}
}

func matchesAny(slug string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesPattern(slug, pattern) {
			return true
		}
	}
	return false
}

func matchesPattern(slug, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	if pattern == "*" {
		return true
	}
	if owner, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(slug, owner+"/")
	}
	return slug == pattern
}
