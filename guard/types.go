// Package guard implements the write-access policy, per-session approvals,
// and audit trail that gate every GitHub operation an agent performs.
package guard

import "time"

type Capability string

const (
	CapabilityRead  Capability = "read"
	CapabilityWrite Capability = "write"
)

type ResourceType string

const (
	ResourceRepo  ResourceType = "repo"
	ResourceIssue ResourceType = "issue"
	ResourcePR    ResourceType = "pr"
)

// Resource identifies the repository-level target of an operation.
type Resource struct {
	Owner string
	Repo  string
	Type  ResourceType
}

// Slug returns the "owner/repo" form used by policy patterns and audit entries.
func (r Resource) Slug() string {
	return r.Owner + "/" + r.Repo
}

// Request describes one operation the agent wants to perform. It is
// constructed per call and never mutated.
type Request struct {
	Action     string
	Capability Capability
	Resource   Resource
}

type Outcome string

const (
	OutcomeAllowed       Outcome = "allowed"
	OutcomeDenied        Outcome = "denied"
	OutcomeNeedsApproval Outcome = "needs_approval"
)

// Decision is the result of a policy evaluation.
type Decision struct {
	Outcome Outcome
	Reason  string
}

type Mode string

const (
	ModeFailClosed Mode = "fail_closed"
	ModeMonitor    Mode = "monitor"
)

// PolicyConfig holds the repository allow/deny lists. Patterns are either an
// exact "owner/repo", a wildcard "owner/*", or a bare "*".
//
// Mode is carried through from configuration but the evaluator does not
// branch on it; monitor semantics are deliberately unimplemented.
type PolicyConfig struct {
	Allowlist []string
	Denylist  []string
	Mode      Mode
}

type EntryOutcome string

const (
	EntrySuccess EntryOutcome = "success"
	EntryFailure EntryOutcome = "failure"
)

// Entry is one audit record. Entries are append-only: created once per
// guarded invocation and never mutated afterwards.
type Entry struct {
	Timestamp  time.Time    `json:"ts"`
	SessionID  string       `json:"session_id"`
	Action     string       `json:"action"`
	Actor      string       `json:"actor,omitempty"`
	Repo       string       `json:"repo"`
	Backend    string       `json:"backend"`
	Decision   Outcome      `json:"decision"`
	Outcome    EntryOutcome `json:"outcome"`
	DurationMs int64        `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
}
