package guard

import (
	"context"
	"log/slog"
	"time"
)

// Stable result codes for policy short-circuits. Callers branch on these
// rather than on reason text.
const (
	CodePolicyDenied     = "POLICY_DENIED"
	CodeApprovalRequired = "APPROVAL_REQUIRED"
)

// backendGitHub tags audit entries with the remote system they concern.
const backendGitHub = "github"

// Op is the effectful remote call executed only when policy allows it.
type Op func(ctx context.Context) (any, error)

// Failer lets an op result mark itself failed without being an error, so
// transport-level failures stay data while still reaching the audit trail.
type Failer interface {
	FailureReason() (string, bool)
}

// Result is what a guarded invocation hands back to the tool layer.
// When the policy short-circuits, OK is false and Code carries one of the
// stable codes above; Value is the op's return only when the op ran.
type Result struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Repo    string `json:"repo,omitempty"`
	Value   any    `json:"-"`
}

// Invocation carries the per-call identity for policy and audit.
type Invocation struct {
	SessionID string
	Actor     string
	Request   Request
}

// Guard is the single choke point every write operation passes through:
// evaluate policy, short-circuit on denial or pending approval, otherwise
// execute the op, and append exactly one audit entry whichever branch ran.
type Guard struct {
	engine *Engine
	audit  *Logger
	log    *slog.Logger
}

func New(engine *Engine, audit *Logger, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{engine: engine, audit: audit, log: log}
}

func (g *Guard) Invoke(ctx context.Context, inv Invocation, op Op) (Result, error) {
	req := inv.Request
	decision := g.engine.Evaluate(req, inv.SessionID)

	entry := Entry{
		SessionID: inv.SessionID,
		Action:    req.Action,
		Actor:     inv.Actor,
		Repo:      req.Resource.Slug(),
		Backend:   backendGitHub,
		Decision:  decision.Outcome,
	}

	switch decision.Outcome {
	case OutcomeDenied:
		entry.Outcome = EntryFailure
		g.audit.Log(ctx, entry)
		g.log.Warn("invocation_denied", "action", req.Action, "repo", entry.Repo)
		return Result{Code: CodePolicyDenied, Message: decision.Reason, Repo: entry.Repo}, nil

	case OutcomeNeedsApproval:
		entry.Outcome = EntryFailure
		g.audit.Log(ctx, entry)
		g.log.Info("invocation_needs_approval", "action", req.Action, "repo", entry.Repo)
		return Result{Code: CodeApprovalRequired, Message: decision.Reason, Repo: entry.Repo}, nil
	}

	start := time.Now()
	value, err := op(ctx)
	entry.DurationMs = time.Since(start).Milliseconds()

	entry.Outcome = EntrySuccess
	if err != nil {
		entry.Outcome = EntryFailure
		entry.Error = err.Error()
	} else if f, ok := value.(Failer); ok {
		if reason, failed := f.FailureReason(); failed {
			entry.Outcome = EntryFailure
			entry.Error = reason
		}
	}
	g.audit.Log(ctx, entry)

	if err != nil {
		return Result{Code: "", Message: err.Error(), Repo: entry.Repo, Value: value}, err
	}
	return Result{OK: true, Repo: entry.Repo, Value: value}, nil
}
