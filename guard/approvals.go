package guard

import "sync"

// wildcardAction marks a repo-wide grant that subsumes every action on the
// repository for the session.
const wildcardAction = "*"

// Ledger records session-scoped approvals. Grants live only in process
// memory and die with the session; there is deliberately no revocation.
type Ledger struct {
	mu     sync.RWMutex
	grants map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{grants: make(map[string]struct{})}
}

// Approve grants the specific action on the request's repository for the
// session. Re-approving is a no-op.
func (l *Ledger) Approve(sessionID string, req Request) {
	l.insert(grantKey(sessionID, req.Action, req.Resource.Owner, req.Resource.Repo))
}

// ApproveRepo grants all actions on owner/repo for the session.
func (l *Ledger) ApproveRepo(sessionID, owner, repo string) {
	l.insert(grantKey(sessionID, wildcardAction, owner, repo))
}

// IsApproved reports whether the session holds a grant covering the request,
// checking the specific-action key first and the repo-wide key second.
func (l *Ledger) IsApproved(sessionID string, req Request) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.grants[grantKey(sessionID, req.Action, req.Resource.Owner, req.Resource.Repo)]; ok {
		return true
	}
	_, ok := l.grants[grantKey(sessionID, wildcardAction, req.Resource.Owner, req.Resource.Repo)]
	return ok
}

func (l *Ledger) insert(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.grants[key] = struct{}{}
}

func grantKey(sessionID, action, owner, repo string) string {
	return sessionID + ":" + action + ":" + owner + "/" + repo
}
