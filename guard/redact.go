package guard

import "regexp"

const redactedPlaceholder = "[REDACTED]"

// Token shapes scrubbed from audit error text: classic prefixed tokens
// (ghp_/gho_/ghu_/ghs_/ghr_) and fine-grained personal access tokens.
// This is a best-effort pattern scrub, not a general secret scanner.
var (
	ghTokenRe = regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36,}`)
	ghFineRe  = regexp.MustCompile(`github_pat_[A-Za-z0-9_]{20,}`)
)

// RedactTokens replaces credential-shaped substrings with a placeholder.
// Non-matching text passes through unchanged.
func RedactTokens(s string) string {
	if s == "" {
		return s
	}
	s = ghTokenRe.ReplaceAllString(s, redactedPlaceholder)
	s = ghFineRe.ReplaceAllString(s, redactedPlaceholder)
	return s
}
